// Package bytepipe provides a blocking in-memory byte stream with a fixed
// ring buffer. One side writes, the other reads; reads block until data is
// available, writes block while the buffer is full. Unlike io.Pipe there is
// no per-call rendezvous: a write completes as soon as the bytes are
// buffered.
package bytepipe

import (
	"errors"
	"io"
	"sync"
)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("bytepipe: pipe closed")

// DefaultSize is the buffer capacity used by New.
const DefaultSize = 4096

// Pipe is a single-direction in-memory byte stream. Concurrent use by one
// reader and one writer goroutine is the intended pattern; all methods are
// safe for concurrent use.
type Pipe struct {
	mu     sync.Mutex
	nempty sync.Cond // signaled when data arrives or the pipe closes
	nfull  sync.Cond // signaled when space frees up or the pipe closes

	buf    []byte
	head   int // next read position
	count  int // buffered bytes
	closed bool
}

// New returns a pipe with the default buffer capacity.
func New() *Pipe {
	return NewSize(DefaultSize)
}

// NewSize returns a pipe whose buffer holds size bytes. Size must be
// positive.
func NewSize(size int) *Pipe {
	if size <= 0 {
		panic("bytepipe: non-positive buffer size")
	}
	p := &Pipe{buf: make([]byte, size)}
	p.nempty.L = &p.mu
	p.nfull.L = &p.mu
	return p
}

// Read blocks until at least one byte is buffered, then copies up to
// len(b) bytes out. After Close, buffered bytes drain first; a read on an
// empty closed pipe returns io.EOF.
func (p *Pipe) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	for p.count == 0 {
		if p.closed {
			return 0, io.EOF
		}
		p.nempty.Wait()
	}

	n := p.count
	if n > len(b) {
		n = len(b)
	}
	tail := len(p.buf) - p.head
	if n <= tail {
		copy(b, p.buf[p.head:p.head+n])
	} else {
		copy(b, p.buf[p.head:])
		copy(b[tail:], p.buf[:n-tail])
	}
	p.head = (p.head + n) % len(p.buf)
	p.count -= n
	p.nfull.Broadcast()
	return n, nil
}

// Write buffers all of b, blocking while the buffer is full. It returns
// len(b) unless the pipe is closed before the last byte is buffered.
func (p *Pipe) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	written := 0
	for written < len(b) {
		for p.count == len(p.buf) && !p.closed {
			p.nfull.Wait()
		}
		if p.closed {
			return written, ErrClosed
		}

		n := len(b) - written
		if free := len(p.buf) - p.count; n > free {
			n = free
		}
		pos := (p.head + p.count) % len(p.buf)
		tail := len(p.buf) - pos
		if n <= tail {
			copy(p.buf[pos:], b[written:written+n])
		} else {
			copy(p.buf[pos:], b[written:written+tail])
			copy(p.buf, b[written+tail:written+n])
		}
		p.count += n
		written += n
		p.nempty.Broadcast()
	}
	return written, nil
}

// Close marks the pipe closed and wakes all blocked readers and writers.
// Buffered bytes remain readable; further writes fail with ErrClosed.
// Close is idempotent.
func (p *Pipe) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.nempty.Broadcast()
	p.nfull.Broadcast()
	return nil
}

// Buffered returns the number of bytes currently waiting to be read.
func (p *Pipe) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

var _ io.ReadWriteCloser = (*Pipe)(nil)
