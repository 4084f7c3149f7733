// Package vm implements the pattern compiler and the backtracking virtual
// machine that executes compiled programs against raw byte buffers.
//
// A pattern is compiled once into an immutable, position-addressed Program of
// fixed-size instructions. The match engine then interprets that program
// against a subject buffer, performing backtracking search over quantifiers
// and alternation and recording capture-group spans as views into the subject.
//
// The engine operates on raw byte values, including embedded zero bytes.
// There is no Unicode awareness and no linear-time guarantee: pathological
// patterns can backtrack exponentially, which matches the contract of the
// surrounding library.
package vm

import "fmt"

// Opcode identifies one instruction tag in a compiled Program.
//
// The set is closed: the match engine dispatches with an exhaustive switch
// whose default arm reports match failure. An opcode value outside this set
// (for example after the program buffer was corrupted by the host
// environment) therefore degrades to an ordinary "no match", never to
// undefined behavior.
type Opcode uint8

const (
	// OpMatch accepts: the program has matched at the current cursor.
	OpMatch Opcode = iota

	// OpByte matches the single literal byte in Arg and advances the cursor.
	OpByte

	// OpAny matches any byte, including NUL, and advances the cursor.
	OpAny

	// OpClass matches any byte contained in Set and advances the cursor.
	// Negated classes are folded into the bitmap at compile time.
	OpClass

	// OpSplit forks execution: the branch at X is attempted first, the
	// branch at Y only after everything downstream of X has failed.
	// Greedy/lazy quantifier preference is encoded purely by which target
	// is placed in X.
	OpSplit

	// OpJmp continues execution at X.
	OpJmp

	// OpSave records the current cursor in capture slot X. Slot 2n holds
	// the start of group n, slot 2n+1 its end.
	OpSave

	// OpAssertBegin is a zero-width assertion that the cursor is at the
	// absolute start of the subject buffer.
	OpAssertBegin

	// OpAssertEnd is a zero-width assertion that the cursor is at the
	// absolute end of the subject buffer.
	OpAssertEnd
)

// String returns a human-readable representation of the opcode.
func (op Opcode) String() string {
	switch op {
	case OpMatch:
		return "Match"
	case OpByte:
		return "Byte"
	case OpAny:
		return "Any"
	case OpClass:
		return "Class"
	case OpSplit:
		return "Split"
	case OpJmp:
		return "Jmp"
	case OpSave:
		return "Save"
	case OpAssertBegin:
		return "AssertBegin"
	case OpAssertEnd:
		return "AssertEnd"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(op))
	}
}

// Inst is a single fixed-size instruction. Which operand fields are
// meaningful depends on Op: Arg for OpByte, Set for OpClass, X/Y for
// OpSplit, X for OpJmp and OpSave.
type Inst struct {
	Op  Opcode
	Arg byte

	// X and Y are absolute instruction indices for branches, or the
	// capture slot index for OpSave.
	X, Y int32

	// Set is the membership bitmap for OpClass.
	Set *ByteSet
}

// String returns a compact debug form of the instruction.
func (i Inst) String() string {
	switch i.Op {
	case OpByte:
		return fmt.Sprintf("Byte %q", i.Arg)
	case OpSplit:
		return fmt.Sprintf("Split %d, %d", i.X, i.Y)
	case OpJmp:
		return fmt.Sprintf("Jmp %d", i.X)
	case OpSave:
		return fmt.Sprintf("Save %d", i.X)
	case OpClass:
		return fmt.Sprintf("Class (%d bytes)", i.Set.Len())
	default:
		return i.Op.String()
	}
}

// ByteSet is a 256-bit membership bitmap over byte values.
type ByteSet [4]uint64

// Add inserts b into the set.
func (s *ByteSet) Add(b byte) {
	s[b>>6] |= 1 << (b & 63)
}

// AddSet inserts every member of o into the set.
func (s *ByteSet) AddSet(o *ByteSet) {
	for i := range s {
		s[i] |= o[i]
	}
}

// Contains reports whether b is a member of the set.
func (s *ByteSet) Contains(b byte) bool {
	return s[b>>6]&(1<<(b&63)) != 0
}

// Negate inverts the set in place so it matches exactly the bytes it
// previously rejected.
func (s *ByteSet) Negate() {
	for i := range s {
		s[i] = ^s[i]
	}
}

// Len returns the number of bytes in the set.
func (s *ByteSet) Len() int {
	n := 0
	for _, w := range s {
		n += popcount64(w)
	}
	return n
}

func popcount64(w uint64) int {
	n := 0
	for ; w != 0; w &= w - 1 {
		n++
	}
	return n
}

// Program is a compiled pattern: an ordered, immutable instruction sequence
// plus group metadata. It is produced only by Compile, never mutated by the
// match engine, and is safe for concurrent read-only use by any number of
// simultaneous Match calls.
//
// The instruction slice is exported so that callers owning a program across
// a long process lifetime can be modeled in tests; the engine itself treats
// any inconsistent content as an ordinary match failure.
type Program struct {
	// Insts is the flat instruction stream. Insts[0] is the entry point.
	Insts []Inst

	// Groups is the number of capturing groups, numbered from 0 in order
	// of their opening parenthesis in the pattern.
	Groups int

	// Anchored records that the pattern began with a start-of-subject
	// anchor, restricting the unanchored scan loop to offset 0.
	Anchored bool
}

// Capture records the span a capturing group matched, as a zero-copy view
// descriptor into the original subject buffer. A group that the winning
// match path never completed (untaken alternation branch, zero repetitions
// of a quantified group) has Start == -1, which is distinct from a
// zero-length span at a real offset.
type Capture struct {
	Start  int
	Length int
}

// Absent reports whether the group did not participate in the match.
func (c Capture) Absent() bool {
	return c.Start < 0
}

// In returns the captured bytes as a subslice of subject, or nil for an
// absent capture. The view aliases the subject buffer; it is valid for as
// long as the caller keeps that buffer alive.
func (c Capture) In(subject []byte) []byte {
	if c.Absent() {
		return nil
	}
	return subject[c.Start : c.Start+c.Length]
}
