// Package bytematch provides a small, self-contained pattern-matching
// engine for raw byte buffers.
//
// A pattern string is compiled once into an immutable program; the program
// is then matched against any number of subjects, optionally recovering
// capture-group spans as zero-copy views into the subject. The engine is
// byte-oriented: it has no Unicode awareness, handles embedded zero bytes,
// and makes no linear-time guarantee (backtracking can be exponential on
// pathological patterns).
//
// Supported syntax:
//
//	x            literal byte
//	.            any byte
//	[abc] [^abc] byte class, optionally negated
//	\d \D \s \S  digit / non-digit, whitespace / non-whitespace
//	\20          byte by hex value (two hex digits)
//	\0 \n \r \t  control-byte escapes
//	\\ \. ...    escaped literal byte
//	(x)          capturing group, numbered from 0 by opening parenthesis
//	x|y          alternation, left branch preferred
//	x* x+ x?     greedy quantifiers
//	x*? x+? x??  lazy quantifiers
//	^ $          subject start / end anchors
//
// Basic usage:
//
//	re, err := bytematch.Compile(`^([^\s]+)$`)
//	if err != nil {
//	    // malformed pattern
//	}
//	caps := make([]bytematch.Capture, re.NumGroups())
//	if re.Match([]byte("token"), caps) {
//	    field := caps[0].In([]byte("token"))
//	    _ = field
//	}
//
// Unanchored patterns with extractable literal prefixes are searched with a
// prefilter (single-substring scan or an Aho-Corasick automaton) so the
// backtracking engine only runs at candidate offsets.
package bytematch

import (
	"github.com/coregx/bytematch/literal"
	"github.com/coregx/bytematch/prefilter"
	"github.com/coregx/bytematch/vm"
)

// Capture records one capturing group's span as a view into the subject
// buffer. See vm.Capture.
type Capture = vm.Capture

// CompileError is the error type returned by Compile for malformed
// patterns; errors.As recovers it for the pattern and offset.
type CompileError = vm.CompileError

// Sentinel causes wrapped by CompileError, for use with errors.Is.
var (
	ErrUnbalancedGroup    = vm.ErrUnbalancedGroup
	ErrEmptyGroup         = vm.ErrEmptyGroup
	ErrDanglingQuantifier = vm.ErrDanglingQuantifier
	ErrUnterminatedClass  = vm.ErrUnterminatedClass
	ErrTrailingEscape     = vm.ErrTrailingEscape
	ErrProgramTooLarge    = vm.ErrProgramTooLarge
	ErrNestingTooDeep     = vm.ErrNestingTooDeep
)

// Regex is a compiled pattern. It is immutable after compilation and safe
// for concurrent use: simultaneous Match calls share the program read-only
// and each allocates its own scratch state.
//
// A nil *Regex is the documented "no compiled pattern" sentinel: its Match
// methods report success unconditionally, for any subject including the
// empty one.
type Regex struct {
	prog    *vm.Program
	pf      prefilter.Prefilter
	pattern string
}

// Compile compiles a pattern, returning a *CompileError for malformed
// syntax (unbalanced or empty groups, a quantifier with no preceding atom,
// an unterminated class, a trailing escape). A failed compilation never
// yields a partial program.
func Compile(pattern string) (*Regex, error) {
	prog, err := vm.Compile([]byte(pattern))
	if err != nil {
		return nil, err
	}
	re := &Regex{prog: prog, pattern: pattern}
	if !prog.Anchored {
		seq := literal.ExtractPrefixes(prog, literal.DefaultConfig())
		re.pf = prefilter.FromSeq(seq)
	}
	return re, nil
}

// MustCompile is like Compile but panics on a malformed pattern. Use for
// patterns known valid at build time.
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic("bytematch: Compile(" + pattern + "): " + err.Error())
	}
	return re
}

// Match reports whether the pattern matches the subject. Without a leading
// '^' the match may begin at any offset, including the empty match at the
// end of the subject; with one, only at offset 0.
//
// On success, capture spans are written to captures in group order, up to
// its length: a group the winning path completed gets its span, one it did
// not (untaken alternation branch, zero repetitions) gets an absent
// capture. Groups beyond len(captures) are evaluated but not written, and
// slots beyond the group count are never touched. On failure captures is
// left as it was. Passing nil captures is the boolean-only form.
//
// By convention captures[0] is the first explicit group, not the whole
// match; wrap the entire pattern in parentheses to recover the full span.
func (r *Regex) Match(subject []byte, captures []Capture) bool {
	if r == nil {
		return true
	}
	if r.pf != nil {
		for at := 0; ; {
			pos := r.pf.Find(subject, at)
			if pos < 0 {
				return false
			}
			if vm.MatchAt(r.prog, subject, pos, captures) {
				return true
			}
			at = pos + 1
		}
	}
	return vm.Match(r.prog, subject, captures)
}

// MatchString is Match for a string subject. Capture views returned through
// In index into the converted byte slice, so callers wanting the captured
// text should convert the subject once and use Match directly.
func (r *Regex) MatchString(subject string, captures []Capture) bool {
	return r.Match([]byte(subject), captures)
}

// NumGroups returns the number of capturing groups in the pattern.
func (r *Regex) NumGroups() int {
	if r == nil {
		return 0
	}
	return r.prog.Groups
}

// Program exposes the compiled instruction stream. The engine never mutates
// it; callers that do (or whose environment corrupts it) get fail-closed
// "no match" results rather than undefined behavior.
func (r *Regex) Program() *vm.Program {
	if r == nil {
		return nil
	}
	return r.prog
}

// String returns the source pattern.
func (r *Regex) String() string {
	if r == nil {
		return ""
	}
	return r.pattern
}
