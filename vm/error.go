package vm

import (
	"errors"
	"fmt"
)

// Structural pattern errors detected at compile time. Compilation either
// yields a fully valid program or one of these wrapped in a CompileError;
// there is no partially built program and nothing is deferred to match time.
var (
	// ErrUnbalancedGroup indicates an opening parenthesis with no matching
	// closing parenthesis, or vice versa.
	ErrUnbalancedGroup = errors.New("unbalanced group")

	// ErrEmptyGroup indicates a capturing group with no content.
	ErrEmptyGroup = errors.New("empty group")

	// ErrDanglingQuantifier indicates a quantifier with no preceding
	// quantifiable atom, including doubled quantifiers.
	ErrDanglingQuantifier = errors.New("quantifier with no preceding atom")

	// ErrUnterminatedClass indicates a bracket character class with no
	// closing bracket.
	ErrUnterminatedClass = errors.New("unterminated character class")

	// ErrTrailingEscape indicates a backslash at the very end of the
	// pattern with nothing to escape.
	ErrTrailingEscape = errors.New("trailing escape")

	// ErrProgramTooLarge indicates the compiled program exceeded the
	// addressable instruction range.
	ErrProgramTooLarge = errors.New("program too large")

	// ErrNestingTooDeep indicates group nesting beyond the compiler's
	// recursion limit.
	ErrNestingTooDeep = errors.New("group nesting too deep")
)

// CompileError wraps a structural pattern error with the offending pattern
// and the byte position at which compilation gave up.
type CompileError struct {
	Pattern string
	Pos     int
	Err     error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Pattern != "" {
		return fmt.Sprintf("pattern compilation failed for %q at offset %d: %v", e.Pattern, e.Pos, e.Err)
	}
	return fmt.Sprintf("pattern compilation failed: %v", e.Err)
}

// Unwrap returns the underlying structural error.
func (e *CompileError) Unwrap() error {
	return e.Err
}
