// Package conv provides safe integer conversion helpers for the pattern
// engine.
//
// These functions perform bounds checking before narrowing integer
// conversions to prevent silent overflow. They panic on overflow since this
// indicates a programming error (e.g. a compiled program exceeding internal
// limits that the compiler is required to enforce first).
package conv

import "math"

// IntToInt32 safely converts an int to int32.
// Panics if n is outside the int32 range.
func IntToInt32(n int) int32 {
	if n < math.MinInt32 || n > math.MaxInt32 {
		panic("integer overflow: int value out of int32 range")
	}
	return int32(n)
}
