// Package realmath provides floating-point comparison and interpolation
// helpers: ULP-distance equality, ULP stepping, denormal handling and the
// usual lerp family. All functions operate on float64.
package realmath

import (
	"math"
	"math/bits"
)

// Epsilon is the absolute slop used by IsZero and IsOne.
const Epsilon = 2e-14

// ulpOrder maps a float's bit pattern onto a scale where consecutive
// representable values differ by one, with negative values below zero.
func ulpOrder(v float64) int64 {
	i := int64(math.Float64bits(v))
	if i < 0 {
		return math.MinInt64 - i
	}
	return i
}

// Eq reports whether a and b are at most ulps representable values apart.
// The distance is measured across the zero boundary, so -0 and +0 compare
// equal at any tolerance.
func Eq(a, b float64, ulps int64) bool {
	diff := ulpOrder(a) - ulpOrder(b)
	return diff <= ulps && diff >= -ulps
}

// EqNoSign is Eq on raw bit patterns, without the sign fixup. It is
// slightly cheaper but meaningless for values of opposite sign.
func EqNoSign(a, b float64, ulps int64) bool {
	diff := int64(math.Float64bits(a)) - int64(math.Float64bits(b))
	return diff <= ulps && diff >= -ulps
}

// Inc returns the value units representable steps away from val, toward
// the infinity of val's sign.
func Inc(val float64, units int64) float64 {
	i := int64(math.Float64bits(val))
	if i < 0 {
		i -= units
	} else {
		i += units
	}
	return math.Float64frombits(uint64(i))
}

// Dec returns the value units representable steps away from val, toward
// zero and beyond.
func Dec(val float64, units int64) float64 {
	return Inc(val, -units)
}

// IsZero reports whether val is within Epsilon of zero.
func IsZero(val float64) bool {
	return math.Abs(val) < Epsilon
}

// IsOne reports whether val is within Epsilon of one.
func IsOne(val float64) bool {
	return math.Abs(val-1) < Epsilon
}

// IsNaN reports whether val is a NaN.
func IsNaN(val float64) bool {
	return math.IsNaN(val)
}

// IsInf reports whether val is an infinity of either sign.
func IsInf(val float64) bool {
	return math.IsInf(val, 0)
}

// IsFinite reports whether val is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// IsDenormalized reports whether val is a nonzero subnormal.
func IsDenormalized(val float64) bool {
	const expMask = 0x7FF0000000000000
	b := math.Float64bits(val)
	return b&expMask == 0 && b<<1 != 0
}

// Undenormalize flushes subnormals to zero and returns every other value
// unchanged.
func Undenormalize(val float64) float64 {
	if IsDenormalized(val) {
		return 0
	}
	return val
}

// Lerp interpolates between x and y; t=0 gives x, t=1 gives y. t is not
// clamped.
func Lerp(t, x, y float64) float64 {
	return x + t*(y-x)
}

// Unlerp inverts Lerp, returning where v falls between x and y.
func Unlerp(v, x, y float64) float64 {
	return (v - x) / (y - x)
}

// LinearRemap maps x from the range [xmin,xmax] onto [ymin,ymax].
func LinearRemap(x, xmin, xmax, ymin, ymax float64) float64 {
	return Lerp(Unlerp(x, xmin, xmax), ymin, ymax)
}

// Smoothstep evaluates the cubic 3t^2-2t^3 for t in [0,1].
func Smoothstep(t float64) float64 {
	return (3 - 2*t) * t * t
}

// Smootherstep evaluates the quintic 6t^5-15t^4+10t^3 for t in [0,1].
func Smootherstep(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

// AlignPowerOfTwo rounds x up to the next power of two. x must be greater
// than one.
func AlignPowerOfTwo(x uint32) uint32 {
	return 1 << bits.Len32(x-1)
}

// IsPowerOfTwo reports whether x has at most one bit set.
func IsPowerOfTwo(x uint32) bool {
	return x&(x-1) == 0
}

// AlignUp rounds x up to a multiple of alignment.
func AlignUp(x, alignment uint32) uint32 {
	if rem := x % alignment; rem != 0 {
		return x + alignment - rem
	}
	return x
}

type integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint
}

// IncWrap increments val within [min,max], wrapping from max to min.
func IncWrap[T integer](val, min, max T) T {
	if val == max {
		return min
	}
	return val + 1
}

// DecWrap decrements val within [min,max], wrapping from min to max.
func DecWrap[T integer](val, min, max T) T {
	if val == min {
		return max
	}
	return val - 1
}
