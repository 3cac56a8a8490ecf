package photodna

import (
	"math"
	"math/bits"
)

// MinDimension is the smallest width or height the native library will hash.
const MinDimension = 50

// Region is a rectangle inside an image, in pixels.
type Region struct {
	X, Y, W, H int
}

// FullRegion covers an entire width x height image.
func FullRegion(width, height int) Region {
	return Region{W: width, H: height}
}

// Empty reports whether the region has no area.
func (r Region) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// ExpectedStride returns stride when non-zero, otherwise the tightly packed row size.
// A row size that does not fit in an int is reported as math.MaxInt.
func ExpectedStride(width, stride int, format PixelFormat) int {
	if stride != 0 {
		return stride
	}
	return mulSat(width, format.BytesPerPixel())
}

// ExpectedBufferSize returns the minimum image buffer length for the given geometry.
// Sizes that do not fit in an int are reported as math.MaxInt, which no buffer satisfies.
func ExpectedBufferSize(width, height, stride int, format PixelFormat) int {
	return mulSat(ExpectedStride(width, stride, format), height)
}

// mulSat returns a*b for non-negative operands, saturating at math.MaxInt. It returns 0
// when either operand is not positive.
func mulSat(a, b int) int {
	if a <= 0 || b <= 0 {
		return 0
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt {
		return math.MaxInt
	}
	return int(lo)
}

// ValidateBuffer checks dimensions and buffer length before a native call.
func ValidateBuffer(image []byte, width, height, stride int, format PixelFormat) error {
	if width <= 0 || height <= 0 {
		return &Error{Kind: KindInvalidDimensions, Width: width, Height: height}
	}
	if stride < 0 {
		return &Error{Kind: KindInvalidStride}
	}
	expected := ExpectedBufferSize(width, height, stride, format)
	if expected == math.MaxInt || len(image) < expected {
		return &Error{Kind: KindBufferTooSmall, Expected: expected, Actual: len(image)}
	}
	return nil
}

// ValidateRegion checks that r has positive area and lies inside a width x height image.
// The bounds are compared by subtraction so huge coordinates cannot wrap past the check.
func ValidateRegion(r Region, width, height int) error {
	if r.X < 0 || r.Y < 0 || r.W <= 0 || r.H <= 0 {
		return &Error{Kind: KindInvalidSubImage}
	}
	if r.X > width || r.Y > height || r.W > width-r.X || r.H > height-r.Y {
		return &Error{Kind: KindInvalidSubImage}
	}
	return nil
}
