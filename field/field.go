// Package field holds the arithmetic contract consumed by the transform engine
// and the prime fields shipped with it.
package field

import (
	"encoding/binary"
	"errors"
	"io"
)

// Field is the arithmetic a transform needs from a prime field.
//
// E is an opaque value type. Implementations may keep it in any internal
// representation (for instance Montgomery form) as long as every method
// agrees on it.
type Field[E any] interface {
	Name() string

	Zero() E
	One() E
	Add(a, b E) E
	Sub(a, b E) E
	Mul(a, b E) E
	Neg(a E) E
	Inverse(a E) E
	Equal(a, b E) bool

	// FromUint64 maps v (reduced modulo the field prime) into the field.
	FromUint64(v uint64) E

	// Width is the serialized size of an element in bytes.
	Width() int

	// TwoAdicity is the largest S such that 2^S divides p-1.
	TwoAdicity() int
	// RootOfUnity returns a primitive 2^lg-th root of unity, lg <= TwoAdicity().
	RootOfUnity(lg int) E
	// CosetGenerator is the multiplicative offset used by coset transforms.
	CosetGenerator() E
}

// NarrowWidth is the largest element width, in bytes, of a "narrow" field.
const NarrowWidth = 8

var (
	errNotPowerOfTwo = errors.New("n must be a power of 2")
	errNotDivisible  = errors.New("n must divide p-1")
	errLgTooLarge    = errors.New("requested root order exceeds the two-adicity of the field")
)

func IsPowerOfTwo(n uint64) bool {
	// https://graphics.stanford.edu/~seander/bithacks.html#DetermineIfPowerOf2
	return n != 0 && (n&(n-1)) == 0
}

// Exp returns base^exp by square and multiply.
func Exp[E any](f Field[E], base E, exp uint64) E {
	x := f.One()
	for exp > 0 {
		if exp&1 == 1 {
			x = f.Mul(x, base)
		}

		base = f.Mul(base, base)
		exp >>= 1
	}

	return x
}

// Equal reports whether a and b hold the same elements.
func Equal[E any](f Field[E], a, b []E) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !f.Equal(a[i], b[i]) {
			return false
		}
	}

	return true
}

// RandomVector draws n elements from r, eight little-endian bytes per element.
func RandomVector[E any](f Field[E], r io.Reader, n int) ([]E, error) {
	buf := make([]byte, 8*n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}

	out := make([]E, n)
	for i := range out {
		out[i] = f.FromUint64(binary.LittleEndian.Uint64(buf[8*i:]))
	}

	return out, nil
}
