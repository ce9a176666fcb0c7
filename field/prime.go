package field

import (
	"errors"
	"math/bits"
	"strconv"

	"github.com/tuneinsight/lattigo/v6/ring"
	"lukechampine.com/uint128"
)

// PrimeField is Z_p for an arbitrary prime p < 2^63, elements kept canonical.
type PrimeField struct {
	prime      uint64
	generator  uint64
	twoAdicity int
}

var (
	errPrimeTooLarge = errors.New("supporting up to 63-bit prime")
	errNotPrime      = errors.New("this package only support prime fields. please use a prime order")
)

const maxBitUsage = 63

// NewPrimeField returns the field of integers modulo prime.
func NewPrimeField(prime uint64) (*PrimeField, error) {
	if prime > (1 << maxBitUsage) {
		return nil, errPrimeTooLarge
	}

	if prime < 3 || !ring.IsPrime(prime) {
		return nil, errNotPrime
	}

	g, _, err := ring.PrimitiveRoot(prime, nil)
	if err != nil {
		return nil, err
	}

	return &PrimeField{
		prime:      prime,
		generator:  g,
		twoAdicity: bits.TrailingZeros64(prime - 1),
	}, nil
}

func (f *PrimeField) Name() string {
	return "prime-" + strconv.FormatUint(f.prime, 10)
}

func (f *PrimeField) Modulus() uint64 {
	return f.prime
}

func (f *PrimeField) Generator() uint64 {
	return f.generator
}

func (f *PrimeField) Zero() uint64 { return 0 }
func (f *PrimeField) One() uint64  { return 1 }
func (f *PrimeField) Width() int   { return 8 }

func (f *PrimeField) TwoAdicity() int {
	return f.twoAdicity
}

// GetRootOfUnity returns a primitive n-th root of unity for a power of two n.
func (f *PrimeField) GetRootOfUnity(n uint64) (uint64, error) {
	if !IsPowerOfTwo(n) {
		return 0, errNotPowerOfTwo
	}

	if (f.prime-1)%n != 0 {
		return 0, errNotDivisible
	}

	// g has order p-1, so g^((p-1)/n) has order exactly n.
	return ring.ModExp(f.generator, (f.prime-1)/n, f.prime), nil
}

func (f *PrimeField) RootOfUnity(lg int) uint64 {
	if lg > f.twoAdicity {
		panic(errLgTooLarge)
	}

	w, err := f.GetRootOfUnity(1 << lg)
	if err != nil {
		panic(err)
	}

	return w
}

func (f *PrimeField) CosetGenerator() uint64 {
	return f.generator
}

func (f *PrimeField) FromUint64(val uint64) uint64 {
	return val % f.prime
}

func (f *PrimeField) Add(a, b uint64) uint64 {
	tmp := a + b // can't overflow since adding two integers smaller than 2^63.
	if tmp >= f.prime {
		tmp -= f.prime
	}

	return tmp
}

// Mul returns a * b (mod field prime).
func (f *PrimeField) Mul(a, b uint64) uint64 {
	if a == 0 || b == 0 {
		return 0
	}

	return uint128.From64(a).Mul64(b).Mod64(f.prime)
}

func (f *PrimeField) Inverse(e uint64) uint64 {
	// Fermat's little theorem: a^(p-2) is the inverse of a.
	if e == 0 {
		panic("zero has no inverse")
	}

	return ring.ModExp(e, f.prime-2, f.prime)
}

func (f *PrimeField) Neg(e uint64) uint64 {
	if e == 0 {
		return 0
	}

	return f.prime - e
}

func (f *PrimeField) Sub(a, b uint64) uint64 {
	if a < b {
		return f.prime - (b - a)
	}

	return a - b
}

func (f *PrimeField) Equal(a, b uint64) bool {
	return a == b
}
