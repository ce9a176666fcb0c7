package field

import (
	"math/bits"

	"lukechampine.com/uint128"
)

// Goldilocks is the field modulo p = 2^64 - 2^32 + 1, elements kept canonical.
type Goldilocks struct{}

const (
	goldilocksModulus    uint64 = 0xffffffff00000001
	goldilocksTwoAdicity        = 32
	// 2^64 mod p
	goldilocksEpsilon uint64 = 0xffffffff

	// 7^((p-1)/2^32), a primitive 2^32-th root of unity.
	goldilocksRoot32 uint64 = 0x185629dcda58878c
	goldilocksGen    uint64 = 7
)

func NewGoldilocks() *Goldilocks { return &Goldilocks{} }

func (Goldilocks) Name() string    { return "goldilocks" }
func (Goldilocks) Modulus() uint64 { return goldilocksModulus }
func (Goldilocks) Width() int      { return 8 }
func (Goldilocks) TwoAdicity() int { return goldilocksTwoAdicity }

func (Goldilocks) Zero() uint64 { return 0 }
func (Goldilocks) One() uint64  { return 1 }

func (f Goldilocks) RootOfUnity(lg int) uint64 {
	if lg < 0 || lg > goldilocksTwoAdicity {
		panic(errLgTooLarge)
	}

	return Exp[uint64](f, goldilocksRoot32, 1<<(goldilocksTwoAdicity-lg))
}

func (Goldilocks) CosetGenerator() uint64 { return goldilocksGen }

func (Goldilocks) FromUint64(v uint64) uint64 {
	if v >= goldilocksModulus {
		v -= goldilocksModulus
	}

	return v
}

func (Goldilocks) Add(a, b uint64) uint64 {
	s, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		// s + 2^64 - p
		return s + goldilocksEpsilon
	}

	if s >= goldilocksModulus {
		s -= goldilocksModulus
	}

	return s
}

func (Goldilocks) Sub(a, b uint64) uint64 {
	d, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		d += goldilocksModulus
	}

	return d
}

func (Goldilocks) Neg(a uint64) uint64 {
	if a == 0 {
		return 0
	}

	return goldilocksModulus - a
}

func (Goldilocks) Mul(a, b uint64) uint64 {
	prod := uint128.From64(a).Mul64(b)

	return goldilocksReduce(prod)
}

func (f Goldilocks) Inverse(a uint64) uint64 {
	if a == 0 {
		panic("zero has no inverse")
	}

	return Exp[uint64](f, a, goldilocksModulus-2)
}

func (Goldilocks) Equal(a, b uint64) bool { return a == b }

// goldilocksReduce folds a 128-bit value using 2^64 = 2^32-1 and 2^96 = -1 (mod p).
func goldilocksReduce(x uint128.Uint128) uint64 {
	hiHi := x.Hi >> 32
	hiLo := x.Hi & goldilocksEpsilon

	t0, borrow := bits.Sub64(x.Lo, hiHi, 0)
	if borrow != 0 {
		t0 -= goldilocksEpsilon
	}

	t1 := hiLo * goldilocksEpsilon

	res, carry := bits.Add64(t0, t1, 0)
	if carry != 0 {
		res += goldilocksEpsilon
	}

	if res >= goldilocksModulus {
		res -= goldilocksModulus
	}

	return res
}
