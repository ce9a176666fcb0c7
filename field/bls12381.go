package field

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// BLS12381 is the scalar field of BLS12-381, a "wide" 256-bit field.
type BLS12381 struct {
	root32 fr.Element
	gen    fr.Element
}

const bls12381TwoAdicity = 32

// Generator of the 2^32 subgroup, as used by the Ethereum KZG settings.
const bls12381Root32 = "10238227357739495823651030575849232062558860180284477541189508159991286009131"

func NewBLS12381() *BLS12381 {
	f := &BLS12381{}
	if _, err := f.root32.SetString(bls12381Root32); err != nil {
		panic("failed to initialize root of unity")
	}

	f.gen.SetUint64(7)

	return f
}

func (f *BLS12381) Name() string    { return "bls12-381" }
func (f *BLS12381) Width() int      { return fr.Bytes }
func (f *BLS12381) TwoAdicity() int { return bls12381TwoAdicity }

func (f *BLS12381) Zero() fr.Element { return fr.Element{} }
func (f *BLS12381) One() fr.Element  { return fr.One() }

func (f *BLS12381) RootOfUnity(lg int) fr.Element {
	if lg < 0 || lg > bls12381TwoAdicity {
		panic(errLgTooLarge)
	}

	var z fr.Element
	z.Exp(f.root32, big.NewInt(1<<(bls12381TwoAdicity-lg)))

	return z
}

func (f *BLS12381) CosetGenerator() fr.Element { return f.gen }

func (f *BLS12381) FromUint64(v uint64) fr.Element {
	var z fr.Element
	z.SetUint64(v)

	return z
}

func (f *BLS12381) Add(a, b fr.Element) fr.Element {
	var z fr.Element
	z.Add(&a, &b)

	return z
}

func (f *BLS12381) Sub(a, b fr.Element) fr.Element {
	var z fr.Element
	z.Sub(&a, &b)

	return z
}

func (f *BLS12381) Mul(a, b fr.Element) fr.Element {
	var z fr.Element
	z.Mul(&a, &b)

	return z
}

func (f *BLS12381) Neg(a fr.Element) fr.Element {
	var z fr.Element
	z.Neg(&a)

	return z
}

func (f *BLS12381) Inverse(a fr.Element) fr.Element {
	if a.IsZero() {
		panic("zero has no inverse")
	}

	var z fr.Element
	z.Inverse(&a)

	return z
}

func (f *BLS12381) Equal(a, b fr.Element) bool {
	return a.Equal(&b)
}
