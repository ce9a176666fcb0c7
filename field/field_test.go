package field

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/assert"
	"github.com/tuneinsight/lattigo/v6/utils/sampling"
)

func TestRootsOfUnity(t *testing.T) {
	a := assert.New(t)

	f, err := NewPrimeField(65537)
	a.NoError(err)

	root, err := f.GetRootOfUnity(4)
	a.NoError(err)
	a.Equal(uint64(65281), root)

	root, err = f.GetRootOfUnity(8)
	a.NoError(err)
	a.Equal(uint64(4096), root)
	a.Equal(root, f.RootOfUnity(3))

	f, err = NewPrimeField(157)
	a.NoError(err)

	root, err = f.GetRootOfUnity(4)
	a.NoError(err)
	a.Equal(uint64(129), root)
	a.Equal(2, f.TwoAdicity())

	_, err = f.GetRootOfUnity(8)
	a.ErrorIs(err, errNotDivisible)

	_, err = f.GetRootOfUnity(6)
	a.ErrorIs(err, errNotPowerOfTwo)
}

func TestNewPrimeFieldRejects(t *testing.T) {
	a := assert.New(t)

	_, err := NewPrimeField(65536)
	a.ErrorIs(err, errNotPrime)

	_, err = NewPrimeField(1<<63 + 1)
	a.ErrorIs(err, errPrimeTooLarge)
}

// checkField exercises the contract every field must satisfy.
func checkField[E any](t *testing.T, f Field[E]) {
	t.Helper()
	a := assert.New(t)

	prng, err := sampling.NewKeyedPRNG([]byte(f.Name()))
	a.NoError(err)

	xs, err := RandomVector(f, prng, 64)
	a.NoError(err)

	zero, one := f.Zero(), f.One()
	for i := 0; i+1 < len(xs); i++ {
		x, y := xs[i], xs[i+1]

		a.True(f.Equal(f.Add(x, y), f.Add(y, x)))
		a.True(f.Equal(f.Sub(f.Add(x, y), y), x))
		a.True(f.Equal(f.Add(x, f.Neg(x)), zero))
		a.True(f.Equal(f.Mul(x, one), x))
		a.True(f.Equal(f.Mul(x, y), f.Mul(y, x)))
		a.True(f.Equal(f.Sub(zero, x), f.Neg(x)))

		if !f.Equal(x, zero) {
			a.True(f.Equal(f.Mul(x, f.Inverse(x)), one))
		}
	}

	a.True(f.Equal(f.FromUint64(2), f.Add(one, one)))

	// w_lg is primitive: w^(2^(lg-1)) == -1 and squaring walks down the chain.
	minusOne := f.Neg(one)
	for _, lg := range []int{1, 2, 5, f.TwoAdicity()} {
		w := f.RootOfUnity(lg)
		a.True(f.Equal(Exp(f, w, 1<<(lg-1)), minusOne), "lg=%d", lg)
		a.True(f.Equal(f.Mul(w, w), f.RootOfUnity(lg-1)), "lg=%d", lg)
	}

	// the coset generator is outside every power-of-two subgroup.
	g := f.CosetGenerator()
	a.False(f.Equal(Exp(f, g, 1<<f.TwoAdicity()), one))
}

func TestFieldContract(t *testing.T) {
	prime, err := NewPrimeField(7340033)
	assert.NoError(t, err)

	t.Run("prime", func(t *testing.T) { checkField[uint64](t, prime) })
	t.Run("babybear", func(t *testing.T) { checkField[uint32](t, NewBabyBear()) })
	t.Run("goldilocks", func(t *testing.T) { checkField[uint64](t, NewGoldilocks()) })
	t.Run("bls12-381", func(t *testing.T) { checkField[fr.Element](t, NewBLS12381()) })
}

func TestBabyBearMontgomery(t *testing.T) {
	a := assert.New(t)
	f := NewBabyBear()

	a.Equal(uint32(0x0ffffffe), f.One())
	a.Equal(uint32(0x2ffffffa), f.FromUint64(3))
	a.Equal(f.CosetGenerator(), f.FromUint64(3))
	a.Equal(uint32(babyBearModulus-1), f.Canonical(f.RootOfUnity(1)))
	a.Equal(uint32(12345), f.Canonical(f.FromUint64(12345)))
	a.Equal(f.FromUint64(7), f.FromMontgomery(0x6ffffff2))

	// 2^-1 in Montgomery form, from the original domain_size_inverse table.
	a.Equal(uint32(0x07ffffff), f.Inverse(f.FromUint64(2)))
	a.Equal(uint32(0x00000020), f.Inverse(f.FromUint64(1<<27)))
}

func TestGoldilocksMul(t *testing.T) {
	a := assert.New(t)
	f := NewGoldilocks()
	p := new(big.Int).SetUint64(goldilocksModulus)

	cases := [][2]uint64{
		{goldilocksModulus - 1, goldilocksModulus - 1},
		{1 << 63, 1 << 63},
		{0xffffffff, 0xffffffff},
		{0x123456789abcdef, 0xfedcba987654321},
		{goldilocksModulus - 2, 2},
	}

	for _, c := range cases {
		want := new(big.Int).SetUint64(c[0])
		want.Mul(want, new(big.Int).SetUint64(c[1]))
		want.Mod(want, p)

		a.Equal(want.Uint64(), f.Mul(c[0], c[1]), "%x * %x", c[0], c[1])
	}

	a.Equal(uint64(0), f.Add(goldilocksModulus-1, 1))
	a.Equal(goldilocksModulus-1, f.Sub(0, 1))
	a.Equal(uint64(5), f.FromUint64(goldilocksModulus+5))
}

func FuzzGoldilocksInverse(f *testing.F) {
	testcases := []uint64{1, 54347, 4534523, 021310, 1<<63 - 1, goldilocksModulus - 1}
	for _, tc := range testcases {
		f.Add(tc) // Use f.Add to provide a seed corpus
	}

	fld := NewGoldilocks()

	f.Fuzz(func(t *testing.T, num uint64) {
		e1 := fld.FromUint64(num)
		if e1 == 0 {
			return
		}

		if res := fld.Mul(e1, fld.Inverse(e1)); res != 1 {
			t.Fatalf("expected 1, got %d", res)
		}

		if res := fld.Add(fld.Neg(e1), e1); res != 0 {
			t.Fatalf("expected 0, got %d", res)
		}
	})
}

func FuzzBabyBearMul(f *testing.F) {
	testcases := [][2]uint64{{1, 2}, {babyBearModulus - 1, babyBearModulus - 1}, {1 << 40, 3}}
	for _, tc := range testcases {
		f.Add(tc[0], tc[1])
	}

	fld := NewBabyBear()
	p := new(big.Int).SetUint64(babyBearModulus)

	f.Fuzz(func(t *testing.T, x, y uint64) {
		want := new(big.Int).SetUint64(x % babyBearModulus)
		want.Mul(want, new(big.Int).SetUint64(y%babyBearModulus))
		want.Mod(want, p)

		got := fld.Canonical(fld.Mul(fld.FromUint64(x), fld.FromUint64(y)))
		if uint64(got) != want.Uint64() {
			t.Fatalf("expected %d, got %d", want.Uint64(), got)
		}
	})
}
