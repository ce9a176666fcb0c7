package field

// BabyBear is the field modulo p = 15*2^27 + 1 = 0x78000001.
//
// Elements are uint32 values in Montgomery form a*2^32 mod p.
type BabyBear struct{}

const (
	babyBearModulus    = 0x78000001
	babyBearTwoAdicity = 27

	// -p^-1 mod 2^32
	babyBearPInvNeg uint32 = 0x77ffffff
	// 2^64 mod p
	babyBearR2 uint64 = 0x45dddde3
)

// Primitive 2^i-th roots of unity in Montgomery form, chosen to match Plonky3.
var babyBearRoots = [babyBearTwoAdicity + 1]uint32{
	0x0ffffffe, 0x68000003, 0x1c38d511, 0x3d85298f,
	0x5f06e481, 0x3f5c39ec, 0x5516a97a, 0x3d6be592,
	0x5bb04149, 0x4907f9ab, 0x548b8e90, 0x1d8ca617,
	0x2ce7f0e6, 0x621b371f, 0x6d4d2d78, 0x18716fcd,
	0x3b30a682, 0x1c6f4728, 0x59b01f7c, 0x1a7f97ac,
	0x0732561c, 0x2b5a1cd4, 0x6f7d26f9, 0x16e2f919,
	0x285ab85b, 0x0dd5a9ec, 0x43f13568, 0x57fab6ee,
}

// Montgomery form of the group generator 3.
const babyBearGroupGen uint32 = 0x2ffffffa

func NewBabyBear() *BabyBear { return &BabyBear{} }

func (BabyBear) Name() string    { return "babybear" }
func (BabyBear) Modulus() uint64 { return babyBearModulus }
func (BabyBear) Width() int      { return 4 }
func (BabyBear) TwoAdicity() int { return babyBearTwoAdicity }

func (BabyBear) Zero() uint32 { return 0 }
func (BabyBear) One() uint32  { return babyBearRoots[0] }

func (BabyBear) RootOfUnity(lg int) uint32 {
	if lg < 0 || lg > babyBearTwoAdicity {
		panic(errLgTooLarge)
	}

	return babyBearRoots[lg]
}

func (BabyBear) CosetGenerator() uint32 { return babyBearGroupGen }

// FromMontgomery accepts a raw Montgomery literal, as found in parameter tables.
func (BabyBear) FromMontgomery(raw uint32) uint32 {
	return raw % babyBearModulus
}

func (BabyBear) FromUint64(v uint64) uint32 {
	return babyBearRedc((v % babyBearModulus) * babyBearR2)
}

// Canonical returns the integer in [0, p) represented by a.
func (BabyBear) Canonical(a uint32) uint32 {
	return babyBearRedc(uint64(a))
}

func (BabyBear) Add(a, b uint32) uint32 {
	s := a + b // both < 2^31, no overflow
	if s >= babyBearModulus {
		s -= babyBearModulus
	}

	return s
}

func (BabyBear) Sub(a, b uint32) uint32 {
	if a >= b {
		return a - b
	}

	return babyBearModulus - b + a
}

func (BabyBear) Neg(a uint32) uint32 {
	if a == 0 {
		return 0
	}

	return babyBearModulus - a
}

func (BabyBear) Mul(a, b uint32) uint32 {
	return babyBearRedc(uint64(a) * uint64(b))
}

func (f BabyBear) Inverse(a uint32) uint32 {
	if a == 0 {
		panic("zero has no inverse")
	}

	return Exp[uint32](f, a, babyBearModulus-2)
}

func (BabyBear) Equal(a, b uint32) bool { return a == b }

// babyBearRedc returns t*2^-32 mod p for t < p*2^32.
func babyBearRedc(t uint64) uint32 {
	m := uint32(t) * babyBearPInvNeg
	u := (t + uint64(m)*babyBearModulus) >> 32

	if u >= babyBearModulus {
		u -= babyBearModulus
	}

	return uint32(u)
}
