package kernel

import (
	"fmt"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuneinsight/lattigo/v6/utils"
	"github.com/tuneinsight/lattigo/v6/utils/sampling"

	"github.com/jonathanmweiss/go-ntt/device"
	"github.com/jonathanmweiss/go-ntt/field"
	"github.com/jonathanmweiss/go-ntt/roots"
)

const testLgMax = 20

var testTunings = []Tuning{
	{LgPass: 1, LgTile: 1},
	{LgPass: 3, LgTile: 2},
	{LgPass: 4, LgTile: 3},
	narrowTuning,
}

type harness struct {
	t *testing.T
	f *field.PrimeField
	d *device.Device
	s *device.Stream

	fwd, inv *roots.Parameters[uint64]
}

func newHarness(t *testing.T) *harness {
	f, err := field.NewPrimeField(7340033) // 7 * 2^20 + 1
	require.NoError(t, err)

	d, err := device.New(device.Config{Units: 4})
	require.NoError(t, err)

	s := d.NewStream()
	t.Cleanup(func() { s.Close() })

	reg := roots.NewRegistry[uint64](f, testLgMax, 0)

	return &harness{t: t, f: f, d: d, s: s, fwd: reg.Get(false, 0), inv: reg.Get(true, 0)}
}

func (h *harness) random(n int, key string) []uint64 {
	prng, err := sampling.NewKeyedPRNG([]byte(key))
	require.NoError(h.t, err)

	v, err := field.RandomVector[uint64](h.f, prng, n)
	require.NoError(h.t, err)

	return v
}

func (h *harness) upload(v []uint64) *device.Buffer[uint64] {
	buf, err := device.Alloc[uint64](h.d, len(v))
	require.NoError(h.t, err)
	require.NoError(h.t, device.CopyIn(h.s, buf, v))

	return buf
}

func (h *harness) download(buf *device.Buffer[uint64]) []uint64 {
	out := make([]uint64, buf.Len())
	require.NoError(h.t, device.CopyOut(h.s, out, buf))
	require.NoError(h.t, h.s.Synchronize())

	return out
}

func naiveBitReverse(v []uint64, lg int) []uint64 {
	checkLen("reference vector", len(v), lg)

	out := append([]uint64(nil), v...)
	utils.BitReverseInPlaceSlice(out, len(out))

	return out
}

// naiveDFT returns y[k] = scale * sum_i x[i] * w^(ik).
func naiveDFT(f field.Field[uint64], x []uint64, w, scale uint64) []uint64 {
	y := make([]uint64, len(x))
	for k := range y {
		wk := field.Exp(f, w, uint64(k))
		acc, pw := f.Zero(), f.One()
		for i := range x {
			acc = f.Add(acc, f.Mul(x[i], pw))
			pw = f.Mul(pw, wk)
		}

		y[k] = f.Mul(acc, scale)
	}

	return y
}

func primitiveRoot(p *roots.Parameters[uint64], lg int) uint64 {
	if lg == 0 {
		return 1
	}

	return p.Root(1, lg)
}

func TestRev(t *testing.T) {
	a := assert.New(t)

	a.Equal(uint64(0), rev(0, 0))
	a.Equal(uint64(1), rev(1, 1))
	a.Equal(uint64(4), rev(1, 3))
	a.Equal(uint64(3), rev(6, 3))
	a.Equal(uint64(1)<<19, rev(1, 20))
}

func TestBitReverse(t *testing.T) {
	h := newHarness(t)

	for _, tun := range testTunings {
		for lg := 0; lg <= testLgMax; lg++ {
			if lg > 12 && tun.LgTile < 3 {
				continue
			}

			t.Run(fmt.Sprintf("lg=%d/tile=%d", lg, tun.LgTile), func(t *testing.T) {
				a := assert.New(t)
				v := h.random(1<<lg, "bitrev")
				want := naiveBitReverse(v, lg)

				src := h.upload(v)
				defer src.Free()
				dst, err := device.Alloc[uint64](h.d, len(v))
				require.NoError(t, err)
				defer dst.Free()

				a.NoError(BitReverse(h.s, dst, src, lg, tun))
				a.NoError(BitReverse(h.s, src, src, lg, tun))

				outOfPlace, inPlace := h.download(dst), h.download(src)
				a.Empty(cmp.Diff(want, outOfPlace))
				a.Empty(cmp.Diff(want, inPlace))

				// involution
				a.NoError(BitReverse(h.s, src, src, lg, tun))
				a.Empty(cmp.Diff(v, h.download(src)))
			})
		}
	}
}

func TestBitReversePanics(t *testing.T) {
	a := assert.New(t)
	h := newHarness(t)

	buf := h.upload(make([]uint64, 16))
	a.Panics(func() { BitReverse(h.s, buf, buf, 3, narrowTuning) })
	a.Panics(func() { BitReverse(h.s, buf.View(0, 8), buf.View(4, 8), 3, narrowTuning) })
	a.Panics(func() { BitReverse(h.s, buf, buf, 4, Tuning{}) })
}

func TestButterfliesAgainstDFT(t *testing.T) {
	h := newHarness(t)
	f := h.f

	for _, tun := range testTunings {
		for lg := 0; lg <= 9; lg++ {
			t.Run(fmt.Sprintf("lg=%d/pass=%d", lg, tun.LgPass), func(t *testing.T) {
				a := assert.New(t)
				n := 1 << lg
				x := h.random(n, fmt.Sprintf("dft-%d", lg))

				fwant := naiveDFT(f, x, primitiveRoot(h.fwd, lg), f.One())
				iwant := naiveDFT(f, x, primitiveRoot(h.inv, lg), h.inv.DomainSizeInverse[lg])

				buf := h.upload(naiveBitReverse(x, lg))
				a.NoError(CT[uint64](h.s, f, buf, lg, h.fwd, tun))
				a.Empty(cmp.Diff(fwant, h.download(buf)), "forward CT")

				buf = h.upload(naiveBitReverse(x, lg))
				a.NoError(CT[uint64](h.s, f, buf, lg, h.inv, tun))
				a.Empty(cmp.Diff(iwant, h.download(buf)), "inverse CT")

				buf = h.upload(x)
				a.NoError(GS[uint64](h.s, f, buf, lg, h.fwd, tun))
				a.Empty(cmp.Diff(naiveBitReverse(fwant, lg), h.download(buf)), "forward GS")

				buf = h.upload(x)
				a.NoError(GS[uint64](h.s, f, buf, lg, h.inv, tun))
				a.Empty(cmp.Diff(naiveBitReverse(iwant, lg), h.download(buf)), "inverse GS")
			})
		}
	}
}

func TestButterfliesRoundTripLarge(t *testing.T) {
	a := assert.New(t)
	h := newHarness(t)

	lg := 16
	x := h.random(1<<lg, "large")

	// GS leaves its output bit-reversed, which is what CT consumes.
	buf := h.upload(x)
	a.NoError(GS[uint64](h.s, h.f, buf, lg, h.fwd, narrowTuning))
	a.NoError(CT[uint64](h.s, h.f, buf, lg, h.inv, Tuning{LgPass: 7, LgTile: 5}))
	a.Empty(cmp.Diff(x, h.download(buf)))
}

func TestDistributePowers(t *testing.T) {
	h := newHarness(t)
	f := h.f
	g := f.CosetGenerator()

	for _, c := range []struct {
		lg, extPow int
		bitrev     bool
	}{{0, 0, false}, {1, 0, true}, {5, 0, false}, {5, 3, true}, {11, 2, false}, {11, 0, true}} {
		t.Run(fmt.Sprintf("lg=%d/ext=%d/bitrev=%v", c.lg, c.extPow, c.bitrev), func(t *testing.T) {
			a := assert.New(t)
			x := h.random(1<<c.lg, "powers")

			want := make([]uint64, len(x))
			for i := range x {
				pow := uint64(i)
				if c.bitrev {
					pow = rev(pow, c.lg)
				}

				want[i] = f.Mul(x[i], field.Exp[uint64](f, g, pow<<uint(c.extPow)))
			}

			buf := h.upload(x)
			a.NoError(DistributePowers[uint64](h.s, f, buf, c.lg, c.extPow, c.bitrev, h.fwd.GenPowers))
			a.Empty(cmp.Diff(want, h.download(buf)))
		})
	}

	buf := h.upload(make([]uint64, 8))
	assert.Panics(t, func() {
		DistributePowers[uint64](h.s, f, buf, 3, testLgMax, false, h.fwd.GenPowers)
	})
}

func TestSpreadDistributePowers(t *testing.T) {
	h := newHarness(t)
	f := h.f
	g := f.CosetGenerator()

	for _, c := range []struct {
		lg, lgBlowup int
		shift        bool
		extended     bool
	}{{0, 1, true, false}, {3, 1, true, false}, {3, 2, true, true}, {6, 3, false, false}, {12, 1, true, true}} {
		t.Run(fmt.Sprintf("lg=%d/blowup=%d/shift=%v/ext=%v", c.lg, c.lgBlowup, c.shift, c.extended), func(t *testing.T) {
			a := assert.New(t)
			n := 1 << c.lg
			x := h.random(n, "spread")

			want := make([]uint64, n<<c.lgBlowup)
			for i := range x {
				v := x[i]
				if c.shift {
					pow := rev(uint64(i), c.lg)
					if c.extended {
						pow <<= uint(c.lgBlowup)
					}

					v = f.Mul(v, field.Exp[uint64](f, g, pow))
				}

				want[i<<c.lgBlowup] = v
			}

			var tbl *roots.Table[uint64]
			if c.shift {
				tbl = h.fwd.GenPowers
			}

			// disjoint regions, with garbage in the destination
			src := h.upload(x)
			dst := h.upload(h.random(n<<c.lgBlowup, "garbage"))
			a.NoError(SpreadDistributePowers[uint64](h.s, f, dst, src, c.lg, c.lgBlowup, tbl, c.extended))
			a.Empty(cmp.Diff(want, h.download(dst)))

			// source is the head of the destination
			all := h.upload(append(append([]uint64{}, x...), h.random(n<<c.lgBlowup-n, "garbage")...))
			a.NoError(SpreadDistributePowers[uint64](h.s, f, all, all.View(0, n), c.lg, c.lgBlowup, tbl, c.extended))
			a.Empty(cmp.Diff(want, h.download(all)))
		})
	}

	buf := h.upload(make([]uint64, 16))
	assert.Panics(t, func() {
		SpreadDistributePowers[uint64](h.s, f, buf, buf.View(4, 4), 2, 2, nil, false)
	})
}

func TestDefaultTuning(t *testing.T) {
	a := assert.New(t)

	a.Equal(narrowTuning, DefaultTuning(field.NewBabyBear().Width()))
	a.Equal(narrowTuning, DefaultTuning(field.NewGoldilocks().Width()))
	a.Equal(wideTuning, DefaultTuning(field.NewBLS12381().Width()))
}

func TestWideFieldTransform(t *testing.T) {
	a := assert.New(t)
	f := field.NewBLS12381()

	d, err := device.New(device.Config{Units: 2})
	require.NoError(t, err)
	s := d.NewStream()
	defer s.Close()

	reg := roots.NewRegistry[fr.Element](f, 10, 0)
	lg := 10

	x := make([]fr.Element, 1<<lg)
	for i := range x {
		x[i] = f.FromUint64(uint64(i*i + 1))
	}

	buf, err := device.Alloc[fr.Element](d, len(x))
	require.NoError(t, err)
	a.NoError(device.CopyIn(s, buf, x))
	a.NoError(GS[fr.Element](s, f, buf, lg, reg.Get(false, 0), DefaultTuning(f.Width())))
	a.NoError(CT[fr.Element](s, f, buf, lg, reg.Get(true, 0), DefaultTuning(f.Width())))

	out := make([]fr.Element, len(x))
	a.NoError(device.CopyOut(s, out, buf))
	a.NoError(s.Synchronize())
	a.True(field.Equal[fr.Element](f, x, out))
}
