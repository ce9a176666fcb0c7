package kernel

import (
	"fmt"

	"github.com/jonathanmweiss/go-ntt/device"
	"github.com/jonathanmweiss/go-ntt/field"
	"github.com/jonathanmweiss/go-ntt/roots"
)

// DistributePowers multiplies buf[idx] by base^(pow << extPow), where base is
// the base of tbl and pow is idx, or rev(idx) when bitrev is set.
func DistributePowers[E any](s *device.Stream, f field.Field[E], buf *device.Buffer[E], lg, extPow int, bitrev bool, tbl *roots.Table[E]) error {
	checkLen("power distribution buffer", buf.Len(), lg)
	if uint64(1)<<uint(lg+extPow) > tbl.MaxPow() {
		panic(fmt.Sprintf("kernel: powers up to 2^%d exceed the table", lg+extPow))
	}

	n := buf.Len()
	shift := uint(extPow)
	powOf := func(idx int) uint64 {
		if bitrev {
			return rev(uint64(idx), lg) << shift
		}

		return uint64(idx) << shift
	}

	return s.Launch("distribute-powers", blocksFor(n), func(block int) {
		lo, hi := blockRange(block, n)
		data := buf.Data()

		i := lo
		for ; i+1 < hi; i += 2 {
			r0, r1 := tbl.Roots2(powOf(i), powOf(i+1))
			data[i] = f.Mul(data[i], r0)
			data[i+1] = f.Mul(data[i+1], r1)
		}

		if i < hi {
			data[i] = f.Mul(data[i], tbl.Root(powOf(i)))
		}
	})
}

// SpreadDistributePowers writes src[idx] * base^pow into dst[idx << lgBlowup]
// and zero everywhere else, with pow = rev(idx) (shifted by lgBlowup when
// extended is set). A nil tbl skips the multiplication.
//
// src is either disjoint from dst or the leading 2^lg elements of it. In the
// latter case all reads complete before the first write lands.
func SpreadDistributePowers[E any](s *device.Stream, f field.Field[E], dst, src *device.Buffer[E], lg, lgBlowup int, tbl *roots.Table[E], extended bool) error {
	checkLen("spread source", src.Len(), lg)
	checkLen("spread destination", dst.Len(), lg+lgBlowup)

	if tbl != nil {
		top := lg
		if extended {
			top += lgBlowup
		}

		if uint64(1)<<uint(top) > tbl.MaxPow() {
			panic(fmt.Sprintf("kernel: powers up to 2^%d exceed the table", top))
		}
	}

	n := src.Len()
	b := uint(lgBlowup)
	zero := f.Zero()

	scaled := func(data []E, idx int) E {
		v := data[idx]
		if tbl == nil {
			return v
		}

		pow := rev(uint64(idx), lg)
		if extended {
			pow <<= b
		}

		return f.Mul(v, tbl.Root(pow))
	}

	// dst[lo<<b, hi<<b) is owned by the block spreading src[lo, hi)
	write := func(out []E, lo int, vals []E) {
		for k, v := range vals {
			at := (lo + k) << b
			out[at] = v
			for z := at + 1; z < at+1<<b; z++ {
				out[z] = zero
			}
		}
	}

	if !dst.Overlaps(src) {
		return s.Launch("spread", blocksFor(n), func(block int) {
			lo, hi := blockRange(block, n)
			in := src.Data()

			vals := make([]E, hi-lo)
			for k := range vals {
				vals[k] = scaled(in, lo+k)
			}

			write(dst.Data(), lo, vals)
		})
	}

	if !src.Same(dst.View(0, n)) {
		panic("kernel: spread source must be disjoint from or a prefix of the destination")
	}

	grid := s.Device().Units()
	if grid > n {
		grid = n
	}

	return s.LaunchCooperative("spread-in-place", grid, func(block int, bar *device.Barrier) {
		lo, hi := block*n/grid, (block+1)*n/grid
		in := src.Data()

		vals := make([]E, hi-lo)
		for k := range vals {
			vals[k] = scaled(in, lo+k)
		}

		if !bar.Wait() {
			return
		}

		write(dst.Data(), lo, vals)
	})
}
