package kernel

import (
	"github.com/jonathanmweiss/go-ntt/device"
)

// BitReverse writes src permuted by index bit reversal into dst. dst and src
// are either the very same region or disjoint.
func BitReverse[E any](s *device.Stream, dst, src *device.Buffer[E], lg int, t Tuning) error {
	t.validate()
	checkLen("bit reversal source", src.Len(), lg)
	checkLen("bit reversal destination", dst.Len(), lg)

	inPlace := dst.Same(src)
	if !inPlace && dst.Overlaps(src) {
		panic("kernel: bit reversal buffers partially overlap")
	}

	if lg < 2*t.LgTile {
		if inPlace && lg < 2 {
			return nil
		}

		return bitReverseSimple(s, dst, src, lg, inPlace)
	}

	return bitReverseTiled(s, dst, src, lg, t.LgTile, inPlace)
}

func bitReverseSimple[E any](s *device.Stream, dst, src *device.Buffer[E], lg int, inPlace bool) error {
	n := src.Len()

	return s.Launch("bitrev", blocksFor(n), func(block int) {
		lo, hi := blockRange(block, n)
		a, b := dst.Data(), src.Data()

		for i := lo; i < hi; i++ {
			r := int(rev(uint64(i), lg))
			if !inPlace {
				a[r] = b[i]
				continue
			}

			// the pair is owned by its smaller index
			if i < r {
				a[i], a[r] = a[r], a[i]
			}
		}
	})
}

// bitReverseTiled splits an index into (high, middle, low) with tile-sized
// high and low parts. Reversal maps tile (m) onto tile (rev m) transposed,
// so each block moves whole tiles through local scratch.
func bitReverseTiled[E any](s *device.Stream, dst, src *device.Buffer[E], lg, lgTile int, inPlace bool) error {
	lgMid := lg - 2*lgTile
	side := 1 << lgTile
	hiShift := uint(lg - lgTile)

	// position of element (a, b) of tile m
	at := func(a, m, b int) int {
		return a<<hiShift | m<<uint(lgTile) | b
	}

	revTile := make([]int, side)
	for i := range revTile {
		revTile[i] = int(rev(uint64(i), lgTile))
	}

	return s.Launch("bitrev-tiled", 1<<lgMid, func(m int) {
		rm := int(rev(uint64(m), lgMid))
		if inPlace && m > rm {
			return
		}

		a, b := dst.Data(), src.Data()

		load := func(tile []E, m int) {
			for hi := 0; hi < side; hi++ {
				copy(tile[hi*side:(hi+1)*side], b[at(hi, m, 0):at(hi, m, side-1)+1])
			}
		}

		// write loaded tile of m into its image tile rm
		store := func(tile []E, rm int) {
			for hi := 0; hi < side; hi++ {
				row := a[at(hi, rm, 0) : at(hi, rm, side-1)+1]
				for lo := range row {
					row[lo] = tile[revTile[lo]*side+revTile[hi]]
				}
			}
		}

		tile := make([]E, side*side)
		load(tile, m)

		if !inPlace || m == rm {
			store(tile, rm)
			return
		}

		mirror := make([]E, side*side)
		load(mirror, rm)
		store(tile, rm)
		store(mirror, m)
	})
}
