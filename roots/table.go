// Package roots builds the windowed power tables the transform kernels read
// their twiddle factors and coset powers from.
package roots

import (
	"github.com/jonathanmweiss/go-ntt/field"
)

// Table holds windowed powers of a base element:
//
//	windows[w][d] = base^(d << (w*lgWindow))
//
// so base^pow is the product of one entry per base-2^lgWindow digit of pow.
// A Table is immutable once built.
type Table[E any] struct {
	f        field.Field[E]
	base     E
	lgWindow uint
	mask     uint64
	windows  [][]E
}

// NewTable tabulates powers of base for every exponent below 2^lgMax.
func NewTable[E any](f field.Field[E], base E, lgMax, lgWindow int) *Table[E] {
	if lgWindow <= 0 || lgMax < 0 {
		panic("roots: invalid table shape")
	}

	numWindows := (lgMax + lgWindow - 1) / lgWindow
	if numWindows == 0 {
		numWindows = 1
	}

	size := 1 << lgWindow
	windows := make([][]E, numWindows)

	// step = base^(2^(w*lgWindow)) for window w
	step := base
	for w := range windows {
		row := make([]E, size)
		row[0] = f.One()
		for d := 1; d < size; d++ {
			row[d] = f.Mul(row[d-1], step)
		}

		windows[w] = row
		step = f.Mul(row[size-1], step)
	}

	return &Table[E]{
		f:        f,
		base:     base,
		lgWindow: uint(lgWindow),
		mask:     uint64(size - 1),
		windows:  windows,
	}
}

func (t *Table[E]) Base() E {
	return t.base
}

func (t *Table[E]) LgWindow() int {
	return int(t.lgWindow)
}

func (t *Table[E]) NumWindows() int {
	return len(t.windows)
}

// MaxPow is the exclusive bound on exponents the table can serve.
func (t *Table[E]) MaxPow() uint64 {
	bits := t.lgWindow * uint(len(t.windows))
	if bits >= 64 {
		return 1<<64 - 1
	}

	return 1 << bits
}

// Root returns base^pow using one lookup per window and no squarings.
func (t *Table[E]) Root(pow uint64) E {
	root := t.windows[0][pow&t.mask]
	for off := 1; ; off++ {
		pow >>= t.lgWindow
		if pow == 0 {
			break
		}

		root = t.f.Mul(root, t.windows[off][pow&t.mask])
	}

	return root
}

// Roots2 returns base^p0 and base^p1 in a single walk over the windows.
func (t *Table[E]) Roots2(p0, p1 uint64) (E, E) {
	r0 := t.windows[0][p0&t.mask]
	r1 := t.windows[0][p1&t.mask]

	for off := 1; ; off++ {
		p0 >>= t.lgWindow
		p1 >>= t.lgWindow
		if p0|p1 == 0 {
			break
		}

		if p0 != 0 {
			r0 = t.f.Mul(r0, t.windows[off][p0&t.mask])
		}

		if p1 != 0 {
			r1 = t.f.Mul(r1, t.windows[off][p1&t.mask])
		}
	}

	return r0, r1
}
