package roots

import (
	"sync"

	"github.com/jonathanmweiss/go-ntt/field"
)

// Parameters are the per-direction constants of one transform configuration.
//
// For the forward direction Twiddles holds powers of a primitive 2^lgMax-th
// root of unity and GenPowers holds powers of the coset generator; the inverse
// direction holds the inverses of both.
type Parameters[E any] struct {
	f       field.Field[E]
	inverse bool
	lgMax   int

	Twiddles  *Table[E]
	GenPowers *Table[E]

	// DomainSizeInverse[lg] = 2^-lg.
	DomainSizeInverse []E

	mu     sync.RWMutex
	stages map[int][]E
}

// stageChunk bounds how many consecutive twiddles are derived by repeated
// multiplication before re-anchoring on the windowed table.
const stageChunk = 1024

func newParameters[E any](f field.Field[E], inverse bool, lgMax, lgWindow int) *Parameters[E] {
	root := f.RootOfUnity(lgMax)
	gen := f.CosetGenerator()

	if inverse {
		root = f.Inverse(root)
		gen = f.Inverse(gen)
	}

	dsi := make([]E, lgMax+1)
	half := f.Inverse(f.FromUint64(2))
	dsi[0] = f.One()
	for lg := 1; lg <= lgMax; lg++ {
		dsi[lg] = f.Mul(dsi[lg-1], half)
	}

	return &Parameters[E]{
		f:                 f,
		inverse:           inverse,
		lgMax:             lgMax,
		Twiddles:          NewTable(f, root, lgMax, lgWindow),
		GenPowers:         NewTable(f, gen, lgMax, lgWindow),
		DomainSizeInverse: dsi,
		stages:            make(map[int][]E),
	}
}

func (p *Parameters[E]) Inverse() bool {
	return p.inverse
}

func (p *Parameters[E]) LgMaxDomainSize() int {
	return p.lgMax
}

// Root returns w_lg^pow where w_lg is the primitive 2^lg-th root of this direction.
func (p *Parameters[E]) Root(pow uint64, lg int) E {
	return p.Twiddles.Root(pow << uint(p.lgMax-lg))
}

// StageTwiddles returns w_lg^j for j < 2^(lg-1). Slices are built once per lg
// and shared; callers must not modify them.
func (p *Parameters[E]) StageTwiddles(lg int) []E {
	if lg < 1 || lg > p.lgMax {
		panic("roots: stage twiddles requested outside the configured domain range")
	}

	p.mu.RLock()
	if tw, ok := p.stages[lg]; ok {
		p.mu.RUnlock()
		return tw
	}
	p.mu.RUnlock()

	// Build outside lock
	half := 1 << (lg - 1)
	shift := uint(p.lgMax - lg)
	step := p.Twiddles.Root(1 << shift)

	tw := make([]E, half)
	for j := 0; j < half; j++ {
		if j%stageChunk == 0 {
			tw[j] = p.Twiddles.Root(uint64(j) << shift)
			continue
		}

		tw[j] = p.f.Mul(tw[j-1], step)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// Another goroutine may have won the race; keep the first one.
	if existing, ok := p.stages[lg]; ok {
		return existing
	}

	p.stages[lg] = tw

	return tw
}
