package kernel

import (
	"github.com/jonathanmweiss/go-ntt/device"
	"github.com/jonathanmweiss/go-ntt/field"
	"github.com/jonathanmweiss/go-ntt/roots"
)

// pass covers the butterfly stages [s0, s1) of a transform of size 2^lg.
//
// The elements touched by those stages split into groups of 2^(s1-s0)
// elements i = hi<<s1 | t<<s0 | lo. A block gathers whole groups into local
// memory, runs the stages there and scatters the result back.
type pass struct {
	lg     int
	s0, s1 int
	// scale, when set, multiplies every output of the pass by inv.
	scale bool
}

type butterflyFunc[E any] func(f field.Field[E], local []E, p pass, lo int, tw []E)

// CT runs a decimation-in-time transform: bit-reversed input, natural
// output. Passes go from the smallest stride up. The inverse direction
// scales by 2^-lg in its last pass.
func CT[E any](s *device.Stream, f field.Field[E], buf *device.Buffer[E], lg int, params *roots.Parameters[E], t Tuning) error {
	t.validate()
	checkLen("transform buffer", buf.Len(), lg)

	if lg == 0 {
		return nil
	}

	for s0 := 0; s0 < lg; s0 += t.LgPass {
		s1 := s0 + t.LgPass
		if s1 > lg {
			s1 = lg
		}

		p := pass{lg: lg, s0: s0, s1: s1, scale: params.Inverse() && s1 == lg}
		if err := launchPass(s, f, buf, p, params, t, "ct", ctStages[E]); err != nil {
			return err
		}
	}

	return nil
}

// GS runs a decimation-in-frequency transform: natural input, bit-reversed
// output. Passes go from the largest stride down.
func GS[E any](s *device.Stream, f field.Field[E], buf *device.Buffer[E], lg int, params *roots.Parameters[E], t Tuning) error {
	t.validate()
	checkLen("transform buffer", buf.Len(), lg)

	if lg == 0 {
		return nil
	}

	for s1 := lg; s1 > 0; s1 -= t.LgPass {
		s0 := s1 - t.LgPass
		if s0 < 0 {
			s0 = 0
		}

		p := pass{lg: lg, s0: s0, s1: s1, scale: params.Inverse() && s0 == 0}
		if err := launchPass(s, f, buf, p, params, t, "gs", gsStages[E]); err != nil {
			return err
		}
	}

	return nil
}

func launchPass[E any](s *device.Stream, f field.Field[E], buf *device.Buffer[E], p pass, params *roots.Parameters[E], t Tuning, name string, stages butterflyFunc[E]) error {
	tw := params.StageTwiddles(p.lg)
	inv := params.DomainSizeInverse[p.lg]

	k := p.s1 - p.s0
	groups := 1 << uint(p.lg-k)
	perBlock := 1
	if t.LgPass > k {
		perBlock = 1 << uint(t.LgPass-k)
	}
	if perBlock > groups {
		perBlock = groups
	}

	loMask := 1<<uint(p.s0) - 1
	width := 1 << uint(k)

	return s.Launch(name, groups/perBlock, func(block int) {
		data := buf.Data()
		local := make([]E, width)

		for g := block * perBlock; g < (block+1)*perBlock; g++ {
			hi, lo := g>>uint(p.s0), g&loMask
			base := hi<<uint(p.s1) | lo

			for i := range local {
				local[i] = data[base|i<<uint(p.s0)]
			}

			stages(f, local, p, lo, tw)

			if p.scale {
				for i := range local {
					local[i] = f.Mul(local[i], inv)
				}
			}

			for i := range local {
				data[base|i<<uint(p.s0)] = local[i]
			}
		}
	})
}

// twiddle of the butterfly at local position t in local stage r: the global
// pair sits at stride 2^s with s = s0 + r, and uses w_n^(j * 2^(lg-1-s)).
func twiddleIndex(p pass, r, t, lo int) int {
	s := p.s0 + r
	j := (t&(1<<uint(r)-1))<<uint(p.s0) | lo

	return j << uint(p.lg-1-s)
}

func ctStages[E any](f field.Field[E], local []E, p pass, lo int, tw []E) {
	for r := 0; r < p.s1-p.s0; r++ {
		h := 1 << uint(r)
		for start := 0; start < len(local); start += 2 * h {
			for t := start; t < start+h; t++ {
				w := tw[twiddleIndex(p, r, t, lo)]
				u, v := local[t], f.Mul(local[t+h], w)
				local[t] = f.Add(u, v)
				local[t+h] = f.Sub(u, v)
			}
		}
	}
}

func gsStages[E any](f field.Field[E], local []E, p pass, lo int, tw []E) {
	for r := p.s1 - p.s0 - 1; r >= 0; r-- {
		h := 1 << uint(r)
		for start := 0; start < len(local); start += 2 * h {
			for t := start; t < start+h; t++ {
				w := tw[twiddleIndex(p, r, t, lo)]
				u, v := local[t], local[t+h]
				local[t] = f.Add(u, v)
				local[t+h] = f.Mul(f.Sub(u, v), w)
			}
		}
	}
}
