package main

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v6/utils"

	ntt "github.com/jonathanmweiss/go-ntt"
	"github.com/jonathanmweiss/go-ntt/field"
)

func bitReversed[E any](v []E, lg uint32) []E {
	out := append([]E(nil), v...)
	utils.BitReverseInPlaceSlice(out, 1<<lg)

	return out
}

// revScaled returns v[i] * offset^rev(i).
func revScaled[E any](f field.Field[E], v []E, offset E, lg uint32) []E {
	pows := make([]E, len(v))
	pows[0] = f.One()
	for i := 1; i < len(pows); i++ {
		pows[i] = f.Mul(pows[i-1], offset)
	}
	pows = bitReversed(pows, lg)

	out := make([]E, len(v))
	for i := range v {
		out[i] = f.Mul(v[i], pows[i])
	}

	return out
}

// verifyEngine compares every ordering, both transform types and every
// extension shift against point by point evaluation. It returns one line per
// mismatch.
func verifyEngine[E any](e *ntt.Engine[E], env *environment, lg uint32) ([]string, error) {
	f := e.Field()
	slow := field.NewSlowEvaluator(f)

	prng, err := newPRNG(env.seed + "/verify")
	if err != nil {
		return nil, err
	}

	coeffs, err := field.RandomVector(f, prng, 1<<lg)
	if err != nil {
		return nil, err
	}
	p := field.NewPolynomial(f, coeffs)

	var failures []string
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			failures = append(failures, fmt.Sprintf(format, args...))
		}
	}

	for _, ty := range []ntt.Type{ntt.Standard, ntt.Coset} {
		want, err := slow.EvaluatePolynomial(p, int(lg))
		if ty == ntt.Coset {
			want, err = slow.EvaluateOnCoset(p, int(lg), f.CosetGenerator())
		}
		if err != nil {
			return nil, err
		}

		// RR runs the natural order kernel on its input as given, so it
		// evaluates the coefficients scaled by g^rev(i) on a plain domain.
		rrWant := want
		if ty == ntt.Coset {
			scaled := revScaled(f, coeffs, f.CosetGenerator(), lg)
			if rrWant, err = slow.EvaluatePolynomial(field.NewPolynomial(f, scaled), int(lg)); err != nil {
				return nil, err
			}
		}

		for o := ntt.NN; o <= ntt.RR; o++ {
			in, out := coeffs, want
			switch o {
			case ntt.NR:
				out = bitReversed(want, lg)
			case ntt.RN:
				in = bitReversed(coeffs, lg)
			case ntt.RR:
				out = rrWant
			}

			data := append([]E(nil), in...)
			d := ntt.Descriptor{Order: o, Type: ty}
			if err := e.Transform(data, lg, d); err != nil {
				return nil, err
			}
			check(field.Equal(f, out, data), "%v disagrees with naive evaluation", d)

			back := ntt.Descriptor{Order: swapOrder(o), Direction: ntt.Inverse, Type: ty}
			if err := e.Transform(data, lg, back); err != nil {
				return nil, err
			}
			check(field.Equal(f, in, data), "%v does not invert %v", back, d)
		}
	}

	values, err := slow.EvaluatePolynomial(p, int(lg))
	if err != nil {
		return nil, err
	}

	g := f.CosetGenerator()
	offsets := []E{g, field.Exp(f, g, 1<<env.lgBlowup), f.One()}
	for shift := ntt.ShiftBase; shift <= ntt.ShiftNone; shift++ {
		want, err := slow.EvaluateOnCoset(p, int(lg+env.lgBlowup), offsets[shift])
		if err != nil {
			return nil, err
		}

		out := make([]E, len(want))
		aux := make([]E, len(values))
		if err := e.ExtendWithAux(out, aux, values, lg, env.lgBlowup, shift); err != nil {
			return nil, err
		}

		check(field.Equal(f, want, out), "extension with %v shift disagrees with naive evaluation", shift)
		check(field.Equal(f, bitReversed(coeffs, lg), aux), "extension with %v shift returned wrong coefficients", shift)
	}

	return failures, nil
}

func swapOrder(o ntt.Order) ntt.Order {
	switch o {
	case ntt.NR:
		return ntt.RN
	case ntt.RN:
		return ntt.NR
	default:
		return o
	}
}
