package ntt

import (
	"github.com/jonathanmweiss/go-ntt/device"
	"github.com/jonathanmweiss/go-ntt/kernel"
)

// plan is the kernel sequence of one descriptor.
type plan struct {
	preReverse  bool
	gs          bool
	postReverse bool
	// bitrev reports whether the data is bit-reversed while coset powers are
	// applied before the kernel.
	bitrev bool
}

func planFor(o Order) plan {
	switch o {
	case NN:
		return plan{preReverse: true, bitrev: true}
	case NR:
		return plan{gs: true}
	case RN:
		return plan{bitrev: true}
	case RR:
		return plan{gs: true, bitrev: true, postReverse: true}
	default:
		panic("ntt: invalid order " + o.String())
	}
}

// transform enqueues the descriptor d on buf. Nothing is synchronized.
func (e *Engine[E]) transform(s *device.Stream, buf *device.Buffer[E], lg int, d Descriptor) error {
	inverse := d.Direction == Inverse
	params := e.reg.Get(inverse, e.dev.ID())
	p := planFor(d.Order)
	coset := d.Type == Coset
	extPow := int(d.CosetExtPow)

	if p.preReverse {
		if err := kernel.BitReverse(s, buf, buf, lg, e.tuning); err != nil {
			return err
		}
	}

	if coset && !inverse {
		if err := kernel.DistributePowers(s, e.f, buf, lg, extPow, p.bitrev, params.GenPowers); err != nil {
			return err
		}
	}

	var err error
	if p.gs {
		err = kernel.GS(s, e.f, buf, lg, params, e.tuning)
	} else {
		err = kernel.CT(s, e.f, buf, lg, params, e.tuning)
	}
	if err != nil {
		return err
	}

	// the kernel flipped the ordering
	if coset && inverse {
		if err := kernel.DistributePowers(s, e.f, buf, lg, extPow, !p.bitrev, params.GenPowers); err != nil {
			return err
		}
	}

	if p.postReverse {
		return kernel.BitReverse(s, buf, buf, lg, e.tuning)
	}

	return nil
}

// extend enqueues the extension pipeline: interpolate base into bit-reversed
// coefficients, spread them over ext with the coset shift and evaluate on
// the extended domain. base is either disjoint from ext or its head.
func (e *Engine[E]) extend(s *device.Stream, ext, base *device.Buffer[E], lg, lgBlowup int, shift CosetShift) error {
	if err := e.transform(s, base, lg, Descriptor{Order: NR, Direction: Inverse}); err != nil {
		return err
	}

	tbl := e.reg.Get(false, e.dev.ID()).GenPowers
	if shift == ShiftNone {
		tbl = nil
	}

	if err := kernel.SpreadDistributePowers(s, e.f, ext, base, lg, lgBlowup, tbl, shift == ShiftExtended); err != nil {
		return err
	}

	return e.transform(s, ext, lg+lgBlowup, Descriptor{Order: RN, Direction: Forward})
}
