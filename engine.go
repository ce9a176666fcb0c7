// Package ntt computes number-theoretic transforms and low-degree extensions
// over power-of-two domains of any field.Field, on a device.
//
// Host entry points copy their input to the device, run the transform on a
// fresh stream and copy the result back, synchronizing before they return.
// Runtime failures come back as *Error. Arguments outside the configured
// domain range, lengths that do not match the domain and invalid enums are
// programming errors and panic.
package ntt

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jonathanmweiss/go-ntt/device"
	"github.com/jonathanmweiss/go-ntt/field"
	"github.com/jonathanmweiss/go-ntt/kernel"
	"github.com/jonathanmweiss/go-ntt/roots"
)

type options struct {
	dev *device.Device
	log *zerolog.Logger
}

type Option func(*options)

// WithDevice runs the engine on d instead of device.Default().
func WithDevice(d *device.Device) Option {
	return func(o *options) {
		o.dev = d
	}
}

func WithLogger(l *zerolog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

type Engine[E any] struct {
	f      field.Field[E]
	cfg    Config
	tuning kernel.Tuning

	dev *device.Device
	reg *roots.Registry[E]
	log *zerolog.Logger
}

func New[E any](f field.Field[E], cfg Config, opts ...Option) (*Engine[E], error) {
	cfg, tuning, err := cfg.withDefaults(f.TwoAdicity(), f.Width())
	if err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if o.dev == nil {
		o.dev = device.Default()
	}

	if o.log == nil {
		nop := zerolog.Nop()
		o.log = &nop
	}

	return &Engine[E]{
		f:      f,
		cfg:    cfg,
		tuning: tuning,
		dev:    o.dev,
		reg:    roots.Shared(f, int(cfg.MaxLgDomainSize), cfg.LgWindowSize),
		log:    o.log,
	}, nil
}

func (e *Engine[E]) Field() field.Field[E] {
	return e.f
}

// Config returns the configuration with every default filled in.
func (e *Engine[E]) Config() Config {
	return e.cfg
}

func (e *Engine[E]) Device() *device.Device {
	return e.dev
}

func (e *Engine[E]) LgMaxDomainSize() uint32 {
	return e.cfg.MaxLgDomainSize
}

func (e *Engine[E]) checkLg(what string, lg uint32) {
	if lg > e.cfg.MaxLgDomainSize {
		panic(fmt.Sprintf("ntt: %s 2^%d exceeds the maximum domain 2^%d", what, lg, e.cfg.MaxLgDomainSize))
	}
}

func (e *Engine[E]) checkDescriptor(lg uint32, d Descriptor) {
	d.validate()
	e.checkLg("domain", lg)

	if d.Type == Coset {
		e.checkLg("coset exponent domain", lg+d.CosetExtPow)
	}
}

func checkLen(what string, n int, lg uint32) {
	if n != 1<<lg {
		panic(fmt.Sprintf("ntt: %s holds %d elements, want 2^%d", what, n, lg))
	}
}

// Transform applies d to data in place.
func (e *Engine[E]) Transform(data []E, lg uint32, d Descriptor) error {
	e.checkDescriptor(lg, d)
	checkLen("input", len(data), lg)

	if lg == 0 {
		return nil
	}

	e.log.Debug().Uint32("lg", lg).Str("descriptor", d.String()).Msg("transform")

	return e.invoke("transform", 1<<lg, func(s *device.Stream, buf *device.Buffer[E]) error {
		if err := device.CopyIn(s, buf, data); err != nil {
			return err
		}

		if err := e.transform(s, buf, int(lg), d); err != nil {
			return err
		}

		return device.CopyOut(s, data, buf)
	})
}

// TransformOnDevice enqueues d on a buffer already resident on the engine's
// device. The caller synchronizes s.
func (e *Engine[E]) TransformOnDevice(s *device.Stream, buf *device.Buffer[E], lg uint32, d Descriptor) error {
	e.checkDescriptor(lg, d)
	checkLen("buffer", buf.Len(), lg)

	if lg == 0 {
		return nil
	}

	if err := e.transform(s, buf, int(lg), d); err != nil {
		return newError(err)
	}

	return nil
}

// ApplyCosetPowers multiplies buf[idx] by g^(pow << extPow), or by the
// inverse powers, with pow = idx or rev(idx) when bitrev is set. The caller
// synchronizes s.
func (e *Engine[E]) ApplyCosetPowers(s *device.Stream, buf *device.Buffer[E], lg, extPow uint32, inverse, bitrev bool) error {
	e.checkLg("coset exponent domain", lg+extPow)
	checkLen("buffer", buf.Len(), lg)

	params := e.reg.Get(inverse, e.dev.ID())
	if err := kernel.DistributePowers(s, e.f, buf, int(lg), int(extPow), bitrev, params.GenPowers); err != nil {
		return newError(err)
	}

	return nil
}

// Extend writes into out the evaluations, on the domain of size 2^(lg+lgBlowup)
// shifted per shift, of the polynomial whose evaluations on the domain of size
// 2^lg are in.
func (e *Engine[E]) Extend(out, in []E, lg, lgBlowup uint32, shift CosetShift) error {
	e.checkExtend(len(out), len(in), lg, lgBlowup, shift)

	e.log.Debug().Uint32("lg", lg).Uint32("lgBlowup", lgBlowup).Str("shift", shift.String()).Msg("extend")

	n := 1 << lg
	return e.invoke("extend", n<<lgBlowup, func(s *device.Stream, buf *device.Buffer[E]) error {
		base := buf.View(0, n)
		if err := device.CopyIn(s, base, in); err != nil {
			return err
		}

		if err := e.extend(s, buf, base, int(lg), int(lgBlowup), shift); err != nil {
			return err
		}

		return device.CopyOut(s, out, buf)
	})
}

// ExtendWithAux is Extend that also writes to aux the coefficients of the
// polynomial in bit-reversed order.
func (e *Engine[E]) ExtendWithAux(out, aux, in []E, lg, lgBlowup uint32, shift CosetShift) error {
	e.checkExtend(len(out), len(in), lg, lgBlowup, shift)
	checkLen("aux", len(aux), lg)

	e.log.Debug().Uint32("lg", lg).Uint32("lgBlowup", lgBlowup).Str("shift", shift.String()).Msg("extend with aux")

	n := 1 << lg
	extLen := n << lgBlowup
	return e.invoke("extend-aux", extLen+n, func(s *device.Stream, buf *device.Buffer[E]) error {
		ext, base := buf.View(0, extLen), buf.View(extLen, n)
		if err := device.CopyIn(s, base, in); err != nil {
			return err
		}

		if err := e.extend(s, ext, base, int(lg), int(lgBlowup), shift); err != nil {
			return err
		}

		if err := device.CopyOut(s, out, ext); err != nil {
			return err
		}

		return device.CopyOut(s, aux, base)
	})
}

func (e *Engine[E]) checkExtend(outLen, inLen int, lg, lgBlowup uint32, shift CosetShift) {
	if shift < ShiftBase || shift > ShiftNone {
		panic(fmt.Sprintf("ntt: invalid coset shift %v", shift))
	}

	e.checkLg("domain", lg)
	e.checkLg("extended domain", lg+lgBlowup)
	checkLen("input", inLen, lg)
	checkLen("output", outLen, lg+lgBlowup)
}

// invoke runs fn on a fresh stream with n elements of scratch and converts
// any failure into an *Error. The stream is synchronized in every case.
func (e *Engine[E]) invoke(op string, n int, fn func(*device.Stream, *device.Buffer[E]) error) error {
	s := e.dev.NewStream()

	err := e.runOn(s, n, fn)
	if serr := s.Close(); err == nil {
		err = serr
	}

	if err == nil {
		return nil
	}

	e.log.Warn().Err(err).Str("op", op).Int("device", e.dev.ID()).Msg("transform failed")

	return newError(err)
}

func (e *Engine[E]) runOn(s *device.Stream, n int, fn func(*device.Stream, *device.Buffer[E]) error) error {
	buf, err := device.Alloc[E](e.dev, n)
	if err != nil {
		return err
	}

	err = fn(s, buf)
	if serr := s.Synchronize(); err == nil {
		err = serr
	}

	buf.Free()

	return err
}
