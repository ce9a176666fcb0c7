package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/tuneinsight/lattigo/v6/utils/sampling"
	"github.com/urfave/cli/v2"

	ntt "github.com/jonathanmweiss/go-ntt"
	"github.com/jonathanmweiss/go-ntt/field"
)

type runner interface {
	name() string
	bench(env *environment) error
	lde(env *environment) error
	verify(env *environment) error
}

// newRunner resolves a --field value.
func newRunner(name string) (runner, error) {
	switch {
	case name == "babybear":
		return &fieldRunner[uint32]{f: field.NewBabyBear()}, nil
	case name == "goldilocks":
		return &fieldRunner[uint64]{f: field.NewGoldilocks()}, nil
	case name == "bls12-381":
		return &fieldRunner[fr.Element]{f: field.NewBLS12381()}, nil
	case strings.HasPrefix(name, "prime:"):
		p, err := strconv.ParseUint(strings.TrimPrefix(name, "prime:"), 0, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid prime in %q", name)
		}

		f, err := field.NewPrimeField(p)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid prime %d", p)
		}

		return &fieldRunner[uint64]{f: f}, nil
	default:
		return nil, errors.Errorf("unknown field %q", name)
	}
}

type fieldRunner[E any] struct {
	f field.Field[E]
}

func (r *fieldRunner[E]) name() string {
	return r.f.Name()
}

func (r *fieldRunner[E]) engine(env *environment) (*ntt.Engine[E], error) {
	return ntt.New(r.f, env.engine, ntt.WithDevice(env.dev), ntt.WithLogger(env.log))
}

func newPRNG(key string) (*sampling.KeyedPRNG, error) {
	return sampling.NewKeyedPRNG([]byte(key))
}

func (r *fieldRunner[E]) input(env *environment, n int, key string) ([]E, error) {
	prng, err := newPRNG(env.seed + "/" + key)
	if err != nil {
		return nil, err
	}

	return field.RandomVector(r.f, prng, n)
}

// checkDomain reports sizes the engine would reject as a usage error rather
// than a panic.
func checkDomain(e interface{ LgMaxDomainSize() uint32 }, lg uint32) error {
	if lg > e.LgMaxDomainSize() {
		return errors.Errorf("domain 2^%d exceeds the maximum 2^%d", lg, e.LgMaxDomainSize())
	}

	return nil
}

func (r *fieldRunner[E]) bench(env *environment) error {
	e, err := r.engine(env)
	if err != nil {
		return err
	}

	if err := checkDomain(e, env.lg); err != nil {
		return err
	}

	data, err := r.input(env, 1<<env.lg, "bench")
	if err != nil {
		return err
	}

	d := ntt.Descriptor{Order: env.order}

	var total time.Duration
	for i := 0; i < env.iterations; i++ {
		start := time.Now()
		if err := e.Transform(data, env.lg, d); err != nil {
			return err
		}

		total += time.Since(start)
	}

	report(env, r.name(), "transform", 1<<env.lg, total).Str("order", env.order.String()).Msg("benchmark done")

	return nil
}

func (r *fieldRunner[E]) lde(env *environment) error {
	e, err := r.engine(env)
	if err != nil {
		return err
	}

	if err := checkDomain(e, env.lg+env.lgBlowup); err != nil {
		return err
	}

	in, err := r.input(env, 1<<env.lg, "lde")
	if err != nil {
		return err
	}

	out := make([]E, 1<<(env.lg+env.lgBlowup))

	var total time.Duration
	for i := 0; i < env.iterations; i++ {
		start := time.Now()
		if err := e.Extend(out, in, env.lg, env.lgBlowup, env.shift); err != nil {
			return err
		}

		total += time.Since(start)
	}

	report(env, r.name(), "extend", len(out), total).
		Uint32("lgBlowup", env.lgBlowup).
		Str("shift", env.shift.String()).
		Msg("benchmark done")

	return nil
}

func report(env *environment, fieldName, op string, elems int, total time.Duration) *zerolog.Event {
	mean := total / time.Duration(env.iterations)

	return env.log.Info().
		Str("field", fieldName).
		Str("op", op).
		Uint32("lg", env.lg).
		Int("iterations", env.iterations).
		Dur("mean", mean).
		Float64("elementsPerSecond", float64(elems)/mean.Seconds())
}

// maxVerifyLg bounds the naive evaluations of verify.
const maxVerifyLg = 10

func (r *fieldRunner[E]) verify(env *environment) error {
	e, err := r.engine(env)
	if err != nil {
		return err
	}

	lg := env.lg
	if lg > maxVerifyLg {
		lg = maxVerifyLg
	}

	if err := checkDomain(e, lg+env.lgBlowup); err != nil {
		return err
	}

	failures, err := verifyEngine(e, env, lg)
	if err != nil {
		return err
	}

	if len(failures) > 0 {
		for _, f := range failures {
			env.log.Error().Str("field", r.name()).Msg(f)
		}

		return cli.Exit("verification failed", 1)
	}

	env.log.Info().Str("field", r.name()).Uint32("lg", lg).Msg("verification passed")

	return nil
}
