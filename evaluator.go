package ntt

import (
	"errors"
	"sync"

	"github.com/jonathanmweiss/go-ntt/field"
)

// EvaluationMap evaluates polynomials on the power-of-two subgroups of a
// field. It can be fast, like NttEvaluator, or plain point by point
// evaluation, like field.SlowEvaluator.
type EvaluationMap[E any] interface {
	Field() field.Field[E]
	// EvaluationPoints returns w^0, ..., w^(n-1) for the primitive root w of
	// order n = 2^lg.
	EvaluationPoints(lg int) ([]E, error)
	EvaluatePolynomial(p *field.Polynomial[E], lg int) ([]E, error)
}

var (
	_ EvaluationMap[uint64] = (*field.SlowEvaluator[uint64])(nil)
	_ EvaluationMap[uint64] = (*NttEvaluator[uint64])(nil)
)

var errDomainTooLarge = errors.New("evaluation domain exceeds the engine maximum")

// NttEvaluator evaluates through the transforms of an Engine.
type NttEvaluator[E any] struct {
	e *Engine[E]

	mu     sync.Mutex
	points map[int][]E
}

func NewNttEvaluator[E any](e *Engine[E]) *NttEvaluator[E] {
	return &NttEvaluator[E]{
		e:      e,
		points: make(map[int][]E),
	}
}

func (n *NttEvaluator[E]) Field() field.Field[E] {
	return n.e.Field()
}

func (n *NttEvaluator[E]) EvaluationPoints(lg int) ([]E, error) {
	n.mu.Lock()
	points, ok := n.points[lg]
	n.mu.Unlock()
	if ok {
		return points, nil
	}

	f := n.e.Field()

	// make polynomial p(x) = x, its transform is the domain itself.
	var inner []E
	if lg == 0 {
		inner = []E{f.Zero()}
	} else {
		inner = make([]E, 2)
		inner[0], inner[1] = f.Zero(), f.One()
	}

	points, err := n.EvaluatePolynomial(field.NewPolynomial(f, inner), lg)
	if err != nil {
		return nil, err
	}

	if lg == 0 {
		points[0] = f.One()
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if existing, ok := n.points[lg]; ok {
		return existing, nil
	}

	n.points[lg] = points

	return points, nil
}

// EvaluatePolynomial returns p(w^0), ..., p(w^(n-1)) for n = 2^lg.
func (n *NttEvaluator[E]) EvaluatePolynomial(p *field.Polynomial[E], lg int) ([]E, error) {
	return n.evaluate(p, lg, Descriptor{Order: NN})
}

// EvaluateOnCoset returns p(g*w^i) for the coset generator g of the field.
func (n *NttEvaluator[E]) EvaluateOnCoset(p *field.Polynomial[E], lg int) ([]E, error) {
	return n.evaluate(p, lg, Descriptor{Order: NN, Type: Coset})
}

// Interpolate returns the coefficients of the polynomial of degree below 2^lg
// taking the given values on the domain.
func (n *NttEvaluator[E]) Interpolate(values []E, lg int) (*field.Polynomial[E], error) {
	if lg < 0 || lg > int(n.e.LgMaxDomainSize()) {
		return nil, errDomainTooLarge
	}

	coeffs := append([]E(nil), values...)
	if err := n.e.Transform(coeffs, uint32(lg), Descriptor{Order: NN, Direction: Inverse}); err != nil {
		return nil, err
	}

	return field.NewPolynomial(n.e.Field(), coeffs), nil
}

func (n *NttEvaluator[E]) evaluate(p *field.Polynomial[E], lg int, d Descriptor) ([]E, error) {
	if lg < 0 || lg > int(n.e.LgMaxDomainSize()) {
		return nil, errDomainTooLarge
	}

	values, err := p.Padded(1 << lg)
	if err != nil {
		return nil, err
	}

	if err := n.e.Transform(values, uint32(lg), d); err != nil {
		return nil, err
	}

	return values, nil
}
