package field

import (
	"errors"
	"sync"
)

// SlowEvaluator evaluates polynomials point by point on the power-of-two
// domains of a field. It is quadratic and meant as a reference.
type SlowEvaluator[E any] struct {
	cache *evaluationCache[E]

	f Field[E]
}

type evaluationCache[E any] struct {
	sync.Locker
	lgToPoints map[int][]E
}

func newEvaluatorCache[E any]() *evaluationCache[E] {
	return &evaluationCache[E]{
		Locker:     &sync.Mutex{},
		lgToPoints: make(map[int][]E),
	}
}

func (e *evaluationCache[E]) storePoints(lg int, points []E) {
	e.Lock()
	defer e.Unlock()

	if _, ok := e.lgToPoints[lg]; ok {
		return
	}

	e.lgToPoints[lg] = points
}

func (e *evaluationCache[E]) loadPoints(lg int) []E {
	e.Lock()
	defer e.Unlock()

	if points, ok := e.lgToPoints[lg]; ok {
		return points
	}

	return nil
}

var errPolynomialTooLarge = errors.New("polynomial does not fit the evaluation domain")

func NewSlowEvaluator[E any](f Field[E]) *SlowEvaluator[E] {
	return &SlowEvaluator[E]{
		f:     f,
		cache: newEvaluatorCache[E](),
	}
}

func (e *SlowEvaluator[E]) Field() Field[E] {
	return e.f
}

// EvaluationPoints returns w^0, w^1, ..., w^(n-1) for the primitive n-th root w, n = 2^lg.
func (e *SlowEvaluator[E]) EvaluationPoints(lg int) ([]E, error) {
	if lg > e.f.TwoAdicity() {
		return nil, errLgTooLarge
	}

	if points := e.cache.loadPoints(lg); points != nil {
		return points, nil
	}

	n := 1 << lg
	w := e.f.RootOfUnity(lg)

	points := make([]E, n)
	points[0] = e.f.One()
	for i := 1; i < n; i++ {
		points[i] = e.f.Mul(points[i-1], w)
	}

	e.cache.storePoints(lg, points)

	return points, nil
}

// CosetPoints returns offset * w^i for the domain of size 2^lg.
func (e *SlowEvaluator[E]) CosetPoints(lg int, offset E) ([]E, error) {
	points, err := e.EvaluationPoints(lg)
	if err != nil {
		return nil, err
	}

	shifted := make([]E, len(points))
	for i, x := range points {
		shifted[i] = e.f.Mul(offset, x)
	}

	return shifted, nil
}

func (e *SlowEvaluator[E]) EvaluatePolynomial(p *Polynomial[E], lg int) ([]E, error) {
	points, err := e.EvaluationPoints(lg)
	if err != nil {
		return nil, err
	}

	return e.EvaluateAt(p, points)
}

func (e *SlowEvaluator[E]) EvaluateOnCoset(p *Polynomial[E], lg int, offset E) ([]E, error) {
	points, err := e.CosetPoints(lg, offset)
	if err != nil {
		return nil, err
	}

	return e.EvaluateAt(p, points)
}

func (e *SlowEvaluator[E]) EvaluateAt(p *Polynomial[E], points []E) ([]E, error) {
	if p.Degree() >= len(points) {
		return nil, errPolynomialTooLarge
	}

	values := make([]E, len(points))
	for i, x := range points {
		values[i] = p.Eval(x)
	}

	return values, nil
}
