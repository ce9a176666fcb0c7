package field

import (
	"fmt"
	"strings"
)

type Polynomial[E any] struct {
	f     Field[E]
	inner []E
}

/*
NewPolynomial expects the coefficients to be in the same field
and ordered from lowest to highest degree. (e.g. [1, 2, 3] is 1 + 2x + 3x^2)
*/
func NewPolynomial[E any](f Field[E], inner []E) *Polynomial[E] {
	if len(inner) == 0 {
		panic("empty polynomial")
	}

	return &Polynomial[E]{
		f:     f,
		inner: inner,
	}
}

func (p *Polynomial[E]) Field() Field[E] {
	return p.f
}

// Len is the number of stored coefficients, leading zeros included.
func (p *Polynomial[E]) Len() int {
	return len(p.inner)
}

func (p *Polynomial[E]) Degree() int {
	return p.leadingCoeffPos()
}

func (p *Polynomial[E]) leadingCoeffPos() int {
	zero := p.f.Zero()
	for i := len(p.inner) - 1; i >= 0; i-- {
		if !p.f.Equal(p.inner[i], zero) {
			return i
		}
	}

	return -1
}

func (p *Polynomial[E]) IsZero() bool {
	return p.leadingCoeffPos() < 0
}

// Equals compares coefficients, ignoring leading zeros.
func (p *Polynomial[E]) Equals(q *Polynomial[E]) bool {
	if p.f.Name() != q.f.Name() {
		return false
	}

	deg := p.Degree()
	if deg != q.Degree() {
		return false
	}

	for i := 0; i <= deg; i++ {
		if !p.f.Equal(p.inner[i], q.inner[i]) {
			return false
		}
	}

	return true
}

// Eval evaluates the polynomial at x using Horner's rule.
func (p *Polynomial[E]) Eval(x E) E {
	fld := p.f
	result := fld.Zero()

	for i := len(p.inner) - 1; i >= 0; i-- {
		result = fld.Add(p.inner[i], fld.Mul(x, result))
	}

	return result
}

func (p *Polynomial[E]) Copy() *Polynomial[E] {
	innercopy := make([]E, len(p.inner))
	copy(innercopy, p.inner)

	return NewPolynomial(p.f, innercopy)
}

// Padded returns the coefficients zero-extended to n entries.
func (p *Polynomial[E]) Padded(n int) ([]E, error) {
	if p.Degree() >= n {
		return nil, errPolynomialTooLarge
	}

	out := make([]E, n)
	for i := range out {
		out[i] = p.f.Zero()
	}
	copy(out, p.inner[:min(len(p.inner), n)])

	return out, nil
}

func (p *Polynomial[E]) ToSlice() []E {
	list := make([]E, len(p.inner))
	copy(list, p.inner)

	return list
}

func (p *Polynomial[E]) String() string {
	deg := p.Degree()
	if deg < 0 {
		return "0"
	}

	bldr := strings.Builder{}
	for i := deg; i >= 0; i-- {
		if p.f.Equal(p.inner[i], p.f.Zero()) {
			continue
		}

		if bldr.Len() > 0 {
			bldr.WriteString(" + ")
		}

		fmt.Fprintf(&bldr, "%v", p.inner[i])
		if i != 0 {
			fmt.Fprintf(&bldr, "*x^%d", i)
		}
	}

	return bldr.String()
}
