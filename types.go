package ntt

import (
	"fmt"

	"github.com/pkg/errors"
)

// Order names the index ordering of the input and output of a transform:
// N is natural, R is bit-reversed.
type Order int

const (
	NN Order = iota
	NR
	RN
	RR
)

func (o Order) String() string {
	switch o {
	case NN:
		return "NN"
	case NR:
		return "NR"
	case RN:
		return "RN"
	case RR:
		return "RR"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

func (o Order) valid() bool {
	return o >= NN && o <= RR
}

type Direction int

const (
	Forward Direction = iota
	Inverse
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Inverse:
		return "inverse"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Type selects between the plain transform and the transform over the coset
// g*H of the domain H.
type Type int

const (
	Standard Type = iota
	Coset
)

func (t Type) String() string {
	switch t {
	case Standard:
		return "standard"
	case Coset:
		return "coset"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

type Descriptor struct {
	Order     Order
	Direction Direction
	Type      Type
	// CosetExtPow shifts every coset exponent left, so the coset offset of a
	// Coset transform becomes g^(2^CosetExtPow). Ignored for Standard.
	CosetExtPow uint32
}

func (d Descriptor) validate() {
	if !d.Order.valid() {
		panic(fmt.Sprintf("ntt: invalid order %v", d.Order))
	}

	if d.Direction != Forward && d.Direction != Inverse {
		panic(fmt.Sprintf("ntt: invalid direction %v", d.Direction))
	}

	if d.Type != Standard && d.Type != Coset {
		panic(fmt.Sprintf("ntt: invalid type %v", d.Type))
	}
}

func (d Descriptor) String() string {
	if d.Type == Coset && d.CosetExtPow > 0 {
		return fmt.Sprintf("%v %v %v<<%d", d.Direction, d.Order, d.Type, d.CosetExtPow)
	}

	return fmt.Sprintf("%v %v %v", d.Direction, d.Order, d.Type)
}

// CosetShift selects the multiplicative shift applied by a low-degree
// extension.
type CosetShift int

const (
	// ShiftBase evaluates on g * H_ext.
	ShiftBase CosetShift = iota
	// ShiftExtended evaluates on g^(2^lgBlowup) * H_ext.
	ShiftExtended
	// ShiftNone evaluates on H_ext itself; every 2^lgBlowup-th output is an
	// input sample.
	ShiftNone
)

func (c CosetShift) String() string {
	switch c {
	case ShiftBase:
		return "base"
	case ShiftExtended:
		return "extended"
	case ShiftNone:
		return "none"
	default:
		return fmt.Sprintf("CosetShift(%d)", int(c))
	}
}

// ParseOrder accepts the names printed by Order.String.
func ParseOrder(s string) (Order, error) {
	for o := NN; o <= RR; o++ {
		if o.String() == s {
			return o, nil
		}
	}

	return 0, errors.Errorf("unknown order %q", s)
}

// ParseCosetShift accepts the names printed by CosetShift.String.
func ParseCosetShift(s string) (CosetShift, error) {
	for c := ShiftBase; c <= ShiftNone; c++ {
		if c.String() == s {
			return c, nil
		}
	}

	return 0, errors.Errorf("unknown coset shift %q", s)
}
