package model

import "fmt"

// DefaultInfinity is the finite stand-in used for unbounded quantities at the solver boundary
const DefaultInfinity int64 = 10_000_000

// Bound is a timing quantity that may be unconstrained. The direction of an
// unconstrained bound is given by the tensor holding it (e.g. -inf for lmin, +inf for lmax)
type Bound struct {
	Value  int64
	Finite bool
}

// Unbounded is the zero value of Bound
var Unbounded = Bound{}

func Finite(value int64) Bound {
	return Bound{Value: value, Finite: true}
}

// Or returns the bound's value, or fallback when unbounded
func (bound Bound) Or(fallback int64) int64 {
	if !bound.Finite {
		return fallback
	}
	return bound.Value
}

// Sentinel converts the bound into its solver-boundary form; sign is +1 or -1
func (bound Bound) Sentinel(sign int64, infinity int64) int64 {
	if !bound.Finite {
		return sign * infinity
	}
	// Clamp finite values so they cannot be mistaken for the opposite infinity
	if bound.Value >= infinity {
		return infinity - 1
	} else if bound.Value <= -infinity {
		return -infinity + 1
	}
	return bound.Value
}

func fromSentinel(value, infinity int64) Bound {
	if value >= infinity || value <= -infinity {
		return Unbounded
	}
	return Finite(value)
}

func (bound Bound) String() string {
	if !bound.Finite {
		return "inf"
	}
	return fmt.Sprint(bound.Value)
}
