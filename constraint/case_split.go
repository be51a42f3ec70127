package constraint

import (
	"math"

	"golang.org/x/exp/slices"
)

// Epsilon is the default tolerance used by satisfaction checks.
const Epsilon = 1e-9

// CaseSplit is one alternative linear region of a piecewise-linear
// constraint: every tightening and every equation must hold.
type CaseSplit struct {
	bounds    []Tightening
	equations []Equation
}

// StoreBoundTightening adds a bound to the region.
func (s *CaseSplit) StoreBoundTightening(t Tightening) {
	s.bounds = append(s.bounds, t)
}

// AddEquation adds an equation to the region.
func (s *CaseSplit) AddEquation(e Equation) {
	s.equations = append(s.equations, e.Clone())
}

// BoundTightenings returns a copy of the region bounds.
func (s *CaseSplit) BoundTightenings() []Tightening {
	return slices.Clone(s.bounds)
}

// Equations returns a copy of the region equations.
func (s *CaseSplit) Equations() []Equation {
	if s.equations == nil {
		return nil
	}
	res := make([]Equation, len(s.equations))
	for i := range s.equations {
		res[i] = s.equations[i].Clone()
	}
	return res
}

// Clone returns a deep copy of the region.
func (s *CaseSplit) Clone() CaseSplit {
	return CaseSplit{bounds: s.BoundTightenings(), equations: s.Equations()}
}

// Equal reports whether both regions hold the same bounds and equations in
// the same order.
func (s *CaseSplit) Equal(other *CaseSplit) bool {
	if !slices.Equal(s.bounds, other.bounds) || len(s.equations) != len(other.equations) {
		return false
	}
	for i := range s.equations {
		if s.equations[i].Scalar != other.equations[i].Scalar ||
			!slices.Equal(s.equations[i].Addends, other.equations[i].Addends) {
			return false
		}
	}
	return true
}

// WireIterator returns a function yielding the variables referenced by the
// region, bounds first, then equation addends. It returns -1 when exhausted.
// Variables may be yielded more than once.
func (s *CaseSplit) WireIterator() func() int {
	curr := 0
	return func() int {
		if curr < len(s.bounds) {
			curr++
			return int(s.bounds[curr-1].Variable)
		}
		n := len(s.bounds)
		for i := 0; i < len(s.equations); i++ {
			n += len(s.equations[i].Addends)
			if curr < n {
				curr++
				idx := curr - 1 - n + len(s.equations[i].Addends)
				return s.equations[i].Addends[idx].WireID()
			}
		}
		return -1
	}
}

// Holds reports whether the assignment lies in the region.
func (s *CaseSplit) Holds(assignment map[uint32]float64, eps float64) bool {
	for _, b := range s.bounds {
		v, ok := assignment[b.Variable]
		if !ok || math.IsNaN(v) || !b.Holds(v, eps) {
			return false
		}
	}
	for _, e := range s.equations {
		if !e.Holds(assignment, eps) {
			return false
		}
	}
	return true
}

// Apply pushes the region to the solver, bounds first.
func (s *CaseSplit) Apply(solver Solver) {
	for _, b := range s.bounds {
		solver.TightenBound(b)
	}
	for _, e := range s.equations {
		solver.AddEquation(e.Clone())
	}
}

// String formats the region as {x3 <= 0, x7 = 0}.
func (s *CaseSplit) String(r Resolver) string {
	sbb := NewStringBuilder(r)
	sbb.WriteByte('{')
	for i, b := range s.bounds {
		if i > 0 {
			sbb.WriteString(", ")
		}
		sbb.WriteString(b.String(sbb.Resolver))
	}
	for i, e := range s.equations {
		if i > 0 || len(s.bounds) > 0 {
			sbb.WriteString(", ")
		}
		sbb.WriteString(e.String(sbb.Resolver))
	}
	sbb.WriteByte('}')
	return sbb.String()
}
