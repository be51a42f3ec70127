package constraint

import "math"

// ReLUConstraint is f = max(0, b).
type ReLUConstraint struct {
	identity
	B, F uint32
}

var _ PiecewiseLinearConstraint = &ReLUConstraint{}

func NewReLUConstraint(b, f uint32) *ReLUConstraint {
	return &ReLUConstraint{B: b, F: f}
}

// CaseSplits returns the inactive phase {b <= 0, f = 0} then the active
// phase {b >= 0, f - b = 0}.
func (c *ReLUConstraint) CaseSplits() []CaseSplit {
	var inactive CaseSplit
	inactive.StoreBoundTightening(NewUpperBound(c.B, 0))
	var eq Equation
	eq.AddAddend(1, c.F)
	inactive.AddEquation(eq)

	var active CaseSplit
	active.StoreBoundTightening(NewLowerBound(c.B, 0))
	eq = Equation{}
	eq.AddAddend(1, c.F)
	eq.AddAddend(-1, c.B)
	active.AddEquation(eq)

	return []CaseSplit{inactive, active}
}

func (c *ReLUConstraint) Participates(vID uint32) bool {
	return vID == c.B || vID == c.F
}

func (c *ReLUConstraint) Satisfied(assignment map[uint32]float64) bool {
	b, okB := assignment[c.B]
	f, okF := assignment[c.F]
	if !okB || !okF {
		return false
	}
	return math.Abs(f-math.Max(0, b)) <= Epsilon
}

// String formats the constraint as x7 = relu(x3).
func (c *ReLUConstraint) String(r Resolver) string {
	sbb := NewStringBuilder(r)
	sbb.WriteString(sbb.VariableToString(int(c.F)))
	sbb.WriteString(" = relu(")
	sbb.WriteString(sbb.VariableToString(int(c.B)))
	sbb.WriteByte(')')
	return sbb.String()
}
