package constraint

import "math"

// Equation is Σ coeff⋅variable = Scalar.
type Equation struct {
	Addends LinearExpression
	Scalar  float64
}

// AddAddend appends coeff⋅variable to the left-hand side.
func (e *Equation) AddAddend(coeff float64, vID uint32) {
	e.Addends = append(e.Addends, Term{Coeff: coeff, VID: vID})
}

// SetScalar sets the right-hand side.
func (e *Equation) SetScalar(scalar float64) {
	e.Scalar = scalar
}

// Clone returns a deep copy of the equation.
func (e Equation) Clone() Equation {
	return Equation{Addends: e.Addends.Clone(), Scalar: e.Scalar}
}

// Evaluate returns the value of the left-hand side under assignment.
func (e Equation) Evaluate(assignment map[uint32]float64) float64 {
	return e.Addends.Evaluate(assignment)
}

// Holds reports whether |lhs - Scalar| <= eps. An assignment missing one of
// the variables never satisfies the equation.
func (e Equation) Holds(assignment map[uint32]float64, eps float64) bool {
	lhs := e.Evaluate(assignment)
	if math.IsNaN(lhs) {
		return false
	}
	return math.Abs(lhs-e.Scalar) <= eps
}

// String formats the equation as x7 + -2⋅x3 = 3.
func (e Equation) String(r Resolver) string {
	sbb := NewStringBuilder(r)
	sbb.WriteLinearExpression(e.Addends)
	sbb.WriteString(" = ")
	sbb.WriteString(FormatCoeff(e.Scalar))
	return sbb.String()
}
