package constraint

import (
	"math"
	"strconv"
)

// Term is coeff⋅variable.
type Term struct {
	Coeff float64
	VID   uint32
}

// WireID returns the variable id of the term.
func (t Term) WireID() int {
	return int(t.VID)
}

// IsZero returns true if the coefficient is 0 (or -0).
func (t Term) IsZero() bool {
	return t.Coeff == 0
}

// LinearExpression represents a linear expression of variables.
type LinearExpression []Term

// Clone returns a copy of the expression.
func (l LinearExpression) Clone() LinearExpression {
	if l == nil {
		return nil
	}
	res := make(LinearExpression, len(l))
	copy(res, l)
	return res
}

// Evaluate returns Σ coeff⋅value for the given assignment. Missing variables
// evaluate to NaN so that the caller cannot mistake them for 0.
func (l LinearExpression) Evaluate(assignment map[uint32]float64) float64 {
	var res float64
	for _, t := range l {
		v, ok := assignment[t.VID]
		if !ok {
			return math.NaN()
		}
		res += t.Coeff * v
	}
	return res
}

// FormatCoeff formats a coefficient the same way across the package.
func FormatCoeff(c float64) string {
	return strconv.FormatFloat(c, 'g', -1, 64)
}
