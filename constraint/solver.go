package constraint

// Solver is the linear-arithmetic solver a region is pushed to when the
// search engine explores a branch. It decides feasibility; this package never
// does.
type Solver interface {
	TightenBound(t Tightening)
	AddEquation(e Equation)
}
