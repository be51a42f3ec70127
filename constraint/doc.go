// Package constraint provides the linear region vocabulary shared by the
// branching heuristics, the activation decoder and the linear solver.
//
// A piecewise-linear constraint is satisfied by choosing one of finitely many
// linear regions;
//   - Each region (CaseSplit) is a set of bound Tightening plus Equation
//   - An Equation is a LinearExpression of Term equal to a scalar
//   - A Term is an association between a coefficient and a variable
package constraint
