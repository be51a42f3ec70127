package constraint

import (
	"fmt"

	"github.com/nnverify/plsearch/debug"
	"github.com/nnverify/plsearch/profile"
)

// Pool owns the piecewise-linear constraints of a search instance and hands
// out their identities. Constraints are never removed: the pool lives as long
// as the search.
type Pool struct {
	constraints []PiecewiseLinearConstraint
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// Add registers c and returns its identity. Identities are dense and follow
// insertion order. Adding a constraint twice, to this or another pool, panics.
func (p *Pool) Add(c PiecewiseLinearConstraint) int {
	id := c.ident()
	if id.pooled {
		panic(fmt.Sprintf("constraint %d is already pooled", id.id))
	}
	id.id = len(p.constraints)
	id.pooled = true
	p.constraints = append(p.constraints, c)

	profile.RecordConstraint()

	if debug.Debug {
		if p.constraints[id.id] != c {
			panic("pool identity out of sync")
		}
	}
	return id.id
}

// Get returns the constraint with the given identity.
func (p *Pool) Get(id int) PiecewiseLinearConstraint {
	return p.constraints[id]
}

// Len returns the number of pooled constraints.
func (p *Pool) Len() int {
	return len(p.constraints)
}

// PiecewiseLinearConstraints returns the pooled constraints in identity order.
// The returned slice is a copy; the constraints are shared.
func (p *Pool) PiecewiseLinearConstraints() []PiecewiseLinearConstraint {
	res := make([]PiecewiseLinearConstraint, len(p.constraints))
	copy(res, p.constraints)
	return res
}
