package constraint

// UnassignedID is the identity of a constraint that was never added to a Pool.
const UnassignedID = -1

// PiecewiseLinearConstraint is a constraint satisfied by choosing one of a
// finite set of linear regions.
//
// The set of implementations is closed: DisjunctionConstraint and
// ReLUConstraint.
type PiecewiseLinearConstraint interface {
	// ID is stable for the lifetime of the constraint once it is pooled.
	ID() int

	// CaseSplits enumerates the alternative regions, in a fixed order.
	CaseSplits() []CaseSplit

	// Participates reports whether the variable appears in the constraint.
	Participates(vID uint32) bool

	// Satisfied reports whether the assignment lies in at least one region.
	Satisfied(assignment map[uint32]float64) bool

	String(r Resolver) string

	ident() *identity
}

type identity struct {
	id     int
	pooled bool
}

func (i *identity) ID() int {
	if !i.pooled {
		return UnassignedID
	}
	return i.id
}

func (i *identity) ident() *identity {
	return i
}

func participates(splits []CaseSplit, vID uint32) bool {
	for i := range splits {
		next := splits[i].WireIterator()
		for w := next(); w != -1; w = next() {
			if w == int(vID) {
				return true
			}
		}
	}
	return false
}
