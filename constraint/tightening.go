package constraint

import "fmt"

// BoundType is the direction of a Tightening.
type BoundType uint8

const (
	LB BoundType = iota
	UB
)

func (t BoundType) String() string {
	switch t {
	case LB:
		return "LB"
	case UB:
		return "UB"
	}
	return fmt.Sprintf("BoundType(%d)", uint8(t))
}

// Tightening is a refined bound on a single variable.
type Tightening struct {
	Variable uint32
	Value    float64
	Type     BoundType
}

// NewLowerBound returns variable >= value.
func NewLowerBound(variable uint32, value float64) Tightening {
	return Tightening{Variable: variable, Value: value, Type: LB}
}

// NewUpperBound returns variable <= value.
func NewUpperBound(variable uint32, value float64) Tightening {
	return Tightening{Variable: variable, Value: value, Type: UB}
}

// Holds reports whether value satisfies the bound, with tolerance eps.
func (t Tightening) Holds(value, eps float64) bool {
	if t.Type == LB {
		return value >= t.Value-eps
	}
	return value <= t.Value+eps
}

// String formats the tightening as x3 >= 0.
func (t Tightening) String(r Resolver) string {
	sbb := NewStringBuilder(r)
	sbb.WriteString(sbb.VariableToString(int(t.Variable)))
	if t.Type == LB {
		sbb.WriteString(" >= ")
	} else {
		sbb.WriteString(" <= ")
	}
	sbb.WriteString(FormatCoeff(t.Value))
	return sbb.String()
}
