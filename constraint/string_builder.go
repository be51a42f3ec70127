package constraint

import (
	"strconv"
	"strings"
)

// Resolver resolves variable ids to human readable names.
type Resolver interface {
	VariableToString(vID int) string
}

// DefaultResolver prints variable i as "x<i>".
type DefaultResolver struct{}

func (DefaultResolver) VariableToString(vID int) string {
	return "x" + strconv.Itoa(vID)
}

// NamedResolver uses the provided names where available, and falls back to
// DefaultResolver otherwise.
type NamedResolver map[uint32]string

func (r NamedResolver) VariableToString(vID int) string {
	if name, ok := r[uint32(vID)]; ok {
		return name
	}
	return DefaultResolver{}.VariableToString(vID)
}

// StringBuilder is a helper to build string from constraints, linear expressions or terms.
// It embeds a strings.Builder object for convenience.
type StringBuilder struct {
	strings.Builder
	Resolver
}

// NewStringBuilder returns a new StringBuilder; a nil resolver uses DefaultResolver.
func NewStringBuilder(r Resolver) *StringBuilder {
	if r == nil {
		r = DefaultResolver{}
	}
	return &StringBuilder{Resolver: r}
}

// WriteTerm writes coeff⋅variable, omitting a coefficient of 1.
func (sbb *StringBuilder) WriteTerm(t Term) {
	switch t.Coeff {
	case 1:
	case -1:
		sbb.WriteByte('-')
	default:
		sbb.WriteString(FormatCoeff(t.Coeff))
		sbb.WriteString("⋅")
	}
	sbb.WriteString(sbb.VariableToString(t.WireID()))
}

// WriteLinearExpression writes t0 + t1 + ...; an empty expression is written as 0.
func (sbb *StringBuilder) WriteLinearExpression(l LinearExpression) {
	if len(l) == 0 {
		sbb.WriteByte('0')
		return
	}
	for i, t := range l {
		if i > 0 {
			sbb.WriteString(" + ")
		}
		sbb.WriteTerm(t)
	}
}
