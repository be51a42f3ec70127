package nnet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// LowerSentinel is the lower bound token meaning -∞.
	LowerSentinel = "-infty"
	// UpperSentinel is the upper bound token meaning +∞.
	UpperSentinel = "infty"
	// Separator separates annotation tokens.
	Separator = ","

	tokensPerRegion = 4
)

// Region is one linear piece of an activation: on [Lower, Upper],
// f = Coefficient⋅b + Scalar. Unbounded ends are ±Inf.
type Region struct {
	Lower, Upper        float64
	Coefficient, Scalar float64
}

// Contains reports whether b lies in [Lower, Upper].
func (r Region) Contains(b float64) bool {
	return b >= r.Lower && b <= r.Upper
}

// Apply returns Coefficient⋅b + Scalar.
func (r Region) Apply(b float64) float64 {
	return r.Coefficient*b + r.Scalar
}

type syntax struct {
	lower, upper, separator string
}

var defaultSyntax = syntax{lower: LowerSentinel, upper: UpperSentinel, separator: Separator}

// ParseAnnotation decodes an annotation written with the default syntax.
// Errors wrap ErrMalformedAnnotation or ErrInvalidNumber; the returned
// error is a *DecodeError with a zero Neuron.
func ParseAnnotation(annotation string) ([]Region, error) {
	regions, token, err := defaultSyntax.parse(annotation)
	if err != nil {
		return nil, &DecodeError{Annotation: annotation, Token: token, Err: err}
	}
	return regions, nil
}

// parse returns the regions, or the offending token and the error.
func (s syntax) parse(annotation string) ([]Region, string, error) {
	var tokens []string
	if strings.TrimSpace(annotation) != "" {
		tokens = strings.Split(annotation, s.separator)
	}
	if len(tokens)%tokensPerRegion != 0 {
		return nil, "", fmt.Errorf("%w: %d tokens is not a multiple of %d", ErrMalformedAnnotation, len(tokens), tokensPerRegion)
	}
	if len(tokens) == 0 {
		return nil, "", fmt.Errorf("%w: no region", ErrMalformedAnnotation)
	}

	regions := make([]Region, 0, len(tokens)/tokensPerRegion)
	for i := 0; i < len(tokens); i += tokensPerRegion {
		var (
			r   Region
			err error
		)
		lb := strings.TrimSpace(tokens[i])
		if lb == s.lower {
			r.Lower = math.Inf(-1)
		} else if r.Lower, err = parseFinite(lb); err != nil {
			return nil, lb, err
		}
		ub := strings.TrimSpace(tokens[i+1])
		if ub == s.upper {
			r.Upper = math.Inf(1)
		} else if r.Upper, err = parseFinite(ub); err != nil {
			return nil, ub, err
		}
		coeff := strings.TrimSpace(tokens[i+2])
		if r.Coefficient, err = parseFinite(coeff); err != nil {
			return nil, coeff, err
		}
		scalar := strings.TrimSpace(tokens[i+3])
		if r.Scalar, err = parseFinite(scalar); err != nil {
			return nil, scalar, err
		}
		regions = append(regions, r)
	}
	return regions, "", nil
}

// parseFinite rejects NaN and infinities: unbounded ends must use the
// sentinels, and coefficients must be finite.
func parseFinite(token string) (float64, error) {
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, ErrInvalidNumber
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidNumber
	}
	return v, nil
}

// FormatAnnotation is the inverse of ParseAnnotation.
func FormatAnnotation(regions []Region) string {
	tokens := make([]string, 0, len(regions)*tokensPerRegion)
	for _, r := range regions {
		lb, ub := LowerSentinel, UpperSentinel
		if !math.IsInf(r.Lower, -1) {
			lb = strconv.FormatFloat(r.Lower, 'g', -1, 64)
		}
		if !math.IsInf(r.Upper, 1) {
			ub = strconv.FormatFloat(r.Upper, 'g', -1, 64)
		}
		tokens = append(tokens, lb, ub,
			strconv.FormatFloat(r.Coefficient, 'g', -1, 64),
			strconv.FormatFloat(r.Scalar, 'g', -1, 64))
	}
	return strings.Join(tokens, Separator)
}
