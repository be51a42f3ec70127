package nnet

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/nnverify/plsearch/constraint"
	"github.com/nnverify/plsearch/logger"
	"github.com/nnverify/plsearch/profile"
)

// AnnotationSource looks up the activation annotation of a neuron.
// *Network implements it.
type AnnotationSource interface {
	Activation(idx NeuronIndex) (string, bool)
}

// CaseSplitBuilder turns activation annotations into disjunctions the search
// engine can branch on. It is stateless apart from its configuration.
type CaseSplitBuilder struct {
	src    AnnotationSource
	syntax syntax
	log    zerolog.Logger
}

// BuilderOption configures a CaseSplitBuilder.
type BuilderOption func(*CaseSplitBuilder)

// WithLowerSentinel overrides the -∞ token.
func WithLowerSentinel(token string) BuilderOption {
	return func(b *CaseSplitBuilder) {
		b.syntax.lower = token
	}
}

// WithUpperSentinel overrides the +∞ token.
func WithUpperSentinel(token string) BuilderOption {
	return func(b *CaseSplitBuilder) {
		b.syntax.upper = token
	}
}

// WithSeparator overrides the token separator.
func WithSeparator(sep string) BuilderOption {
	return func(b *CaseSplitBuilder) {
		b.syntax.separator = sep
	}
}

// WithBuilderLogger overrides the global logger.
func WithBuilderLogger(l zerolog.Logger) BuilderOption {
	return func(b *CaseSplitBuilder) {
		b.log = l
	}
}

func NewCaseSplitBuilder(src AnnotationSource, opts ...BuilderOption) *CaseSplitBuilder {
	b := &CaseSplitBuilder{src: src, syntax: defaultSyntax, log: logger.Logger()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildActivationCaseSplits returns the disjunction modeling the transfer
// function of the neuron, with inputVar (b) its pre-activation and outputVar
// (f) its post-activation variable. Regions keep the annotation order.
//
// Each region [lb, ub] with f = coef⋅b + scalar becomes
//
//	{b >= lb, b <= ub, f - coef⋅b = scalar}
//
// where unbounded ends produce no tightening. The returned error is a
// *DecodeError; no partial disjunction is ever returned.
func (b *CaseSplitBuilder) BuildActivationCaseSplits(idx NeuronIndex, inputVar, outputVar uint32) (*constraint.DisjunctionConstraint, error) {
	annotation, ok := b.src.Activation(idx)
	if !ok {
		return nil, &DecodeError{Neuron: idx, Err: ErrMissingAnnotation}
	}
	regions, token, err := b.syntax.parse(annotation)
	if err != nil {
		b.log.Debug().Stringer("neuron", idx).Str("annotation", annotation).Err(err).Msg("could not decode activation")
		return nil, &DecodeError{Neuron: idx, Annotation: annotation, Token: token, Err: err}
	}

	splits := make([]constraint.CaseSplit, 0, len(regions))
	for _, r := range regions {
		splits = append(splits, regionCaseSplit(r, inputVar, outputVar))
		profile.RecordCaseSplit()
	}

	b.log.Trace().Stringer("neuron", idx).Int("nbRegions", len(splits)).Msg("activation case splits built")
	return constraint.NewDisjunctionConstraint(splits), nil
}

func regionCaseSplit(r Region, inputVar, outputVar uint32) constraint.CaseSplit {
	var split constraint.CaseSplit
	if !math.IsInf(r.Lower, -1) {
		split.StoreBoundTightening(constraint.NewLowerBound(inputVar, r.Lower))
	}
	if !math.IsInf(r.Upper, 1) {
		split.StoreBoundTightening(constraint.NewUpperBound(inputVar, r.Upper))
	}

	// f = coef⋅b + scalar is stored as f - coef⋅b = scalar
	coeff := -r.Coefficient
	if coeff == 0 {
		// no -0 in the stored equation
		coeff = 0
	}
	var eq constraint.Equation
	eq.AddAddend(1, outputVar)
	eq.AddAddend(coeff, inputVar)
	eq.SetScalar(r.Scalar)
	split.AddEquation(eq)
	return split
}
