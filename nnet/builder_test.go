package nnet

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/nnverify/plsearch/constraint"
)

type annotations map[NeuronIndex]string

func (a annotations) Activation(idx NeuronIndex) (string, bool) {
	s, ok := a[idx]
	return s, ok
}

var reluNeuron = NeuronIndex{Layer: 0, Neuron: 1}

func newBuilder(a annotations, opts ...BuilderOption) *CaseSplitBuilder {
	return NewCaseSplitBuilder(a, append([]BuilderOption{WithBuilderLogger(zerolog.Nop())}, opts...)...)
}

func TestBuildReLUAnnotation(t *testing.T) {
	assert := require.New(t)
	b := newBuilder(annotations{reluNeuron: "-infty,0,0,0,0,infty,1,0"})

	d, err := b.BuildActivationCaseSplits(reluNeuron, 3, 7)
	assert.NoError(err)
	assert.Equal(2, d.Len())
	assert.Equal(constraint.UnassignedID, d.ID())

	splits := d.CaseSplits()

	// b <= 0, f - 0⋅b = 0
	if diff := cmp.Diff([]constraint.Tightening{constraint.NewUpperBound(3, 0)}, splits[0].BoundTightenings()); diff != "" {
		t.Fatalf("inactive bounds mismatch (-want +got):\n%s", diff)
	}
	wantInactive := []constraint.Equation{{
		Addends: constraint.LinearExpression{{Coeff: 1, VID: 7}, {Coeff: 0, VID: 3}},
		Scalar:  0,
	}}
	if diff := cmp.Diff(wantInactive, splits[0].Equations()); diff != "" {
		t.Fatalf("inactive equations mismatch (-want +got):\n%s", diff)
	}

	// b >= 0, f - 1⋅b = 0
	if diff := cmp.Diff([]constraint.Tightening{constraint.NewLowerBound(3, 0)}, splits[1].BoundTightenings()); diff != "" {
		t.Fatalf("active bounds mismatch (-want +got):\n%s", diff)
	}
	wantActive := []constraint.Equation{{
		Addends: constraint.LinearExpression{{Coeff: 1, VID: 7}, {Coeff: -1, VID: 3}},
		Scalar:  0,
	}}
	if diff := cmp.Diff(wantActive, splits[1].Equations()); diff != "" {
		t.Fatalf("active equations mismatch (-want +got):\n%s", diff)
	}

	assert.Equal("{x3 <= 0, x7 + 0⋅x3 = 0} ∨ {x3 >= 0, x7 + -x3 = 0}", d.String(nil))

	// the disjunction agrees with the relu it encodes
	relu := constraint.NewReLUConstraint(3, 7)
	for _, bv := range []float64{-2, -0.5, 0, 0.5, 4} {
		f := bv
		if f < 0 {
			f = 0
		}
		assert.True(d.Satisfied(map[uint32]float64{3: bv, 7: f}))
		assert.True(relu.Satisfied(map[uint32]float64{3: bv, 7: f}))
		assert.False(d.Satisfied(map[uint32]float64{3: bv, 7: f + 1}))
	}
	assert.Equal([]int{0, 1}, d.MatchingSplits(map[uint32]float64{3: 0, 7: 0}))
	assert.Equal([]int{1}, d.MatchingSplits(map[uint32]float64{3: 2, 7: 2}))
}

func TestBuildSignConvention(t *testing.T) {
	assert := require.New(t)
	b := newBuilder(annotations{reluNeuron: "-infty,infty,2,3"})

	d, err := b.BuildActivationCaseSplits(reluNeuron, 0, 1)
	assert.NoError(err)
	assert.Equal(1, d.Len())

	split := d.CaseSplits()[0]
	assert.Empty(split.BoundTightenings())
	eqs := split.Equations()
	assert.Len(eqs, 1)
	assert.Equal(constraint.LinearExpression{{Coeff: 1, VID: 1}, {Coeff: -2, VID: 0}}, eqs[0].Addends)
	assert.Equal(3.0, eqs[0].Scalar)

	for _, bv := range []float64{-10, -1.5, 0, 2, 1e6} {
		assignment := map[uint32]float64{0: bv, 1: 2*bv + 3}
		assert.True(eqs[0].Holds(assignment, 1e-6), "b=%g", bv)
		assert.InDelta(3.0, eqs[0].Evaluate(assignment), 1e-6)
	}
	assert.False(eqs[0].Holds(map[uint32]float64{0: 1, 1: 1}, 1e-6))
}

func TestBuildSentinels(t *testing.T) {
	assert := require.New(t)
	b := newBuilder(annotations{
		reluNeuron: "-infty, -1, 0, -1,  -1, 1, 1, 0,  1, infty, 0, 1",
	})

	d, err := b.BuildActivationCaseSplits(reluNeuron, 4, 5)
	assert.NoError(err)
	splits := d.CaseSplits()
	assert.Len(splits, 3)

	assert.Equal([]constraint.Tightening{constraint.NewUpperBound(4, -1)}, splits[0].BoundTightenings())
	assert.Equal([]constraint.Tightening{constraint.NewLowerBound(4, -1), constraint.NewUpperBound(4, 1)}, splits[1].BoundTightenings())
	assert.Equal([]constraint.Tightening{constraint.NewLowerBound(4, 1)}, splits[2].BoundTightenings())

	for _, s := range splits {
		for _, bound := range s.BoundTightenings() {
			assert.Equal(uint32(4), bound.Variable)
		}
	}
	assert.True(d.Participates(4))
	assert.True(d.Participates(5))
	assert.False(d.Participates(6))
}

func TestBuildDecodeErrors(t *testing.T) {
	tests := []struct {
		name       string
		annotation string
		want       error
		token      string
	}{
		{"five tokens", "-infty,0,0,0,1", ErrMalformedAnnotation, ""},
		{"three tokens", "0,1,2", ErrMalformedAnnotation, ""},
		{"empty", "", ErrMalformedAnnotation, ""},
		{"bad coefficient", "-infty,infty,abc,0", ErrInvalidNumber, "abc"},
		{"bad scalar", "-infty,infty,1,", ErrInvalidNumber, ""},
		{"nan", "-infty,infty,nan,0", ErrInvalidNumber, "nan"},
		{"inf bound", "-inf,infty,1,0", ErrInvalidNumber, "-inf"},
		{"swapped sentinel", "-infty,-infty,1,0", ErrInvalidNumber, "-infty"},
		{"bad second region", "-infty,0,0,0,0,infty,x,0", ErrInvalidNumber, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := require.New(t)
			b := newBuilder(annotations{reluNeuron: tt.annotation})

			d, err := b.BuildActivationCaseSplits(reluNeuron, 0, 1)
			assert.Nil(d)
			assert.True(errors.Is(err, tt.want), "got %v", err)

			var derr *DecodeError
			assert.True(errors.As(err, &derr))
			assert.Equal(reluNeuron, derr.Neuron)
			assert.Equal(tt.annotation, derr.Annotation)
			assert.Equal(tt.token, derr.Token)
			assert.Contains(err.Error(), reluNeuron.String())
		})
	}
}

func TestBuildMissingAnnotation(t *testing.T) {
	assert := require.New(t)
	b := newBuilder(annotations{reluNeuron: "-infty,infty,1,0"})

	other := NeuronIndex{Layer: 1, Neuron: 1}
	d, err := b.BuildActivationCaseSplits(other, 0, 1)
	assert.Nil(d)
	assert.ErrorIs(err, ErrMissingAnnotation)
	assert.Equal("neuron <1,1>: activation annotation does not exist", err.Error())
}

func TestBuildCustomSyntax(t *testing.T) {
	assert := require.New(t)
	b := newBuilder(annotations{reluNeuron: "-inf;0;0;0;0;+inf;1;0"},
		WithLowerSentinel("-inf"), WithUpperSentinel("+inf"), WithSeparator(";"))

	d, err := b.BuildActivationCaseSplits(reluNeuron, 3, 7)
	assert.NoError(err)
	assert.Equal(2, d.Len())
}

func TestParseAndFormatAnnotation(t *testing.T) {
	assert := require.New(t)
	const annotation = "-infty,0,0.01,0,0,infty,1,0"
	regions, err := ParseAnnotation(annotation)
	assert.NoError(err)
	assert.Len(regions, 2)
	assert.True(regions[0].Contains(-5))
	assert.InDelta(-0.05, regions[0].Apply(-5), 1e-12)
	assert.Equal(annotation, FormatAnnotation(regions))

	_, err = ParseAnnotation("1,2,3")
	assert.ErrorIs(err, ErrMalformedAnnotation)
}
