package nnet

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nnverify/plsearch/constraint"
)

// newTestNetwork returns a 2-2-1 network:
//
//	h0 = x0 - x1, h1 = x0 + x1 - 1, y = h0 + 2⋅h1 + 0.5
func newTestNetwork() *Network {
	n := New([]int{2, 2, 1})
	n.SetWeight(0, 0, 0, 1)
	n.SetWeight(0, 1, 0, -1)
	n.SetWeight(0, 0, 1, 1)
	n.SetWeight(0, 1, 1, 1)
	n.SetBias(1, 1, -1)
	n.SetWeight(1, 0, 0, 1)
	n.SetWeight(1, 1, 0, 2)
	n.SetBias(2, 0, 0.5)
	n.Mins = []float64{0, -10}
	n.Maxes = []float64{10, 10}
	n.Means = []float64{5, 0}
	n.Ranges = []float64{10, 20}
	return n
}

func TestNetworkAccessors(t *testing.T) {
	assert := require.New(t)
	n := newTestNetwork()
	assert.NoError(n.Validate())

	assert.Equal(3, n.NumLayers())
	assert.Equal(2, n.LayerSize(1))
	assert.Equal(-1.0, n.Weight(0, 1, 0))
	assert.Equal(2.0, n.Weight(1, 1, 0))
	assert.Equal(-1.0, n.Bias(1, 1))
	assert.Panics(func() { n.Bias(0, 0) })

	min, max := n.InputRange(0)
	assert.Equal(-0.5, min)
	assert.Equal(0.5, max)
	min, max = n.InputRange(1)
	assert.Equal(-0.5, min)
	assert.Equal(0.5, max)
}

func TestEvaluate(t *testing.T) {
	assert := require.New(t)
	n := newTestNetwork()

	// h0 = relu(1) = 1, h1 = relu(2) = 2
	out, err := n.Evaluate([]float64{2, 1})
	assert.NoError(err)
	assert.Equal([]float64{5.5}, out)

	// h0 = relu(-1) = 0, h1 = relu(0) = 0
	out, err = n.Evaluate([]float64{0, 1})
	assert.NoError(err)
	assert.Equal([]float64{0.5}, out)

	// leaky activation on h0
	n.SetActivation(NeuronIndex{Layer: 0, Neuron: 0}, "-infty,0,0.5,0,0,infty,1,0")
	out, err = n.Evaluate([]float64{0, 1})
	assert.NoError(err)
	assert.Equal([]float64{0}, out)

	_, err = n.Evaluate([]float64{1})
	assert.ErrorIs(err, ErrEvaluation)
}

func TestEvaluateAnnotationErrors(t *testing.T) {
	assert := require.New(t)
	n := newTestNetwork()

	n.SetActivation(NeuronIndex{Layer: 0, Neuron: 1}, "0,1,1,0")
	_, err := n.Evaluate([]float64{2, 1})
	assert.ErrorIs(err, ErrEvaluation)

	n.SetActivation(NeuronIndex{Layer: 0, Neuron: 1}, "0,1,1")
	_, err = n.Evaluate([]float64{2, 1})
	assert.ErrorIs(err, ErrMalformedAnnotation)
}

func TestValidate(t *testing.T) {
	assert := require.New(t)

	n := newTestNetwork()
	n.Weights[0][1] = n.Weights[0][1][:1]
	assert.ErrorIs(n.Validate(), ErrInvalidNetwork)

	n = newTestNetwork()
	n.SetActivation(NeuronIndex{Layer: 1, Neuron: 0}, "-infty,infty,1,0")
	assert.ErrorIs(n.Validate(), ErrInvalidNetwork, "output neurons carry no annotation")

	assert.ErrorIs(New([]int{3}).Validate(), ErrInvalidNetwork)
}

func TestBindingsAndNetworkConstraints(t *testing.T) {
	assert := require.New(t)
	n := New([]int{2, 3, 2, 1})
	n.SetActivation(NeuronIndex{Layer: 1, Neuron: 0}, "-infty,0,0,0,0,infty,1,0")

	bindings := n.Bindings(2)
	assert.Len(bindings, 5)
	assert.Equal(Binding{Neuron: NeuronIndex{Layer: 0, Neuron: 0}, Input: 2, Output: 3}, bindings[0])
	assert.Equal(Binding{Neuron: NeuronIndex{Layer: 1, Neuron: 1}, Input: 10, Output: 11}, bindings[4])

	next := bindings[4].WireIterator()
	assert.Equal(10, next())
	assert.Equal(11, next())
	assert.Equal(-1, next())

	pool := constraint.NewPool()
	b := newBuilder(annotations(n.Activations))
	cs, err := b.BuildNetworkConstraints(pool, bindings)
	assert.NoError(err)
	assert.Len(cs, 5)
	assert.Equal(5, pool.Len())
	assert.IsType(&constraint.ReLUConstraint{}, cs[0])
	assert.IsType(&constraint.DisjunctionConstraint{}, cs[3])
	for i, c := range cs {
		assert.Equal(i, c.ID())
	}

	// a bad annotation leaves the pool untouched
	n.SetActivation(NeuronIndex{Layer: 1, Neuron: 1}, "-infty,0,0")
	pool = constraint.NewPool()
	cs, err = newBuilder(annotations(n.Activations)).BuildNetworkConstraints(pool, bindings)
	assert.ErrorIs(err, ErrMalformedAnnotation)
	assert.Nil(cs)
	assert.Equal(0, pool.Len())
}
