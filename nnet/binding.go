package nnet

import (
	"errors"

	"github.com/nnverify/plsearch/constraint"
)

// Binding marks the solver variables holding a neuron's pre-activation
// (Input, b) and post-activation (Output, f) values.
type Binding struct {
	Neuron NeuronIndex
	Input  uint32
	Output uint32
}

// WireIterator yields Input then Output, then -1.
func (b *Binding) WireIterator() func() int {
	curr := 0
	return func() int {
		curr++
		switch curr {
		case 1:
			return int(b.Input)
		case 2:
			return int(b.Output)
		}
		return -1
	}
}

// Bindings numbers the hidden neurons of the network consecutively, starting
// at firstVar: each neuron gets b then f.
func (n *Network) Bindings(firstVar uint32) []Binding {
	var res []Binding
	v := firstVar
	for layer := 1; layer < n.NumLayers()-1; layer++ {
		for neuron := 0; neuron < n.LayerSize(layer); neuron++ {
			res = append(res, Binding{
				Neuron: NeuronIndex{Layer: layer - 1, Neuron: neuron},
				Input:  v,
				Output: v + 1,
			})
			v += 2
		}
	}
	return res
}

// BuildNetworkConstraints builds the activation constraint of every binding
// and adds them to pool, in binding order. Neurons with an annotation get a
// disjunction; neurons without one get a ReLUConstraint. Nothing is added to
// the pool unless every annotation decodes.
func (b *CaseSplitBuilder) BuildNetworkConstraints(pool *constraint.Pool, bindings []Binding) ([]constraint.PiecewiseLinearConstraint, error) {
	res := make([]constraint.PiecewiseLinearConstraint, 0, len(bindings))
	for _, bind := range bindings {
		d, err := b.BuildActivationCaseSplits(bind.Neuron, bind.Input, bind.Output)
		switch {
		case errors.Is(err, ErrMissingAnnotation):
			res = append(res, constraint.NewReLUConstraint(bind.Input, bind.Output))
		case err != nil:
			return nil, err
		default:
			res = append(res, d)
		}
	}
	for _, c := range res {
		pool.Add(c)
	}
	return res, nil
}
