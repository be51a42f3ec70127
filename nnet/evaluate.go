package nnet

import (
	"errors"
	"fmt"
	"sort"
)

var ErrEvaluation = errors.New("network evaluation failed")

// Evaluate runs a forward pass on already normalized inputs. Hidden neurons
// apply their annotation when they have one and ReLU otherwise; the output
// layer is affine.
func (n *Network) Evaluate(inputs []float64) ([]float64, error) {
	if len(inputs) != n.LayerSizes[0] {
		return nil, fmt.Errorf("%w: got %d inputs, expected %d", ErrEvaluation, len(inputs), n.LayerSizes[0])
	}

	values := append([]float64(nil), inputs...)
	last := len(n.LayerSizes) - 1
	for l := 0; l < last; l++ {
		next := make([]float64, n.LayerSizes[l+1])
		for dst := range next {
			sum := n.Biases[l][dst]
			for src, v := range values {
				sum += n.Weights[l][dst][src] * v
			}
			if l+1 < last {
				var err error
				if sum, err = n.activate(NeuronIndex{Layer: l, Neuron: dst}, sum); err != nil {
					return nil, err
				}
			}
			next[dst] = sum
		}
		values = next
	}
	return values, nil
}

func (n *Network) activate(idx NeuronIndex, b float64) (float64, error) {
	annotation, ok := n.Activations[idx]
	if !ok {
		if b < 0 {
			return 0, nil
		}
		return b, nil
	}
	regions, token, err := defaultSyntax.parse(annotation)
	if err != nil {
		return 0, &DecodeError{Neuron: idx, Annotation: annotation, Token: token, Err: err}
	}
	for _, r := range regions {
		if r.Contains(b) {
			return r.Apply(b), nil
		}
	}
	return 0, fmt.Errorf("%w: neuron %s: input %g is outside every region of %q", ErrEvaluation, idx, b, annotation)
}

func sortIndices(indices []NeuronIndex) {
	sort.Slice(indices, func(i, j int) bool {
		return indices[i].Less(indices[j])
	})
}
