// Package nnet holds the network model consumed by the verifier core and
// decodes per-neuron activation annotations into case splits.
package nnet

import (
	"errors"
	"fmt"

	"golang.org/x/exp/maps"
)

var ErrInvalidNetwork = errors.New("invalid network")

// Network is a fully connected feed-forward network. It is produced by a
// loader and read by the verifier; nothing here mutates it after loading.
//
// Weights[l][dst][src] connects neuron src of layer l to neuron dst of layer
// l+1, and Biases[l][dst] is the bias of that neuron. Mins, Maxes, Means and
// Ranges are the input normalization statistics.
type Network struct {
	LayerSizes []int
	Weights    [][][]float64
	Biases     [][]float64

	Mins, Maxes   []float64
	Means, Ranges []float64

	Activations map[NeuronIndex]string
}

// New returns a network with zero weights and biases, and no annotation.
func New(layerSizes []int) *Network {
	n := &Network{
		LayerSizes:  append([]int(nil), layerSizes...),
		Activations: make(map[NeuronIndex]string),
	}
	for l := 0; l+1 < len(layerSizes); l++ {
		w := make([][]float64, layerSizes[l+1])
		for dst := range w {
			w[dst] = make([]float64, layerSizes[l])
		}
		n.Weights = append(n.Weights, w)
		n.Biases = append(n.Biases, make([]float64, layerSizes[l+1]))
	}
	return n
}

// NumLayers counts the input and output layers.
func (n *Network) NumLayers() int {
	return len(n.LayerSizes)
}

func (n *Network) LayerSize(layer int) int {
	return n.LayerSizes[layer]
}

// Weight returns the weight from sourceNeuron of sourceLayer to targetNeuron
// of the next layer.
func (n *Network) Weight(sourceLayer, sourceNeuron, targetNeuron int) float64 {
	return n.Weights[sourceLayer][targetNeuron][sourceNeuron]
}

func (n *Network) SetWeight(sourceLayer, sourceNeuron, targetNeuron int, w float64) {
	n.Weights[sourceLayer][targetNeuron][sourceNeuron] = w
}

// Bias returns the bias of a neuron. The input layer has no bias: layer must
// be at least 1.
func (n *Network) Bias(layer, neuron int) float64 {
	if layer < 1 {
		panic("the input layer has no bias")
	}
	return n.Biases[layer-1][neuron]
}

func (n *Network) SetBias(layer, neuron int, b float64) {
	if layer < 1 {
		panic("the input layer has no bias")
	}
	n.Biases[layer-1][neuron] = b
}

// InputRange returns the normalized range of input i: (x - mean) / range for
// x the raw minimum and maximum.
func (n *Network) InputRange(i int) (min, max float64) {
	min = (n.Mins[i] - n.Means[i]) / n.Ranges[i]
	max = (n.Maxes[i] - n.Means[i]) / n.Ranges[i]
	return
}

// Activation implements AnnotationSource.
func (n *Network) Activation(idx NeuronIndex) (string, bool) {
	a, ok := n.Activations[idx]
	return a, ok
}

func (n *Network) SetActivation(idx NeuronIndex, annotation string) {
	if n.Activations == nil {
		n.Activations = make(map[NeuronIndex]string)
	}
	n.Activations[idx] = annotation
}

// AnnotatedNeurons returns the annotated neurons in layer then position order.
func (n *Network) AnnotatedNeurons() []NeuronIndex {
	keys := maps.Keys(n.Activations)
	sortIndices(keys)
	return keys
}

// Validate checks that every matrix matches the layer sizes and that every
// annotation refers to a hidden neuron.
func (n *Network) Validate() error {
	if len(n.LayerSizes) < 2 {
		return fmt.Errorf("%w: %d layers, need at least 2", ErrInvalidNetwork, len(n.LayerSizes))
	}
	if len(n.Weights) != len(n.LayerSizes)-1 || len(n.Biases) != len(n.LayerSizes)-1 {
		return fmt.Errorf("%w: expected %d weight and bias layers", ErrInvalidNetwork, len(n.LayerSizes)-1)
	}
	for l := range n.Weights {
		if len(n.Weights[l]) != n.LayerSizes[l+1] || len(n.Biases[l]) != n.LayerSizes[l+1] {
			return fmt.Errorf("%w: layer %d has %d neurons", ErrInvalidNetwork, l+1, n.LayerSizes[l+1])
		}
		for dst := range n.Weights[l] {
			if len(n.Weights[l][dst]) != n.LayerSizes[l] {
				return fmt.Errorf("%w: neuron %d of layer %d expects %d inputs", ErrInvalidNetwork, dst, l+1, n.LayerSizes[l])
			}
		}
	}
	for _, stats := range [][]float64{n.Mins, n.Maxes, n.Means, n.Ranges} {
		if stats != nil && len(stats) < n.LayerSizes[0] {
			return fmt.Errorf("%w: normalization statistics cover %d of %d inputs", ErrInvalidNetwork, len(stats), n.LayerSizes[0])
		}
	}
	for idx := range n.Activations {
		if idx.Layer < 0 || idx.Layer >= len(n.LayerSizes)-2 || idx.Neuron < 0 || idx.Neuron >= n.LayerSizes[idx.Layer+1] {
			return fmt.Errorf("%w: annotation for %s is not a hidden neuron", ErrInvalidNetwork, idx)
		}
	}
	return nil
}
