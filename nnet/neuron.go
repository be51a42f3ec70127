package nnet

import "fmt"

// NeuronIndex identifies a neuron. Layer counts weight layers: 0 is the
// first hidden layer, i.e. layer 1 of the network.
type NeuronIndex struct {
	Layer  int
	Neuron int
}

func (n NeuronIndex) String() string {
	return fmt.Sprintf("<%d,%d>", n.Layer, n.Neuron)
}

// Less orders indices by layer, then by position in the layer.
func (n NeuronIndex) Less(other NeuronIndex) bool {
	if n.Layer != other.Layer {
		return n.Layer < other.Layer
	}
	return n.Neuron < other.Neuron
}
