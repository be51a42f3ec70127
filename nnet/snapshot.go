package nnet

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/blang/semver/v4"
	"github.com/fxamacker/cbor/v2"

	"github.com/nnverify/plsearch"
)

var ErrIncompatibleSnapshot = errors.New("incompatible network snapshot")

// snapshot is the CBOR layout of a Network. Annotations are a list since CBOR
// maps with struct keys do not survive every decoder.
type snapshot struct {
	Version     string            `cbor:"1,keyasint"`
	LayerSizes  []int             `cbor:"2,keyasint"`
	Weights     [][][]float64     `cbor:"3,keyasint"`
	Biases      [][]float64       `cbor:"4,keyasint"`
	Mins        []float64         `cbor:"5,keyasint,omitempty"`
	Maxes       []float64         `cbor:"6,keyasint,omitempty"`
	Means       []float64         `cbor:"7,keyasint,omitempty"`
	Ranges      []float64         `cbor:"8,keyasint,omitempty"`
	Activations []activationEntry `cbor:"9,keyasint,omitempty"`
}

type activationEntry struct {
	_          struct{} `cbor:",toarray"`
	Layer      int
	Neuron     int
	Annotation string
}

// WriteTo writes a CBOR snapshot of the network, tagged with the module
// version. Annotations are written in layer then position order.
func (n *Network) WriteTo(w io.Writer) (int64, error) {
	s := snapshot{
		Version:    plsearch.Version.String(),
		LayerSizes: n.LayerSizes,
		Weights:    n.Weights,
		Biases:     n.Biases,
		Mins:       n.Mins,
		Maxes:      n.Maxes,
		Means:      n.Means,
		Ranges:     n.Ranges,
	}
	for _, idx := range n.AnnotatedNeurons() {
		s.Activations = append(s.Activations, activationEntry{Layer: idx.Layer, Neuron: idx.Neuron, Annotation: n.Activations[idx]})
	}

	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return 0, err
	}
	data, err := enc.Marshal(&s)
	if err != nil {
		return 0, fmt.Errorf("encode network: %w", err)
	}
	written, err := w.Write(data)
	return int64(written), err
}

// ReadFrom replaces the network with the snapshot read from r. Snapshots
// written by a newer version, or by another major version, are rejected.
func (n *Network) ReadFrom(r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return int64(len(data)), err
	}
	read := int64(len(data))

	dec, err := cbor.DecOptions{
		MaxArrayElements: math.MaxInt32,
		MaxMapPairs:      math.MaxInt32,
	}.DecMode()
	if err != nil {
		return read, err
	}
	var s snapshot
	if err := dec.Unmarshal(data, &s); err != nil {
		return read, fmt.Errorf("decode network: %w", err)
	}

	v, err := semver.Parse(s.Version)
	if err != nil {
		return read, fmt.Errorf("%w: version %q: %v", ErrIncompatibleSnapshot, s.Version, err)
	}
	if v.Major != plsearch.Version.Major || v.GT(plsearch.Version) {
		return read, fmt.Errorf("%w: snapshot version %s, module version %s", ErrIncompatibleSnapshot, v, plsearch.Version)
	}

	*n = Network{
		LayerSizes:  s.LayerSizes,
		Weights:     s.Weights,
		Biases:      s.Biases,
		Mins:        s.Mins,
		Maxes:       s.Maxes,
		Means:       s.Means,
		Ranges:      s.Ranges,
		Activations: make(map[NeuronIndex]string, len(s.Activations)),
	}
	for _, a := range s.Activations {
		n.Activations[NeuronIndex{Layer: a.Layer, Neuron: a.Neuron}] = a.Annotation
	}
	if err := n.Validate(); err != nil {
		return read, err
	}
	return read, nil
}
