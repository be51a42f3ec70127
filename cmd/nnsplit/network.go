package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nnverify/plsearch/nnet"
)

// networkFile is the YAML description of a network.
type networkFile struct {
	Layers      []int           `yaml:"layers"`
	Weights     [][][]float64   `yaml:"weights"`
	Biases      [][]float64     `yaml:"biases"`
	Mins        []float64       `yaml:"mins,omitempty"`
	Maxes       []float64       `yaml:"maxes,omitempty"`
	Means       []float64       `yaml:"means,omitempty"`
	Ranges      []float64       `yaml:"ranges,omitempty"`
	Activations []activationDef `yaml:"activations,omitempty"`
}

type activationDef struct {
	Layer      int    `yaml:"layer"`
	Neuron     int    `yaml:"neuron"`
	Annotation string `yaml:"annotation"`
}

func loadNetwork(path string) (*nnet.Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".cbor":
		var n nnet.Network
		if _, err := n.ReadFrom(f); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &n, nil
	case ".yaml", ".yml":
		var nf networkFile
		if err := yaml.NewDecoder(f).Decode(&nf); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		n := &nnet.Network{
			LayerSizes: nf.Layers,
			Weights:    nf.Weights,
			Biases:     nf.Biases,
			Mins:       nf.Mins,
			Maxes:      nf.Maxes,
			Means:      nf.Means,
			Ranges:     nf.Ranges,
		}
		for _, a := range nf.Activations {
			n.SetActivation(nnet.NeuronIndex{Layer: a.Layer, Neuron: a.Neuron}, a.Annotation)
		}
		if err := n.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("%s: unsupported network format %q", path, ext)
	}
}
