package nnet

import (
	"bytes"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	assert := require.New(t)
	n := newTestNetwork()
	n.SetActivation(NeuronIndex{Layer: 0, Neuron: 1}, "-infty,0,0,0,0,infty,1,0")
	n.SetActivation(NeuronIndex{Layer: 0, Neuron: 0}, "-infty,infty,1,0")

	var buf bytes.Buffer
	written, err := n.WriteTo(&buf)
	assert.NoError(err)
	assert.EqualValues(buf.Len(), written)

	// deterministic encoding
	var again bytes.Buffer
	_, err = n.WriteTo(&again)
	assert.NoError(err)
	assert.Equal(buf.Bytes(), again.Bytes())

	var decoded Network
	read, err := decoded.ReadFrom(&buf)
	assert.NoError(err)
	assert.Equal(written, read)
	if diff := cmp.Diff(n, &decoded); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotVersion(t *testing.T) {
	for _, version := range []string{"1.0.0", "0.99.0", "not a version"} {
		t.Run(version, func(t *testing.T) {
			assert := require.New(t)
			data, err := cbor.Marshal(&snapshot{Version: version, LayerSizes: []int{1, 1}})
			assert.NoError(err)

			var n Network
			_, err = n.ReadFrom(bytes.NewReader(data))
			assert.ErrorIs(err, ErrIncompatibleSnapshot)
		})
	}
}

func TestSnapshotRejectsInvalidNetwork(t *testing.T) {
	assert := require.New(t)
	data, err := cbor.Marshal(&snapshot{Version: "0.1.0", LayerSizes: []int{2, 1}})
	assert.NoError(err)

	var n Network
	_, err = n.ReadFrom(bytes.NewReader(data))
	assert.ErrorIs(err, ErrInvalidNetwork)
}
