package nn_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/siren/internal/nn"
	"github.com/born-ml/siren/internal/serialization"
	"github.com/born-ml/siren/internal/tensor"
)

// TestRawRoundTrip tests Save → LoadNetwork reproduces bit-identical outputs.
func TestRawRoundTrip(t *testing.T) {
	topo := nn.Topology{Hidden: 2, HiddenSize: 12}
	model, err := nn.NewSiren(topo, nn.WithSeed(8))
	require.NoError(t, err)

	input := randomTensor(rand.New(rand.NewSource(9)), tensor.Shape{3, 16}, 1)
	pred1 := model.Forward(input)

	tmpFile := filepath.Join(t.TempDir(), "model.bin")
	require.NoError(t, model.Save(tmpFile))

	info, err := os.Stat(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, int64(topo.NumParams()*4), info.Size())

	loaded, err := nn.LoadNetwork(tmpFile, topo)
	require.NoError(t, err)

	pred2 := loaded.Forward(input)
	assert.True(t, pred1.Equal(pred2), "predictions differ after reload: %v vs %v", pred1, pred2)
}

// TestRawLayout checks the byte order: each Linear's weight row-major, then its bias.
func TestRawLayout(t *testing.T) {
	model, err := nn.NewSiren(nn.Topology{Hidden: 0, HiddenSize: 2}, nn.WithSeed(1))
	require.NoError(t, err)

	values := []float32{
		1, 2, 3, 4, 5, 6, // W0 [2,3]
		7, 8, // b0 [2,1]
		9, 10, // W1 [1,2]
		11, // b1 [1,1]
	}
	require.NoError(t, model.LoadFlat(values))

	w0 := model.Layer(0).(*nn.Linear).Weight().Tensor()
	assert.Equal(t, float32(6), w0.At(1, 2))

	var buf bytes.Buffer
	n, err := model.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(44), n)

	raw := buf.Bytes()
	require.Len(t, raw, 44)
	for i, want := range values {
		got := math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		assert.Equal(t, want, got, "value %d", i)
	}
}

func TestRawTopologyMismatch(t *testing.T) {
	model, err := nn.NewSiren(nn.Topology{Hidden: 1, HiddenSize: 8}, nn.WithSeed(1))
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = model.WriteTo(&buf)
	require.NoError(t, err)

	_, err = nn.ReadNetwork(bytes.NewReader(buf.Bytes()), nn.Topology{Hidden: 2, HiddenSize: 8})
	require.ErrorIs(t, err, nn.ErrTopologyMismatch)
}

func TestRawTruncatedValue(t *testing.T) {
	_, err := nn.ReadNetwork(bytes.NewReader([]byte{1, 2, 3}), nn.Topology{Hidden: 0, HiddenSize: 1})
	require.ErrorIs(t, err, serialization.ErrTruncated)
}

// TestContainerRoundTrip tests SaveContainer → LoadNetwork with the self-describing layout.
func TestContainerRoundTrip(t *testing.T) {
	topo := nn.Topology{Hidden: 1, HiddenSize: 6}
	model, err := nn.NewSiren(topo, nn.WithSeed(2))
	require.NoError(t, err)

	tmpFile := filepath.Join(t.TempDir(), "model.sirn")
	require.NoError(t, model.SaveContainer(tmpFile, map[string]string{"epochs": "10"}))

	f, err := os.Open(tmpFile)
	require.NoError(t, err)
	header, values, err := serialization.ReadContainer(f)
	require.NoError(t, f.Close())
	require.NoError(t, err)

	assert.Equal(t, 1, header.Topology.Hidden)
	assert.Equal(t, 6, header.Topology.HiddenSize)
	assert.Equal(t, nn.DefaultW0, header.Topology.W0)
	assert.Equal(t, "10", header.Metadata["epochs"])
	assert.NotEmpty(t, header.RunID)
	require.Len(t, header.Tensors, 6)
	assert.Equal(t, "0.weight", header.Tensors[0].Name)
	assert.Equal(t, "2.bias", header.Tensors[5].Name)
	assert.Equal(t, model.Flatten(), values)

	loaded, err := nn.LoadNetwork(tmpFile, topo)
	require.NoError(t, err)
	assert.Equal(t, model.Flatten(), loaded.Flatten())
}

func TestContainerTopologyMismatch(t *testing.T) {
	model, err := nn.NewSiren(nn.Topology{Hidden: 1, HiddenSize: 6}, nn.WithSeed(2))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, model.WriteContainer(&buf, nil))

	_, err = nn.ReadNetwork(bytes.NewReader(buf.Bytes()), nn.Topology{Hidden: 1, HiddenSize: 7})
	require.ErrorIs(t, err, nn.ErrTopologyMismatch)
}

func TestContainerPreservesW0(t *testing.T) {
	topo := nn.Topology{Hidden: 0, HiddenSize: 3}
	model, err := nn.NewSiren(topo, nn.WithSeed(2), nn.WithW0(10))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, model.WriteContainer(&buf, nil))

	loaded, err := nn.ReadNetwork(&buf, topo)
	require.NoError(t, err)
	assert.Equal(t, float32(10), loaded.W0())
}

func TestLoadNetwork_MissingFile(t *testing.T) {
	_, err := nn.LoadNetwork(filepath.Join(t.TempDir(), "missing.bin"), nn.Topology{Hidden: 0, HiddenSize: 1})
	require.ErrorIs(t, err, os.ErrNotExist)
}
