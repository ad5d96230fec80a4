package nn_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/siren/nn"
	"github.com/born-ml/siren/optim"
	"github.com/born-ml/siren/tensor"
)

func TestPublicAPI_TrainStepAndReload(t *testing.T) {
	topo := nn.Topology{Hidden: 1, HiddenSize: 4}
	net, err := nn.NewSiren(topo, nn.WithSeed(42))
	require.NoError(t, err)
	assert.Equal(t, topo.NumParams(), net.NumParams())

	x := tensor.MustFromSlice([]float32{
		0.1, -0.2,
		0.3, 0.4,
		-0.5, 0.6,
	}, tensor.Shape{nn.InDim, 2})
	y := tensor.MustFromSlice([]float32{0.2, -0.1}, tensor.Shape{nn.OutDim, 2})

	criterion := nn.NewMSELoss()
	opt := optim.NewAdam(net.Parameters(), optim.AdamConfig{LR: 1e-3})

	before := net.Flatten()
	opt.ZeroGrad()
	criterion.Forward(net.Forward(x), y)
	grad, err := criterion.Backward()
	require.NoError(t, err)
	require.NoError(t, net.Backward(grad))
	opt.Step()
	assert.NotEqual(t, before, net.Flatten())

	path := filepath.Join(t.TempDir(), "weights.bin")
	require.NoError(t, net.Save(path))
	loaded, err := nn.LoadNetwork(path, topo)
	require.NoError(t, err)
	assert.Equal(t, net.Flatten(), loaded.Flatten())

	_, err = nn.LoadNetwork(path, nn.Topology{Hidden: 2, HiddenSize: 4})
	require.ErrorIs(t, err, nn.ErrTopologyMismatch)
}
