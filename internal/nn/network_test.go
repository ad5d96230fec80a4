package nn_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/siren/internal/nn"
	"github.com/born-ml/siren/internal/tensor"
)

func TestTopology(t *testing.T) {
	topo := nn.Topology{Hidden: 2, HiddenSize: 16}
	require.NoError(t, topo.Validate())

	assert.Equal(t, [][2]int{{16, 3}, {16, 16}, {16, 16}, {1, 16}}, topo.LinearShapes())
	// 16*3+16 + 2*(16*16+16) + 16+1
	assert.Equal(t, 64+544+17, topo.NumParams())
	assert.Equal(t, "n_hidden=2 hidden_size=16", topo.String())

	require.ErrorIs(t, nn.Topology{Hidden: -1, HiddenSize: 4}.Validate(), nn.ErrInvalidTopology)
	require.ErrorIs(t, nn.Topology{Hidden: 1, HiddenSize: 0}.Validate(), nn.ErrInvalidTopology)
}

func TestNewSiren_Layout(t *testing.T) {
	net, err := nn.NewSiren(nn.Topology{Hidden: 1, HiddenSize: 8}, nn.WithSeed(1))
	require.NoError(t, err)

	// Linear, Sine, Linear, Sine, Linear
	require.Equal(t, 5, net.Len())
	for i := range net.Len() {
		if i%2 == 0 {
			assert.IsType(t, &nn.Linear{}, net.Layer(i))
		} else {
			assert.IsType(t, &nn.Sine{}, net.Layer(i))
		}
	}

	topo, ok := net.Topology()
	require.True(t, ok)
	assert.Equal(t, nn.Topology{Hidden: 1, HiddenSize: 8}, topo)
	assert.Equal(t, topo.NumParams(), net.NumParams())
	assert.Equal(t, nn.DefaultW0, net.W0())
}

func TestNewSiren_ZeroHidden(t *testing.T) {
	net, err := nn.NewSiren(nn.Topology{Hidden: 0, HiddenSize: 4}, nn.WithSeed(1))
	require.NoError(t, err)
	assert.Equal(t, 3, net.Len())
	assert.Equal(t, 4*3+4+4+1, net.NumParams())
}

func TestNewSiren_InvalidTopology(t *testing.T) {
	_, err := nn.NewSiren(nn.Topology{Hidden: 1, HiddenSize: 0})
	require.ErrorIs(t, err, nn.ErrInvalidTopology)
}

func TestNewSiren_SeedReproducible(t *testing.T) {
	topo := nn.Topology{Hidden: 1, HiddenSize: 8}
	a, err := nn.NewSiren(topo, nn.WithSeed(42))
	require.NoError(t, err)
	b, err := nn.NewSiren(topo, nn.WithRand(rand.New(rand.NewSource(42))))
	require.NoError(t, err)
	assert.Equal(t, a.Flatten(), b.Flatten())
}

func TestNewNetwork_Validation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	lin := func(in, out int) *nn.Linear { return nn.NewLinear(in, out, nn.DefaultW0, rng) }
	sine := func() *nn.Sine { return nn.NewSine(nn.DefaultW0) }

	tests := []struct {
		name   string
		layers []nn.Layer
		ok     bool
	}{
		{"minimal", []nn.Layer{lin(3, 4), sine(), lin(4, 1)}, true},
		{"empty", nil, false},
		{"wrong input dim", []nn.Layer{lin(2, 4), sine(), lin(4, 1)}, false},
		{"wrong output dim", []nn.Layer{lin(3, 4), sine(), lin(4, 2)}, false},
		{"width mismatch", []nn.Layer{lin(3, 4), sine(), lin(5, 1)}, false},
		{"missing sine", []nn.Layer{lin(3, 4), lin(4, 1)}, false},
		{"double sine", []nn.Layer{lin(3, 4), sine(), sine(), lin(4, 1)}, false},
		{"trailing sine", []nn.Layer{lin(3, 1), sine()}, false},
		{"leading sine", []nn.Layer{sine(), lin(3, 1)}, false},
		{"single linear", []nn.Layer{lin(3, 1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := nn.NewNetwork(tt.layers...)
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, nn.ErrInvalidTopology)
			}
		})
	}
}

func TestNetwork_ParametersOrder(t *testing.T) {
	net, err := nn.NewSiren(nn.Topology{Hidden: 1, HiddenSize: 4}, nn.WithSeed(1))
	require.NoError(t, err)

	params := net.Parameters()
	require.Len(t, params, 6)

	wantShapes := []tensor.Shape{{4, 3}, {4, 1}, {4, 4}, {4, 1}, {1, 4}, {1, 1}}
	for i, p := range params {
		assert.Equal(t, wantShapes[i], p.Tensor().Shape(), "parameter %d", i)
	}

	again := net.Parameters()
	for i := range params {
		assert.Same(t, params[i], again[i])
	}
}

func TestNetwork_ForwardIdempotent(t *testing.T) {
	net, err := nn.NewSiren(nn.Topology{Hidden: 2, HiddenSize: 16}, nn.WithSeed(3))
	require.NoError(t, err)
	x := randomTensor(rand.New(rand.NewSource(4)), tensor.Shape{3, 10}, 1)

	y1 := net.Forward(x)
	y2 := net.Forward(x)
	y3 := net.Eval(x)

	assert.Equal(t, tensor.Shape{1, 10}, y1.Shape())
	assert.True(t, y1.Equal(y2))
	assert.True(t, y1.Equal(y3))
}

func TestNetwork_BackwardWithoutForward(t *testing.T) {
	net, err := nn.NewSiren(nn.Topology{Hidden: 1, HiddenSize: 4}, nn.WithSeed(1))
	require.NoError(t, err)

	err = net.Backward(tensor.Zeros(tensor.Shape{1, 3}))
	require.ErrorIs(t, err, nn.ErrNoForwardCache)
	assert.Contains(t, err.Error(), "layer 4")
}

func TestNetwork_EvalLeavesNoCache(t *testing.T) {
	net, err := nn.NewSiren(nn.Topology{Hidden: 1, HiddenSize: 4}, nn.WithSeed(1))
	require.NoError(t, err)

	net.Eval(tensor.Zeros(tensor.Shape{3, 2}))
	require.ErrorIs(t, net.Backward(tensor.Zeros(tensor.Shape{1, 2})), nn.ErrNoForwardCache)
}

// Backpropagating the MSE seed gradient must match finite differences of the
// loss with respect to every parameter.
func TestNetwork_BackwardFiniteDifference(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	net, err := nn.NewSiren(nn.Topology{Hidden: 1, HiddenSize: 5}, nn.WithRand(rng), nn.WithW0(1))
	require.NoError(t, err)

	x := randomTensor(rng, tensor.Shape{3, 7}, 1)
	y := randomTensor(rng, tensor.Shape{1, 7}, 1)

	mse := nn.NewMSELoss()
	loss := func() float64 {
		return float64(mse.Forward(net.Eval(x), y))
	}

	params := net.Parameters()
	want := make([][]float64, len(params))
	for i, p := range params {
		want[i] = numericGradient(p.Tensor().Data(), 1e-3, loss)
	}

	mse.Forward(net.Forward(x), y)
	grad, err := mse.Backward()
	require.NoError(t, err)
	require.NoError(t, net.Backward(grad))

	for i, p := range params {
		assertGradientsClose(t, want[i], p.Grad(), 2e-3, p.Name())
	}
}

func TestNetwork_LoadFlatMismatch(t *testing.T) {
	net, err := nn.NewSiren(nn.Topology{Hidden: 1, HiddenSize: 4}, nn.WithSeed(1))
	require.NoError(t, err)

	err = net.LoadFlat(make([]float32, net.NumParams()-1))
	require.ErrorIs(t, err, nn.ErrTopologyMismatch)

	values := make([]float32, net.NumParams())
	for i := range values {
		values[i] = float32(i)
	}
	require.NoError(t, net.LoadFlat(values))
	assert.Equal(t, values, net.Flatten())
}

func TestNetwork_LayerOutOfRangePanics(t *testing.T) {
	net, err := nn.NewSiren(nn.Topology{Hidden: 0, HiddenSize: 2}, nn.WithSeed(1))
	require.NoError(t, err)
	assert.Panics(t, func() { net.Layer(3) })
}
