package nn_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/siren/internal/nn"
	"github.com/born-ml/siren/internal/tensor"
)

func TestLinear_Shapes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	layer := nn.NewLinear(3, 16, nn.DefaultW0, rng)

	assert.Equal(t, 3, layer.InFeatures())
	assert.Equal(t, 16, layer.OutFeatures())
	assert.Equal(t, tensor.Shape{16, 3}, layer.Weight().Tensor().Shape())
	assert.Equal(t, tensor.Shape{16, 1}, layer.Bias().Tensor().Shape())

	params := layer.Parameters()
	require.Len(t, params, 2)
	assert.Same(t, layer.Weight(), params[0])
	assert.Same(t, layer.Bias(), params[1])

	for _, v := range layer.Bias().Tensor().Data() {
		assert.Zero(t, v)
	}

	y := layer.Forward(tensor.Zeros(tensor.Shape{3, 5}))
	assert.Equal(t, tensor.Shape{16, 5}, y.Shape())
}

func TestLinear_ForwardKnownValues(t *testing.T) {
	w := tensor.MustFromSlice([]float32{
		1, 2, 3,
		-1, 0, 1,
	}, tensor.Shape{2, 3})
	b := tensor.MustFromSlice([]float32{0.5, -0.5}, tensor.Shape{2, 1})
	layer, err := nn.NewLinearFrom(w, b)
	require.NoError(t, err)

	// Two samples: (1, 1, 1) and (0, 1, 2).
	x := tensor.MustFromSlice([]float32{
		1, 0,
		1, 1,
		1, 2,
	}, tensor.Shape{3, 2})
	y := layer.Forward(x)

	assert.Equal(t, []float32{6.5, 8.5, -0.5, 1.5}, y.Data())
}

func TestNewLinearFrom_BiasMismatch(t *testing.T) {
	_, err := nn.NewLinearFrom(tensor.Zeros(tensor.Shape{2, 3}), tensor.Zeros(tensor.Shape{3, 1}))
	require.Error(t, err)
}

func TestNewLinear_InvalidDimsPanic(t *testing.T) {
	assert.Panics(t, func() { nn.NewLinear(0, 4, nn.DefaultW0, rand.New(rand.NewSource(1))) })
}

func TestLinear_ForwardWrongFeaturesPanics(t *testing.T) {
	layer := nn.NewLinear(3, 4, nn.DefaultW0, rand.New(rand.NewSource(1)))
	assert.Panics(t, func() { layer.Forward(tensor.Zeros(tensor.Shape{4, 2})) })
}

func TestLinear_BackwardAnalytic(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	layer := nn.NewLinear(3, 4, 1, rng)
	x := randomTensor(rng, tensor.Shape{3, 5}, 1)
	g := randomTensor(rng, tensor.Shape{4, 5}, 1)

	layer.Forward(x)
	dx, err := layer.Backward(g)
	require.NoError(t, err)

	w := layer.Weight().Tensor()
	dW := layer.Weight().Grad()
	db := layer.Bias().Grad()

	for i := range 4 {
		var bsum float64
		for k := range 5 {
			bsum += float64(g.At(i, k))
		}
		assert.InDelta(t, bsum, float64(db.At(i, 0)), 1e-5)

		for j := range 3 {
			var s float64
			for k := range 5 {
				s += float64(g.At(i, k)) * float64(x.At(j, k))
			}
			assert.InDelta(t, s, float64(dW.At(i, j)), 1e-5)
		}
	}

	for j := range 3 {
		for k := range 5 {
			var s float64
			for i := range 4 {
				s += float64(w.At(i, j)) * float64(g.At(i, k))
			}
			assert.InDelta(t, s, float64(dx.At(j, k)), 1e-5)
		}
	}
}

// With L = sum(G ⊙ layer(x)), dL/dy = G, so Backward(G) must match finite differences of L.
func TestLinear_BackwardFiniteDifference(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	layer := nn.NewLinear(3, 4, nn.DefaultW0, rng)
	x := randomTensor(rng, tensor.Shape{3, 6}, 1)
	g := randomTensor(rng, tensor.Shape{4, 6}, 1)

	loss := func() float64 { return dot(g, layer.Apply(x)) }

	wantW := numericGradient(layer.Weight().Tensor().Data(), 1e-2, loss)
	wantB := numericGradient(layer.Bias().Tensor().Data(), 1e-2, loss)
	wantX := numericGradient(x.Data(), 1e-2, loss)

	layer.Forward(x)
	dx, err := layer.Backward(g)
	require.NoError(t, err)

	assertGradientsClose(t, wantW, layer.Weight().Grad(), 1e-4, "weight")
	assertGradientsClose(t, wantB, layer.Bias().Grad(), 1e-4, "bias")
	assertGradientsClose(t, wantX, dx, 1e-4, "input")
}

func TestLinear_BackwardWithoutForward(t *testing.T) {
	layer := nn.NewLinear(3, 2, nn.DefaultW0, rand.New(rand.NewSource(1)))

	_, err := layer.Backward(tensor.Zeros(tensor.Shape{2, 4}))
	require.ErrorIs(t, err, nn.ErrNoForwardCache)
	assert.Nil(t, layer.Weight().Grad())
}

func TestLinear_BackwardConsumesCache(t *testing.T) {
	layer := nn.NewLinear(3, 2, nn.DefaultW0, rand.New(rand.NewSource(1)))
	x := tensor.Full(tensor.Shape{3, 4}, 0.1)

	layer.Forward(x)
	assert.True(t, layer.HasCache())

	_, err := layer.Backward(tensor.Full(tensor.Shape{2, 4}, 1))
	require.NoError(t, err)
	assert.False(t, layer.HasCache())

	_, err = layer.Backward(tensor.Full(tensor.Shape{2, 4}, 1))
	require.ErrorIs(t, err, nn.ErrNoForwardCache)
}

func TestLinear_ApplyDoesNotCache(t *testing.T) {
	layer := nn.NewLinear(3, 2, nn.DefaultW0, rand.New(rand.NewSource(1)))
	layer.Apply(tensor.Zeros(tensor.Shape{3, 1}))
	assert.False(t, layer.HasCache())
}

func TestLinear_BackwardGradShapePanics(t *testing.T) {
	layer := nn.NewLinear(3, 2, nn.DefaultW0, rand.New(rand.NewSource(1)))
	layer.Forward(tensor.Zeros(tensor.Shape{3, 4}))
	assert.Panics(t, func() {
		_, _ = layer.Backward(tensor.Zeros(tensor.Shape{2, 3}))
	})
}
