package tensor_test

import (
	"testing"

	"github.com/born-ml/siren/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSlice(t *testing.T) {
	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)

	assert.Equal(t, 2, x.Rows())
	assert.Equal(t, 3, x.Cols())
	assert.Equal(t, 6, x.NumElements())
	assert.Equal(t, float32(6), x.At(1, 2))
	assert.Equal(t, float32(2), x.At(0, 1))
}

func TestFromSlice_Errors(t *testing.T) {
	_, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{2, 2})
	assert.Error(t, err)

	_, err = tensor.FromSlice([]float32{1, 2}, tensor.Shape{2})
	assert.Error(t, err, "rank-1 shapes are rejected")

	_, err = tensor.FromSlice(nil, tensor.Shape{0, 2})
	assert.Error(t, err)
}

func TestFromSlice_Copies(t *testing.T) {
	src := []float32{1, 2}
	x := tensor.MustFromSlice(src, tensor.Shape{2, 1})
	src[0] = 99

	assert.Equal(t, float32(1), x.At(0, 0))
}

func TestSetAndClone(t *testing.T) {
	x := tensor.Zeros(tensor.Shape{2, 2})
	x.Set(3.5, 1, 0)

	c := x.Clone()
	c.Set(-1, 1, 0)

	assert.Equal(t, float32(3.5), x.At(1, 0))
	assert.Equal(t, float32(-1), c.At(1, 0))
	assert.False(t, x.Equal(c))
}

func TestAt_OutOfRangePanics(t *testing.T) {
	x := tensor.Zeros(tensor.Shape{2, 2})
	assert.Panics(t, func() { x.At(2, 0) })
	assert.Panics(t, func() { x.Set(1, 0, -1) })
}

func TestFull(t *testing.T) {
	x := tensor.Full(tensor.Shape{3, 1}, 0.25)
	for _, v := range x.Data() {
		assert.Equal(t, float32(0.25), v)
	}
}

func TestString(t *testing.T) {
	x := tensor.MustFromSlice([]float32{1, 2}, tensor.Shape{1, 2})
	assert.Equal(t, "Tensor[1 2][1 2]", x.String())
}

func TestShape(t *testing.T) {
	s := tensor.Shape{4, 5}

	assert.Equal(t, 20, s.NumElements())
	assert.Equal(t, 4, s.Rows())
	assert.Equal(t, 5, s.Cols())
	assert.True(t, s.Equal(s.Clone()))
	assert.False(t, s.Equal(tensor.Shape{5, 4}))
	assert.NoError(t, s.Validate())
	assert.Error(t, tensor.Shape{4, -1}.Validate())
}
