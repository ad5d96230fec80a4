package nn

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/born-ml/siren/internal/tensor"
)

// SirenUniform initializes a weight matrix for a layer feeding a sine activation.
//
// Values are drawn from U(-c, c) with c = sqrt(6/fanIn) / w0, so the pre-activations
// w0·(Wx) stay roughly within [-sqrt(6), sqrt(6)] at every depth.
//
// Parameters:
//   - rng: Random source (callers pass a seeded source for reproducible runs)
//   - fanIn: Number of input units
//   - w0: Sine frequency of the activation that follows
//   - shape: Shape of the weight tensor
func SirenUniform(rng *rand.Rand, fanIn int, w0 float32, shape tensor.Shape) *tensor.Tensor {
	if fanIn <= 0 {
		panic(fmt.Sprintf("SirenUniform: fanIn must be positive, got %d", fanIn))
	}
	bound := SirenBound(fanIn, w0)

	t := tensor.New(shape)
	data := t.Data()
	for i := range data {
		//nolint:gosec // Using math/rand for weight initialization (not security-critical)
		data[i] = float32((rng.Float64()*2.0 - 1.0) * bound)
	}
	return t
}

// SirenBound returns c = sqrt(6/fanIn) / w0.
func SirenBound(fanIn int, w0 float32) float64 {
	return math.Sqrt(6.0/float64(fanIn)) / float64(w0)
}

// Zeros creates a tensor filled with zeros.
//
// This is used for bias initialization.
func Zeros(shape tensor.Shape) *tensor.Tensor {
	return tensor.Zeros(shape)
}

func shapeString(s tensor.Shape) string {
	return fmt.Sprint([]int(s))
}
