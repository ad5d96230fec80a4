package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/siren/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = W x + b
// where:
//   - x is the input tensor with shape [in_features, batch_size]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias column with shape [out_features, 1], broadcast over the batch
//   - y is the output tensor with shape [out_features, batch_size]
//
// Weights are initialized with SirenUniform, biases with zeros.
//
// Example:
//
//	rng := rand.New(rand.NewSource(1))
//	layer := nn.NewLinear(3, 64, nn.DefaultW0, rng)
//
//	x := tensor.Zeros(tensor.Shape{3, 32}) // batch_size=32
//	y := layer.Forward(x)                  // shape: [64, 32]
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [out_features, 1]

	input *tensor.Tensor // cached Forward input, nil when consumed
}

// NewLinear creates a new Linear layer.
//
// Parameters:
//   - inFeatures: Number of input features
//   - outFeatures: Number of output features
//   - w0: Sine frequency used by the SIREN initialization bound
//   - rng: Random source for the weights
func NewLinear(inFeatures, outFeatures int, w0 float32, rng *rand.Rand) *Linear {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("NewLinear: dimensions must be positive, got in=%d out=%d", inFeatures, outFeatures))
	}

	weightTensor := SirenUniform(rng, inFeatures, w0, tensor.Shape{outFeatures, inFeatures})
	biasTensor := Zeros(tensor.Shape{outFeatures, 1})

	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", weightTensor),
		bias:        NewParameter("bias", biasTensor),
	}
}

// NewLinearFrom creates a Linear layer around existing weight and bias tensors.
//
// The weight must be [out, in] and the bias [out, 1].
func NewLinearFrom(weight, bias *tensor.Tensor) (*Linear, error) {
	ws, bs := weight.Shape(), bias.Shape()
	if bs.Cols() != 1 || bs.Rows() != ws.Rows() {
		return nil, fmt.Errorf("bias shape %v does not match weight shape %v", bs, ws)
	}
	return &Linear{
		inFeatures:  ws.Cols(),
		outFeatures: ws.Rows(),
		weight:      NewParameter("weight", weight),
		bias:        NewParameter("bias", bias),
	}, nil
}

// Forward computes the output of the linear layer and caches the input.
//
// Input shape: [in_features, batch_size]
// Output shape: [out_features, batch_size]
func (l *Linear) Forward(input *tensor.Tensor) *tensor.Tensor {
	out := l.Apply(input)
	l.input = input
	return out
}

// Apply computes y = W x + b without caching.
func (l *Linear) Apply(input *tensor.Tensor) *tensor.Tensor {
	if input.Rows() != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected input with %d features, got shape %v", l.inFeatures, input.Shape()))
	}

	// [out, in] @ [in, batch] = [out, batch]
	output := tensor.MatMul(l.weight.Tensor(), input)
	return tensor.AddColumn(output, l.bias.Tensor())
}

// Backward computes parameter gradients and the input gradient.
//
//	dL/dW = dL/dy @ xᵀ
//	dL/db = sum over the batch of dL/dy
//	dL/dx = Wᵀ @ dL/dy
//
// The cached input is consumed; a second Backward without a new Forward
// returns ErrNoForwardCache.
func (l *Linear) Backward(gradOutput *tensor.Tensor) (*tensor.Tensor, error) {
	x := l.input
	if x == nil {
		return nil, fmt.Errorf("Linear.Backward: %w", ErrNoForwardCache)
	}
	want := tensor.Shape{l.outFeatures, x.Cols()}
	if !gradOutput.Shape().Equal(want) {
		panic(fmt.Sprintf("Linear.Backward: expected gradient with shape %v, got %v", want, gradOutput.Shape()))
	}
	l.input = nil

	l.weight.SetGrad(tensor.MatMulTransB(gradOutput, x))
	l.bias.SetGrad(tensor.SumRows(gradOutput))

	return tensor.MatMulTransA(l.weight.Tensor(), gradOutput), nil
}

// Parameters returns [weight, bias].
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}

// HasCache reports whether a Forward input is waiting for Backward.
func (l *Linear) HasCache() bool {
	return l.input != nil
}
