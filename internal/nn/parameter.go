package nn

import (
	"github.com/born-ml/siren/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// A Parameter pairs a tensor with a gradient slot. The slot is nil until the
// owning layer's Backward fills it; every Backward overwrites it rather than
// accumulating.
//
// Example:
//
//	weight := nn.NewParameter("weight", w)
//	w := weight.Tensor()
//	grad := weight.Grad() // nil before the first backward pass
type Parameter struct {
	name   string         // Parameter name (e.g., "weight", "bias")
	tensor *tensor.Tensor // The parameter tensor
	grad   *tensor.Tensor // Gradient tensor (set during backward pass)
}

// NewParameter creates a new trainable parameter.
//
// The parameter tensor should be initialized before creating the Parameter.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{
		name:   name,
		tensor: t,
		grad:   nil,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.tensor
}

// Grad returns the gradient tensor.
//
// Returns nil if no gradient has been computed yet (before backward pass).
func (p *Parameter) Grad() *tensor.Tensor {
	return p.grad
}

// SetGrad sets the gradient tensor.
//
// Panics if the gradient shape differs from the parameter shape.
func (p *Parameter) SetGrad(grad *tensor.Tensor) {
	if grad != nil && !grad.Shape().Equal(p.tensor.Shape()) {
		panic("Parameter.SetGrad: gradient shape " + shapeString(grad.Shape()) +
			" does not match parameter shape " + shapeString(p.tensor.Shape()))
	}
	p.grad = grad
}

// ZeroGrad clears the gradient tensor.
func (p *Parameter) ZeroGrad() {
	p.grad = nil
}

// NumElements returns the number of scalars held by the parameter.
func (p *Parameter) NumElements() int {
	return p.tensor.NumElements()
}
