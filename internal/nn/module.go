// Package nn implements the SIREN building blocks: parameters, the Linear and
// Sine layers, the Network container and the mean squared error loss.
//
// Differentiation is manual. Every layer caches its most recent Forward input and
// consumes it in Backward, which writes parameter gradients and returns the
// gradient with respect to the layer input:
//
//	pred := net.Forward(x)
//	loss := mse.Forward(pred, y)
//	seed, _ := mse.Backward()
//	if err := net.Backward(seed); err != nil { ... }
//	optimizer.Step()
package nn

import (
	"github.com/born-ml/siren/internal/tensor"
)

// Layer is the interface shared by Linear and Sine.
//
// Tensors are laid out [features, batch].
type Layer interface {
	// Forward computes the layer output and caches the input for Backward.
	//
	// Panics if the input shape does not fit the layer.
	Forward(input *tensor.Tensor) *tensor.Tensor

	// Apply computes the same output as Forward without touching the cache.
	//
	// Apply only reads layer state, so it may be called from several goroutines
	// at once as long as no training step runs concurrently.
	Apply(input *tensor.Tensor) *tensor.Tensor

	// Backward consumes the cached input, stores parameter gradients and returns
	// the gradient with respect to the input.
	//
	// Returns ErrNoForwardCache if there is no cached input.
	Backward(gradOutput *tensor.Tensor) (*tensor.Tensor, error)

	// Parameters returns the trainable parameters of this layer in a fixed order.
	// Returns nil for layers without parameters.
	Parameters() []*Parameter
}
