package nn

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/born-ml/siren/internal/tensor"
)

// DefaultW0 is the sine frequency used throughout SIREN networks.
const DefaultW0 float32 = 30.0

// Sine is the periodic activation of a SIREN network.
//
// Applies the element-wise function: f(x) = sin(w0 · x)
//
// Example:
//
//	act := nn.NewSine(nn.DefaultW0)
//	y := act.Forward(x)
type Sine struct {
	w0    float32
	input *tensor.Tensor // cached Forward input, nil when consumed
}

// NewSine creates a new Sine activation with frequency w0.
func NewSine(w0 float32) *Sine {
	return &Sine{w0: w0}
}

// W0 returns the activation frequency.
func (s *Sine) W0() float32 {
	return s.w0
}

// Forward applies sin(w0 · x) and caches x.
func (s *Sine) Forward(input *tensor.Tensor) *tensor.Tensor {
	out := s.Apply(input)
	s.input = input
	return out
}

// Apply computes sin(w0 · x) without caching.
func (s *Sine) Apply(input *tensor.Tensor) *tensor.Tensor {
	w0 := s.w0
	return tensor.Map(input, func(x float32) float32 {
		return math32.Sin(w0 * x)
	})
}

// Backward returns w0 · cos(w0 · x) ⊙ dL/dy and consumes the cached input.
func (s *Sine) Backward(gradOutput *tensor.Tensor) (*tensor.Tensor, error) {
	x := s.input
	if x == nil {
		return nil, fmt.Errorf("Sine.Backward: %w", ErrNoForwardCache)
	}
	if !gradOutput.Shape().Equal(x.Shape()) {
		panic(fmt.Sprintf("Sine.Backward: expected gradient with shape %v, got %v", x.Shape(), gradOutput.Shape()))
	}
	s.input = nil

	w0 := s.w0
	return tensor.Zip(x, gradOutput, func(xi, g float32) float32 {
		return w0 * math32.Cos(w0*xi) * g
	}), nil
}

// Parameters returns nil (Sine has no trainable parameters).
func (s *Sine) Parameters() []*Parameter {
	return nil
}

// HasCache reports whether a Forward input is waiting for Backward.
func (s *Sine) HasCache() bool {
	return s.input != nil
}
