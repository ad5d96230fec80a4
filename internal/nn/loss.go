package nn

import (
	"fmt"

	"github.com/born-ml/siren/internal/tensor"
)

// MSELoss computes Mean Squared Error loss.
//
// Loss = mean((predictions - targets)²)
//
// Forward caches both operands; Backward consumes them and returns the gradient
// with respect to the predictions. Targets are treated as constants.
//
// Example:
//
//	var mse nn.MSELoss
//	pred := net.Forward(x)
//	loss := mse.Forward(pred, y)
//	grad, err := mse.Backward()
type MSELoss struct {
	predictions *tensor.Tensor
	targets     *tensor.Tensor
}

// NewMSELoss creates a new MSE loss function.
func NewMSELoss() *MSELoss {
	return &MSELoss{}
}

// Forward computes the MSE loss.
//
// Parameters:
//   - predictions: Model predictions with shape [1, batch_size]
//   - targets: Ground truth targets with the same shape
//
// Panics if the shapes differ.
func (m *MSELoss) Forward(predictions, targets *tensor.Tensor) float32 {
	if !predictions.Shape().Equal(targets.Shape()) {
		panic(fmt.Sprintf("MSELoss.Forward: predictions %v and targets %v must have the same shape",
			predictions.Shape(), targets.Shape()))
	}

	m.predictions = predictions
	m.targets = targets

	p, t := predictions.Data(), targets.Data()
	var sum float64
	for i := range p {
		d := float64(p[i]) - float64(t[i])
		sum += d * d
	}
	return float32(sum / float64(len(p)))
}

// Backward returns dL/dpred = 2·(predictions - targets) / batch_size.
//
// Returns ErrNoForwardCache if Forward has not been called since the last Backward.
func (m *MSELoss) Backward() (*tensor.Tensor, error) {
	if m.predictions == nil {
		return nil, fmt.Errorf("MSELoss.Backward: %w", ErrNoForwardCache)
	}

	scale := 2 / float32(m.predictions.Cols())
	grad := tensor.Zip(m.predictions, m.targets, func(p, t float32) float32 {
		return scale * (p - t)
	})

	m.predictions, m.targets = nil, nil
	return grad, nil
}
