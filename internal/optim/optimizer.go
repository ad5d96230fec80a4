// Package optim implements optimization algorithms for training SIREN networks.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - Adam: Adaptive Moment Estimation
//   - SGD: Stochastic Gradient Descent with momentum
//
// Optimizers hold the parameter list they were built with and read each
// parameter's gradient slot, filled by the network's Backward.
//
// Example usage:
//
//	optimizer := optim.NewAdam(net.Parameters(), optim.AdamConfig{
//	    LR: 5e-5,
//	})
//
//	for _, batch := range batches {
//	    pred := net.Forward(batch.X)
//	    loss := mse.Forward(pred, batch.Y)
//	    grad, _ := mse.Backward()
//	    _ = net.Backward(grad)
//	    optimizer.Step()
//	}
package optim

import (
	"fmt"
	"strings"

	"github.com/born-ml/siren/internal/nn"
)

// Optimizer is the base interface for all optimization algorithms.
//
// All optimizers must implement:
//   - Step: Apply gradient updates to parameters
//   - ZeroGrad: Clear gradients
//   - GetLR: Get current learning rate (for monitoring/scheduling)
type Optimizer interface {
	// Step applies gradient updates to all parameters.
	//
	// Parameters whose gradient slot is empty are skipped.
	Step()

	// ZeroGrad clears all parameter gradients.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float32 // Learning rate
}

// Kind names a supported optimizer.
type Kind string

// Supported optimizers.
const (
	KindAdam Kind = "adam"
	KindSGD  Kind = "sgd"
)

// ParseKind parses an optimizer name case-insensitively.
func ParseKind(name string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(name))); k {
	case KindAdam, KindSGD:
		return k, nil
	default:
		return "", fmt.Errorf("unknown optimizer %q (want adam or sgd)", name)
	}
}

// New builds the optimizer named by kind over params.
//
// momentum is only used by SGD.
func New(kind Kind, params []*nn.Parameter, lr, momentum float32) (Optimizer, error) {
	switch kind {
	case KindAdam:
		return NewAdam(params, AdamConfig{LR: lr}), nil
	case KindSGD:
		return NewSGD(params, SGDConfig{LR: lr, Momentum: momentum}), nil
	default:
		return nil, fmt.Errorf("unknown optimizer %q", kind)
	}
}
