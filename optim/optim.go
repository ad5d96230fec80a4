// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the optimizers used to train SIREN networks.
//
// Example:
//
//	opt := optim.NewAdam(net.Parameters(), optim.AdamConfig{LR: 5e-5})
//	for range steps {
//	    opt.ZeroGrad()
//	    // forward, loss, backward
//	    opt.Step()
//	}
package optim

import (
	"github.com/born-ml/siren/internal/nn"
	"github.com/born-ml/siren/internal/optim"
)

// Optimizer updates parameters from their gradients.
type Optimizer = optim.Optimizer

// Config represents the base configuration for optimizers.
type Config = optim.Config

// Kind names a supported optimizer.
type Kind = optim.Kind

// Supported optimizers.
const (
	KindAdam = optim.KindAdam
	KindSGD  = optim.KindSGD
)

// ParseKind parses an optimizer name case-insensitively.
func ParseKind(name string) (Kind, error) {
	return optim.ParseKind(name)
}

// New creates an optimizer of the given kind. momentum only applies to SGD.
func New(kind Kind, params []*nn.Parameter, lr, momentum float32) (Optimizer, error) {
	return optim.New(kind, params, lr, momentum)
}

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for the Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates an Adam optimizer with bias correction.
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	return optim.NewAdam(params, config)
}

// SGD represents the SGD optimizer with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for the SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates an SGD optimizer.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	return optim.NewSGD(params, config)
}
