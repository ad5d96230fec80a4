// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides SIREN networks: sine-activated MLPs mapping a 3D point to
// its signed distance.
//
// # Basic Usage
//
//	net, err := nn.NewSiren(nn.Topology{Hidden: 3, HiddenSize: 64}, nn.WithSeed(1))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pred := net.Forward(x)           // x is (3, B), pred is (1, B)
//	loss := criterion.Forward(pred, y)
//	grad, _ := criterion.Backward()
//	_ = net.Backward(grad)           // fills Parameter gradients
//
// # Weights
//
// Weights are stored as a flat little-endian float32 stream in Parameters()
// order. Files carry no shapes, so LoadNetwork needs the training Topology.
// SaveContainer writes the same stream behind a checksummed header.
package nn

import (
	"math/rand"

	"github.com/born-ml/siren/internal/nn"
)

// Fixed network dimensions.
const (
	InDim  = nn.InDim
	OutDim = nn.OutDim
)

// DefaultW0 is the sine frequency factor ω₀.
const DefaultW0 = nn.DefaultW0

// Errors.
var (
	ErrNoForwardCache   = nn.ErrNoForwardCache
	ErrTopologyMismatch = nn.ErrTopologyMismatch
	ErrInvalidTopology  = nn.ErrInvalidTopology
)

// Parameter is a trainable tensor with its gradient.
type Parameter = nn.Parameter

// Layer is a network stage with explicit forward and backward passes.
type Layer = nn.Layer

// Linear is a fully connected layer y = W·x + b.
type Linear = nn.Linear

// NewLinear creates a linear layer with SIREN uniform initialization.
func NewLinear(inFeatures, outFeatures int, w0 float32, rng *rand.Rand) *Linear {
	return nn.NewLinear(inFeatures, outFeatures, w0, rng)
}

// Sine applies sin(w0·x) element-wise.
type Sine = nn.Sine

// NewSine creates a sine activation.
func NewSine(w0 float32) *Sine {
	return nn.NewSine(w0)
}

// Topology describes a SIREN network by its hidden block count and width.
type Topology = nn.Topology

// Network is a SIREN layer stack.
type Network = nn.Network

// NetworkOption configures NewSiren.
type NetworkOption = nn.NetworkOption

// WithSeed seeds weight initialization.
func WithSeed(seed int64) NetworkOption {
	return nn.WithSeed(seed)
}

// WithRand uses rng for weight initialization.
func WithRand(rng *rand.Rand) NetworkOption {
	return nn.WithRand(rng)
}

// WithW0 overrides the sine frequency factor.
func WithW0(w0 float32) NetworkOption {
	return nn.WithW0(w0)
}

// NewSiren builds a randomly initialized network for topo.
func NewSiren(topo Topology, opts ...NetworkOption) (*Network, error) {
	return nn.NewSiren(topo, opts...)
}

// NewNetwork assembles a network from explicit layers.
func NewNetwork(layers ...Layer) (*Network, error) {
	return nn.NewNetwork(layers...)
}

// LoadNetwork reads raw or container weights from path.
func LoadNetwork(path string, topo Topology) (*Network, error) {
	return nn.LoadNetwork(path, topo)
}

// MSELoss is the mean squared error criterion.
type MSELoss = nn.MSELoss

// NewMSELoss creates an MSE criterion.
func NewMSELoss() *MSELoss {
	return nn.NewMSELoss()
}
