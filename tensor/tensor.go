// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense float32 matrices used by the SIREN layers.
//
// Tensors are rank-2 and row-major. Networks lay batches out as
// features × batch, so a batch of B points is a (3, B) tensor.
//
// Example:
//
//	x := tensor.MustFromSlice([]float32{0, 0.5, 1, 0, 0, 0}, tensor.Shape{3, 2})
//	w := tensor.Full(tensor.Shape{4, 3}, 0.1)
//	y := tensor.MatMul(w, x) // (4, 2)
package tensor

import (
	"github.com/born-ml/siren/internal/tensor"
)

// Shape represents the dimensions of a tensor.
type Shape = tensor.Shape

// Tensor is a dense rank-2 float32 tensor.
type Tensor = tensor.Tensor

// New creates a zero-filled tensor.
func New(shape Shape) *Tensor {
	return tensor.New(shape)
}

// Zeros is an alias for New.
func Zeros(shape Shape) *Tensor {
	return tensor.Zeros(shape)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float32) *Tensor {
	return tensor.Full(shape, value)
}

// FromSlice creates a tensor over a copy of data.
// Returns an error if len(data) does not match shape.
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// MustFromSlice is like FromSlice but panics on error.
func MustFromSlice(data []float32, shape Shape) *Tensor {
	return tensor.MustFromSlice(data, shape)
}

// MatMul computes a @ b.
func MatMul(a, b *Tensor) *Tensor {
	return tensor.MatMul(a, b)
}

// Transpose returns a new transposed tensor.
func Transpose(t *Tensor) *Tensor {
	return tensor.Transpose(t)
}
