// Package tensor provides the dense float32 matrix type used by the SIREN layers.
//
// A Tensor is a row-major [rows, cols] array. Layers keep features along rows
// and the batch along columns, so a batch of B points is a [3, B] tensor.
package tensor

import (
	"fmt"
	"strings"
)

// Tensor is a dense row-major float32 matrix.
//
// Example:
//
//	x := tensor.Zeros(tensor.Shape{3, 32})
//	x.Set(1.5, 0, 4)
//	v := x.At(0, 4) // 1.5
type Tensor struct {
	shape Shape
	data  []float32
}

// New allocates a zero-filled tensor.
//
// Panics if the shape is not a valid rank-2 shape.
func New(shape Shape) *Tensor {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("tensor.New: %v", err))
	}
	return &Tensor{
		shape: shape.Clone(),
		data:  make([]float32, shape.NumElements()),
	}
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	return New(shape)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float32) *Tensor {
	t := New(shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	t := New(shape)
	copy(t.data, data)
	return t, nil
}

// MustFromSlice is like FromSlice but panics on error.
func MustFromSlice(data []float32, shape Shape) *Tensor {
	t, err := FromSlice(data, shape)
	if err != nil {
		panic(fmt.Sprintf("tensor.MustFromSlice: %v", err))
	}
	return t
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Rows returns the number of rows.
func (t *Tensor) Rows() int {
	return t.shape[0]
}

// Cols returns the number of columns.
func (t *Tensor) Cols() int {
	return t.shape[1]
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// Data returns the underlying row-major storage.
//
// The slice aliases the tensor: writes through it modify the tensor.
func (t *Tensor) Data() []float32 {
	return t.data
}

// At returns the element at (row, col).
func (t *Tensor) At(row, col int) float32 {
	return t.data[t.index(row, col)]
}

// Set writes value at (row, col).
func (t *Tensor) Set(value float32, row, col int) {
	t.data[t.index(row, col)] = value
}

func (t *Tensor) index(row, col int) int {
	if row < 0 || row >= t.shape[0] || col < 0 || col >= t.shape[1] {
		panic(fmt.Sprintf("tensor: index (%d, %d) out of range for shape %v", row, col, t.shape))
	}
	return row*t.shape[1] + col
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	c := &Tensor{
		shape: t.shape.Clone(),
		data:  make([]float32, len(t.data)),
	}
	copy(c.data, t.data)
	return c
}

// Equal reports whether both tensors have the same shape and bit-identical values.
func (t *Tensor) Equal(other *Tensor) bool {
	if !t.shape.Equal(other.shape) {
		return false
	}
	for i, v := range t.data {
		if v != other.data[i] {
			return false
		}
	}
	return true
}

// String returns a compact human-readable representation.
func (t *Tensor) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tensor%v[", []int(t.shape))
	const limit = 8
	for i, v := range t.data {
		if i == limit {
			sb.WriteString(" ...")
			break
		}
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%g", v)
	}
	sb.WriteByte(']')
	return sb.String()
}
