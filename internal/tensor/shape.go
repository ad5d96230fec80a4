package tensor

import (
	"fmt"
	"slices"
)

// Shape holds the [rows, cols] dimensions of a tensor.
//
// Batches are laid out features × batch, so a batch of B points is [3, B] and
// a bias is the column [n, 1].
type Shape []int

// NumElements returns rows × cols.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate reports an error unless s has exactly two positive dimensions.
func (s Shape) Validate() error {
	if len(s) != 2 {
		return fmt.Errorf("invalid rank %d: expected [rows, cols]", len(s))
	}
	if s[0] <= 0 || s[1] <= 0 {
		return fmt.Errorf("invalid shape %v: dimensions must be > 0", []int(s))
	}
	return nil
}

// Equal reports whether both shapes have the same dimensions.
func (s Shape) Equal(other Shape) bool {
	return slices.Equal(s, other)
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	return append(Shape(nil), s...)
}

// Rows returns the number of features.
func (s Shape) Rows() int { return s[0] }

// Cols returns the batch size.
func (s Shape) Cols() int { return s[1] }
