package nn

import (
	"fmt"
)

// Fixed SIREN input and output dimensions.
const (
	InDim  = 3 // (x, y, z) coordinates
	OutDim = 1 // scalar signed distance
)

// Topology describes a SIREN network by its hidden block count and width.
//
// The layer stack it produces is
//
//	Linear(3, h) → Sine → [Linear(h, h) → Sine] × Hidden → Linear(h, 1)
//
// Weight files carry no shape information, so loaders need the Topology used
// during training.
type Topology struct {
	Hidden     int // Number of extra hidden Linear→Sine blocks
	HiddenSize int // Width h of every hidden layer
}

// Validate checks that the topology describes a buildable network.
func (t Topology) Validate() error {
	if t.Hidden < 0 {
		return fmt.Errorf("%w: n_hidden must be >= 0, got %d", ErrInvalidTopology, t.Hidden)
	}
	if t.HiddenSize <= 0 {
		return fmt.Errorf("%w: hidden_size must be > 0, got %d", ErrInvalidTopology, t.HiddenSize)
	}
	return nil
}

// LinearShapes returns the [out, in] weight shape of every Linear layer in order.
func (t Topology) LinearShapes() [][2]int {
	h := t.HiddenSize
	shapes := make([][2]int, 0, t.Hidden+2)
	shapes = append(shapes, [2]int{h, InDim})
	for range t.Hidden {
		shapes = append(shapes, [2]int{h, h})
	}
	return append(shapes, [2]int{OutDim, h})
}

// NumParams returns the number of float32 values a network of this topology holds.
func (t Topology) NumParams() int {
	n := 0
	for _, s := range t.LinearShapes() {
		n += s[0]*s[1] + s[0]
	}
	return n
}

// String implements fmt.Stringer.
func (t Topology) String() string {
	return fmt.Sprintf("n_hidden=%d hidden_size=%d", t.Hidden, t.HiddenSize)
}
