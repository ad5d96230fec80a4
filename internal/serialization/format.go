package serialization

import (
	"time"
)

// Format constants.
const (
	MagicBytes      = "SIRN"
	FormatVersion   = 1    // v1: fixed header with SHA-256 checksum
	HeaderAlignment = 64   // Align weight data to 64 bytes
	FixedHeaderSize = 64   // Fixed header size (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size (32 bytes)
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
	Float32Size     = 4    // Bytes per stored value
)

// Flags for the container format.
const (
	FlagHasMetadata uint32 = 1 << 0 // bit 0: custom metadata included
)

// Header represents the JSON header of a weight container.
type Header struct {
	FormatVersion int               `json:"format_version"` // Version of the container format
	CreatedAt     time.Time         `json:"created_at"`     // When the file was created
	RunID         string            `json:"run_id"`         // Identifier of the training run
	Topology      TopologyMeta      `json:"topology"`       // Network shape needed to rebuild the layers
	Tensors       []TensorMeta      `json:"tensors"`        // Tensor metadata, in stream order
	Metadata      map[string]string `json:"metadata"`       // Custom metadata
}

// TopologyMeta records the network shape stored in a container.
type TopologyMeta struct {
	Hidden     int     `json:"n_hidden"`    // Number of hidden Linear→Sine blocks after the first
	HiddenSize int     `json:"hidden_size"` // Width of every hidden layer
	InDim      int     `json:"in_dim"`      // Input coordinate dimension (3)
	OutDim     int     `json:"out_dim"`     // Output dimension (1)
	W0         float32 `json:"w0"`          // Sine frequency
}

// TensorMeta describes one parameter tensor in the data section.
type TensorMeta struct {
	Name   string `json:"name"`   // Tensor name (e.g., "0.weight")
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Offset in the data section (bytes from start of data)
	Size   int64  `json:"size"`   // Size in bytes
}

// NumElements returns the number of float32 values of the tensor.
func (m TensorMeta) NumElements() int {
	n := 1
	for _, d := range m.Shape {
		n *= d
	}
	return n
}
