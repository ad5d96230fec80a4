package serialization

import (
	"fmt"
	"strings"
)

// Validation limits for resource protection.
const (
	MaxHeaderSize    = 16 * 1024 * 1024 // 16MB - maximum JSON header size
	MaxDataSize      = 1 << 30          // 1GB - maximum weight section size
	MaxTensorCount   = 10_000           // Maximum number of tensors in a file
	MaxTensorNameLen = 256              // Maximum tensor name length
)

// ValidateTensorOffsets checks that the tensors tile the data section exactly.
//
// Weight streams are dense: tensor i+1 starts where tensor i ends, the first
// starts at 0, the last ends at dataSize, and each size matches its shape.
func ValidateTensorOffsets(tensors []TensorMeta, dataSize int64) error {
	if len(tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(tensors), MaxTensorCount),
		}
	}

	var expected int64
	for i, t := range tensors {
		// Negative values would wrap when converted to unsigned offsets.
		if t.Offset < 0 || t.Size < 0 {
			return &ValidationError{
				Type:    "negative_offset",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset=%d, size=%d (negative values not allowed)", t.Offset, t.Size),
			}
		}

		if want := int64(t.NumElements()) * Float32Size; t.Size != want {
			return &ValidationError{
				Type:    "size_mismatch",
				Tensor:  t.Name,
				Details: fmt.Sprintf("shape %v needs %d bytes, header says %d", t.Shape, want, t.Size),
			}
		}

		if t.Offset != expected {
			typ := "offset_gap"
			if t.Offset < expected {
				typ = "offset_overlap"
			}
			prev := ""
			if i > 0 {
				prev = tensors[i-1].Name
			}
			return &ValidationError{
				Type:    typ,
				Tensor:  prev,
				Tensor2: t.Name,
				Details: fmt.Sprintf("expected offset %d, got %d", expected, t.Offset),
			}
		}

		if t.Offset+t.Size > dataSize {
			return &ValidationError{
				Type:    "out_of_bounds",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", t.Offset, t.Size, dataSize),
			}
		}

		expected = t.Offset + t.Size
	}

	if expected != dataSize {
		return &ValidationError{
			Type:    "size_mismatch",
			Details: fmt.Sprintf("tensors cover %d bytes, data section has %d", expected, dataSize),
		}
	}

	return nil
}

// ValidateTensorName rejects empty, oversized or control-character names.
func ValidateTensorName(name string) error {
	if name == "" {
		return &ValidationError{
			Type:    "invalid_name",
			Details: "empty tensor name",
		}
	}

	if len(name) > MaxTensorNameLen {
		return &ValidationError{
			Type:    "name_too_long",
			Tensor:  name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
		}
	}

	if strings.ContainsAny(name, "\x00\n\r/\\") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains a control character or path separator",
		}
	}

	return nil
}

// ValidateHeader performs full header validation against the size of the data section.
func ValidateHeader(h *Header, dataSize int64) error {
	if h.FormatVersion != FormatVersion {
		return fmt.Errorf("%w: header says %d, expected %d", ErrUnsupportedVersion, h.FormatVersion, FormatVersion)
	}

	for _, t := range h.Tensors {
		if err := ValidateTensorName(t.Name); err != nil {
			return err
		}
	}

	return ValidateTensorOffsets(h.Tensors, dataSize)
}
