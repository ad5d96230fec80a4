package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// WriteContainer writes values wrapped in the self-describing container layout.
//
// header.Tensors must list every tensor in stream order with Name and Shape set;
// offsets and sizes are computed here. CreatedAt and RunID are filled in when
// left zero. The element counts must add up to len(values).
func WriteContainer(w io.Writer, header Header, values []float32) error {
	header.FormatVersion = FormatVersion
	if header.CreatedAt.IsZero() {
		header.CreatedAt = time.Now().UTC()
	}
	if header.RunID == "" {
		header.RunID = uuid.NewString()
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	// Calculate tensor offsets
	tensors := make([]TensorMeta, len(header.Tensors))
	var currentOffset int64
	for i, meta := range header.Tensors {
		if err := ValidateTensorName(meta.Name); err != nil {
			return err
		}
		size := int64(meta.NumElements()) * Float32Size
		tensors[i] = TensorMeta{
			Name:   meta.Name,
			Shape:  append([]int(nil), meta.Shape...),
			Offset: currentOffset,
			Size:   size,
		}
		currentOffset += size
	}
	header.Tensors = tensors

	data := EncodeFloats(values)
	if currentOffset != int64(len(data)) {
		return fmt.Errorf("tensors describe %d bytes but %d bytes of weights were given", currentOffset, len(data))
	}

	checksum := ComputeChecksum(data)

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	headerSize := uint64(len(headerJSON))
	dataSize := uint64(len(data))

	fixedHeader := make([]byte, FixedHeaderSize)

	// 0x00-0x03: Magic bytes "SIRN"
	copy(fixedHeader[0:4], MagicBytes)

	// 0x04-0x07: Version
	binary.LittleEndian.PutUint32(fixedHeader[4:8], uint32(FormatVersion))

	// 0x08-0x0B: Flags
	flags := uint32(0)
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	binary.LittleEndian.PutUint32(fixedHeader[8:12], flags)

	// 0x0C-0x0F: Reserved (0)

	// 0x10-0x17: Header size
	binary.LittleEndian.PutUint64(fixedHeader[16:24], headerSize)

	// 0x18-0x1F: Data size
	binary.LittleEndian.PutUint64(fixedHeader[24:32], dataSize)

	// 0x20-0x3F: SHA-256 checksum
	copy(fixedHeader[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := w.Write(fixedHeader); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}

	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// Calculate padding to align weight data to HeaderAlignment
	if padding := alignPadding(int64(FixedHeaderSize) + int64(headerSize)); padding > 0 {
		if _, err := w.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write weights: %w", err)
	}

	return nil
}

// alignPadding returns the number of zero bytes needed after pos to reach HeaderAlignment.
func alignPadding(pos int64) int64 {
	return (HeaderAlignment - (pos % HeaderAlignment)) % HeaderAlignment
}
