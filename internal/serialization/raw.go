package serialization

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// EncodeFloats packs values as little-endian float32.
func EncodeFloats(values []float32) []byte {
	buf := make([]byte, len(values)*Float32Size)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*Float32Size:], math.Float32bits(v))
	}
	return buf
}

// DecodeFloats unpacks little-endian float32 values.
//
// Returns an error if len(buf) is not a multiple of 4.
func DecodeFloats(buf []byte) ([]float32, error) {
	if len(buf)%Float32Size != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of float32 values", ErrTruncated, len(buf))
	}
	values := make([]float32, len(buf)/Float32Size)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*Float32Size:]))
	}
	return values, nil
}

// WriteRaw writes values as a headerless little-endian float32 stream.
func WriteRaw(w io.Writer, values []float32) error {
	if _, err := w.Write(EncodeFloats(values)); err != nil {
		return fmt.Errorf("failed to write weights: %w", err)
	}
	return nil
}

// ReadRaw reads a headerless float32 stream until EOF.
func ReadRaw(r io.Reader) ([]float32, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights: %w", err)
	}
	return DecodeFloats(buf)
}
