package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ReadContainer reads a weight container, verifying magic, version, checksum and
// tensor layout. It also rejects bytes after the data section.
func ReadContainer(r io.Reader) (*Header, []float32, error) {
	fixedHeader := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r, fixedHeader); err != nil {
		return nil, nil, fmt.Errorf("failed to read fixed header: %w", err)
	}

	// 0x00-0x03: magic
	if string(fixedHeader[0:4]) != MagicBytes {
		return nil, nil, ErrInvalidMagic
	}

	// 0x04-0x07: version
	version := binary.LittleEndian.Uint32(fixedHeader[4:8])
	if version != FormatVersion {
		return nil, nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	// 0x10-0x17: header size
	headerSize := binary.LittleEndian.Uint64(fixedHeader[16:24])
	if headerSize > MaxHeaderSize {
		return nil, nil, ErrHeaderTooLarge
	}

	// 0x18-0x1F: data size
	dataSize := binary.LittleEndian.Uint64(fixedHeader[24:32])
	if dataSize > MaxDataSize {
		return nil, nil, fmt.Errorf("%w: %d bytes, max %d", ErrDataTooLarge, dataSize, MaxDataSize)
	}

	// 0x20-0x3F: SHA-256 checksum
	var stored [32]byte
	copy(stored[:], fixedHeader[ChecksumOffset:ChecksumOffset+ChecksumSize])

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, nil, fmt.Errorf("failed to read header JSON: %w", err)
	}

	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	padding := alignPadding(int64(FixedHeaderSize) + int64(headerSize))
	if _, err := io.CopyN(io.Discard, r, padding); err != nil {
		return nil, nil, fmt.Errorf("failed to skip padding: %w", err)
	}

	if dataSize%Float32Size != 0 {
		return nil, nil, fmt.Errorf("%w: data size %d is not a whole number of float32 values", ErrTruncated, dataSize)
	}

	//nolint:gosec // G115: dataSize is validated against the tensor table below
	if err := ValidateHeader(&header, int64(dataSize)); err != nil {
		return nil, nil, fmt.Errorf("validation failed: %w", err)
	}

	// Storage grows with the bytes actually present.
	//nolint:gosec // G115: dataSize is bounded by MaxDataSize
	data, err := io.ReadAll(io.LimitReader(r, int64(dataSize)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read weights: %w", err)
	}
	if uint64(len(data)) != dataSize {
		return nil, nil, fmt.Errorf("%w: header declares %d data bytes, stream has %d",
			ErrTruncated, dataSize, len(data))
	}

	if err := ValidateChecksum(ComputeChecksum(data), stored); err != nil {
		return nil, nil, err
	}

	var extra [1]byte
	if n, _ := r.Read(extra[:]); n > 0 {
		return nil, nil, ErrTrailingData
	}

	values, err := DecodeFloats(data)
	if err != nil {
		return nil, nil, err
	}

	return &header, values, nil
}

// ReadWeights reads either layout, choosing by the leading magic bytes.
//
// The returned header is nil for raw streams.
func ReadWeights(r io.Reader) (*Header, []float32, error) {
	br := bufio.NewReader(r)
	prefix, err := br.Peek(len(MagicBytes))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("failed to read weights: %w", err)
	}

	if IsContainer(prefix) {
		return ReadContainer(br)
	}

	values, err := ReadRaw(br)
	if err != nil {
		return nil, nil, err
	}
	return nil, values, nil
}

// IsContainer reports whether prefix starts with the container magic bytes.
//
// A raw stream whose first float32 happens to encode "SIRN" (about 8.8e8) would be
// misdetected; SIREN weights never reach that magnitude.
func IsContainer(prefix []byte) bool {
	return len(prefix) >= len(MagicBytes) && string(prefix[:len(MagicBytes)]) == MagicBytes
}
