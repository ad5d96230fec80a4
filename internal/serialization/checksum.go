package serialization

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeChecksum returns the SHA-256 of a container's data section.
func ComputeChecksum(data []byte) [ChecksumSize]byte {
	return sha256.Sum256(data)
}

// ValidateChecksum returns ErrChecksumMismatch, naming both digests, if computed
// differs from the checksum stored in the fixed header.
func ValidateChecksum(computed, stored [ChecksumSize]byte) error {
	if computed == stored {
		return nil
	}
	return fmt.Errorf("%w: header has %s..., data hashes to %s...",
		ErrChecksumMismatch, hex.EncodeToString(stored[:4]), hex.EncodeToString(computed[:4]))
}
