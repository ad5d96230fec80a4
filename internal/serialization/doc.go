// Package serialization reads and writes SIREN weight files.
//
// Two layouts are supported.
//
// The raw layout is the interchange format: a flat little-endian float32 stream with
// no header, in network parameter order (for each Linear layer the weight matrix
// row-major, then the bias). Readers must know the topology in advance.
//
// The container layout wraps exactly the same stream with a self-describing header:
//
//	Format Structure:
//	  [0x00-0x03: Magic "SIRN"]
//	  [0x04-0x07: Version (uint32 LE)]
//	  [0x08-0x0B: Flags (uint32 LE)]
//	  [0x0C-0x0F: Reserved]
//	  [0x10-0x17: Header Size (uint64 LE)]
//	  [0x18-0x1F: Data Size (uint64 LE)]
//	  [0x20-0x3F: SHA-256 of the data section]
//	  [Header: JSON metadata]
//	  [Zero padding to a 64-byte boundary]
//	  [Data: the raw float32 stream]
//
// ReadWeights detects the layout from the first four bytes.
//
// Example usage:
//
//	f, _ := os.Create("weights.bin")
//	defer f.Close()
//	if err := serialization.WriteRaw(f, params); err != nil {
//	    log.Fatal(err)
//	}
package serialization
