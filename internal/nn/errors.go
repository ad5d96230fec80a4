package nn

import "errors"

// Common errors.
var (
	// ErrNoForwardCache is returned by Backward when the layer holds no input
	// from a preceding Forward call (never called, or already consumed).
	ErrNoForwardCache = errors.New("backward called without a preceding forward")

	// ErrTopologyMismatch is returned when stored weights do not fit the requested topology.
	ErrTopologyMismatch = errors.New("topology mismatch")

	// ErrInvalidTopology is returned when a layer stack violates the SIREN layout rules.
	ErrInvalidTopology = errors.New("invalid topology")
)
