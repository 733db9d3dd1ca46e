package tenant

import "errors"

// Sentinel errors for tenant resolution and configuration validation.
// Callers use errors.Is to distinguish them.
var (
	// ErrInvalidNamespace indicates the namespace is malformed or does not
	// identify a registered tenant.
	ErrInvalidNamespace = errors.New("invalid tenant namespace")

	// ErrThresholdOutOfRange indicates a similarity or escalation threshold
	// outside [0, 1]. Thresholds are rejected, never clamped.
	ErrThresholdOutOfRange = errors.New("threshold out of range [0, 1]")

	// ErrTopKOutOfRange indicates a top-K outside [1, 20].
	ErrTopKOutOfRange = errors.New("top-k out of range [1, 20]")

	// ErrNamespaceTaken indicates a registration attempt for a namespace
	// that already exists.
	ErrNamespaceTaken = errors.New("tenant namespace already registered")
)
