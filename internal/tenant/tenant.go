// Package tenant resolves inbound tenant namespaces to per-tenant retrieval
// configuration. Every core pipeline operation is parameterized by a
// Namespace; nothing downstream ever sees an unresolved namespace string.
package tenant

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Default retrieval configuration applied at tenant registration when no
// explicit values are provided.
const (
	DefaultSimilarityThreshold = 0.7
	DefaultTopK                = 5
	DefaultEscalationThreshold = 0.5

	// MaxTopK bounds query cost for any single retrieval.
	MaxTopK = 20
)

// namespacePattern matches lowercase DNS-label style identifiers:
// a leading letter, then letters, digits, or hyphens, at most 64 runes.
var namespacePattern = regexp.MustCompile(`^[a-z][a-z0-9-]{0,63}$`)

// Namespace is the isolation boundary separating one tenant's data from
// another's. A Namespace is only constructed through ParseNamespace, so a
// non-zero value is always well-formed.
type Namespace string

// ParseNamespace validates raw and returns it as a Namespace.
// Returns ErrInvalidNamespace when raw is malformed.
func ParseNamespace(raw string) (Namespace, error) {
	if !namespacePattern.MatchString(raw) {
		return "", fmt.Errorf("%w: %q", ErrInvalidNamespace, raw)
	}
	return Namespace(raw), nil
}

// String returns the namespace as a plain string.
func (n Namespace) String() string { return string(n) }

// RetrievalConfig is the per-tenant configuration value object resolved once
// per request. Values come from the tenant registry; the pipeline never
// hardcodes them.
type RetrievalConfig struct {
	// SimilarityThreshold excludes retrieval candidates scoring at or below
	// it. Range [0, 1].
	SimilarityThreshold float64

	// TopK caps the number of candidates per retrieval. Range [1, MaxTopK].
	TopK int

	// EscalationThreshold is the minimum generation confidence required to
	// auto-answer. Range [0, 1].
	EscalationThreshold float64
}

// DefaultRetrievalConfig returns the registration-time defaults.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		SimilarityThreshold: DefaultSimilarityThreshold,
		TopK:                DefaultTopK,
		EscalationThreshold: DefaultEscalationThreshold,
	}
}

// Validate rejects malformed configuration. Out-of-range values are an
// error, never clamped, because silent clamping hides misconfiguration.
func (c RetrievalConfig) Validate() error {
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: similarity threshold %v", ErrThresholdOutOfRange, c.SimilarityThreshold)
	}
	if c.EscalationThreshold < 0 || c.EscalationThreshold > 1 {
		return fmt.Errorf("%w: escalation threshold %v", ErrThresholdOutOfRange, c.EscalationThreshold)
	}
	if c.TopK < 1 || c.TopK > MaxTopK {
		return fmt.Errorf("%w: top-k %d", ErrTopKOutOfRange, c.TopK)
	}
	return nil
}

// Tenant is a registered tenant with its resolved retrieval configuration.
type Tenant struct {
	ID        uuid.UUID
	Namespace Namespace
	Name      string
	Config    RetrievalConfig
	CreatedAt time.Time
}
