package escalation

import (
	"errors"

	"github.com/beneflow/beneflow/internal/knowledge"
)

// Sentinel errors for ledger operations.
var (
	// ErrNotFound indicates the escalation does not exist in the tenant's
	// namespace.
	ErrNotFound = errors.New("escalation not found")

	// ErrInvalidTransition indicates a status change the state machine does
	// not allow, for example dismissing an already-resolved escalation
	// without reopening it first.
	ErrInvalidTransition = errors.New("invalid escalation status transition")

	// ErrResolutionRequired indicates a resolve call without resolution
	// text.
	ErrResolutionRequired = errors.New("resolution text is required")

	// ErrInvalidStatus indicates an unrecognized status value.
	ErrInvalidStatus = errors.New("invalid escalation status")
)

// ErrAlreadyFolded is surfaced when a resolve with the fold flag finds the
// escalation's resolution already committed to knowledge. The resolution
// text update still applies; only the fold step is a no-op.
var ErrAlreadyFolded = knowledge.ErrAlreadyFolded
