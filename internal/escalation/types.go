package escalation

import (
	"time"

	"github.com/google/uuid"
)

// Escalation is a query the pipeline could not confidently answer, routed
// to a human.
type Escalation struct {
	ID                   uuid.UUID
	TenantID             uuid.UUID
	SessionRef           string
	Query                string
	GeneratedAnswer      string
	GenerationConfidence *float64
	Status               Status
	ResolutionText       string
	ResolverID           string
	ResolvedAt           time.Time
	FoldedIntoKnowledge  bool
	CreatedAt            time.Time
}

// GenerationSnapshot captures the AI's best-effort answer at escalation
// time, for audit. Confidence is nil when the generation service supplied
// none.
type GenerationSnapshot struct {
	SessionRef string
	Answer     string
	Confidence *float64
}

// Event is an outbox record emitted when the ledger changes. External
// notifiers poll events by id; the core never sends notifications itself.
type Event struct {
	ID           int64
	EscalationID uuid.UUID
	TenantID     uuid.UUID
	Type         string
	Payload      []byte
	CreatedAt    time.Time
}

// Outbox event types.
const (
	EventCreated  = "escalation.created"
	EventResolved = "escalation.resolved"
)

// createdPayload is the JSON body of an EventCreated outbox record.
type createdPayload struct {
	EscalationID string `json:"escalation_id"`
	Namespace    string `json:"namespace"`
	Query        string `json:"query"`
	CreatedAt    string `json:"created_at"`
}

// resolvedPayload is the JSON body of an EventResolved outbox record.
type resolvedPayload struct {
	EscalationID string `json:"escalation_id"`
	Namespace    string `json:"namespace"`
	ResolverID   string `json:"resolver_id,omitempty"`
	ResolvedAt   string `json:"resolved_at"`
}
