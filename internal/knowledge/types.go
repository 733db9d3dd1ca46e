package knowledge

import (
	"time"

	"github.com/google/uuid"
)

// VectorDimension is the embedding dimensionality this deployment is
// configured for. Every stored and queried vector must have exactly this
// length; the schema's vector(768) column enforces it at the storage layer
// and Search enforces it before the query is issued.
const VectorDimension = 768

// Confidence weight conventions by provenance. Curated entries outrank
// entries folded back from resolved escalations.
const (
	CuratedConfidenceWeight  = 1.0
	FeedbackConfidenceWeight = 0.8
)

// DefaultCategory is applied when an entry is created without an explicit
// benefit category.
const DefaultCategory = "general"

// Entry is a retrievable unit of truth for one tenant.
type Entry struct {
	ID               uuid.UUID
	TenantID         uuid.UUID
	Title            string
	Content          string
	Category         string
	Subcategory      string
	SourceRef        string
	ConfidenceWeight float64
	UsageCount       int64
	LastUsedAt       time.Time
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Draft is the caller-supplied portion of a new or updated entry. The
// embedding is always derived from Content, never supplied directly.
type Draft struct {
	Title       string
	Content     string
	Category    string
	Subcategory string
	SourceRef   string
}

// Candidate is a transient retrieval result. Produced fresh per query and
// never persisted.
type Candidate struct {
	ID               uuid.UUID
	Title            string
	Content          string
	Category         string
	Subcategory      string
	SourceRef        string
	ConfidenceWeight float64
	Similarity       float64
	Rank             int
	UsageCount       int64
	CreatedAt        time.Time
}

// QuickQuestion is a suggested starter question for a tenant, derived from
// the most-used active entries.
type QuickQuestion struct {
	EntryID    uuid.UUID
	Question   string
	Category   string
	UsageCount int64
}

// FoldRequest carries the fields of a resolved escalation that the feedback
// writer turns into a knowledge entry.
type FoldRequest struct {
	EscalationID   uuid.UUID
	TenantID       uuid.UUID
	Query          string
	ResolutionText string
}
