package knowledge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/beneflow/beneflow/internal/sqlc"
	"github.com/beneflow/beneflow/internal/tenant"
)

// UsageQuerier defines the database operation the tracker needs.
type UsageQuerier interface {
	TouchKnowledgeEntries(ctx context.Context, arg sqlc.TouchKnowledgeEntriesParams) ([]pgtype.UUID, error)
}

// Tracker records which entries answered a query. Usage stats are
// best-effort telemetry, not a correctness-critical path: callers log a
// Touch failure and continue the answer path.
//
// Tracker is safe for concurrent use by multiple goroutines.
type Tracker struct {
	queries UsageQuerier
	logger  *slog.Logger
}

// NewTracker creates a Tracker.
func NewTracker(querier UsageQuerier, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		queries: querier,
		logger:  logger.With("component", "knowledge.tracker"),
	}
}

// Touch increments usage_count by exactly 1 and sets last_used_at to now for
// every id in the set, in a single set-based UPDATE. The increment happens
// inside the database, so concurrent touches of the same popular entry never
// lose updates. Unknown or inactive ids are silently skipped; skips are
// counted and logged for observability.
func (t *Tracker) Touch(ctx context.Context, tn tenant.Tenant, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	pgIDs := make([]pgtype.UUID, len(ids))
	for i, id := range ids {
		pgIDs[i] = uuidToPgUUID(id)
	}

	touched, err := t.queries.TouchKnowledgeEntries(ctx, sqlc.TouchKnowledgeEntriesParams{
		TenantID: uuidToPgUUID(tn.ID),
		Ids:      pgIDs,
	})
	if err != nil {
		return fmt.Errorf("failed to touch entries: %w", err)
	}

	if skipped := len(ids) - len(touched); skipped > 0 {
		t.logger.WarnContext(ctx, "usage touch skipped unknown entries",
			"namespace", tn.Namespace.String(),
			"requested", len(ids),
			"touched", len(touched),
			"skipped", skipped)
	}
	return nil
}
