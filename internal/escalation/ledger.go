// Package escalation implements the durable ledger of queries the pipeline
// could not confidently answer: a status state machine with transitions
// validated at one chokepoint, a transactional outbox for notification
// events, and the fold hook that feeds resolved escalations back into the
// knowledge index.
package escalation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beneflow/beneflow/internal/knowledge"
	"github.com/beneflow/beneflow/internal/sqlc"
	"github.com/beneflow/beneflow/internal/tenant"
)

// Querier defines the database operations the ledger needs.
type Querier interface {
	CreateEscalation(ctx context.Context, arg sqlc.CreateEscalationParams) (sqlc.Escalation, error)
	GetEscalation(ctx context.Context, arg sqlc.GetEscalationParams) (sqlc.Escalation, error)
	ListEscalationsByStatus(ctx context.Context, arg sqlc.ListEscalationsByStatusParams) ([]sqlc.Escalation, error)
	ResolveEscalation(ctx context.Context, arg sqlc.ResolveEscalationParams) (sqlc.Escalation, error)
	DismissEscalation(ctx context.Context, arg sqlc.DismissEscalationParams) (sqlc.Escalation, error)
	ReopenEscalation(ctx context.Context, arg sqlc.ReopenEscalationParams) (sqlc.Escalation, error)
	InsertEscalationEvent(ctx context.Context, arg sqlc.InsertEscalationEventParams) error
	ListEscalationEventsAfter(ctx context.Context, arg sqlc.ListEscalationEventsAfterParams) ([]sqlc.EscalationEvent, error)
}

// Folder commits a resolved escalation to the knowledge index. Implemented
// by knowledge.Writer.
type Folder interface {
	Commit(ctx context.Context, req knowledge.FoldRequest) (knowledge.Entry, error)
}

// Ledger is the durable record of escalated queries.
//
// Every status change runs as a conditional UPDATE whose WHERE clause
// re-checks the current status, so two concurrent transitions on the same
// escalation cannot both succeed. The application-level transition check
// exists only to produce a precise error; correctness never depends on it.
//
// Ledger is safe for concurrent use by multiple goroutines.
type Ledger struct {
	pool    *pgxpool.Pool
	queries Querier
	folder  Folder
	logger  *slog.Logger
}

// NewLedger creates a Ledger. pool may be nil in tests, in which case Create
// runs non-transactionally against querier. folder may be nil when the
// deployment disables knowledge feedback.
func NewLedger(pool *pgxpool.Pool, querier Querier, folder Folder, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		pool:    pool,
		queries: querier,
		folder:  folder,
		logger:  logger.With("component", "escalation.ledger"),
	}
}

// Create records a pending escalation together with an escalation.created
// outbox event, in one transaction, so a notifier never sees an event
// without its escalation or vice versa.
func (l *Ledger) Create(ctx context.Context, tn tenant.Tenant, query string, snap GenerationSnapshot) (Escalation, error) {
	if l.pool == nil {
		return l.create(ctx, l.queries, tn, query, snap)
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return Escalation{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			l.logger.DebugContext(ctx, "transaction rollback", "error", err)
		}
	}()

	esc, err := l.create(ctx, sqlc.New(tx), tn, query, snap)
	if err != nil {
		return Escalation{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Escalation{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	l.logger.InfoContext(ctx, "escalation created",
		"escalation_id", esc.ID,
		"namespace", tn.Namespace.String())
	return esc, nil
}

func (l *Ledger) create(ctx context.Context, q Querier, tn tenant.Tenant, query string, snap GenerationSnapshot) (Escalation, error) {
	row, err := q.CreateEscalation(ctx, sqlc.CreateEscalationParams{
		TenantID:             uuidToPgUUID(tn.ID),
		SessionRef:           optStr(snap.SessionRef),
		Query:                query,
		GeneratedAnswer:      optStr(snap.Answer),
		GenerationConfidence: snap.Confidence,
	})
	if err != nil {
		return Escalation{}, fmt.Errorf("failed to create escalation: %w", err)
	}
	esc := fromRow(row)

	payload, err := json.Marshal(createdPayload{
		EscalationID: esc.ID.String(),
		Namespace:    tn.Namespace.String(),
		Query:        query,
		CreatedAt:    esc.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return Escalation{}, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	if err := q.InsertEscalationEvent(ctx, sqlc.InsertEscalationEventParams{
		EscalationID: row.ID,
		TenantID:     row.TenantID,
		EventType:    EventCreated,
		Payload:      payload,
	}); err != nil {
		return Escalation{}, fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return esc, nil
}

// Resolve moves an escalation to resolved with the given resolution text,
// appending an escalation.resolved outbox event in the same transaction.
// Resolving an already-resolved escalation updates the text. When
// foldIntoKnowledge is set the resolution is also committed to the knowledge
// index; the fold happens at most once per escalation, and a repeat attempt
// returns the updated escalation together with ErrAlreadyFolded.
func (l *Ledger) Resolve(ctx context.Context, tn tenant.Tenant, id uuid.UUID, resolutionText, resolverID string, foldIntoKnowledge bool) (Escalation, error) {
	if resolutionText == "" {
		return Escalation{}, ErrResolutionRequired
	}

	current, err := l.Get(ctx, tn, id)
	if err != nil {
		return Escalation{}, err
	}
	if err := ensureTransition(current.Status, StatusResolved); err != nil {
		return Escalation{}, err
	}

	esc, err := l.resolveWithEvent(ctx, tn, id, resolutionText, resolverID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost a race with a concurrent transition; re-read for the
			// precise error.
			return Escalation{}, l.classifyConflict(ctx, tn, id, StatusResolved)
		}
		return Escalation{}, err
	}

	if !foldIntoKnowledge {
		return esc, nil
	}
	if l.folder == nil {
		return esc, nil
	}

	entry, err := l.folder.Commit(ctx, knowledge.FoldRequest{
		EscalationID:   esc.ID,
		TenantID:       esc.TenantID,
		Query:          esc.Query,
		ResolutionText: resolutionText,
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyFolded) {
			esc.FoldedIntoKnowledge = true
			return esc, fmt.Errorf("escalation %s: %w", esc.ID, ErrAlreadyFolded)
		}
		return esc, fmt.Errorf("failed to fold escalation into knowledge: %w", err)
	}
	esc.FoldedIntoKnowledge = true

	l.logger.InfoContext(ctx, "escalation resolved and folded",
		"escalation_id", esc.ID,
		"entry_id", entry.ID)
	return esc, nil
}

// resolveWithEvent runs the conditional resolve UPDATE and the outbox insert
// in one transaction, mirroring Create. A pgx.ErrNoRows from the UPDATE
// passes through unwrapped so the caller can classify the conflict.
func (l *Ledger) resolveWithEvent(ctx context.Context, tn tenant.Tenant, id uuid.UUID, resolutionText, resolverID string) (Escalation, error) {
	if l.pool == nil {
		return l.resolve(ctx, l.queries, tn, id, resolutionText, resolverID)
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return Escalation{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			l.logger.DebugContext(ctx, "transaction rollback", "error", err)
		}
	}()

	esc, err := l.resolve(ctx, sqlc.New(tx), tn, id, resolutionText, resolverID)
	if err != nil {
		return Escalation{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Escalation{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return esc, nil
}

func (l *Ledger) resolve(ctx context.Context, q Querier, tn tenant.Tenant, id uuid.UUID, resolutionText, resolverID string) (Escalation, error) {
	row, err := q.ResolveEscalation(ctx, sqlc.ResolveEscalationParams{
		TenantID:       uuidToPgUUID(tn.ID),
		ID:             uuidToPgUUID(id),
		ResolutionText: &resolutionText,
		ResolverID:     optStr(resolverID),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Escalation{}, err
		}
		return Escalation{}, fmt.Errorf("failed to resolve escalation: %w", err)
	}
	esc := fromRow(row)

	payload, err := json.Marshal(resolvedPayload{
		EscalationID: esc.ID.String(),
		Namespace:    tn.Namespace.String(),
		ResolverID:   resolverID,
		ResolvedAt:   esc.ResolvedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return Escalation{}, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	if err := q.InsertEscalationEvent(ctx, sqlc.InsertEscalationEventParams{
		EscalationID: row.ID,
		TenantID:     row.TenantID,
		EventType:    EventResolved,
		Payload:      payload,
	}); err != nil {
		return Escalation{}, fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return esc, nil
}

// Dismiss closes a pending escalation without a resolution.
func (l *Ledger) Dismiss(ctx context.Context, tn tenant.Tenant, id uuid.UUID, resolverID string) (Escalation, error) {
	current, err := l.Get(ctx, tn, id)
	if err != nil {
		return Escalation{}, err
	}
	if err := ensureTransition(current.Status, StatusDismissed); err != nil {
		return Escalation{}, err
	}

	row, err := l.queries.DismissEscalation(ctx, sqlc.DismissEscalationParams{
		TenantID:   uuidToPgUUID(tn.ID),
		ID:         uuidToPgUUID(id),
		ResolverID: optStr(resolverID),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Escalation{}, l.classifyConflict(ctx, tn, id, StatusDismissed)
		}
		return Escalation{}, fmt.Errorf("failed to dismiss escalation: %w", err)
	}
	return fromRow(row), nil
}

// Reopen returns a resolved or dismissed escalation to pending. An
// escalation whose resolution was already folded into knowledge stays
// closed; its answer lives in the index now.
func (l *Ledger) Reopen(ctx context.Context, tn tenant.Tenant, id uuid.UUID) (Escalation, error) {
	current, err := l.Get(ctx, tn, id)
	if err != nil {
		return Escalation{}, err
	}
	if current.FoldedIntoKnowledge {
		return Escalation{}, fmt.Errorf("%w: escalation %s is folded into knowledge", ErrInvalidTransition, id)
	}
	if err := ensureTransition(current.Status, StatusPending); err != nil {
		return Escalation{}, err
	}

	row, err := l.queries.ReopenEscalation(ctx, sqlc.ReopenEscalationParams{
		TenantID: uuidToPgUUID(tn.ID),
		ID:       uuidToPgUUID(id),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Escalation{}, l.classifyConflict(ctx, tn, id, StatusPending)
		}
		return Escalation{}, fmt.Errorf("failed to reopen escalation: %w", err)
	}
	return fromRow(row), nil
}

// Get fetches one escalation.
func (l *Ledger) Get(ctx context.Context, tn tenant.Tenant, id uuid.UUID) (Escalation, error) {
	row, err := l.queries.GetEscalation(ctx, sqlc.GetEscalationParams{
		TenantID: uuidToPgUUID(tn.ID),
		ID:       uuidToPgUUID(id),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Escalation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Escalation{}, fmt.Errorf("failed to get escalation: %w", err)
	}
	return fromRow(row), nil
}

// List returns the tenant's escalations in the given status, newest first.
func (l *Ledger) List(ctx context.Context, tn tenant.Tenant, status Status, limit, offset int) ([]Escalation, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := l.queries.ListEscalationsByStatus(ctx, sqlc.ListEscalationsByStatusParams{
		TenantID:     uuidToPgUUID(tn.ID),
		Status:       string(status),
		ResultLimit:  int32(limit),
		ResultOffset: int32(offset),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list escalations: %w", err)
	}
	escalations := make([]Escalation, len(rows))
	for i, row := range rows {
		escalations[i] = fromRow(row)
	}
	return escalations, nil
}

// Events returns outbox events with id greater than afterID, oldest first.
// Notifiers poll this and track their own cursor.
func (l *Ledger) Events(ctx context.Context, afterID int64, limit int) ([]Event, error) {
	if limit < 1 {
		limit = 100
	}
	rows, err := l.queries.ListEscalationEventsAfter(ctx, sqlc.ListEscalationEventsAfterParams{
		AfterID:     afterID,
		ResultLimit: int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list outbox events: %w", err)
	}
	events := make([]Event, len(rows))
	for i, row := range rows {
		events[i] = Event{
			ID:           row.ID,
			EscalationID: pgUUIDToUUID(row.EscalationID),
			TenantID:     pgUUIDToUUID(row.TenantID),
			Type:         row.EventType,
			Payload:      row.Payload,
			CreatedAt:    row.CreatedAt.Time,
		}
	}
	return events, nil
}

// classifyConflict re-reads the escalation after a conditional UPDATE
// matched no row and maps the outcome to a sentinel error.
func (l *Ledger) classifyConflict(ctx context.Context, tn tenant.Tenant, id uuid.UUID, wanted Status) error {
	current, err := l.Get(ctx, tn, id)
	if err != nil {
		return err
	}
	if err := ensureTransition(current.Status, wanted); err != nil {
		return err
	}
	// The transition is nominally legal but the row refused it; the only
	// remaining guard is the fold flag on reopen.
	return fmt.Errorf("%w: escalation %s in status %s", ErrInvalidTransition, id, current.Status)
}

func fromRow(row sqlc.Escalation) Escalation {
	esc := Escalation{
		ID:                   pgUUIDToUUID(row.ID),
		TenantID:             pgUUIDToUUID(row.TenantID),
		SessionRef:           deref(row.SessionRef),
		Query:                row.Query,
		GeneratedAnswer:      deref(row.GeneratedAnswer),
		GenerationConfidence: row.GenerationConfidence,
		Status:               Status(row.Status),
		ResolutionText:       deref(row.ResolutionText),
		ResolverID:           deref(row.ResolverID),
		FoldedIntoKnowledge:  row.FoldedIntoKnowledge,
		CreatedAt:            row.CreatedAt.Time,
	}
	if row.ResolvedAt.Valid {
		esc.ResolvedAt = row.ResolvedAt.Time
	}
	return esc
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// uuidToPgUUID converts uuid.UUID to pgtype.UUID.
func uuidToPgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{
		Bytes: id,
		Valid: true,
	}
}

// pgUUIDToUUID converts pgtype.UUID to uuid.UUID.
func pgUUIDToUUID(pgUUID pgtype.UUID) uuid.UUID {
	if !pgUUID.Valid {
		return uuid.Nil
	}
	return pgUUID.Bytes
}
