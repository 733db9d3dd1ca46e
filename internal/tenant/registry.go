package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/beneflow/beneflow/internal/sqlc"
)

// Querier defines the database operations the registry needs.
// Interfaces are defined by the consumer, not the provider, so tests can
// inject a mock without a live database.
type Querier interface {
	CreateTenant(ctx context.Context, arg sqlc.CreateTenantParams) (sqlc.Tenant, error)
	GetTenantByNamespace(ctx context.Context, namespace string) (sqlc.Tenant, error)
	TenantExists(ctx context.Context, namespace string) (bool, error)
}

// Registry resolves tenant namespaces against the tenants table.
//
// Registry is safe for concurrent use by multiple goroutines.
type Registry struct {
	queries Querier
	logger  *slog.Logger
}

// NewRegistry creates a Registry backed by querier.
func NewRegistry(querier Querier, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		queries: querier,
		logger:  logger.With("component", "tenant.registry"),
	}
}

// Resolve maps a raw namespace string to a registered tenant with its
// retrieval configuration. Returns ErrInvalidNamespace when the namespace is
// malformed or unregistered, and ErrThresholdOutOfRange/ErrTopKOutOfRange
// when the stored configuration fails validation.
func (r *Registry) Resolve(ctx context.Context, rawNamespace string) (Tenant, error) {
	ns, err := ParseNamespace(rawNamespace)
	if err != nil {
		return Tenant{}, err
	}

	row, err := r.queries.GetTenantByNamespace(ctx, ns.String())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tenant{}, fmt.Errorf("%w: %q not registered", ErrInvalidNamespace, ns)
		}
		return Tenant{}, fmt.Errorf("failed to resolve tenant %q: %w", ns, err)
	}

	t := fromRow(row)
	if err := t.Config.Validate(); err != nil {
		// Stored configuration can only go out of range through manual
		// edits bypassing Register; reject rather than serve bad values.
		return Tenant{}, fmt.Errorf("tenant %q has invalid stored config: %w", ns, err)
	}
	return t, nil
}

// Register creates a new tenant. A zero config is replaced with
// DefaultRetrievalConfig; explicit values are validated and rejected when out
// of range. Returns ErrNamespaceTaken when the namespace already exists.
func (r *Registry) Register(ctx context.Context, rawNamespace, name string, cfg RetrievalConfig) (Tenant, error) {
	ns, err := ParseNamespace(rawNamespace)
	if err != nil {
		return Tenant{}, err
	}
	if cfg == (RetrievalConfig{}) {
		cfg = DefaultRetrievalConfig()
	}
	if err := cfg.Validate(); err != nil {
		return Tenant{}, err
	}

	row, err := r.queries.CreateTenant(ctx, sqlc.CreateTenantParams{
		Namespace:           ns.String(),
		Name:                name,
		SimilarityThreshold: cfg.SimilarityThreshold,
		TopK:                int32(cfg.TopK),
		EscalationThreshold: cfg.EscalationThreshold,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Tenant{}, fmt.Errorf("%w: %q", ErrNamespaceTaken, ns)
		}
		return Tenant{}, fmt.Errorf("failed to register tenant %q: %w", ns, err)
	}

	r.logger.InfoContext(ctx, "tenant registered",
		"namespace", ns.String(),
		"top_k", cfg.TopK,
		"similarity_threshold", cfg.SimilarityThreshold)

	return fromRow(row), nil
}

// Exists reports whether a namespace is registered. Malformed namespaces
// return false without touching the database.
func (r *Registry) Exists(ctx context.Context, rawNamespace string) (bool, error) {
	ns, err := ParseNamespace(rawNamespace)
	if err != nil {
		return false, nil
	}
	return r.queries.TenantExists(ctx, ns.String())
}

func fromRow(row sqlc.Tenant) Tenant {
	return Tenant{
		ID:        pgUUIDToUUID(row.ID),
		Namespace: Namespace(row.Namespace),
		Name:      row.Name,
		Config: RetrievalConfig{
			SimilarityThreshold: row.SimilarityThreshold,
			TopK:                int(row.TopK),
			EscalationThreshold: row.EscalationThreshold,
		},
		CreatedAt: row.CreatedAt.Time,
	}
}

// pgUUIDToUUID converts pgtype.UUID to uuid.UUID.
func pgUUIDToUUID(pgUUID pgtype.UUID) uuid.UUID {
	if !pgUUID.Valid {
		return uuid.Nil
	}
	return pgUUID.Bytes
}
