package handlers

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/beneflow/beneflow/internal/tenant"
)

var errUnexpectedCall = errors.New("unexpected call")

// stubResolver resolves a fixed tenant or fails with err.
type stubResolver struct {
	tn  tenant.Tenant
	err error
}

func (s *stubResolver) Resolve(_ context.Context, rawNamespace string) (tenant.Tenant, error) {
	if s.err != nil {
		return tenant.Tenant{}, s.err
	}
	if rawNamespace != s.tn.Namespace.String() {
		return tenant.Tenant{}, tenant.ErrInvalidNamespace
	}
	return s.tn, nil
}

func testTenant() tenant.Tenant {
	return tenant.Tenant{
		ID:        uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Namespace: "acme",
		Name:      "Acme Corp",
		Config:    tenant.DefaultRetrievalConfig(),
	}
}
