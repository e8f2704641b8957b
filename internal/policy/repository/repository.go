package repository

import (
	"context"

	"fleetdesk/core/internal/policy/domain"
)

// Repository defines persistence for tenant record-access policies.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Policy, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*domain.Policy, error)
	GetEnabledPoliciesByTenant(ctx context.Context, tenantID string) ([]*domain.Policy, error)
	Create(ctx context.Context, p *domain.Policy) error
	Update(ctx context.Context, p *domain.Policy) error
	Delete(ctx context.Context, id string) error
}
