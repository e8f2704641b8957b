package repository

import (
	"context"

	"fleetdesk/core/internal/membership/domain"
)

// Repository defines persistence for tenant memberships.
type Repository interface {
	GetByUserAndTenant(ctx context.Context, userID, tenantID string) (*domain.Membership, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*domain.Membership, error)
	Create(ctx context.Context, m *domain.Membership) error
	UpdateRole(ctx context.Context, userID, tenantID string, role domain.Role) (*domain.Membership, error)
	Deactivate(ctx context.Context, userID, tenantID string) error
}
