package repository

import (
	"context"

	"fleetdesk/core/internal/employee/domain"
)

// Repository defines persistence for employees. All lookups are tenant-scoped.
type Repository interface {
	GetByID(ctx context.Context, tenantID, id string) (*domain.Employee, error)
	GetByUserID(ctx context.Context, tenantID, userID string) (*domain.Employee, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*domain.Employee, error)
	Create(ctx context.Context, e *domain.Employee) error
}
