package repository

import (
	"context"

	"fleetdesk/core/internal/audit/domain"
)

// Repository defines persistence for audit logs and security events.
// Both tables are append-only from the application's point of view.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.AuditLog, error)
	ListByTenant(ctx context.Context, tenantID string, limit, offset int32) ([]*domain.AuditLog, error)
	Create(ctx context.Context, a *domain.AuditLog) error
	CreateSecurityEvent(ctx context.Context, e *domain.SecurityEvent) error
	ListSecurityEventsByTenant(ctx context.Context, tenantID string, limit, offset int32) ([]*domain.SecurityEvent, error)
}
