package repository

import (
	"context"

	"fleetdesk/core/internal/user/domain"
)

// Repository defines persistence for principals.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}
