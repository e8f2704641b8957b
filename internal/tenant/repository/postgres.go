package repository

import (
	"context"
	"database/sql"
	"errors"

	"fleetdesk/core/internal/tenant/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a tenant repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const tenantColumns = "id, name, active, created_at"

// GetByID returns the tenant for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+tenantColumns+" FROM tenants WHERE id = $1", id)
	return scanTenant(row)
}

// GetByName returns the tenant with the given name, or nil if not found.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+tenantColumns+" FROM tenants WHERE name = $1", name)
	return scanTenant(row)
}

// Create persists the tenant. The tenant must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.Tenant) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO tenants (id, name, active, created_at) VALUES ($1, $2, $3, $4)",
		t.ID, t.Name, t.Active, t.CreatedAt,
	)
	return err
}

func scanTenant(row *sql.Row) (*domain.Tenant, error) {
	var t domain.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Active, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}
