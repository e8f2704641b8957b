package repository

import (
	"context"
	"database/sql"
	"errors"

	"fleetdesk/core/internal/membership/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a membership repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const membershipColumns = "id, user_id, tenant_id, role, active, created_at"

// GetByUserAndTenant returns the membership for the given user and tenant, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByUserAndTenant(ctx context.Context, userID, tenantID string) (*domain.Membership, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+membershipColumns+" FROM memberships WHERE user_id = $1 AND tenant_id = $2",
		userID, tenantID,
	)
	return scanMembership(row)
}

// ListByTenant returns all memberships for the given tenant. Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListByTenant(ctx context.Context, tenantID string) ([]*domain.Membership, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+membershipColumns+" FROM memberships WHERE tenant_id = $1 ORDER BY created_at",
		tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Membership
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.ID, &m.UserID, &m.TenantID, &m.Role, &m.Active, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// Create persists the membership. The membership must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, m *domain.Membership) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO memberships (id, user_id, tenant_id, role, active, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		m.ID, m.UserID, m.TenantID, string(m.Role), m.Active, m.CreatedAt,
	)
	return err
}

// UpdateRole sets the member's role and returns the updated membership, or nil if no such membership.
func (r *PostgresRepository) UpdateRole(ctx context.Context, userID, tenantID string, role domain.Role) (*domain.Membership, error) {
	row := r.db.QueryRowContext(ctx,
		"UPDATE memberships SET role = $1 WHERE user_id = $2 AND tenant_id = $3 RETURNING "+membershipColumns,
		string(role), userID, tenantID,
	)
	return scanMembership(row)
}

// Deactivate marks the membership inactive. Missing membership is a no-op.
func (r *PostgresRepository) Deactivate(ctx context.Context, userID, tenantID string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE memberships SET active = FALSE WHERE user_id = $1 AND tenant_id = $2",
		userID, tenantID,
	)
	return err
}

func scanMembership(row *sql.Row) (*domain.Membership, error) {
	var m domain.Membership
	err := row.Scan(&m.ID, &m.UserID, &m.TenantID, &m.Role, &m.Active, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}
