package repository

import (
	"context"
	"database/sql"
	"errors"

	"fleetdesk/core/internal/policy/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a policy repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const policyColumns = "id, tenant_id, name, rules, enabled, created_at, updated_at"

// GetByID returns the policy with the given id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Policy, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+policyColumns+" FROM policies WHERE id = $1", id,
	)
	return scanPolicy(row)
}

// ListByTenant returns all policies for the tenant, enabled or not.
func (r *PostgresRepository) ListByTenant(ctx context.Context, tenantID string) ([]*domain.Policy, error) {
	return r.list(ctx,
		"SELECT "+policyColumns+" FROM policies WHERE tenant_id = $1 ORDER BY created_at",
		tenantID,
	)
}

// GetEnabledPoliciesByTenant returns the tenant's enabled policies in creation order.
func (r *PostgresRepository) GetEnabledPoliciesByTenant(ctx context.Context, tenantID string) ([]*domain.Policy, error) {
	return r.list(ctx,
		"SELECT "+policyColumns+" FROM policies WHERE tenant_id = $1 AND enabled ORDER BY created_at",
		tenantID,
	)
}

// Create persists the policy. The policy must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.Policy) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO policies (id, tenant_id, name, rules, enabled, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		p.ID, p.TenantID, p.Name, p.Rules, p.Enabled, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// Update rewrites the policy's mutable fields.
func (r *PostgresRepository) Update(ctx context.Context, p *domain.Policy) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE policies SET name = $1, rules = $2, enabled = $3 WHERE id = $4",
		p.Name, p.Rules, p.Enabled, p.ID,
	)
	return err
}

// Delete removes the policy. Missing policy is a no-op.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM policies WHERE id = $1", id)
	return err
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Policy, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Policy
	for rows.Next() {
		var p domain.Policy
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Name, &p.Rules, &p.Enabled, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func scanPolicy(row *sql.Row) (*domain.Policy, error) {
	var p domain.Policy
	err := row.Scan(&p.ID, &p.TenantID, &p.Name, &p.Rules, &p.Enabled, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
