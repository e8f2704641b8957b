package repository

import (
	"context"
	"database/sql"
	"errors"

	"fleetdesk/core/internal/employee/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an employee repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const employeeColumns = "id, tenant_id, user_id, name, position, hired_at, created_by, created_at, updated_at"

// GetByID returns the employee for id within the tenant, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Employee, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE tenant_id = $1 AND id = $2",
		tenantID, id,
	)
	return scanEmployee(row)
}

// GetByUserID returns the employee linked to the given principal within the tenant, or nil if none.
func (r *PostgresRepository) GetByUserID(ctx context.Context, tenantID, userID string) (*domain.Employee, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE tenant_id = $1 AND user_id = $2",
		tenantID, userID,
	)
	return scanEmployee(row)
}

// ListByTenant returns all employees for the tenant, newest first.
func (r *PostgresRepository) ListByTenant(ctx context.Context, tenantID string) ([]*domain.Employee, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE tenant_id = $1 ORDER BY created_at DESC",
		tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Employee
	for rows.Next() {
		e, err := scanEmployeeRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Create persists the employee. The employee must have ID and TenantID set.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.Employee) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO employees (id, tenant_id, user_id, name, position, hired_at, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.TenantID, e.UserID, e.Name, e.Position, e.HiredAt, e.CreatedBy, e.CreatedAt, e.UpdatedAt,
	)
	return err
}

func scanEmployee(row *sql.Row) (*domain.Employee, error) {
	var e domain.Employee
	err := row.Scan(&e.ID, &e.TenantID, &e.UserID, &e.Name, &e.Position, &e.HiredAt, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func scanEmployeeRows(rows *sql.Rows) (*domain.Employee, error) {
	var e domain.Employee
	err := rows.Scan(&e.ID, &e.TenantID, &e.UserID, &e.Name, &e.Position, &e.HiredAt, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
