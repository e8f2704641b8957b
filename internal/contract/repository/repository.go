// Package repository persists rental contracts.
package repository

import (
	"context"
	"database/sql"
	"time"

	"fleetdesk/core/internal/contract/domain"
	repo "fleetdesk/core/internal/repository"
)

// Mapper maps contract rows for the generic repository engine.
type Mapper struct{}

func (Mapper) Table() string { return "contracts" }

func (Mapper) Columns() []string {
	return []string{"id", "tenant_id", "contract_number", "vehicle_id", "customer_name", "start_date", "end_date", "status", "total_amount", "created_by", "created_at", "updated_at"}
}

func (Mapper) ScanRow(s repo.RowScanner) (*domain.Contract, error) {
	var c domain.Contract
	var endDate sql.NullTime
	var createdBy sql.NullString
	if err := s.Scan(&c.ID, &c.TenantID, &c.ContractNumber, &c.VehicleID, &c.CustomerName, &c.StartDate, &endDate, &c.Status, &c.TotalAmount, &createdBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if endDate.Valid {
		c.EndDate = &endDate.Time
	}
	if createdBy.Valid {
		c.CreatedBy = &createdBy.String
	}
	return &c, nil
}

func (Mapper) ID(c *domain.Contract) string { return c.ID }

// Repository is the tenant-scoped contract store.
type Repository struct {
	*repo.TenantScoped[domain.Contract]
	db       *sql.DB
	security repo.SecurityService
}

// NewRepository returns a contract repository using db, guarded by security.
func NewRepository(db *sql.DB, security repo.SecurityService) *Repository {
	base := repo.NewBase[domain.Contract](db, Mapper{})
	return &Repository{
		TenantScoped: repo.WithTenantSecurity(base, security, "contract", "", nil),
		db:           db,
		security:     security,
	}
}

// ActiveByVehicle lists the tenant's active contracts for a vehicle.
func (r *Repository) ActiveByVehicle(ctx context.Context, vehicleID string) ([]*domain.Contract, error) {
	return r.Query(ctx, repo.QueryOptions{Filters: repo.Filters{"vehicle_id": vehicleID, "status": "active"}})
}

// ByCustomer lists the tenant's contracts for a customer, newest first.
func (r *Repository) ByCustomer(ctx context.Context, customerName string) ([]*domain.Contract, error) {
	return r.Query(ctx, repo.QueryOptions{Filters: repo.Filters{"customer_name": customerName}})
}

// Overlapping lists the tenant's contracts on a vehicle whose period
// intersects [start, end]. Open-ended contracts overlap everything after
// their start date.
func (r *Repository) Overlapping(ctx context.Context, vehicleID string, start, end time.Time) ([]*domain.Contract, error) {
	tenantID, err := r.security.ValidateTenantAccess(ctx)
	if err != nil {
		return nil, err
	}
	const q = `SELECT id, tenant_id, contract_number, vehicle_id, customer_name, start_date, end_date, status, total_amount, created_by, created_at, updated_at
		FROM contracts
		WHERE tenant_id = $1 AND vehicle_id = $2
			AND start_date <= $4 AND (end_date IS NULL OR end_date >= $3)
		ORDER BY start_date`
	rows, err := r.db.QueryContext(ctx, q, tenantID, vehicleID, start, end)
	if err != nil {
		return nil, &repo.BackendError{Op: "query overlapping contracts", Err: err}
	}
	defer rows.Close()

	var out []*domain.Contract
	for rows.Next() {
		c, err := (Mapper{}).ScanRow(rows)
		if err != nil {
			return nil, &repo.BackendError{Op: "scan contract", Err: err}
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &repo.BackendError{Op: "iterate contracts", Err: err}
	}
	r.security.LogDataOperation(ctx, "read", "contract", "", "")
	return out, nil
}
