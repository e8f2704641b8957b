// Package repository persists vehicle violations.
package repository

import (
	"context"
	"database/sql"

	repo "fleetdesk/core/internal/repository"
	"fleetdesk/core/internal/violation/domain"
)

// Mapper maps violation rows for the generic repository engine.
type Mapper struct{}

func (Mapper) Table() string { return "violations" }

func (Mapper) Columns() []string {
	return []string{"id", "tenant_id", "vehicle_id", "violation_date", "description", "fine_amount", "resolved", "created_by", "created_at", "updated_at"}
}

func (Mapper) ScanRow(s repo.RowScanner) (*domain.Violation, error) {
	var v domain.Violation
	var createdBy sql.NullString
	if err := s.Scan(&v.ID, &v.TenantID, &v.VehicleID, &v.ViolationDate, &v.Description, &v.FineAmount, &v.Resolved, &createdBy, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	if createdBy.Valid {
		v.CreatedBy = &createdBy.String
	}
	return &v, nil
}

func (Mapper) ID(v *domain.Violation) string { return v.ID }

// Repository is the tenant-scoped violation store.
type Repository struct {
	*repo.TenantScoped[domain.Violation]
	db       *sql.DB
	security repo.SecurityService
}

// NewRepository returns a violation repository using db, guarded by security.
func NewRepository(db *sql.DB, security repo.SecurityService) *Repository {
	base := repo.NewBase[domain.Violation](db, Mapper{})
	return &Repository{
		TenantScoped: repo.WithTenantSecurity(base, security, "violation", "", nil),
		db:           db,
		security:     security,
	}
}

// ByVehicle lists the tenant's violations for a vehicle, newest first.
func (r *Repository) ByVehicle(ctx context.Context, vehicleID string) ([]*domain.Violation, error) {
	return r.Query(ctx, repo.QueryOptions{Filters: repo.Filters{"vehicle_id": vehicleID}})
}

// Unresolved lists the tenant's open violations, newest first.
func (r *Repository) Unresolved(ctx context.Context) ([]*domain.Violation, error) {
	return r.Query(ctx, repo.QueryOptions{Filters: repo.Filters{"resolved": false}})
}

// Resolve marks a violation as resolved.
func (r *Repository) Resolve(ctx context.Context, id string) (*domain.Violation, error) {
	return r.Update(ctx, id, map[string]any{"resolved": true})
}
