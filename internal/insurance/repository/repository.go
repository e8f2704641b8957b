// Package repository persists vehicle insurance policies. Records are kept
// for coverage history; deactivation stands in for deletion.
package repository

import (
	"context"
	"database/sql"

	"fleetdesk/core/internal/insurance/domain"
	repo "fleetdesk/core/internal/repository"
)

// Mapper maps insurance policy rows for the generic repository engine.
type Mapper struct{}

func (Mapper) Table() string { return "insurance_policies" }

func (Mapper) Columns() []string {
	return []string{"id", "tenant_id", "vehicle_id", "provider", "policy_number", "starts_on", "expires_on", "active", "created_by", "created_at", "updated_at"}
}

func (Mapper) ScanRow(s repo.RowScanner) (*domain.Policy, error) {
	var p domain.Policy
	var createdBy sql.NullString
	if err := s.Scan(&p.ID, &p.TenantID, &p.VehicleID, &p.Provider, &p.PolicyNumber, &p.StartsOn, &p.ExpiresOn, &p.Active, &createdBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if createdBy.Valid {
		p.CreatedBy = &createdBy.String
	}
	return &p, nil
}

func (Mapper) ID(p *domain.Policy) string { return p.ID }

// Repository is the tenant-scoped insurance policy store.
type Repository struct {
	*repo.TenantScoped[domain.Policy]
	db       *sql.DB
	security repo.SecurityService
}

// NewRepository returns an insurance policy repository using db, guarded by
// security.
func NewRepository(db *sql.DB, security repo.SecurityService) *Repository {
	base := repo.NewBase[domain.Policy](db, Mapper{})
	return &Repository{
		TenantScoped: repo.WithTenantSecurity(base, security, "insurance_policy", "", nil),
		db:           db,
		security:     security,
	}
}

// ActiveByVehicle lists the tenant's active policies on a vehicle.
func (r *Repository) ActiveByVehicle(ctx context.Context, vehicleID string) ([]*domain.Policy, error) {
	return r.Query(ctx, repo.QueryOptions{Filters: repo.Filters{"vehicle_id": vehicleID, "active": true}})
}

// Deactivate soft-deletes a policy, keeping the row for coverage history.
func (r *Repository) Deactivate(ctx context.Context, id string) (*domain.Policy, error) {
	return r.Update(ctx, id, map[string]any{"active": false})
}
