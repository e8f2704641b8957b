// Package repository persists fleet vehicles. Vehicle numbers come from a
// Postgres stored function and are validated client-side before use.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	repo "fleetdesk/core/internal/repository"
	"fleetdesk/core/internal/vehicle/domain"
)

// vehicleNumberPattern is the required shape of generate_vehicle_number() output.
var vehicleNumberPattern = regexp.MustCompile(`^VEH\d{4}$`)

// Mapper maps vehicle rows for the generic repository engine.
type Mapper struct{}

func (Mapper) Table() string { return "vehicles" }

func (Mapper) Columns() []string {
	return []string{"id", "tenant_id", "vehicle_number", "plate_number", "model", "status", "daily_rate", "created_by", "created_at", "updated_at"}
}

func (Mapper) ScanRow(s repo.RowScanner) (*domain.Vehicle, error) {
	var v domain.Vehicle
	var createdBy sql.NullString
	if err := s.Scan(&v.ID, &v.TenantID, &v.VehicleNumber, &v.PlateNumber, &v.Model, &v.Status, &v.DailyRate, &createdBy, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	if createdBy.Valid {
		v.CreatedBy = &createdBy.String
	}
	return &v, nil
}

func (Mapper) ID(v *domain.Vehicle) string { return v.ID }

// Repository is the tenant-scoped vehicle store.
type Repository struct {
	*repo.TenantScoped[domain.Vehicle]
	db       *sql.DB
	security repo.SecurityService
}

// NewRepository returns a vehicle repository using db, guarded by security.
func NewRepository(db *sql.DB, security repo.SecurityService) *Repository {
	base := repo.NewBase[domain.Vehicle](db, Mapper{})
	return &Repository{
		TenantScoped: repo.WithTenantSecurity(base, security, "vehicle", "", nil),
		db:           db,
		security:     security,
	}
}

// NextNumber asks the backend for the next vehicle number and validates its
// format. A malformed number fails with ErrInvalidGeneratedIdentifier; the
// sequence value is consumed either way.
func (r *Repository) NextNumber(ctx context.Context) (string, error) {
	var n string
	if err := r.db.QueryRowContext(ctx, "SELECT generate_vehicle_number()").Scan(&n); err != nil {
		return "", &repo.BackendError{Op: "generate vehicle number", Err: err}
	}
	if err := ValidateNumber(n); err != nil {
		return "", err
	}
	return n, nil
}

// ValidateNumber checks a vehicle number against the VEH + 4 digits format.
func ValidateNumber(n string) error {
	if !vehicleNumberPattern.MatchString(n) {
		return fmt.Errorf("vehicle number %q: %w", n, repo.ErrInvalidGeneratedIdentifier)
	}
	return nil
}

// CreateWithGeneratedNumber inserts a vehicle with a freshly generated
// vehicle_number. A caller-supplied vehicle_number is overwritten.
func (r *Repository) CreateWithGeneratedNumber(ctx context.Context, values map[string]any) (*domain.Vehicle, error) {
	n, err := r.NextNumber(ctx)
	if err != nil {
		return nil, err
	}
	withNumber := make(map[string]any, len(values)+1)
	for k, v := range values {
		withNumber[k] = v
	}
	withNumber["vehicle_number"] = n
	return r.Create(ctx, withNumber)
}

// ByStatus lists the tenant's vehicles with the given status, newest first.
func (r *Repository) ByStatus(ctx context.Context, status string) ([]*domain.Vehicle, error) {
	return r.Query(ctx, repo.QueryOptions{Filters: repo.Filters{"status": status}})
}
