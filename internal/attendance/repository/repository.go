// Package repository persists attendance records. Attendance is
// employee-scoped: members reach only their own employee's rows, privileged
// roles the whole tenant. All access runs through the tenant-scoped decorator;
// the date-range reads here add their own SQL but keep the same checks.
package repository

import (
	"context"
	"database/sql"
	"time"

	"fleetdesk/core/internal/attendance/domain"
	repo "fleetdesk/core/internal/repository"
)

const attendanceColumns = "id, tenant_id, employee_id, work_date, check_in, check_out, status, created_by, created_at, updated_at"

// Mapper maps attendance rows for the generic repository engine.
type Mapper struct{}

func (Mapper) Table() string { return "attendance" }

func (Mapper) Columns() []string {
	return []string{"id", "tenant_id", "employee_id", "work_date", "check_in", "check_out", "status", "created_by", "created_at", "updated_at"}
}

func (Mapper) ScanRow(s repo.RowScanner) (*domain.Attendance, error) {
	return scanAttendance(s)
}

func (Mapper) ID(a *domain.Attendance) string { return a.ID }

// Repository is the tenant- and employee-scoped attendance store.
type Repository struct {
	*repo.TenantScoped[domain.Attendance]
	db       *sql.DB
	security repo.SecurityService
}

// NewRepository returns an attendance repository using db, guarded by security.
func NewRepository(db *sql.DB, security repo.SecurityService) *Repository {
	base := repo.NewBase[domain.Attendance](db, Mapper{})
	return &Repository{
		TenantScoped: repo.WithTenantSecurity(base, security, "attendance", "employee_id",
			func(a *domain.Attendance) string { return a.EmployeeID }),
		db:       db,
		security: security,
	}
}

// GetByEmployeeID returns the employee's attendance with work_date in
// [from, to], oldest first. The ownership check runs before the query is
// issued so a denied caller learns nothing about the rows.
func (r *Repository) GetByEmployeeID(ctx context.Context, employeeID string, from, to time.Time) ([]*domain.Attendance, error) {
	tenantID, err := r.security.ValidateTenantAccess(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.security.ValidateEmployeeAccess(ctx, "attendance", employeeID); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+attendanceColumns+" FROM attendance WHERE tenant_id = $1 AND employee_id = $2 AND work_date BETWEEN $3 AND $4 ORDER BY work_date",
		tenantID, employeeID, from, to,
	)
	if err != nil {
		return nil, &repo.BackendError{Op: "select attendance", Err: err}
	}
	defer rows.Close()

	out, err := collectAttendance(rows)
	if err != nil {
		return nil, err
	}
	r.security.LogDataOperation(ctx, "read", "attendance", "", "")
	return out, nil
}

// GetToday returns the employee's attendance row for the current UTC date, or
// nil if the employee has not checked in today. Runs through the decorator,
// so it is scoped and audited like any other read.
func (r *Repository) GetToday(ctx context.Context, employeeID string) (*domain.Attendance, error) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	rows, err := r.Query(ctx, repo.QueryOptions{
		Filters: repo.Filters{"employee_id": employeeID, "work_date": today},
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// CheckIn opens today's attendance row for the employee at the given time.
func (r *Repository) CheckIn(ctx context.Context, employeeID string, at time.Time) (*domain.Attendance, error) {
	return r.Create(ctx, map[string]any{
		"employee_id": employeeID,
		"work_date":   at,
		"check_in":    at,
		"status":      "present",
	})
}

// CheckOut records the check-out time on an existing attendance row.
func (r *Repository) CheckOut(ctx context.Context, id string, at time.Time) (*domain.Attendance, error) {
	return r.Update(ctx, id, map[string]any{"check_out": at})
}

func scanAttendance(s repo.RowScanner) (*domain.Attendance, error) {
	var a domain.Attendance
	var checkIn, checkOut sql.NullTime
	var createdBy sql.NullString
	if err := s.Scan(&a.ID, &a.TenantID, &a.EmployeeID, &a.WorkDate, &checkIn, &checkOut, &a.Status, &createdBy, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if checkIn.Valid {
		a.CheckIn = &checkIn.Time
	}
	if checkOut.Valid {
		a.CheckOut = &checkOut.Time
	}
	if createdBy.Valid {
		a.CreatedBy = &createdBy.String
	}
	return &a, nil
}

func collectAttendance(rows *sql.Rows) ([]*domain.Attendance, error) {
	var out []*domain.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, &repo.BackendError{Op: "select attendance", Err: err}
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, &repo.BackendError{Op: "select attendance", Err: err}
	}
	return out, nil
}
