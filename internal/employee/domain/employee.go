package domain

import "time"

// Employee is a business entity optionally linked to a principal via UserID.
// Access to an employee's subordinate records (attendance, leave, payroll)
// requires either a privileged tenant role or ownership of the record.
type Employee struct {
	ID        string
	TenantID  string
	UserID    *string // nil when the employee has no login
	Name      string
	Position  string
	HiredAt   *time.Time
	CreatedBy *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
