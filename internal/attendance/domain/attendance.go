package domain

import "time"

// Attendance is one employee's presence record for one work day.
type Attendance struct {
	ID         string
	TenantID   string
	EmployeeID string
	WorkDate   time.Time
	CheckIn    *time.Time
	CheckOut   *time.Time
	Status     string
	CreatedBy  *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
