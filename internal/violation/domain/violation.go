package domain

import "time"

// Violation is a traffic or contract violation recorded against a vehicle.
type Violation struct {
	ID            string
	TenantID      string
	VehicleID     string
	ViolationDate time.Time
	Description   string
	FineAmount    float64
	Resolved      bool
	CreatedBy     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
