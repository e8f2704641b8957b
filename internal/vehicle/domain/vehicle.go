package domain

import "time"

// Vehicle is a fleet vehicle. VehicleNumber is the server-generated business
// identifier (VEH + 4 digits), unique per tenant.
type Vehicle struct {
	ID            string
	TenantID      string
	VehicleNumber string
	PlateNumber   string
	Model         string
	Status        string
	DailyRate     float64
	CreatedBy     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
