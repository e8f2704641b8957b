package domain

import "time"

// Policy is an insurance policy covering a vehicle. Policies are never hard
// deleted; expired or cancelled coverage is deactivated instead.
type Policy struct {
	ID           string
	TenantID     string
	VehicleID    string
	Provider     string
	PolicyNumber string
	StartsOn     time.Time
	ExpiresOn    time.Time
	Active       bool
	CreatedBy    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
