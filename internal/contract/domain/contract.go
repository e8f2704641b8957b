package domain

import "time"

// Contract is a rental agreement binding a vehicle to a customer for a date
// range. EndDate is nil for open-ended contracts.
type Contract struct {
	ID             string
	TenantID       string
	ContractNumber string
	VehicleID      string
	CustomerName   string
	StartDate      time.Time
	EndDate        *time.Time
	Status         string
	TotalAmount    float64
	CreatedBy      *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
