package domain

import "time"

// Tenant is the isolation boundary for all business records. Every persisted
// row carries exactly one tenant id, assigned at creation and never changed.
type Tenant struct {
	ID        string
	Name      string
	Active    bool
	CreatedAt time.Time
}
