package domain

import "time"

// Policy is a tenant-level record-access policy written in Rego. Enabled
// policies replace the built-in default for that tenant.
type Policy struct {
	ID        string
	TenantID  string
	Name      string
	Rules     string
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
