package domain

import (
	"time"
)

// Membership links a principal to a tenant with a role. A principal has at
// most one membership per tenant; the active one determines the session's tenant.
type Membership struct {
	ID        string
	UserID    string
	TenantID  string
	Role      Role
	Active    bool
	CreatedAt time.Time
}

type Role string

const (
	RoleOwner   Role = "owner"
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

// Privileged reports whether the role grants tenant-wide access to employee
// records (attendance, leave, payroll) beyond the principal's own.
func (r Role) Privileged() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleManager
}
