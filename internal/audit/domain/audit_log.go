package domain

import "time"

// AuditLog is an immutable record of a successful data operation. The
// application layer never mutates or deletes these rows.
type AuditLog struct {
	ID        string
	TenantID  string
	UserID    string
	Action    string // e.g. "create", "update", "delete", "read"
	Entity    string // e.g. "attendance", "vehicle"
	RecordID  string
	Metadata  string
	CreatedAt time.Time
}

// SecurityEvent records a denied or failed access attempt, kept distinct from
// successful operations to support intrusion/misuse detection.
type SecurityEvent struct {
	ID        string
	TenantID  string
	UserID    string
	Event     string // e.g. "access_denied", "tenant_mismatch"
	Entity    string
	Metadata  string
	CreatedAt time.Time
}
