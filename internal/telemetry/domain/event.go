package domain

import "time"

// SecurityEvent is the wire form of a security event published to the
// telemetry pipeline. The same shape is consumed by the worker that forwards
// events to Loki.
type SecurityEvent struct {
	TenantID   string    `json:"tenantId"`
	UserID     string    `json:"userId,omitempty"`
	EmployeeID string    `json:"employeeId,omitempty"`
	Event      string    `json:"event"`
	Entity     string    `json:"entity,omitempty"`
	Metadata   string    `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
