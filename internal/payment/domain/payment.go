package domain

import "time"

// Payment records money received against an invoice.
type Payment struct {
	ID        string
	TenantID  string
	InvoiceID string
	Amount    float64
	Method    string
	PaidAt    time.Time
	CreatedBy *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
