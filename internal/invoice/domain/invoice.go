package domain

import "time"

// Invoice is a billing document, optionally tied to a contract.
// InvoiceNumber is the server-generated business identifier (INV + 6 digits),
// unique per tenant.
type Invoice struct {
	ID            string
	TenantID      string
	InvoiceNumber string
	ContractID    *string
	Amount        float64
	DueDate       *time.Time
	Status        string
	CreatedBy     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
