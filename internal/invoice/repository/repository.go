// Package repository persists invoices. Invoice numbers come from a Postgres
// stored function and are validated client-side before use.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"fleetdesk/core/internal/invoice/domain"
	repo "fleetdesk/core/internal/repository"
)

// invoiceNumberPattern is the required shape of generate_invoice_number() output.
var invoiceNumberPattern = regexp.MustCompile(`^INV\d{6}$`)

// Mapper maps invoice rows for the generic repository engine.
type Mapper struct{}

func (Mapper) Table() string { return "invoices" }

func (Mapper) Columns() []string {
	return []string{"id", "tenant_id", "invoice_number", "contract_id", "amount", "due_date", "status", "created_by", "created_at", "updated_at"}
}

func (Mapper) ScanRow(s repo.RowScanner) (*domain.Invoice, error) {
	var inv domain.Invoice
	var contractID, createdBy sql.NullString
	var dueDate sql.NullTime
	if err := s.Scan(&inv.ID, &inv.TenantID, &inv.InvoiceNumber, &contractID, &inv.Amount, &dueDate, &inv.Status, &createdBy, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return nil, err
	}
	if contractID.Valid {
		inv.ContractID = &contractID.String
	}
	if dueDate.Valid {
		inv.DueDate = &dueDate.Time
	}
	if createdBy.Valid {
		inv.CreatedBy = &createdBy.String
	}
	return &inv, nil
}

func (Mapper) ID(inv *domain.Invoice) string { return inv.ID }

// Repository is the tenant-scoped invoice store.
type Repository struct {
	*repo.TenantScoped[domain.Invoice]
	db       *sql.DB
	security repo.SecurityService
}

// NewRepository returns an invoice repository using db, guarded by security.
func NewRepository(db *sql.DB, security repo.SecurityService) *Repository {
	base := repo.NewBase[domain.Invoice](db, Mapper{})
	return &Repository{
		TenantScoped: repo.WithTenantSecurity(base, security, "invoice", "", nil),
		db:           db,
		security:     security,
	}
}

// NextNumber asks the backend for the next invoice number and validates its
// format. A malformed number fails with ErrInvalidGeneratedIdentifier; the
// sequence value is consumed either way.
func (r *Repository) NextNumber(ctx context.Context) (string, error) {
	var n string
	if err := r.db.QueryRowContext(ctx, "SELECT generate_invoice_number()").Scan(&n); err != nil {
		return "", &repo.BackendError{Op: "generate invoice number", Err: err}
	}
	if err := ValidateNumber(n); err != nil {
		return "", err
	}
	return n, nil
}

// ValidateNumber checks an invoice number against the INV + 6 digits format.
func ValidateNumber(n string) error {
	if !invoiceNumberPattern.MatchString(n) {
		return fmt.Errorf("invoice number %q: %w", n, repo.ErrInvalidGeneratedIdentifier)
	}
	return nil
}

// CreateWithGeneratedNumber inserts an invoice with a freshly generated
// invoice_number. A caller-supplied invoice_number is overwritten.
func (r *Repository) CreateWithGeneratedNumber(ctx context.Context, values map[string]any) (*domain.Invoice, error) {
	n, err := r.NextNumber(ctx)
	if err != nil {
		return nil, err
	}
	withNumber := make(map[string]any, len(values)+1)
	for k, v := range values {
		withNumber[k] = v
	}
	withNumber["invoice_number"] = n
	return r.Create(ctx, withNumber)
}

// Unpaid lists the tenant's unpaid invoices, newest first.
func (r *Repository) Unpaid(ctx context.Context) ([]*domain.Invoice, error) {
	return r.Query(ctx, repo.QueryOptions{Filters: repo.Filters{"status": "unpaid"}})
}

// ByContract lists the tenant's invoices for a contract, newest first.
func (r *Repository) ByContract(ctx context.Context, contractID string) ([]*domain.Invoice, error) {
	return r.Query(ctx, repo.QueryOptions{Filters: repo.Filters{"contract_id": contractID}})
}
