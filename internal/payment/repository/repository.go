// Package repository persists invoice payments.
package repository

import (
	"context"
	"database/sql"

	"fleetdesk/core/internal/payment/domain"
	repo "fleetdesk/core/internal/repository"
)

// Mapper maps payment rows for the generic repository engine.
type Mapper struct{}

func (Mapper) Table() string { return "payments" }

func (Mapper) Columns() []string {
	return []string{"id", "tenant_id", "invoice_id", "amount", "method", "paid_at", "created_by", "created_at", "updated_at"}
}

func (Mapper) ScanRow(s repo.RowScanner) (*domain.Payment, error) {
	var p domain.Payment
	var createdBy sql.NullString
	if err := s.Scan(&p.ID, &p.TenantID, &p.InvoiceID, &p.Amount, &p.Method, &p.PaidAt, &createdBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if createdBy.Valid {
		p.CreatedBy = &createdBy.String
	}
	return &p, nil
}

func (Mapper) ID(p *domain.Payment) string { return p.ID }

// Repository is the tenant-scoped payment store.
type Repository struct {
	*repo.TenantScoped[domain.Payment]
	db       *sql.DB
	security repo.SecurityService
}

// NewRepository returns a payment repository using db, guarded by security.
func NewRepository(db *sql.DB, security repo.SecurityService) *Repository {
	base := repo.NewBase[domain.Payment](db, Mapper{})
	return &Repository{
		TenantScoped: repo.WithTenantSecurity(base, security, "payment", "", nil),
		db:           db,
		security:     security,
	}
}

// ByInvoice lists the tenant's payments for an invoice, newest first.
func (r *Repository) ByInvoice(ctx context.Context, invoiceID string) ([]*domain.Payment, error) {
	return r.Query(ctx, repo.QueryOptions{Filters: repo.Filters{"invoice_id": invoiceID}})
}

// SumByInvoice returns the total amount paid against an invoice. Invoices
// with no payments sum to zero.
func (r *Repository) SumByInvoice(ctx context.Context, invoiceID string) (float64, error) {
	tenantID, err := r.security.ValidateTenantAccess(ctx)
	if err != nil {
		return 0, err
	}
	const q = `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE tenant_id = $1 AND invoice_id = $2`
	var total float64
	if err := r.db.QueryRowContext(ctx, q, tenantID, invoiceID).Scan(&total); err != nil {
		return 0, &repo.BackendError{Op: "sum payments", Err: err}
	}
	return total, nil
}
