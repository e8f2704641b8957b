package repository

import (
	"context"
	"database/sql"
	"errors"

	"fleetdesk/core/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const auditColumns = "id, tenant_id, user_id, action, entity, record_id, metadata, created_at"

// GetByID returns the audit log for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.AuditLog, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+auditColumns+" FROM audit_logs WHERE id = $1", id)
	var a domain.AuditLog
	var userID, recordID, metadata sql.NullString
	err := row.Scan(&a.ID, &a.TenantID, &userID, &a.Action, &a.Entity, &recordID, &metadata, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	a.UserID = userID.String
	a.RecordID = recordID.String
	a.Metadata = metadata.String
	return &a, nil
}

// ListByTenant returns audit logs for the given tenant, newest first, paginated by limit and offset.
func (r *PostgresRepository) ListByTenant(ctx context.Context, tenantID string, limit, offset int32) ([]*domain.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+auditColumns+" FROM audit_logs WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		tenantID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AuditLog
	for rows.Next() {
		var a domain.AuditLog
		var userID, recordID, metadata sql.NullString
		if err := rows.Scan(&a.ID, &a.TenantID, &userID, &a.Action, &a.Entity, &recordID, &metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.UserID = userID.String
		a.RecordID = recordID.String
		a.Metadata = metadata.String
		out = append(out, &a)
	}
	return out, rows.Err()
}

// Create persists the audit log. The entry must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	userID := sql.NullString{String: a.UserID, Valid: a.UserID != ""}
	recordID := sql.NullString{String: a.RecordID, Valid: a.RecordID != ""}
	metadata := sql.NullString{String: a.Metadata, Valid: a.Metadata != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, tenant_id, user_id, action, entity, record_id, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.TenantID, userID, a.Action, a.Entity, recordID, metadata, a.CreatedAt,
	)
	return err
}

// CreateSecurityEvent persists the security event. The event must have ID set.
func (r *PostgresRepository) CreateSecurityEvent(ctx context.Context, e *domain.SecurityEvent) error {
	userID := sql.NullString{String: e.UserID, Valid: e.UserID != ""}
	entity := sql.NullString{String: e.Entity, Valid: e.Entity != ""}
	metadata := sql.NullString{String: e.Metadata, Valid: e.Metadata != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO security_events (id, tenant_id, user_id, event, entity, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.TenantID, userID, e.Event, entity, metadata, e.CreatedAt,
	)
	return err
}

// ListSecurityEventsByTenant returns security events for the tenant, newest first.
func (r *PostgresRepository) ListSecurityEventsByTenant(ctx context.Context, tenantID string, limit, offset int32) ([]*domain.SecurityEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, tenant_id, user_id, event, entity, metadata, created_at FROM security_events WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		tenantID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.SecurityEvent
	for rows.Next() {
		var e domain.SecurityEvent
		var userID, entity, metadata sql.NullString
		if err := rows.Scan(&e.ID, &e.TenantID, &userID, &e.Event, &entity, &metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.UserID = userID.String
		e.Entity = entity.String
		e.Metadata = metadata.String
		out = append(out, &e)
	}
	return out, rows.Err()
}
