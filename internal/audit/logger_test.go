package audit

import (
	"context"
	"errors"
	"testing"

	"fleetdesk/core/internal/audit/domain"
)

// mockAuditRepo implements the audit repository interface for tests.
type mockAuditRepo struct {
	entries   []*domain.AuditLog
	events    []*domain.SecurityEvent
	createErr error
}

func (m *mockAuditRepo) GetByID(ctx context.Context, id string) (*domain.AuditLog, error) {
	return nil, nil
}

func (m *mockAuditRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int32) ([]*domain.AuditLog, error) {
	return nil, nil
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepo) CreateSecurityEvent(ctx context.Context, e *domain.SecurityEvent) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.events = append(m.events, e)
	return nil
}

func (m *mockAuditRepo) ListSecurityEventsByTenant(ctx context.Context, tenantID string, limit, offset int32) ([]*domain.SecurityEvent, error) {
	return nil, nil
}

func TestLogOperation_Success(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo)
	ctx := context.Background()

	logger.LogOperation(ctx, "tenant-1", "user-1", "create", "attendance", "rec-1", `{"k":"v"}`)

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	entry := repo.entries[0]
	if entry.TenantID != "tenant-1" {
		t.Errorf("tenant_id = %q, want %q", entry.TenantID, "tenant-1")
	}
	if entry.UserID != "user-1" {
		t.Errorf("user_id = %q, want %q", entry.UserID, "user-1")
	}
	if entry.Action != "create" {
		t.Errorf("action = %q, want %q", entry.Action, "create")
	}
	if entry.Entity != "attendance" {
		t.Errorf("entity = %q, want %q", entry.Entity, "attendance")
	}
	if entry.RecordID != "rec-1" {
		t.Errorf("record_id = %q, want %q", entry.RecordID, "rec-1")
	}
	if entry.ID == "" {
		t.Error("entry ID should be set")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("entry CreatedAt should be set")
	}
}

func TestLogSecurityEvent_Success(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo)

	logger.LogSecurityEvent(context.Background(), "tenant-1", "user-2", "access_denied", "attendance", "")

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	if repo.events[0].Event != "access_denied" {
		t.Errorf("event = %q, want %q", repo.events[0].Event, "access_denied")
	}
	if len(repo.entries) != 0 {
		t.Error("security events must not create audit log entries")
	}
}

func TestLogOperation_SentinelTenantID(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo)

	logger.LogOperation(context.Background(), "", "user-1", "read", "vehicle", "", "")

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	if repo.entries[0].TenantID != SentinelTenantID {
		t.Errorf("tenant_id = %q, want %q", repo.entries[0].TenantID, SentinelTenantID)
	}
}

func TestLogOperation_RepositoryError(t *testing.T) {
	repo := &mockAuditRepo{createErr: errors.New("database error")}
	logger := NewLogger(repo)

	// Best-effort: must not panic or surface the error.
	logger.LogOperation(context.Background(), "tenant-1", "user-1", "create", "vehicle", "", "")
	logger.LogSecurityEvent(context.Background(), "tenant-1", "user-1", "access_denied", "vehicle", "")
}

func TestLogOperation_NilRepo(t *testing.T) {
	logger := NewLogger(nil)

	// No-op when repo is nil.
	logger.LogOperation(context.Background(), "tenant-1", "user-1", "create", "vehicle", "", "")
	logger.LogSecurityEvent(context.Background(), "tenant-1", "user-1", "access_denied", "vehicle", "")
}
