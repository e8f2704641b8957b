package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"fleetdesk/core/internal/audit/domain"
	auditrepo "fleetdesk/core/internal/audit/repository"
)

// SentinelTenantID is the tenant_id used for events that have no resolvable
// tenant (e.g. an unauthenticated access attempt).
const SentinelTenantID = "_system"

// Logger records audit logs and security events. Both writes are best-effort:
// failures are logged and never affect the caller's business operation.
type Logger interface {
	// LogOperation records one successful data operation.
	LogOperation(ctx context.Context, tenantID, userID, action, entity, recordID, metadata string)
	// LogSecurityEvent records one denied or failed access attempt.
	LogSecurityEvent(ctx context.Context, tenantID, userID, event, entity, metadata string)
}

// RepoLogger implements Logger on top of the audit repository.
type RepoLogger struct {
	repo auditrepo.Repository
}

// NewLogger returns a Logger that persists to repo. repo may be nil; then all
// methods are no-ops.
func NewLogger(repo auditrepo.Repository) *RepoLogger {
	return &RepoLogger{repo: repo}
}

// LogOperation writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *RepoLogger) LogOperation(ctx context.Context, tenantID, userID, action, entity, recordID, metadata string) {
	if l.repo == nil {
		return
	}
	if tenantID == "" {
		tenantID = SentinelTenantID
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		UserID:    userID,
		Action:    action,
		Entity:    entity,
		RecordID:  recordID,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log %s/%s: %v", action, entity, err)
	}
}

// LogSecurityEvent writes one security event. Best-effort: errors are logged and not returned.
func (l *RepoLogger) LogSecurityEvent(ctx context.Context, tenantID, userID, event, entity, metadata string) {
	if l.repo == nil {
		return
	}
	if tenantID == "" {
		tenantID = SentinelTenantID
	}
	entry := &domain.SecurityEvent{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		UserID:    userID,
		Event:     event,
		Entity:    entity,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.CreateSecurityEvent(ctx, entry); err != nil {
		log.Printf("audit: failed to log security event %s: %v", event, err)
	}
}
