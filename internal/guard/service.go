// Package guard is the security service consulted by tenant-scoped
// repositories before every data operation. It resolves tenancy, decides
// employee-level access through the policy engine, and records the audit and
// security-event trail.
package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleetdesk/core/internal/audit"
	membershipdomain "fleetdesk/core/internal/membership/domain"
	"fleetdesk/core/internal/policy/engine"
	"fleetdesk/core/internal/telemetry"
	telemetrydomain "fleetdesk/core/internal/telemetry/domain"
	"fleetdesk/core/internal/tenant"
)

// ErrAccessDenied is returned when the principal holds an active membership
// but may not act on the requested records.
var ErrAccessDenied = errors.New("access denied")

// MembershipGetter returns a principal's membership in a tenant. Satisfied by
// the membership repository.
type MembershipGetter interface {
	GetByUserAndTenant(ctx context.Context, userID, tenantID string) (*membershipdomain.Membership, error)
}

// Service implements the security checks and logging hooks the tenant-scoped
// repositories depend on. The audit logger and event emitter are best-effort;
// the resolver and membership source are not.
type Service struct {
	resolver    tenant.Resolver
	memberships MembershipGetter
	evaluator   engine.Evaluator
	audit       audit.Logger
	emitter     telemetry.EventEmitter
}

// NewService returns a guard service. evaluator may be nil; access then falls
// back to the built-in rule (privileged role or self). emitter may be nil.
func NewService(resolver tenant.Resolver, memberships MembershipGetter, evaluator engine.Evaluator, auditLogger audit.Logger, emitter telemetry.EventEmitter) *Service {
	return &Service{
		resolver:    resolver,
		memberships: memberships,
		evaluator:   evaluator,
		audit:       auditLogger,
		emitter:     emitter,
	}
}

// ValidateTenantAccess resolves the current tenant for the session. Denials
// are recorded as security events before the error is returned.
func (s *Service) ValidateTenantAccess(ctx context.Context) (string, error) {
	tenantID, err := s.resolver.CurrentTenantID(ctx)
	if err != nil {
		if errors.Is(err, tenant.ErrUnauthenticated) || errors.Is(err, tenant.ErrNoActiveTenant) {
			s.LogSecurityEvent(ctx, "tenant_access_denied", "", reasonMetadata(err))
		}
		return "", err
	}
	return tenantID, nil
}

// ValidateEmployeeAccess decides whether the principal may act on the given
// employee's records of the named entity. An empty employeeID asks for
// tenant-wide access. The decision runs before any data query is issued;
// a denial is recorded exactly once as a security event.
func (s *Service) ValidateEmployeeAccess(ctx context.Context, entity, employeeID string) error {
	tenantID, err := s.resolver.CurrentTenantID(ctx)
	if err != nil {
		return err
	}
	userID, _ := tenant.GetUserID(ctx)
	m, err := s.memberships.GetByUserAndTenant(ctx, userID, tenantID)
	if err != nil {
		return fmt.Errorf("load membership: %w", err)
	}
	if m == nil || !m.Active {
		return tenant.ErrNoActiveTenant
	}
	principalEmployee, _ := tenant.GetEmployeeID(ctx)

	allowed := s.decide(ctx, tenantID, m, userID, principalEmployee, entity, employeeID)
	if !allowed {
		s.LogSecurityEvent(ctx, "access_denied", entity, targetMetadata(employeeID))
		return fmt.Errorf("%s: %w", entity, ErrAccessDenied)
	}
	return nil
}

// decide consults the policy engine, failing closed on evaluation errors.
// Without an engine the built-in rule applies: privileged roles act
// tenant-wide, everyone else only on their own employee's records.
func (s *Service) decide(ctx context.Context, tenantID string, m *membershipdomain.Membership, userID, principalEmployee, entity, employeeID string) bool {
	if s.evaluator == nil {
		if m.Role.Privileged() {
			return true
		}
		return employeeID != "" && principalEmployee != "" && principalEmployee == employeeID
	}
	result, err := s.evaluator.EvaluateRecordAccess(ctx, tenantID,
		engine.Principal{UserID: userID, Role: string(m.Role), EmployeeID: principalEmployee},
		engine.Target{Entity: entity, OwnerEmployeeID: employeeID},
	)
	if err != nil {
		return false
	}
	return result.Allow
}

// LogDataOperation records one successful data operation for the context
// principal. Best-effort.
func (s *Service) LogDataOperation(ctx context.Context, action, entity, recordID, metadata string) {
	if s.audit == nil {
		return
	}
	tenantID, _ := tenant.GetTenantID(ctx)
	userID, _ := tenant.GetUserID(ctx)
	s.audit.LogOperation(ctx, tenantID, userID, action, entity, recordID, metadata)
}

// LogSecurityEvent records a denied or failed attempt for the context
// principal and fans it out to the telemetry pipeline. Best-effort.
func (s *Service) LogSecurityEvent(ctx context.Context, event, entity, metadata string) {
	tenantID, _ := tenant.GetTenantID(ctx)
	userID, _ := tenant.GetUserID(ctx)
	employeeID, _ := tenant.GetEmployeeID(ctx)
	if s.audit != nil {
		s.audit.LogSecurityEvent(ctx, tenantID, userID, event, entity, metadata)
	}
	telemetry.EmitAsync(s.emitter, ctx, &telemetrydomain.SecurityEvent{
		TenantID:   tenantID,
		UserID:     userID,
		EmployeeID: employeeID,
		Event:      event,
		Entity:     entity,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	})
}

func reasonMetadata(err error) string {
	return `{"reason":"` + err.Error() + `"}`
}

func targetMetadata(employeeID string) string {
	if employeeID == "" {
		return `{"target":"tenant-wide"}`
	}
	return `{"target_employee_id":"` + employeeID + `"}`
}
