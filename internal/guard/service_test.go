package guard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	membershipdomain "fleetdesk/core/internal/membership/domain"
	"fleetdesk/core/internal/policy/engine"
	"fleetdesk/core/internal/repository"
	telemetrydomain "fleetdesk/core/internal/telemetry/domain"
	"fleetdesk/core/internal/tenant"
)

var _ repository.SecurityService = (*Service)(nil)

type stubResolver struct {
	tenantID string
	err      error
}

func (s *stubResolver) CurrentTenantID(ctx context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.tenantID, nil
}

type stubMemberships struct {
	m   *membershipdomain.Membership
	err error
}

func (s *stubMemberships) GetByUserAndTenant(ctx context.Context, userID, tenantID string) (*membershipdomain.Membership, error) {
	return s.m, s.err
}

type stubEvaluator struct {
	allow   bool
	err     error
	targets []engine.Target
}

func (s *stubEvaluator) EvaluateRecordAccess(ctx context.Context, tenantID string, principal engine.Principal, target engine.Target) (engine.AccessResult, error) {
	s.targets = append(s.targets, target)
	if s.err != nil {
		return engine.AccessResult{}, s.err
	}
	return engine.AccessResult{Allow: s.allow}, nil
}

type auditEntry struct {
	tenantID, userID, kind, entity, recordID string
}

type mockAuditLogger struct {
	ops    []auditEntry
	events []auditEntry
}

func (m *mockAuditLogger) LogOperation(ctx context.Context, tenantID, userID, action, entity, recordID, metadata string) {
	m.ops = append(m.ops, auditEntry{tenantID, userID, action, entity, recordID})
}

func (m *mockAuditLogger) LogSecurityEvent(ctx context.Context, tenantID, userID, event, entity, metadata string) {
	m.events = append(m.events, auditEntry{tenantID, userID, event, entity, ""})
}

type captureEmitter struct {
	mu     sync.Mutex
	events []*telemetrydomain.SecurityEvent
}

func (c *captureEmitter) Emit(ctx context.Context, event *telemetrydomain.SecurityEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *captureEmitter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func principalCtx(userID, tenantID, employeeID string) context.Context {
	return tenant.WithPrincipal(context.Background(), userID, tenantID, employeeID)
}

func membership(role membershipdomain.Role) *membershipdomain.Membership {
	return &membershipdomain.Membership{ID: "m1", UserID: "u1", TenantID: "t1", Role: role, Active: true}
}

func TestValidateTenantAccess_Success(t *testing.T) {
	auditLog := &mockAuditLogger{}
	svc := NewService(&stubResolver{tenantID: "t1"}, &stubMemberships{}, nil, auditLog, nil)

	tenantID, err := svc.ValidateTenantAccess(principalCtx("u1", "t1", ""))
	if err != nil {
		t.Fatalf("ValidateTenantAccess: %v", err)
	}
	if tenantID != "t1" {
		t.Errorf("tenant = %q, want t1", tenantID)
	}
	if len(auditLog.events) != 0 {
		t.Errorf("security events = %v, want none on success", auditLog.events)
	}
}

func TestValidateTenantAccess_DenialIsLoggedAndEmitted(t *testing.T) {
	auditLog := &mockAuditLogger{}
	emitter := &captureEmitter{}
	svc := NewService(&stubResolver{err: tenant.ErrNoActiveTenant}, &stubMemberships{}, nil, auditLog, emitter)

	_, err := svc.ValidateTenantAccess(principalCtx("u1", "t1", ""))
	if !errors.Is(err, tenant.ErrNoActiveTenant) {
		t.Fatalf("err = %v, want ErrNoActiveTenant", err)
	}
	if len(auditLog.events) != 1 || auditLog.events[0].kind != "tenant_access_denied" {
		t.Errorf("security events = %v, want one tenant_access_denied", auditLog.events)
	}

	// The emit is async.
	time.Sleep(100 * time.Millisecond)
	if emitter.count() != 1 {
		t.Errorf("emitted events = %d, want 1", emitter.count())
	}
}

func TestValidateTenantAccess_BackendErrorNotLoggedAsDenial(t *testing.T) {
	auditLog := &mockAuditLogger{}
	dbErr := errors.New("connection refused")
	svc := NewService(&stubResolver{err: dbErr}, &stubMemberships{}, nil, auditLog, nil)

	if _, err := svc.ValidateTenantAccess(principalCtx("u1", "t1", "")); !errors.Is(err, dbErr) {
		t.Fatalf("err = %v, want the backend error", err)
	}
	if len(auditLog.events) != 0 {
		t.Errorf("security events = %v; infrastructure failures are not access denials", auditLog.events)
	}
}

func TestValidateEmployeeAccess_BuiltInRule(t *testing.T) {
	cases := []struct {
		name       string
		role       membershipdomain.Role
		employeeID string // principal's linked employee
		target     string
		wantAllow  bool
	}{
		{"admin tenant-wide", membershipdomain.RoleAdmin, "", "", true},
		{"manager on peer", membershipdomain.RoleManager, "e1", "e2", true},
		{"member on self", membershipdomain.RoleMember, "e1", "e1", true},
		{"member on peer", membershipdomain.RoleMember, "e1", "e2", false},
		{"member tenant-wide", membershipdomain.RoleMember, "e1", "", false},
		{"member without employee link", membershipdomain.RoleMember, "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auditLog := &mockAuditLogger{}
			svc := NewService(&stubResolver{tenantID: "t1"}, &stubMemberships{m: membership(tc.role)}, nil, auditLog, nil)

			err := svc.ValidateEmployeeAccess(principalCtx("u1", "t1", tc.employeeID), "attendance", tc.target)
			if tc.wantAllow {
				if err != nil {
					t.Fatalf("expected allow, got %v", err)
				}
				if len(auditLog.events) != 0 {
					t.Errorf("security events = %v, want none", auditLog.events)
				}
				return
			}
			if !errors.Is(err, ErrAccessDenied) {
				t.Fatalf("err = %v, want ErrAccessDenied", err)
			}
			if len(auditLog.events) != 1 || auditLog.events[0].kind != "access_denied" {
				t.Errorf("security events = %v, want exactly one access_denied", auditLog.events)
			}
			if auditLog.events[0].entity != "attendance" {
				t.Errorf("event entity = %q, want attendance", auditLog.events[0].entity)
			}
		})
	}
}

func TestValidateEmployeeAccess_EvaluatorDecides(t *testing.T) {
	// The engine's verdict wins even over a privileged role.
	eval := &stubEvaluator{allow: false}
	svc := NewService(&stubResolver{tenantID: "t1"}, &stubMemberships{m: membership(membershipdomain.RoleAdmin)}, eval, &mockAuditLogger{}, nil)

	err := svc.ValidateEmployeeAccess(principalCtx("u1", "t1", ""), "invoice", "e2")
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("err = %v, want ErrAccessDenied", err)
	}
	if len(eval.targets) != 1 || eval.targets[0].Entity != "invoice" || eval.targets[0].OwnerEmployeeID != "e2" {
		t.Errorf("evaluator target = %+v", eval.targets)
	}
}

func TestValidateEmployeeAccess_EvaluatorErrorFailsClosed(t *testing.T) {
	eval := &stubEvaluator{err: errors.New("rego blew up")}
	svc := NewService(&stubResolver{tenantID: "t1"}, &stubMemberships{m: membership(membershipdomain.RoleAdmin)}, eval, &mockAuditLogger{}, nil)

	if err := svc.ValidateEmployeeAccess(principalCtx("u1", "t1", ""), "invoice", ""); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("err = %v, want ErrAccessDenied on evaluation failure", err)
	}
}

func TestValidateEmployeeAccess_InactiveMembership(t *testing.T) {
	m := membership(membershipdomain.RoleAdmin)
	m.Active = false
	svc := NewService(&stubResolver{tenantID: "t1"}, &stubMemberships{m: m}, nil, &mockAuditLogger{}, nil)

	if err := svc.ValidateEmployeeAccess(principalCtx("u1", "t1", ""), "vehicle", ""); !errors.Is(err, tenant.ErrNoActiveTenant) {
		t.Fatalf("err = %v, want ErrNoActiveTenant", err)
	}
}

func TestValidateEmployeeAccess_MembershipLoadError(t *testing.T) {
	dbErr := errors.New("connection reset")
	svc := NewService(&stubResolver{tenantID: "t1"}, &stubMemberships{err: dbErr}, nil, &mockAuditLogger{}, nil)

	if err := svc.ValidateEmployeeAccess(principalCtx("u1", "t1", ""), "vehicle", ""); !errors.Is(err, dbErr) {
		t.Fatalf("err = %v, want the backend error", err)
	}
}

func TestLogDataOperation_UsesContextPrincipal(t *testing.T) {
	auditLog := &mockAuditLogger{}
	svc := NewService(&stubResolver{tenantID: "t1"}, &stubMemberships{}, nil, auditLog, nil)

	svc.LogDataOperation(principalCtx("u1", "t1", "e1"), "create", "vehicle", "v1", "")

	if len(auditLog.ops) != 1 {
		t.Fatalf("ops = %d, want 1", len(auditLog.ops))
	}
	got := auditLog.ops[0]
	if got.tenantID != "t1" || got.userID != "u1" || got.kind != "create" || got.entity != "vehicle" || got.recordID != "v1" {
		t.Errorf("op = %+v", got)
	}
}

func TestLogSecurityEvent_EmitsTelemetry(t *testing.T) {
	auditLog := &mockAuditLogger{}
	emitter := &captureEmitter{}
	svc := NewService(&stubResolver{tenantID: "t1"}, &stubMemberships{}, nil, auditLog, emitter)

	svc.LogSecurityEvent(principalCtx("u1", "t1", "e1"), "not_found_or_forbidden", "contract", `{"op":"update"}`)

	if len(auditLog.events) != 1 {
		t.Fatalf("events = %d, want 1", len(auditLog.events))
	}
	time.Sleep(100 * time.Millisecond)
	if emitter.count() != 1 {
		t.Fatalf("emitted = %d, want 1", emitter.count())
	}
	emitter.mu.Lock()
	ev := emitter.events[0]
	emitter.mu.Unlock()
	if ev.TenantID != "t1" || ev.UserID != "u1" || ev.EmployeeID != "e1" || ev.Event != "not_found_or_forbidden" || ev.Entity != "contract" {
		t.Errorf("event = %+v", ev)
	}
}
