package tenant_test

import (
	"context"
	"testing"

	"fleetdesk/core/internal/security"
	"fleetdesk/core/internal/tenant"
)

func TestContextWithToken(t *testing.T) {
	provider, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("test token provider: %v", err)
	}
	token, _, _, err := provider.IssueAccess("user-1", "tenant-1", "emp-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	ctx, err := tenant.ContextWithToken(context.Background(), provider, token)
	if err != nil {
		t.Fatalf("ContextWithToken: %v", err)
	}
	if got, ok := tenant.GetUserID(ctx); !ok || got != "user-1" {
		t.Errorf("user id = %q, %v", got, ok)
	}
	if got, ok := tenant.GetTenantID(ctx); !ok || got != "tenant-1" {
		t.Errorf("tenant id = %q, %v", got, ok)
	}
	if got, ok := tenant.GetEmployeeID(ctx); !ok || got != "emp-1" {
		t.Errorf("employee id = %q, %v", got, ok)
	}
}

func TestContextWithTokenInvalid(t *testing.T) {
	provider, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("test token provider: %v", err)
	}
	if _, err := tenant.ContextWithToken(context.Background(), provider, "not-a-token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}
