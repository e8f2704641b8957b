package security

import (
	"testing"
	"time"
)

func TestIssueAndValidateAccess(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}

	token, jti, expiresAt, err := p.IssueAccess("user-1", "tenant-1", "emp-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if token == "" {
		t.Fatal("token should not be empty")
	}
	if jti == "" {
		t.Error("jti should not be empty")
	}
	if expiresAt.Before(time.Now()) {
		t.Error("expiresAt should be in the future")
	}

	userID, tenantID, employeeID, err := p.ValidateAccess(token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("userID = %q, want %q", userID, "user-1")
	}
	if tenantID != "tenant-1" {
		t.Errorf("tenantID = %q, want %q", tenantID, "tenant-1")
	}
	if employeeID != "emp-1" {
		t.Errorf("employeeID = %q, want %q", employeeID, "emp-1")
	}
}

func TestValidateAccess_NoEmployee(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}

	token, _, _, err := p.IssueAccess("user-2", "tenant-1", "")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	_, _, employeeID, err := p.ValidateAccess(token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if employeeID != "" {
		t.Errorf("employeeID = %q, want empty", employeeID)
	}
}

func TestValidateAccess_Malformed(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, _, _, err := p.ValidateAccess(token); err == nil {
			t.Errorf("ValidateAccess(%q) should fail", token)
		}
	}
}

func TestValidateAccess_WrongIssuer(t *testing.T) {
	signer, err := ParsePrivateKey(testPrivateKeyPEM)
	if err != nil {
		t.Fatalf("ParsePrivateKey: %v", err)
	}
	pub, err := ParsePublicKey(testPublicKeyPEM)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	issuing := NewTokenProvider(signer, pub, "other-issuer", "test-audience", time.Minute)
	validating := NewTokenProvider(signer, pub, "test-issuer", "test-audience", time.Minute)

	token, _, _, err := issuing.IssueAccess("user-1", "tenant-1", "")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, _, _, err := validating.ValidateAccess(token); err == nil {
		t.Fatal("ValidateAccess should reject token from other issuer")
	}
}

func TestValidateAccess_Expired(t *testing.T) {
	signer, err := ParsePrivateKey(testPrivateKeyPEM)
	if err != nil {
		t.Fatalf("ParsePrivateKey: %v", err)
	}
	pub, err := ParsePublicKey(testPublicKeyPEM)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	p := NewTokenProvider(signer, pub, "test-issuer", "test-audience", -time.Minute)

	token, _, _, err := p.IssueAccess("user-1", "tenant-1", "")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, _, _, err := p.ValidateAccess(token); err == nil {
		t.Fatal("ValidateAccess should reject expired token")
	}
}
