package tenant

import (
	"context"
	"errors"
	"fmt"

	membershipdomain "fleetdesk/core/internal/membership/domain"
)

// Sentinel errors for tenant resolution. Callers surface these without retry.
var (
	// ErrUnauthenticated is returned when the context carries no authenticated principal.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNoActiveTenant is returned when the principal has no active membership in the context tenant.
	ErrNoActiveTenant = errors.New("no active tenant membership")
)

// MembershipGetter returns a principal's membership in a tenant. Satisfied by
// the membership repository.
type MembershipGetter interface {
	GetByUserAndTenant(ctx context.Context, userID, tenantID string) (*membershipdomain.Membership, error)
}

// Resolver determines the current tenant id for the authenticated session.
type Resolver interface {
	// CurrentTenantID returns the tenant id for the context principal.
	// Fails with ErrUnauthenticated when no principal is set and
	// ErrNoActiveTenant when the principal has no active membership.
	CurrentTenantID(ctx context.Context) (string, error)
}

// MembershipResolver resolves tenancy by confirming an active membership row
// for the context principal. It holds no cache: every call re-reads the
// membership so revocation is observed immediately.
type MembershipResolver struct {
	memberships MembershipGetter
}

// NewMembershipResolver returns a Resolver backed by the given membership source.
func NewMembershipResolver(memberships MembershipGetter) *MembershipResolver {
	return &MembershipResolver{memberships: memberships}
}

// CurrentTenantID implements Resolver.
func (r *MembershipResolver) CurrentTenantID(ctx context.Context) (string, error) {
	userID, ok := GetUserID(ctx)
	if !ok || userID == "" {
		return "", ErrUnauthenticated
	}
	tenantID, ok := GetTenantID(ctx)
	if !ok || tenantID == "" {
		return "", ErrNoActiveTenant
	}
	m, err := r.memberships.GetByUserAndTenant(ctx, userID, tenantID)
	if err != nil {
		return "", fmt.Errorf("resolve membership: %w", err)
	}
	if m == nil || !m.Active {
		return "", ErrNoActiveTenant
	}
	return tenantID, nil
}
