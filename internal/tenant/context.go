// Package tenant resolves the current tenant for the authenticated session.
// The principal's identity (user, tenant, linked employee) is carried on the
// request context; the resolver re-checks the membership on every call so a
// revoked membership takes effect immediately.
package tenant

import "context"

type contextKey struct{ name string }

var (
	userIDKey     = contextKey{"user_id"}
	tenantIDKey   = contextKey{"tenant_id"}
	employeeIDKey = contextKey{"employee_id"}
)

// WithPrincipal returns a context with user_id, tenant_id, and the principal's
// linked employee_id set. employeeID may be empty for principals without an
// employee record. Repositories and the guard service read these via the getters.
func WithPrincipal(ctx context.Context, userID, tenantID, employeeID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, tenantIDKey, tenantID)
	ctx = context.WithValue(ctx, employeeIDKey, employeeID)
	return ctx
}

// GetUserID returns the user_id from context and true if set; otherwise "", false.
func GetUserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok
}

// GetTenantID returns the tenant_id from context and true if set; otherwise "", false.
func GetTenantID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(tenantIDKey).(string)
	return v, ok
}

// GetEmployeeID returns the principal's linked employee_id from context and true if set; otherwise "", false.
func GetEmployeeID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(employeeIDKey).(string)
	return v, ok
}
