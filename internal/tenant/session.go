package tenant

import "context"

// AccessValidator validates a principal access token. Satisfied by
// *security.TokenProvider.
type AccessValidator interface {
	ValidateAccess(token string) (userID, tenantID, employeeID string, err error)
}

// ContextWithToken validates an access token and returns a context carrying
// the token's principal. Callers establish the session this way before
// touching any guarded repository.
func ContextWithToken(ctx context.Context, v AccessValidator, token string) (context.Context, error) {
	userID, tenantID, employeeID, err := v.ValidateAccess(token)
	if err != nil {
		return nil, err
	}
	return WithPrincipal(ctx, userID, tenantID, employeeID), nil
}
