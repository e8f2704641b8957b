package engine

import "context"

// Principal is the acting identity as seen by policy evaluation.
type Principal struct {
	UserID     string
	Role       string
	EmployeeID string
}

// Target is the record being accessed. OwnerEmployeeID is empty for requests
// that span the whole tenant (listings, reports).
type Target struct {
	Entity          string
	OwnerEmployeeID string
}

// AccessResult holds the result of record-access policy evaluation.
type AccessResult struct {
	Allow bool
}

// Evaluator evaluates record-access policies using OPA or other engines.
type Evaluator interface {
	// EvaluateRecordAccess decides whether principal may act on target within
	// the tenant. Evaluation failures deny rather than allow.
	EvaluateRecordAccess(ctx context.Context, tenantID string, principal Principal, target Target) (AccessResult, error)
}
