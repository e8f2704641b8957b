package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	"fleetdesk/core/internal/policy/repository"
)

const allowQuery = "data.fleetdesk.record_access.allow"

// Default Rego policy: privileged roles act tenant-wide, everyone else only on
// records owned by their linked employee. Tenants override this by enabling
// their own policies.
const defaultRegoPolicy = `package fleetdesk.record_access

default allow = false

privileged_roles := {"owner", "admin", "manager"}

allow if {
	privileged_roles[input.principal.role]
}

allow if {
	input.target.employee_id != ""
	input.principal.employee_id == input.target.employee_id
}
`

// OPAEvaluator evaluates record-access policies using OPA Rego. Enabled
// tenant policies replace the default; a tenant with none, or whose policies
// fail to load or compile, falls back to the default.
type OPAEvaluator struct {
	policyRepo repository.Repository
}

// NewOPAEvaluator returns an OPA-based record-access evaluator.
func NewOPAEvaluator(policyRepo repository.Repository) *OPAEvaluator {
	return &OPAEvaluator{policyRepo: policyRepo}
}

// HealthCheck verifies that the in-process OPA Rego engine can compile and
// evaluate the default policy. Does not touch the policy repo or database.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	compiler, err := ast.CompileModules(map[string]string{"policy_0.rego": defaultRegoPolicy})
	if err != nil {
		return fmt.Errorf("compile default policy: %w", err)
	}
	q := rego.New(
		rego.Query(allowQuery),
		rego.Compiler(compiler),
		rego.Input(buildInput(Principal{}, Target{})),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return fmt.Errorf("eval default policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return fmt.Errorf("policy query returned no result")
	}
	return nil
}

// EvaluateRecordAccess decides access for principal on target. Failures deny:
// a broken tenant policy set falls back to the default policy, and a failure
// in the default itself yields Allow == false with the error.
func (e *OPAEvaluator) EvaluateRecordAccess(ctx context.Context, tenantID string, principal Principal, target Target) (AccessResult, error) {
	input := buildInput(principal, target)

	var policies []string
	if e.policyRepo != nil && tenantID != "" {
		enabled, err := e.policyRepo.GetEnabledPoliciesByTenant(ctx, tenantID)
		if err != nil {
			log.Printf("policy: failed to load policies for tenant %s: %v", tenantID, err)
		} else {
			for _, p := range enabled {
				if p.Enabled && p.Rules != "" {
					policies = append(policies, p.Rules)
				}
			}
		}
	}
	if len(policies) == 0 {
		policies = []string{defaultRegoPolicy}
	}

	allow, err := e.evaluateAllow(ctx, policies, input)
	if err != nil {
		log.Printf("policy: evaluation failed for tenant %s: %v, falling back to default", tenantID, err)
		allow, err = e.evaluateAllow(ctx, []string{defaultRegoPolicy}, input)
		if err != nil {
			return AccessResult{Allow: false}, fmt.Errorf("eval default policy: %w", err)
		}
	}
	return AccessResult{Allow: allow}, nil
}

func (e *OPAEvaluator) evaluateAllow(ctx context.Context, policies []string, input map[string]interface{}) (bool, error) {
	modules := make(map[string]string, len(policies))
	for i, policy := range policies {
		modules[fmt.Sprintf("policy_%d.rego", i)] = policy
	}
	compiler, err := ast.CompileModules(modules)
	if err != nil {
		return false, fmt.Errorf("compile policies: %w", err)
	}

	q := rego.New(
		rego.Query(allowQuery),
		rego.Compiler(compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return false, fmt.Errorf("eval policies: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, nil
	}
	allow, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, nil
	}
	return allow, nil
}

func buildInput(principal Principal, target Target) map[string]interface{} {
	return map[string]interface{}{
		"principal": map[string]interface{}{
			"user_id":     principal.UserID,
			"role":        principal.Role,
			"employee_id": principal.EmployeeID,
		},
		"target": map[string]interface{}{
			"entity":      target.Entity,
			"employee_id": target.OwnerEmployeeID,
		},
	}
}
