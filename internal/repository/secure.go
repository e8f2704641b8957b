package repository

import (
	"context"
	"fmt"
)

// SecurityService is the gatekeeper the decorator consults before every
// operation. Satisfied by the guard service.
type SecurityService interface {
	// ValidateTenantAccess confirms a tenant id can be resolved for the current
	// session and returns it. Failures are logged as security events by the
	// implementation before being returned.
	ValidateTenantAccess(ctx context.Context) (string, error)
	// ValidateEmployeeAccess reports whether the principal may act on the given
	// employee's records of the named entity. An empty employeeID asks for
	// tenant-wide access, which only privileged roles hold.
	ValidateEmployeeAccess(ctx context.Context, entity, employeeID string) error
	// LogDataOperation records a successful operation; best-effort. List reads
	// and counts are audited once per call; point reads only when a row comes
	// back, since a scoped miss reveals nothing.
	LogDataOperation(ctx context.Context, action, entity, recordID, metadata string)
	// LogSecurityEvent records a denied or failed attempt; best-effort.
	LogSecurityEvent(ctx context.Context, event, entity, metadata string)
}

// TenantScoped wraps a Repo with tenant and employee authorization plus audit
// emission. Every query it issues carries an explicit tenant_id equality
// filter even though the backend may enforce isolation independently.
type TenantScoped[T any] struct {
	base     Repo[T]
	security SecurityService
	entity   string
	// ownerColumn names the employee-ownership column (e.g. "employee_id");
	// empty for entities scoped to the tenant only.
	ownerColumn string
	// ownerOf extracts the owner employee id from a fetched row; nil when
	// ownerColumn is empty.
	ownerOf func(*T) string
}

// WithTenantSecurity decorates base with tenant scoping, audit logging, and,
// when ownerColumn is non-empty, per-employee ownership checks driven by
// ownerOf. The same decorator serves every entity; ownership rules are the
// only per-entity parameter.
func WithTenantSecurity[T any](base Repo[T], security SecurityService, entity, ownerColumn string, ownerOf func(*T) string) *TenantScoped[T] {
	return &TenantScoped[T]{
		base:        base,
		security:    security,
		entity:      entity,
		ownerColumn: ownerColumn,
		ownerOf:     ownerOf,
	}
}

// GetAll lists the tenant's rows, newest first. For employee-scoped entities
// this is a tenant-wide read and requires a privileged role.
func (s *TenantScoped[T]) GetAll(ctx context.Context) ([]*T, error) {
	return s.Query(ctx, QueryOptions{})
}

// GetByID returns the row for id within the current tenant, or nil when the
// row is missing or belongs to another tenant; the two are indistinguishable.
func (s *TenantScoped[T]) GetByID(ctx context.Context, id string) (*T, error) {
	tenantID, err := s.security.ValidateTenantAccess(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.base.Query(ctx, QueryOptions{
		Filters: Filters{"id": id, "tenant_id": tenantID},
		Limit:   1,
	})
	if err != nil {
		s.security.LogSecurityEvent(ctx, "operation_failed", s.entity, opMetadata("read", id))
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	rec := rows[0]
	if s.ownerOf != nil {
		if err := s.security.ValidateEmployeeAccess(ctx, s.entity, s.ownerOf(rec)); err != nil {
			return nil, err
		}
	}
	s.security.LogDataOperation(ctx, "read", s.entity, id, "")
	return rec, nil
}

// Create inserts values under the current tenant. The tenant id is injected
// by the decorator; a caller-supplied tenant_id must match the session's or
// the write fails with ErrTenantMismatch.
func (s *TenantScoped[T]) Create(ctx context.Context, values map[string]any) (*T, error) {
	tenantID, err := s.security.ValidateTenantAccess(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.checkTenantValue(ctx, values, tenantID, "create"); err != nil {
		return nil, err
	}
	if s.ownerColumn != "" {
		owner, _ := values[s.ownerColumn].(string)
		if err := s.security.ValidateEmployeeAccess(ctx, s.entity, owner); err != nil {
			return nil, err
		}
	}
	scoped := make(map[string]any, len(values)+1)
	for k, v := range values {
		scoped[k] = v
	}
	scoped["tenant_id"] = tenantID
	rec, err := s.base.Create(ctx, scoped)
	if err != nil {
		s.security.LogSecurityEvent(ctx, "operation_failed", s.entity, opMetadata("create", ""))
		return nil, err
	}
	s.security.LogDataOperation(ctx, "create", s.entity, s.idOf(rec), "")
	return rec, nil
}

// Update re-fetches the target scoped by tenant before mutating. A miss fails
// with ErrNotFoundOrForbidden so cross-tenant existence never leaks. The
// tenant id can never be changed through this path.
func (s *TenantScoped[T]) Update(ctx context.Context, id string, values map[string]any) (*T, error) {
	tenantID, existing, err := s.fetchOwned(ctx, id, "update")
	if err != nil {
		return nil, err
	}
	if err := s.checkTenantValue(ctx, values, tenantID, "update"); err != nil {
		return nil, err
	}
	if s.ownerColumn != "" {
		if newOwner, ok := values[s.ownerColumn].(string); ok && newOwner != s.ownerOf(existing) {
			// Reassigning ownership requires access to the new owner too.
			if err := s.security.ValidateEmployeeAccess(ctx, s.entity, newOwner); err != nil {
				return nil, err
			}
		}
	}
	scoped := make(map[string]any, len(values))
	for k, v := range values {
		if k == "tenant_id" {
			continue
		}
		scoped[k] = v
	}
	rec, err := s.base.Update(ctx, id, scoped)
	if err != nil {
		s.security.LogSecurityEvent(ctx, "operation_failed", s.entity, opMetadata("update", id))
		return nil, err
	}
	s.security.LogDataOperation(ctx, "update", s.entity, id, "")
	return rec, nil
}

// Delete re-fetches the target scoped by tenant before deleting, failing with
// ErrNotFoundOrForbidden on a miss.
func (s *TenantScoped[T]) Delete(ctx context.Context, id string) error {
	_, _, err := s.fetchOwned(ctx, id, "delete")
	if err != nil {
		return err
	}
	if err := s.base.Delete(ctx, id); err != nil {
		s.security.LogSecurityEvent(ctx, "operation_failed", s.entity, opMetadata("delete", id))
		return err
	}
	s.security.LogDataOperation(ctx, "delete", s.entity, id, "")
	return nil
}

// Query runs opts with the tenant filter injected. A caller-supplied tenant_id
// filter is overwritten. For employee-scoped entities the ownership check runs
// before the query is issued: a filter on the owner column authorizes that
// employee, no filter asks for tenant-wide (privileged) access.
func (s *TenantScoped[T]) Query(ctx context.Context, opts QueryOptions) ([]*T, error) {
	tenantID, err := s.security.ValidateTenantAccess(ctx)
	if err != nil {
		return nil, err
	}
	filters := make(Filters, len(opts.Filters)+1)
	for k, v := range opts.Filters {
		filters[k] = v
	}
	if s.ownerColumn != "" {
		owner, _ := filters[s.ownerColumn].(string)
		if err := s.security.ValidateEmployeeAccess(ctx, s.entity, owner); err != nil {
			return nil, err
		}
	}
	filters["tenant_id"] = tenantID
	opts.Filters = filters
	rows, err := s.base.Query(ctx, opts)
	if err != nil {
		s.security.LogSecurityEvent(ctx, "operation_failed", s.entity, opMetadata("query", ""))
		return nil, err
	}
	s.security.LogDataOperation(ctx, "read", s.entity, "", "")
	return rows, nil
}

// Count counts the tenant's rows matching filters.
func (s *TenantScoped[T]) Count(ctx context.Context, filters Filters) (int64, error) {
	tenantID, err := s.security.ValidateTenantAccess(ctx)
	if err != nil {
		return 0, err
	}
	scoped := make(Filters, len(filters)+1)
	for k, v := range filters {
		scoped[k] = v
	}
	if s.ownerColumn != "" {
		owner, _ := scoped[s.ownerColumn].(string)
		if err := s.security.ValidateEmployeeAccess(ctx, s.entity, owner); err != nil {
			return 0, err
		}
	}
	scoped["tenant_id"] = tenantID
	n, err := s.base.Count(ctx, scoped)
	if err != nil {
		s.security.LogSecurityEvent(ctx, "operation_failed", s.entity, opMetadata("count", ""))
		return 0, err
	}
	s.security.LogDataOperation(ctx, "read", s.entity, "", "")
	return n, nil
}

// fetchOwned validates tenancy, re-fetches id scoped by tenant, and applies
// the ownership check. Returns ErrNotFoundOrForbidden (logged as a security
// event) when the scoped lookup misses.
func (s *TenantScoped[T]) fetchOwned(ctx context.Context, id, action string) (string, *T, error) {
	tenantID, err := s.security.ValidateTenantAccess(ctx)
	if err != nil {
		return "", nil, err
	}
	rows, err := s.base.Query(ctx, QueryOptions{
		Filters: Filters{"id": id, "tenant_id": tenantID},
		Limit:   1,
	})
	if err != nil {
		s.security.LogSecurityEvent(ctx, "operation_failed", s.entity, opMetadata(action, id))
		return "", nil, err
	}
	if len(rows) == 0 {
		s.security.LogSecurityEvent(ctx, "not_found_or_forbidden", s.entity, opMetadata(action, id))
		return "", nil, fmt.Errorf("%s %s: %w", action, s.entity, ErrNotFoundOrForbidden)
	}
	rec := rows[0]
	if s.ownerOf != nil {
		if err := s.security.ValidateEmployeeAccess(ctx, s.entity, s.ownerOf(rec)); err != nil {
			return "", nil, err
		}
	}
	return tenantID, rec, nil
}

// checkTenantValue rejects an explicit tenant_id value that differs from the
// session tenant. Matching values pass; injection or stripping happens later.
func (s *TenantScoped[T]) checkTenantValue(ctx context.Context, values map[string]any, tenantID, action string) error {
	supplied, ok := values["tenant_id"]
	if !ok || supplied == tenantID {
		return nil
	}
	s.security.LogSecurityEvent(ctx, "tenant_mismatch", s.entity, opMetadata(action, ""))
	return fmt.Errorf("%s %s: %w", action, s.entity, ErrTenantMismatch)
}

func (s *TenantScoped[T]) idOf(rec *T) string {
	if m, ok := s.base.(interface{ Mapper() Mapper[T] }); ok {
		return m.Mapper().ID(rec)
	}
	return ""
}

func opMetadata(action, id string) string {
	if id == "" {
		return `{"op":"` + action + `"}`
	}
	return `{"op":"` + action + `","id":"` + id + `"}`
}
