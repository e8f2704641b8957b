// Package repository provides the entity-agnostic CRUD/query engine used by
// every domain repository, plus the tenant-security decorator that scopes all
// operations to the caller's tenant.
package repository

import (
	"context"
	"errors"
)

// Sentinel errors shared by the base engine and the secure decorator.
var (
	// ErrNotFound is returned by Update/Delete when the target row does not exist.
	// Delete is deliberately not idempotent: deleting a missing id is an error.
	ErrNotFound = errors.New("record not found")
	// ErrNotFoundOrForbidden is returned by tenant-scoped mutations when the
	// target is missing or belongs to another tenant. The two cases are
	// intentionally indistinguishable so cross-tenant existence never leaks.
	ErrNotFoundOrForbidden = errors.New("record not found or not accessible")
	// ErrUnknownColumn is returned when a filter, order, or value column is not
	// part of the entity's column set.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrTenantMismatch is returned by tenant-scoped writes when the caller
	// explicitly supplies a tenant_id other than the session's. Reads instead
	// silently override the filter so no cross-tenant data is ever returned.
	ErrTenantMismatch = errors.New("tenant id does not match session tenant")
	// ErrInvalidGeneratedIdentifier is returned when a server-generated
	// business identifier (vehicle number, invoice number) does not match the
	// expected format. Fatal for that operation; not retried.
	ErrInvalidGeneratedIdentifier = errors.New("generated identifier has unexpected format")
)

// BackendError wraps an underlying database failure. The original message is
// preserved for diagnostics; callers translate to user-facing text themselves.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *BackendError) Unwrap() error { return e.Err }

// Direction is a sort direction for Query.
type Direction string

const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)

// Filters is a set of exact-match equality conditions, keyed by column name.
// The base engine supports equality only; repositories needing ranges or text
// search compose their own SQL outside this contract.
type Filters map[string]any

// QueryOptions selects, orders, and paginates rows. Zero values mean: no
// filters, order by created_at descending, no limit (unranged; callers must
// guard against unbounded result sets on large tables), offset 0.
type QueryOptions struct {
	Filters        Filters
	OrderBy        string
	OrderDirection Direction
	Limit          int
	Offset         int
}

// RowScanner abstracts *sql.Row and *sql.Rows for mappers.
type RowScanner interface {
	Scan(dest ...any) error
}

// Mapper describes how an entity maps to its table. Columns must start with
// "id" and include "tenant_id" and "created_at"; ScanRow must scan in Columns
// order.
type Mapper[T any] interface {
	Table() string
	Columns() []string
	ScanRow(s RowScanner) (*T, error)
	// ID returns the entity's identifier, used for audit record ids.
	ID(t *T) string
}

// Repo is the typed CRUD + query contract per entity. Base implements it
// without tenant awareness; TenantScoped implements it with tenant and
// employee authorization baked in.
type Repo[T any] interface {
	// GetAll returns all rows ordered by creation time descending.
	GetAll(ctx context.Context) ([]*T, error)
	// GetByID returns the row for id, or nil if not found. Absence is not an error.
	GetByID(ctx context.Context, id string) (*T, error)
	// Create inserts values and returns the persisted representation exactly as
	// stored, so server-computed defaults (id, timestamps) are observable.
	Create(ctx context.Context, values map[string]any) (*T, error)
	// Update applies a partial merge: only the provided columns change.
	// Returns the full post-update row.
	Update(ctx context.Context, id string, values map[string]any) (*T, error)
	// Delete hard-deletes the row. Deleting a missing id returns an error.
	Delete(ctx context.Context, id string) error
	// Query returns rows matching opts.
	Query(ctx context.Context, opts QueryOptions) ([]*T, error)
	// Count returns the number of rows matching filters without transferring them.
	Count(ctx context.Context, filters Filters) (int64, error)
}
