package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Base is the entity-agnostic Postgres implementation of Repo. It has no
// tenant awareness of its own; TenantScoped composes that on top.
type Base[T any] struct {
	db     *sql.DB
	mapper Mapper[T]
	cols   map[string]bool
}

// NewBase returns a Base repository for the mapper's table using the given db.
func NewBase[T any](db *sql.DB, mapper Mapper[T]) *Base[T] {
	cols := make(map[string]bool, len(mapper.Columns()))
	for _, c := range mapper.Columns() {
		cols[c] = true
	}
	return &Base[T]{db: db, mapper: mapper, cols: cols}
}

// Mapper exposes the row mapper this repository was built with.
func (b *Base[T]) Mapper() Mapper[T] { return b.mapper }

// GetAll returns all rows ordered by creation time descending.
func (b *Base[T]) GetAll(ctx context.Context) ([]*T, error) {
	return b.Query(ctx, QueryOptions{})
}

// GetByID returns the row for id, or nil if not found.
func (b *Base[T]) GetByID(ctx context.Context, id string) (*T, error) {
	q := "SELECT " + b.selectList() + " FROM " + b.mapper.Table() + " WHERE id = $1"
	row := b.db.QueryRowContext(ctx, q, id)
	t, err := b.mapper.ScanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, &BackendError{Op: "select " + b.mapper.Table(), Err: err}
	}
	return t, nil
}

// Create inserts values and returns the stored row via RETURNING, so
// server-assigned defaults (id, timestamps) come back as persisted.
func (b *Base[T]) Create(ctx context.Context, values map[string]any) (*T, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("insert %s: no values", b.mapper.Table())
	}
	cols, args, err := b.sortedColumns(values)
	if err != nil {
		return nil, err
	}
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}
	q := "INSERT INTO " + b.mapper.Table() +
		" (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(placeholders, ", ") + ")" +
		" RETURNING " + b.selectList()
	row := b.db.QueryRowContext(ctx, q, args...)
	t, err := b.mapper.ScanRow(row)
	if err != nil {
		return nil, &BackendError{Op: "insert " + b.mapper.Table(), Err: err}
	}
	return t, nil
}

// Update applies a partial merge of values to the row with id and returns the
// full post-update row. A missing row returns ErrNotFound.
func (b *Base[T]) Update(ctx context.Context, id string, values map[string]any) (*T, error) {
	if len(values) == 0 {
		return b.GetByID(ctx, id)
	}
	q, args, err := b.buildUpdate(id, values)
	if err != nil {
		return nil, err
	}
	row := b.db.QueryRowContext(ctx, q, args...)
	t, err := b.mapper.ScanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("update %s %s: %w", b.mapper.Table(), id, ErrNotFound)
		}
		return nil, &BackendError{Op: "update " + b.mapper.Table(), Err: err}
	}
	return t, nil
}

// Delete hard-deletes the row with id. Deleting a missing id returns
// ErrNotFound rather than succeeding silently.
func (b *Base[T]) Delete(ctx context.Context, id string) error {
	res, err := b.db.ExecContext(ctx, "DELETE FROM "+b.mapper.Table()+" WHERE id = $1", id)
	if err != nil {
		return &BackendError{Op: "delete " + b.mapper.Table(), Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &BackendError{Op: "delete " + b.mapper.Table(), Err: err}
	}
	if n == 0 {
		return fmt.Errorf("delete %s %s: %w", b.mapper.Table(), id, ErrNotFound)
	}
	return nil
}

// Query returns rows matching opts. Filters are equality-only; ordering
// defaults to created_at descending; Limit 0 means unranged.
func (b *Base[T]) Query(ctx context.Context, opts QueryOptions) ([]*T, error) {
	q, args, err := b.buildSelect(opts)
	if err != nil {
		return nil, err
	}
	rows, err := b.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, &BackendError{Op: "select " + b.mapper.Table(), Err: err}
	}
	defer rows.Close()

	var out []*T
	for rows.Next() {
		t, err := b.mapper.ScanRow(rows)
		if err != nil {
			return nil, &BackendError{Op: "select " + b.mapper.Table(), Err: err}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &BackendError{Op: "select " + b.mapper.Table(), Err: err}
	}
	return out, nil
}

// Count returns the number of rows matching filters.
func (b *Base[T]) Count(ctx context.Context, filters Filters) (int64, error) {
	where, args, err := b.buildWhere(filters, 1)
	if err != nil {
		return 0, err
	}
	q := "SELECT count(*) FROM " + b.mapper.Table() + where
	var n int64
	if err := b.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, &BackendError{Op: "count " + b.mapper.Table(), Err: err}
	}
	return n, nil
}

func (b *Base[T]) selectList() string {
	return strings.Join(b.mapper.Columns(), ", ")
}

// sortedColumns validates and orders the value map deterministically.
func (b *Base[T]) sortedColumns(values map[string]any) ([]string, []any, error) {
	cols := make([]string, 0, len(values))
	for c := range values {
		if !b.cols[c] {
			return nil, nil, fmt.Errorf("%w: %q in %s", ErrUnknownColumn, c, b.mapper.Table())
		}
		cols = append(cols, c)
	}
	sort.Strings(cols)
	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = values[c]
	}
	return cols, args, nil
}

func (b *Base[T]) buildWhere(filters Filters, firstPlaceholder int) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}
	cols := make([]string, 0, len(filters))
	for c := range filters {
		if !b.cols[c] {
			return "", nil, fmt.Errorf("%w: %q in %s", ErrUnknownColumn, c, b.mapper.Table())
		}
		cols = append(cols, c)
	}
	sort.Strings(cols)
	conds := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		conds[i] = c + " = $" + strconv.Itoa(firstPlaceholder+i)
		args[i] = filters[c]
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// buildUpdate builds the partial-merge UPDATE: only the provided columns
// appear in SET, in deterministic order, with the id as the last placeholder.
func (b *Base[T]) buildUpdate(id string, values map[string]any) (string, []any, error) {
	cols, args, err := b.sortedColumns(values)
	if err != nil {
		return "", nil, err
	}
	assignments := make([]string, len(cols))
	for i, c := range cols {
		assignments[i] = c + " = $" + strconv.Itoa(i+1)
	}
	args = append(args, id)
	q := "UPDATE " + b.mapper.Table() + " SET " + strings.Join(assignments, ", ") +
		" WHERE id = $" + strconv.Itoa(len(args)) +
		" RETURNING " + b.selectList()
	return q, args, nil
}

func (b *Base[T]) buildSelect(opts QueryOptions) (string, []any, error) {
	where, args, err := b.buildWhere(opts.Filters, 1)
	if err != nil {
		return "", nil, err
	}

	orderBy := opts.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	if !b.cols[orderBy] {
		return "", nil, fmt.Errorf("%w: order by %q in %s", ErrUnknownColumn, orderBy, b.mapper.Table())
	}
	dir := opts.OrderDirection
	if dir == "" {
		dir = Descending
	}
	if dir != Ascending && dir != Descending {
		return "", nil, fmt.Errorf("invalid order direction %q", dir)
	}

	q := "SELECT " + b.selectList() + " FROM " + b.mapper.Table() + where +
		" ORDER BY " + orderBy + " " + string(dir)
	if opts.Limit > 0 {
		q += " LIMIT " + strconv.Itoa(opts.Limit)
	}
	if opts.Offset > 0 {
		q += " OFFSET " + strconv.Itoa(opts.Offset)
	}
	return q, args, nil
}
