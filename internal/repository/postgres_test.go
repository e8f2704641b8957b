package repository

import (
	"errors"
	"reflect"
	"testing"
)

type note struct {
	ID         string
	TenantID   string
	EmployeeID string
	Body       string
}

type noteMapper struct{}

func (noteMapper) Table() string { return "notes" }

func (noteMapper) Columns() []string {
	return []string{"id", "tenant_id", "employee_id", "body", "created_at"}
}

func (noteMapper) ScanRow(s RowScanner) (*note, error) {
	var n note
	var createdAt any
	if err := s.Scan(&n.ID, &n.TenantID, &n.EmployeeID, &n.Body, &createdAt); err != nil {
		return nil, err
	}
	return &n, nil
}

func (noteMapper) ID(n *note) string { return n.ID }

func newTestBase() *Base[note] {
	return NewBase[note](nil, noteMapper{})
}

func TestBuildSelectDefaults(t *testing.T) {
	b := newTestBase()

	q, args, err := b.buildSelect(QueryOptions{})
	if err != nil {
		t.Fatalf("buildSelect: %v", err)
	}
	want := "SELECT id, tenant_id, employee_id, body, created_at FROM notes ORDER BY created_at DESC"
	if q != want {
		t.Errorf("query = %q, want %q", q, want)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
}

func TestBuildSelectFiltersAreDeterministic(t *testing.T) {
	b := newTestBase()
	opts := QueryOptions{
		Filters: Filters{"tenant_id": "t1", "employee_id": "e1", "body": "x"},
	}

	q, args, err := b.buildSelect(opts)
	if err != nil {
		t.Fatalf("buildSelect: %v", err)
	}
	want := "SELECT id, tenant_id, employee_id, body, created_at FROM notes" +
		" WHERE body = $1 AND employee_id = $2 AND tenant_id = $3" +
		" ORDER BY created_at DESC"
	if q != want {
		t.Errorf("query = %q, want %q", q, want)
	}
	if !reflect.DeepEqual(args, []any{"x", "e1", "t1"}) {
		t.Errorf("args = %v, want [x e1 t1]", args)
	}

	// Same map, same statement, every time.
	for i := 0; i < 20; i++ {
		q2, _, _ := b.buildSelect(opts)
		if q2 != q {
			t.Fatalf("iteration %d: query %q differs from %q", i, q2, q)
		}
	}
}

func TestBuildSelectPagination(t *testing.T) {
	b := newTestBase()

	q, _, err := b.buildSelect(QueryOptions{
		OrderBy:        "id",
		OrderDirection: Ascending,
		Limit:          2,
		Offset:         2,
	})
	if err != nil {
		t.Fatalf("buildSelect: %v", err)
	}
	want := "SELECT id, tenant_id, employee_id, body, created_at FROM notes ORDER BY id ASC LIMIT 2 OFFSET 2"
	if q != want {
		t.Errorf("query = %q, want %q", q, want)
	}
}

func TestBuildSelectRejectsUnknownColumns(t *testing.T) {
	b := newTestBase()

	if _, _, err := b.buildSelect(QueryOptions{Filters: Filters{"password": "x"}}); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("filter on unknown column: err = %v, want ErrUnknownColumn", err)
	}
	if _, _, err := b.buildSelect(QueryOptions{OrderBy: "rank"}); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("order by unknown column: err = %v, want ErrUnknownColumn", err)
	}
}

func TestBuildSelectRejectsInvalidDirection(t *testing.T) {
	b := newTestBase()

	if _, _, err := b.buildSelect(QueryOptions{OrderDirection: Direction("SIDEWAYS")}); err == nil {
		t.Error("invalid direction accepted")
	}
}

func TestSortedColumnsOrdersAndValidates(t *testing.T) {
	b := newTestBase()

	cols, args, err := b.sortedColumns(map[string]any{"tenant_id": "t1", "body": "x", "id": "n1"})
	if err != nil {
		t.Fatalf("sortedColumns: %v", err)
	}
	if !reflect.DeepEqual(cols, []string{"body", "id", "tenant_id"}) {
		t.Errorf("cols = %v", cols)
	}
	if !reflect.DeepEqual(args, []any{"x", "n1", "t1"}) {
		t.Errorf("args = %v", args)
	}

	if _, _, err := b.sortedColumns(map[string]any{"nope": 1}); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("unknown value column: err = %v, want ErrUnknownColumn", err)
	}
}

func TestBuildWherePlaceholderOffset(t *testing.T) {
	b := newTestBase()

	where, args, err := b.buildWhere(Filters{"id": "n1", "tenant_id": "t1"}, 3)
	if err != nil {
		t.Fatalf("buildWhere: %v", err)
	}
	if where != " WHERE id = $3 AND tenant_id = $4" {
		t.Errorf("where = %q", where)
	}
	if !reflect.DeepEqual(args, []any{"n1", "t1"}) {
		t.Errorf("args = %v", args)
	}
}

func TestBackendErrorUnwraps(t *testing.T) {
	inner := errors.New("connection reset")
	err := &BackendError{Op: "select notes", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("BackendError does not unwrap to the inner error")
	}
	if err.Error() != "select notes: connection reset" {
		t.Errorf("Error() = %q", err.Error())
	}
}
