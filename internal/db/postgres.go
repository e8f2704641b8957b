package db

import (
	"database/sql"
	"errors"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open opens a Postgres connection pool using the given DSN. Caller must call Close when done.
// The returned handle is safe for concurrent use and is passed into each repository
// constructor; nothing in this package holds a process-wide singleton.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("db: DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
