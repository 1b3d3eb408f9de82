// Package database provides PostgreSQL access for the API: the connection
// pool, transaction and savepoint helpers, and the interfaces repositories
// are written against.
package database

import (
	"context"
	"database/sql"
	"time"
)

// SQLDatabase defines the subset of *sql.DB the application relies on.
// It allows the pool to be swapped for a test double.
type SQLDatabase interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	Close() error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	PingContext(ctx context.Context) error
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	SetConnMaxIdleTime(d time.Duration)
	SetConnMaxLifetime(d time.Duration)
	SetMaxIdleConns(n int)
	SetMaxOpenConns(n int)
}

// Querier is implemented by both the pool and a transaction, so repository
// methods can run standalone or as part of a larger unit of work.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var (
	_ SQLDatabase = (*sql.DB)(nil)
	_ Querier     = (*sql.DB)(nil)
	_ Querier     = (*sql.Tx)(nil)
	_ Querier     = (*Pool)(nil)
)
