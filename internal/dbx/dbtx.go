// Package dbx provides the small database abstractions shared by the archive
// engine and the seed tool: a minimal session interface (DBTX) implemented by
// *sql.DB, *sql.Tx and *sql.Conn, a transaction helper, placeholder rebinding
// per driver, and a statement-logging decorator.
package dbx

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// DBTX is the subset of database/sql used by the engine and the seed tool.
// *sql.DB, *sql.Tx and *sql.Conn all satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
// Typical use:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "INSERT ...")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

// BindType returns the placeholder style used by the named database/sql driver
// ("sqlite", "pgx", "postgres", ...). Unknown drivers keep '?'.
func BindType(driverName string) int {
	bt := sqlx.BindType(driverName)
	if bt == sqlx.UNKNOWN {
		return sqlx.QUESTION
	}
	return bt
}

// Rebind rewrites a query written with '?' placeholders into the style given
// by bindType (see BindType).
func Rebind(bindType int, query string) string {
	return sqlx.Rebind(bindType, query)
}
