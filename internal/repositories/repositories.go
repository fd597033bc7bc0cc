package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/marquee/internal/shared"
	"github.com/mattn/go-sqlite3"
)

// DBTX is the subset of *sql.DB and *sql.Tx used by repositories.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

// WithTx runs fn inside a transaction, committing when fn returns nil and rolling back otherwise.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify("commit transaction", err)
	}
	return nil
}

// classify wraps err with the domain sentinel matching its cause so callers can use [errors.Is].
//
//   - sql.ErrNoRows and foreign key violations -> [shared.ErrNotFound]
//   - unique and primary key violations -> [shared.ErrConflict]
//   - check and not-null violations -> [shared.ErrInvalidInput]
//   - busy, locked, deadline and cancellation -> [shared.ErrTransient]
//
// Errors that already carry a sentinel are returned with added context only. Classified errors
// omit the driver message from Error.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	if sentinel := sentinelFor(err); sentinel != nil && !errors.Is(err, sentinel) {
		return &dbError{op: op, sentinel: sentinel, cause: err}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// dbError is a classified driver error. Its message names the operation and the sentinel only,
// so it can be shown to API clients; the driver error stays reachable through [errors.As].
type dbError struct {
	op       string
	sentinel error
	cause    error
}

func (e *dbError) Error() string   { return fmt.Sprintf("failed to %s: %v", e.op, e.sentinel) }
func (e *dbError) Unwrap() []error { return []error{e.sentinel, e.cause} }

// Cause returns the underlying driver error for logging.
func (e *dbError) Cause() error { return e.cause }

func sentinelFor(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return shared.ErrNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return shared.ErrTransient
	}

	var serr sqlite3.Error
	if !errors.As(err, &serr) {
		return nil
	}

	switch serr.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return shared.ErrTransient
	case sqlite3.ErrConstraint:
		switch serr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return shared.ErrConflict
		case sqlite3.ErrConstraintForeignKey:
			return shared.ErrNotFound
		case sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintNotNull:
			return shared.ErrInvalidInput
		}
	}
	return nil
}

// requireAffected reports [shared.ErrNotFound] when a write touched no rows.
func requireAffected(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, shared.ErrNotFound)
	}
	return nil
}

// nullTime converts a [sql.NullTime] into a pointer, normalized to UTC.
func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	u := t.Time.UTC()
	return &u
}

// nullFloat converts a [sql.NullFloat64] into a pointer.
func nullFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
