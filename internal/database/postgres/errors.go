package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/koustreak/schemastore/internal/errs"
)

// PostgreSQL SQLSTATE error codes
// Full list: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgErrInvalidCatalogName  = "3D000" // database does not exist
	pgErrInsufficientPriv    = "42501"
	pgErrUndefinedTable      = "42P01"
	pgErrUndefinedColumn     = "42703"
	pgErrDuplicateTable      = "42P07"
	pgErrDuplicateColumn     = "42701"
	pgErrDuplicateDatabase   = "42P04"
	pgErrDuplicateObject     = "42710"
	pgErrQueryCanceled       = "57014"
	pgClassConnection        = "08"
	pgClassInvalidAuthorizer = "28"
)

// mapError translates pgx / pgconn native errors into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	// Context cancellation / deadline exceeded
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	// Postgres server-side error (SQLSTATE codes)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return errs.Wrap(classifyCode(pgErr.Code), fmt.Sprintf("%s: %s", msg, pgErr.Message), err)
	}

	// Fallthrough: connection-level errors (TLS, network, auth)
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

func classifyCode(code string) errs.ErrKind {
	if len(code) >= 2 {
		switch code[:2] {
		case pgClassConnection:
			return errs.ErrKindConnectionFailed
		case pgClassInvalidAuthorizer:
			return errs.ErrKindPermissionDenied
		}
	}

	switch code {
	case pgErrInvalidCatalogName:
		return errs.ErrKindConnectionFailed
	case pgErrInsufficientPriv:
		return errs.ErrKindPermissionDenied
	case pgErrUndefinedTable:
		return errs.ErrKindNotFound
	case pgErrUndefinedColumn:
		return errs.ErrKindSchemaMismatch
	case pgErrDuplicateTable, pgErrDuplicateColumn, pgErrDuplicateDatabase, pgErrDuplicateObject:
		return errs.ErrKindAlreadyExists
	case pgErrQueryCanceled:
		return errs.ErrKindTimeout
	default:
		return errs.ErrKindQueryFailed
	}
}

func isDuplicateDatabase(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrDuplicateDatabase
}
