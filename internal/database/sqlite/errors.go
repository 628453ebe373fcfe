package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/koustreak/schemastore/internal/errs"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// mapError translates modernc.org/sqlite errors into *errs.Error.
//
// SQLite reports missing tables/columns and duplicates as a generic
// SQLITE_ERROR, so those are told apart by message.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var se *msqlite.Error
	if errors.As(err, &se) {
		return errs.Wrap(classify(se.Code(), se.Error()), fmt.Sprintf("%s: %s", msg, se.Error()), err)
	}

	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}

func classify(code int, text string) errs.ErrKind {
	switch code & 0xff { // primary result code
	case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_NOTADB:
		return errs.ErrKindConnectionFailed
	case sqlite3.SQLITE_PERM, sqlite3.SQLITE_AUTH, sqlite3.SQLITE_READONLY:
		return errs.ErrKindPermissionDenied
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_INTERRUPT:
		return errs.ErrKindTimeout
	case sqlite3.SQLITE_CONSTRAINT:
		return errs.ErrKindQueryFailed
	}

	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "no such table"):
		return errs.ErrKindNotFound
	case strings.Contains(lower, "no such column"):
		return errs.ErrKindSchemaMismatch
	case strings.Contains(lower, "already exists"), strings.Contains(lower, "duplicate column"):
		return errs.ErrKindAlreadyExists
	default:
		return errs.ErrKindQueryFailed
	}
}
