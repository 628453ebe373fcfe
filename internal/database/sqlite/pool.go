package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"os"

	"github.com/koustreak/schemastore/internal/database"
	"github.com/koustreak/schemastore/internal/errs"
)

const (
	memoryDB = ":memory:"
	// foreign keys are off by default in SQLite
	dsnParams = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
)

// sidecar files SQLite may leave next to the database
var sidecars = []string{"", "-journal", "-wal", "-shm"}

// Connect opens the database file. A missing file is a connection failure,
// matching a server that does not know the database yet.
func (Dialect) Connect(ctx context.Context, cfg database.Config) (*sql.DB, error) {
	if cfg.Database == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "sqlite database path is empty")
	}
	if cfg.Database != memoryDB {
		if _, err := os.Stat(cfg.Database); err != nil {
			return nil, errs.Wrap(errs.ErrKindConnectionFailed, "database file not found", err)
		}
	}

	db, err := database.OpenSingle(ctx, "sqlite", cfg.Database+dsnParams, cfg.ConnectTimeout)
	if err != nil {
		return nil, mapError(err, "connect failed")
	}
	return db, nil
}

// CreateDatabase creates an empty database file. An empty file is a valid
// SQLite database; an existing file is left untouched.
func (Dialect) CreateDatabase(_ context.Context, cfg database.Config) error {
	if cfg.Database == memoryDB {
		return nil
	}
	f, err := os.OpenFile(cfg.Database, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return errs.Wrap(errs.ErrKindQueryFailed, "create database failed", err)
	}
	return f.Close()
}

// DropDatabase closes conn and removes the database file and its sidecars.
func (Dialect) DropDatabase(_ context.Context, cfg database.Config, conn *sql.DB) (bool, error) {
	if conn != nil {
		_ = conn.Close()
	}
	if cfg.Database == memoryDB {
		return true, nil
	}
	for _, suffix := range sidecars {
		if err := os.Remove(cfg.Database + suffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return true, errs.Wrap(errs.ErrKindQueryFailed, "drop database failed", err)
		}
	}
	return true, nil
}
