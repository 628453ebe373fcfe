package database

import (
	"context"
	"database/sql"
	"time"
)

// OpenSingle opens driverName/dsn as a pool capped at one connection and
// pings it within connectTimeout (0 = no deadline). The handle is closed
// before any error is returned. Errors are the driver's own; callers map them.
func OpenSingle(ctx context.Context, driverName, dsn string, connectTimeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	// one store, one server-side connection slot
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if connectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, connectTimeout)
		defer cancel()
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
