package postgres

import (
	"context"
	"database/sql"
	"net"
	"net/url"
	"strconv"

	"github.com/koustreak/schemastore/internal/database"
)

const (
	defaultPort        = 5432
	defaultSSLMode     = "disable"
	maintenanceDB      = "postgres" // server-level connections select this database
	stdlibDriverName   = "pgx"
	dropDatabaseSuffix = " WITH (FORCE)"
)

// Connect opens cfg.Database over a single connection and pings it.
func (Dialect) Connect(ctx context.Context, cfg database.Config) (*sql.DB, error) {
	db, err := database.OpenSingle(ctx, stdlibDriverName, buildDSN(cfg, cfg.Database), cfg.ConnectTimeout)
	if err != nil {
		return nil, mapError(err, "connect failed")
	}
	return db, nil
}

// CreateDatabase connects to the maintenance database and creates
// cfg.Database. An existing database is not an error.
func (d Dialect) CreateDatabase(ctx context.Context, cfg database.Config) error {
	db, err := database.OpenSingle(ctx, stdlibDriverName, buildDSN(cfg, maintenanceDB), cfg.ConnectTimeout)
	if err != nil {
		return mapError(err, "server connect failed")
	}
	defer db.Close()

	// CREATE DATABASE has no IF NOT EXISTS in PostgreSQL.
	if _, err := db.ExecContext(ctx, "CREATE DATABASE "+d.QuoteIdent(cfg.Database)); err != nil && !isDuplicateDatabase(err) {
		return mapError(err, "create database failed")
	}
	return nil
}

// DropDatabase cannot run on a session attached to the target database,
// so conn is closed first and the drop runs from the maintenance database.
// FORCE terminates any other sessions (PostgreSQL 13+).
func (d Dialect) DropDatabase(ctx context.Context, cfg database.Config, conn *sql.DB) (bool, error) {
	if conn != nil {
		_ = conn.Close()
	}

	db, err := database.OpenSingle(ctx, stdlibDriverName, buildDSN(cfg, maintenanceDB), cfg.ConnectTimeout)
	if err != nil {
		return true, mapError(err, "server connect failed")
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "DROP DATABASE IF EXISTS "+d.QuoteIdent(cfg.Database)+dropDatabaseSuffix); err != nil {
		return true, mapError(err, "drop database failed")
	}
	return true, nil
}

// buildDSN constructs a postgres:// URL for cfg with dbname selected.
func buildDSN(cfg database.Config, dbname string) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = defaultSSLMode
	}

	q := url.Values{}
	q.Set("sslmode", sslMode)
	if cfg.ConnectTimeout > 0 {
		// whole seconds; 0 would mean "wait forever"
		secs := max(int(cfg.ConnectTimeout.Seconds()), 1)
		q.Set("connect_timeout", strconv.Itoa(secs))
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(host, strconv.Itoa(port)),
		Path:     "/" + dbname,
		RawQuery: q.Encode(),
	}
	return u.String()
}
