// Package store implements the SchemaStore: one database connection with
// existence-guarded schema and data operations.
//
// Every mutating operation re-reads the catalog immediately before acting,
// since other clients may change the schema at any time. Values are always
// bound as parameters; identifiers are quoted by the dialect. Where and
// order-by clauses are raw SQL fragments supplied by the caller and are
// NOT sanitized: never build them from untrusted input.
//
// A Store is not safe for concurrent use. One Store serves one logical
// caller; concurrent callers must serialize access themselves.
//
// Usage:
//
//	import _ "github.com/koustreak/schemastore/internal/database/mysql"
//
//	s := store.New(ctx, database.DefaultConfig("localhost", "app", "root", "secret"))
//	defer s.Close()
//	if err := s.Err(); err != nil { ... } // Disconnected
//
//	res, err := s.CreateTable(ctx, "users", database.Columns("id", "INT PRIMARY KEY"))
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/koustreak/schemastore/internal/database"
	"github.com/koustreak/schemastore/internal/errs"
	"github.com/koustreak/schemastore/internal/logger"
)

// Aliases so callers of the store rarely need the database package.
type (
	ColumnSpec = database.ColumnSpec
	ColumnDef  = database.ColumnDef
	RowData    = database.RowData
	ColumnInfo = database.ColumnInfo
	ForeignKey = database.ForeignKey
)

// State is the connection lifecycle of a Store.
type State int

const (
	StateUninitialized State = iota
	StateConnecting
	StateConnected    // all operations valid
	StateDisconnected // every operation returns NotConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "uninitialized"
	}
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithDialect overrides the dialect registered for the config's driver.
func WithDialect(d database.Dialect) Option {
	return func(s *Store) { s.dialect = d }
}

// Store is the SchemaStore.
type Store struct {
	cfg     database.Config
	dialect database.Dialect
	db      *sql.DB
	state   State
	connErr error
	log     *logger.Logger
}

// New connects to cfg.Database. If that fails it creates the database and
// connects once more. New always returns a Store: when both attempts fail
// the Store is Disconnected, Err reports a ConnectionError whose message
// carries no credentials or driver text, and every operation returns
// NotConnected.
func New(ctx context.Context, cfg database.Config, opts ...Option) *Store {
	s := &Store{cfg: cfg, log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}

	s.state = StateConnecting
	s.log = s.log.With().
		Str("driver", string(cfg.DriverOrDefault())).
		Str("database", cfg.Database).
		Logger()

	if s.dialect == nil {
		d, err := database.Lookup(cfg.DriverOrDefault())
		if err != nil {
			s.fail(err)
			return s
		}
		s.dialect = d
	}

	db, err := s.dialect.Connect(ctx, s.cfg)
	if err != nil {
		// driver text may carry credentials; it only goes out at debug
		s.log.With().Err(err).Logger().Debug("connect failed")
		s.log.Warn("connect failed, creating database")
		if cerr := s.ensureDatabase(ctx); cerr != nil {
			s.log.With().Err(cerr).Logger().Debug("create database failed")
		}
		db, err = s.dialect.Connect(ctx, s.cfg)
	}
	if err != nil {
		s.fail(errs.Redact(errs.ErrKindConnectionFailed,
			fmt.Sprintf("could not connect to database %q", cfg.Database), err))
		return s
	}

	s.db = db
	s.state = StateConnected
	s.log.Info("connected")
	return s
}

// ensureDatabase creates cfg.Database from a server-level connection.
func (s *Store) ensureDatabase(ctx context.Context) error {
	if err := s.dialect.CreateDatabase(ctx, s.cfg); err != nil {
		return err
	}
	s.log.Infof("database %s created", s.cfg.Database)
	return nil
}

func (s *Store) fail(err error) {
	s.state = StateDisconnected
	s.connErr = err
	s.log.With().Err(err).Logger().Warn("store disconnected")
}

// State returns the connection state.
func (s *Store) State() State { return s.state }

// Err returns why the store is Disconnected, or nil while Connected.
func (s *Store) Err() error {
	if s.state == StateConnected {
		return nil
	}
	return s.connErr
}

// Dialect returns the dialect in use (nil if the driver was unknown).
func (s *Store) Dialect() database.Dialect { return s.dialect }

// Database returns the configured database name.
func (s *Store) Database() string { return s.cfg.Database }

// Ping checks the connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.connected(); err != nil {
		return err
	}
	ctx, cancel := s.roundTrip(ctx)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		return s.dialect.MapError(err, "ping failed")
	}
	return nil
}

// Close releases the connection. Later operations return NotConnected.
// Close is idempotent.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.state = StateDisconnected
	s.connErr = errs.New(errs.ErrKindNotConnected, "store closed")
	return err
}

// DropDatabase drops the configured database if it exists. Dialects that
// must release the connection to drop (PostgreSQL, SQLite) leave the store
// Disconnected.
func (s *Store) DropDatabase(ctx context.Context) (Result, error) {
	if err := s.connected(); err != nil {
		return failure(err)
	}
	ctx, cancel := s.roundTrip(ctx)
	defer cancel()

	released, err := s.dialect.DropDatabase(ctx, s.cfg, s.db)
	if released {
		s.db = nil
		s.state = StateDisconnected
		s.connErr = errs.Newf(errs.ErrKindNotConnected, "database %s was dropped", s.cfg.Database)
	}
	if err != nil {
		return failure(err)
	}
	s.log.Infof("database %s dropped", s.cfg.Database)
	return success("Database %s dropped", s.cfg.Database), nil
}

// --- helpers ---

// connected returns a NotConnected error unless the store is Connected.
func (s *Store) connected() error {
	if s.state == StateConnected && s.db != nil {
		return nil
	}
	return errs.Wrap(errs.ErrKindNotConnected, "store is not connected", s.connErr)
}

// roundTrip bounds one statement by QueryTimeout when configured.
func (s *Store) roundTrip(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.QueryTimeout > 0 {
		return context.WithTimeout(ctx, s.cfg.QueryTimeout)
	}
	return context.WithCancel(ctx)
}

// exec runs one statement and returns rows affected.
func (s *Store) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	s.log.DebugWith("exec", map[string]any{"op": op, "sql": query, "args": len(args)})

	ctx, cancel := s.roundTrip(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		mapped := s.dialect.MapError(err, op+" failed")
		s.log.With().Str("op", op).Err(mapped).Logger().Error("statement failed")
		return 0, mapped
	}
	return s.rowsAffected(op, res), nil
}

// rowsAffected reports 0 when the driver has no count; DDL on some drivers
// has none.
func (s *Store) rowsAffected(op string, res sql.Result) int64 {
	n, err := res.RowsAffected()
	if err != nil {
		s.log.With().Str("op", op).Err(err).Logger().Debug("rows affected unavailable")
		return 0
	}
	return n
}

// count runs a COUNT(*) catalog query.
func (s *Store) count(ctx context.Context, query string, args []any) (int64, error) {
	ctx, cancel := s.roundTrip(ctx)
	defer cancel()

	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, s.dialect.MapError(err, "catalog lookup failed")
	}
	return n, nil
}

func (s *Store) tableExists(ctx context.Context, table string) (bool, error) {
	q, args := s.dialect.TableExistsQuery(table)
	n, err := s.count(ctx, q, args)
	return n > 0, err
}

func (s *Store) columnExists(ctx context.Context, table, column string) (bool, error) {
	q, args := s.dialect.ColumnExistsQuery(table, column)
	n, err := s.count(ctx, q, args)
	return n > 0, err
}
