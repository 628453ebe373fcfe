package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/koustreak/schemastore/internal/errs"
)

// Quoter renders identifiers and parameter placeholders for one engine.
type Quoter interface {
	// QuoteIdent quotes a table, column or constraint name.
	QuoteIdent(name string) string

	// Placeholder returns the bind marker for the n-th argument (1-based).
	Placeholder(n int) string
}

// Dialect is everything engine-specific about a SchemaStore: how to open
// and create databases, how to read the catalog, and how to spell the DDL
// statements that differ between engines.
//
// Catalog queries return a single COUNT(*) row (exists checks) or rows of
// the documented shape. DDL builders return an Unsupported error when the
// engine has no equivalent statement.
type Dialect interface {
	Quoter

	Driver() Driver

	// Connect opens cfg.Database over a single connection and pings it.
	Connect(ctx context.Context, cfg Config) (*sql.DB, error)

	// CreateDatabase creates cfg.Database without selecting it first.
	CreateDatabase(ctx context.Context, cfg Config) error

	// DropDatabase removes cfg.Database if it exists. conn is the store's
	// own connection; released reports whether DropDatabase closed it.
	DropDatabase(ctx context.Context, cfg Config, conn *sql.DB) (released bool, err error)

	// TableExistsQuery counts tables named table in the current database.
	TableExistsQuery(table string) (string, []any)

	// ColumnExistsQuery counts columns named column in table.
	ColumnExistsQuery(table, column string) (string, []any)

	// ListTablesQuery returns rows of (name) for every base table, sorted.
	ListTablesQuery() string

	// DescribeTableQuery returns rows of (name, type, nullable) in ordinal order.
	DescribeTableQuery(table string) (string, []any)

	RenameTableSQL(oldName, newName string) string
	RenameColumnSQL(table, oldName, newName, definition string) ([]string, error)
	ModifyColumnSQL(table, column, definition string) ([]string, error)
	AddColumnSQL(table, column, definition, position string) (string, error)
	DropColumnSQL(table, column string) string
	AddForeignKeySQL(fk ForeignKey) (string, error)

	// MapError translates a native driver error into *errs.Error.
	MapError(err error, msg string) *errs.Error
}

// ForeignKey describes a constraint to add from Table.Column to
// RefTable.RefColumn. Name, OnDelete and OnUpdate are optional.
type ForeignKey struct {
	Table     string `json:"table" yaml:"table"`
	Column    string `json:"column" yaml:"column"`
	RefTable  string `json:"ref_table" yaml:"ref_table"`
	RefColumn string `json:"ref_column" yaml:"ref_column"`
	Name      string `json:"constraint_name,omitempty" yaml:"constraint_name"`
	OnDelete  string `json:"on_delete,omitempty" yaml:"on_delete"`
	OnUpdate  string `json:"on_update,omitempty" yaml:"on_update"`
}

// ColumnInfo describes a single column in a table
type ColumnInfo struct {
	Name     string `json:"name"`
	DataType string `json:"type"`
	Nullable bool   `json:"nullable"`
}

var dialects = map[Driver]Dialect{}

// Register makes a dialect available to Lookup. Dialect packages call it
// from init.
func Register(d Dialect) {
	dialects[d.Driver()] = d
}

// Lookup returns the registered dialect for drv.
func Lookup(drv Driver) (Dialect, error) {
	d, ok := dialects[drv]
	if !ok {
		return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown database driver %q", drv))
	}
	return d, nil
}
