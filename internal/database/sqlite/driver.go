// Package sqlite is the SQLite dialect for schemastore, on the pure-Go
// modernc.org/sqlite driver. Config.Database is the database file path;
// host and credentials are ignored.
//
// SQLite has no MODIFY COLUMN and cannot add a foreign key to an existing
// table; both report errs.ErrKindUnsupported.
package sqlite

import (
	"fmt"
	"strings"

	"github.com/koustreak/schemastore/internal/database"
	"github.com/koustreak/schemastore/internal/errs"
	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Dialect implements database.Dialect for SQLite.
type Dialect struct{}

func init() {
	database.Register(Dialect{})
}

func (Dialect) Driver() database.Driver { return database.DriverSQLite }

func (Dialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (Dialect) Placeholder(int) string { return "?" }

func (Dialect) MapError(err error, msg string) *errs.Error { return mapError(err, msg) }

// SQLite resolves table and column names case-insensitively, so the
// catalog lookups do too.
func (Dialect) TableExistsQuery(table string) (string, []any) {
	return `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ? COLLATE NOCASE`, []any{table}
}

func (Dialect) ColumnExistsQuery(table, column string) (string, []any) {
	return `SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ? COLLATE NOCASE`, []any{table, column}
}

func (Dialect) ListTablesQuery() string {
	return `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table'
		  AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
		ORDER BY name`
}

func (Dialect) DescribeTableQuery(table string) (string, []any) {
	return `SELECT name, type, "notnull" = 0 FROM pragma_table_info(?) ORDER BY cid`, []any{table}
}

func (d Dialect) RenameTableSQL(oldName, newName string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", d.QuoteIdent(oldName), d.QuoteIdent(newName))
}

// RenameColumnSQL ignores definition: SQLite renames in place and cannot
// retype a column.
func (d Dialect) RenameColumnSQL(table, oldName, newName, _ string) ([]string, error) {
	return []string{fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s",
		d.QuoteIdent(table), d.QuoteIdent(oldName), d.QuoteIdent(newName))}, nil
}

func (Dialect) ModifyColumnSQL(table, column, _ string) ([]string, error) {
	return nil, errs.Newf(errs.ErrKindUnsupported, "sqlite cannot modify column %s.%s", table, column)
}

func (d Dialect) AddColumnSQL(table, column, definition, position string) (string, error) {
	if strings.TrimSpace(position) != "" {
		return "", errs.Newf(errs.ErrKindUnsupported, "sqlite cannot place column %s (%s)", column, position)
	}
	if strings.TrimSpace(definition) == "" {
		return "", errs.Newf(errs.ErrKindInvalidInput, "column %s needs a definition", column)
	}
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
		d.QuoteIdent(table), d.QuoteIdent(column), definition), nil
}

func (d Dialect) DropColumnSQL(table, column string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", d.QuoteIdent(table), d.QuoteIdent(column))
}

func (Dialect) AddForeignKeySQL(fk database.ForeignKey) (string, error) {
	return "", errs.Newf(errs.ErrKindUnsupported, "sqlite cannot add a foreign key to existing table %s", fk.Table)
}
