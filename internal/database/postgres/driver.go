// Package postgres is the PostgreSQL dialect for schemastore. Connections go
// through pgx's database/sql adapter so the store keeps one code path.
package postgres

import (
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register "pgx" driver
	"github.com/koustreak/schemastore/internal/database"
	"github.com/koustreak/schemastore/internal/errs"
)

// Dialect implements database.Dialect for PostgreSQL.
// Catalog queries are scoped to current_schema().
type Dialect struct{}

func init() {
	database.Register(Dialect{})
}

func (Dialect) Driver() database.Driver { return database.DriverPostgres }

// QuoteIdent wraps a SQL identifier in double-quotes (ANSI standard).
func (Dialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (Dialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (Dialect) MapError(err error, msg string) *errs.Error { return mapError(err, msg) }

func (Dialect) TableExistsQuery(table string) (string, []any) {
	const q = `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		  AND table_type   = 'BASE TABLE'
		  AND table_name   = $1`
	return q, []any{table}
}

func (Dialect) ColumnExistsQuery(table, column string) (string, []any) {
	const q = `
		SELECT COUNT(*)
		FROM information_schema.columns
		WHERE table_schema = current_schema()
		  AND table_name   = $1
		  AND column_name  = $2`
	return q, []any{table, column}
}

func (Dialect) ListTablesQuery() string {
	return `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		  AND table_type   = 'BASE TABLE'
		ORDER BY table_name`
}

func (Dialect) DescribeTableQuery(table string) (string, []any) {
	const q = `
		SELECT column_name,
		       data_type,
		       is_nullable = 'YES'
		FROM information_schema.columns
		WHERE table_schema = current_schema()
		  AND table_name   = $1
		ORDER BY ordinal_position`
	return q, []any{table}
}

func (d Dialect) RenameTableSQL(oldName, newName string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", d.QuoteIdent(oldName), d.QuoteIdent(newName))
}

// RenameColumnSQL renames, then retypes when a definition is given.
// PostgreSQL's ALTER COLUMN TYPE takes a type (optionally with USING),
// not a full column definition with constraints.
func (d Dialect) RenameColumnSQL(table, oldName, newName, definition string) ([]string, error) {
	stmts := []string{fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s",
		d.QuoteIdent(table), d.QuoteIdent(oldName), d.QuoteIdent(newName))}
	if strings.TrimSpace(definition) != "" {
		stmts = append(stmts, d.alterType(table, newName, definition))
	}
	return stmts, nil
}

func (d Dialect) ModifyColumnSQL(table, column, definition string) ([]string, error) {
	if strings.TrimSpace(definition) == "" {
		return nil, errs.Newf(errs.ErrKindInvalidInput, "column %s needs a definition", column)
	}
	return []string{d.alterType(table, column, definition)}, nil
}

// AddColumnSQL always appends; PostgreSQL has no column placement.
func (d Dialect) AddColumnSQL(table, column, definition, position string) (string, error) {
	if strings.TrimSpace(position) != "" {
		return "", errs.Newf(errs.ErrKindUnsupported, "postgres cannot place column %s (%s)", column, position)
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

func (d Dialect) AddForeignKeySQL(fk database.ForeignKey) (string, error) {
	clause, err := database.ForeignKeyClause(d, fk)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ALTER TABLE %s ADD %s", d.QuoteIdent(fk.Table), clause), nil
}

func (d Dialect) alterType(table, column, typ string) string {
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s",
		d.QuoteIdent(table), d.QuoteIdent(column), typ)
}
