// Package mysql is the MySQL dialect for schemastore, on go-sql-driver/mysql.
//
// Importing the package registers the dialect:
//
//	import _ "github.com/koustreak/schemastore/internal/database/mysql"
package mysql

import (
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql" // register "mysql" driver
	"github.com/koustreak/schemastore/internal/database"
	"github.com/koustreak/schemastore/internal/errs"
)

// Dialect implements database.Dialect for MySQL.
type Dialect struct{}

func init() {
	database.Register(Dialect{})
}

func (Dialect) Driver() database.Driver { return database.DriverMySQL }

// QuoteIdent wraps a name in backticks, doubling embedded backticks.
func (Dialect) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (Dialect) Placeholder(int) string { return "?" }

func (Dialect) MapError(err error, msg string) *errs.Error { return mapError(err, msg) }

func (d Dialect) RenameTableSQL(oldName, newName string) string {
	return fmt.Sprintf("RENAME TABLE %s TO %s", d.QuoteIdent(oldName), d.QuoteIdent(newName))
}

// RenameColumnSQL uses CHANGE COLUMN, which renames and redefines in one
// statement; MySQL requires the full definition even for a pure rename.
func (d Dialect) RenameColumnSQL(table, oldName, newName, definition string) ([]string, error) {
	if err := requireDefinition(newName, definition); err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("ALTER TABLE %s CHANGE COLUMN %s %s %s",
		d.QuoteIdent(table), d.QuoteIdent(oldName), d.QuoteIdent(newName), definition)}, nil
}

func (d Dialect) ModifyColumnSQL(table, column, definition string) ([]string, error) {
	if err := requireDefinition(column, definition); err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s %s",
		d.QuoteIdent(table), d.QuoteIdent(column), definition)}, nil
}

// AddColumnSQL accepts position "" (append), "FIRST" or "AFTER <column>".
func (d Dialect) AddColumnSQL(table, column, definition, position string) (string, error) {
	if err := requireDefinition(column, definition); err != nil {
		return "", err
	}
	sql := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
		d.QuoteIdent(table), d.QuoteIdent(column), definition)

	fields := strings.Fields(position)
	switch {
	case len(fields) == 0:
		return sql, nil
	case len(fields) == 1 && strings.EqualFold(fields[0], "FIRST"):
		return sql + " FIRST", nil
	case len(fields) == 2 && strings.EqualFold(fields[0], "AFTER"):
		return sql + " AFTER " + d.QuoteIdent(fields[1]), nil
	default:
		return "", errs.Newf(errs.ErrKindInvalidInput, "invalid column position %q", position)
	}
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

func requireDefinition(column, definition string) error {
	if strings.TrimSpace(definition) == "" {
		return errs.Newf(errs.ErrKindInvalidInput, "column %s needs a definition", column)
	}
	return nil
}
