package database

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/koustreak/schemastore/internal/errs"
)

// ColumnDef is one column of a CREATE TABLE: a name and its raw type/definition.
type ColumnDef struct {
	Name       string `json:"name" yaml:"name"`
	Definition string `json:"definition" yaml:"definition"`
}

// ColumnSpec is an ordered column list; CREATE TABLE keeps this order.
type ColumnSpec []ColumnDef

// Columns builds a ColumnSpec from name/definition pairs:
//
//	Columns("id", "INT PRIMARY KEY", "name", "VARCHAR(50)")
//
// A trailing name without a definition is dropped.
func Columns(pairs ...string) ColumnSpec {
	spec := make(ColumnSpec, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		spec = append(spec, ColumnDef{Name: pairs[i], Definition: pairs[i+1]})
	}
	return spec
}

// RowData maps column names to values for inserts, updates and results.
type RowData map[string]any

// Keys returns the row's column names, sorted.
func (r RowData) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Statement is SQL text plus its bound arguments.
// Values are never interpolated into SQL; they are always in Args.
type Statement struct {
	SQL  string
	Args []any
}

// referentialActions is the allowlist for ON DELETE / ON UPDATE. The
// clause cannot be parameterized, so anything else is rejected.
var referentialActions = map[string]bool{
	"CASCADE":     true,
	"SET NULL":    true,
	"SET DEFAULT": true,
	"RESTRICT":    true,
	"NO ACTION":   true,
}

// CreateTable builds CREATE TABLE with columns in spec order.
func CreateTable(q Quoter, table string, cols ColumnSpec) (string, error) {
	if len(cols) == 0 {
		return "", errs.Newf(errs.ErrKindInvalidInput, "table %s needs at least one column", table)
	}
	parts := make([]string, len(cols))
	for i, c := range cols {
		if c.Name == "" || strings.TrimSpace(c.Definition) == "" {
			return "", errs.Newf(errs.ErrKindInvalidInput, "column %d of %s needs a name and a definition", i+1, table)
		}
		parts[i] = q.QuoteIdent(c.Name) + " " + c.Definition
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", q.QuoteIdent(table), strings.Join(parts, ", ")), nil
}

// DropTable builds a conditional DROP TABLE.
func DropTable(q Quoter, table string) string {
	return "DROP TABLE IF EXISTS " + q.QuoteIdent(table)
}

// Insert builds a parameterized INSERT. Columns are emitted in sorted order.
func Insert(q Quoter, table string, row RowData) (Statement, error) {
	if len(row) == 0 {
		return Statement{}, errs.Newf(errs.ErrKindInvalidInput, "insert into %s needs at least one value", table)
	}
	keys := row.Keys()
	cols := make([]string, len(keys))
	marks := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		if err := checkValue(k, row[k]); err != nil {
			return Statement{}, err
		}
		cols[i] = q.QuoteIdent(k)
		marks[i] = q.Placeholder(i + 1)
		args[i] = row[k]
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		q.QuoteIdent(table), strings.Join(cols, ", "), strings.Join(marks, ", "))
	return Statement{SQL: sql, Args: args}, nil
}

// Select builds a SELECT. where and orderBy are raw fragments written by
// the caller; whereArgs bind placeholders inside where. limit <= 0 means
// no LIMIT, otherwise the limit is bound as the last argument.
func Select(q Quoter, table string, columns []string, where string, whereArgs []any, orderBy string, limit int) Statement {
	cols := "*"
	if len(columns) > 0 {
		quoted := make([]string, len(columns))
		for i, c := range columns {
			quoted[i] = q.QuoteIdent(c)
		}
		cols = strings.Join(quoted, ", ")
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(cols)
	sb.WriteString(" FROM ")
	sb.WriteString(q.QuoteIdent(table))

	args := append([]any{}, whereArgs...)
	if strings.TrimSpace(where) != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}
	if strings.TrimSpace(orderBy) != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(orderBy)
	}
	if limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(q.Placeholder(len(args) + 1))
		args = append(args, limit)
	}
	return Statement{SQL: sb.String(), Args: args}
}

// Update builds a parameterized UPDATE … SET. An empty where updates every
// row; callers own that decision.
//
// With numbered placeholders ($n) the where arguments take $1..$k so the
// caller can write where without knowing the SET width; the SET values
// follow. With positional placeholders (?) arguments follow text order.
func Update(q Quoter, table string, row RowData, where string, whereArgs []any) (Statement, error) {
	if len(row) == 0 {
		return Statement{}, errs.Newf(errs.ErrKindInvalidInput, "update of %s needs at least one value", table)
	}

	offset := 0
	if numbered(q) {
		offset = len(whereArgs)
	}

	keys := row.Keys()
	sets := make([]string, len(keys))
	vals := make([]any, len(keys))
	for i, k := range keys {
		if err := checkValue(k, row[k]); err != nil {
			return Statement{}, err
		}
		sets[i] = q.QuoteIdent(k) + " = " + q.Placeholder(offset+i+1)
		vals[i] = row[k]
	}

	sql := fmt.Sprintf("UPDATE %s SET %s", q.QuoteIdent(table), strings.Join(sets, ", "))
	if strings.TrimSpace(where) != "" {
		sql += " WHERE " + where
	}

	var args []any
	if numbered(q) {
		args = append(append(args, whereArgs...), vals...)
	} else {
		args = append(append(args, vals...), whereArgs...)
	}
	return Statement{SQL: sql, Args: args}, nil
}

// Delete builds a DELETE. An empty where deletes every row.
func Delete(q Quoter, table, where string, whereArgs []any) Statement {
	sql := "DELETE FROM " + q.QuoteIdent(table)
	if strings.TrimSpace(where) != "" {
		sql += " WHERE " + where
	}
	return Statement{SQL: sql, Args: append([]any{}, whereArgs...)}
}

// ReferentialAction normalises an ON DELETE / ON UPDATE action.
// Empty input yields an empty action.
func ReferentialAction(action string) (string, error) {
	a := strings.ToUpper(strings.Join(strings.Fields(action), " "))
	if a == "" {
		return "", nil
	}
	if !referentialActions[a] {
		return "", errs.Newf(errs.ErrKindInvalidInput, "unsupported referential action %q", action)
	}
	return a, nil
}

// ForeignKeyClause renders the shared part of an ADD FOREIGN KEY:
// [CONSTRAINT name] FOREIGN KEY (col) REFERENCES ref (refcol) [ON …].
func ForeignKeyClause(q Quoter, fk ForeignKey) (string, error) {
	onDelete, err := ReferentialAction(fk.OnDelete)
	if err != nil {
		return "", err
	}
	onUpdate, err := ReferentialAction(fk.OnUpdate)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if fk.Name != "" {
		sb.WriteString("CONSTRAINT ")
		sb.WriteString(q.QuoteIdent(fk.Name))
		sb.WriteString(" ")
	}
	fmt.Fprintf(&sb, "FOREIGN KEY (%s) REFERENCES %s (%s)",
		q.QuoteIdent(fk.Column), q.QuoteIdent(fk.RefTable), q.QuoteIdent(fk.RefColumn))
	if onDelete != "" {
		sb.WriteString(" ON DELETE " + onDelete)
	}
	if onUpdate != "" {
		sb.WriteString(" ON UPDATE " + onUpdate)
	}
	return sb.String(), nil
}

// numbered reports whether q uses indexed placeholders such as $1, $2.
func numbered(q Quoter) bool {
	return q.Placeholder(1) != q.Placeholder(2)
}

// checkValue accepts the value types every supported driver binds.
func checkValue(column string, v any) error {
	switch v.(type) {
	case nil, string, []byte, bool, time.Time,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return nil
	default:
		return errs.Newf(errs.ErrKindInvalidInput, "column %s: unsupported value type %T", column, v)
	}
}
