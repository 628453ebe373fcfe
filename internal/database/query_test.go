package database

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/koustreak/schemastore/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backtick quotes like MySQL and uses ? placeholders.
type backtick struct{}

func (backtick) QuoteIdent(n string) string { return "`" + strings.ReplaceAll(n, "`", "``") + "`" }
func (backtick) Placeholder(int) string     { return "?" }

// dollar quotes like Postgres and uses $n placeholders.
type dollar struct{}

func (dollar) QuoteIdent(n string) string { return `"` + strings.ReplaceAll(n, `"`, `""`) + `"` }
func (dollar) Placeholder(n int) string   { return fmt.Sprintf("$%d", n) }

func TestCreateTable_KeepsColumnOrder(t *testing.T) {
	sql, err := CreateTable(backtick{}, "users", Columns(
		"name", "VARCHAR(50)",
		"id", "INT PRIMARY KEY",
		"age", "INT",
	))
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE `users` (`name` VARCHAR(50), `id` INT PRIMARY KEY, `age` INT)", sql)
}

func TestCreateTable_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cols ColumnSpec
	}{
		{name: "no columns", cols: nil},
		{name: "empty definition", cols: ColumnSpec{{Name: "id", Definition: " "}}},
		{name: "empty name", cols: ColumnSpec{{Definition: "INT"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateTable(backtick{}, "users", tt.cols)
			assert.True(t, errs.IsInvalidInput(err))
		})
	}
}

func TestColumns_DropsDanglingName(t *testing.T) {
	spec := Columns("id", "INT", "orphan")
	assert.Equal(t, ColumnSpec{{Name: "id", Definition: "INT"}}, spec)
}

func TestQuoteIdent_EscapesQuotes(t *testing.T) {
	sql := DropTable(backtick{}, "we`ird")
	assert.Equal(t, "DROP TABLE IF EXISTS `we``ird`", sql)
}

func TestInsert_BindsEveryValue(t *testing.T) {
	st, err := Insert(backtick{}, "users", RowData{"name": "O'Brien", "id": 1, "note": nil})
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO `users` (`id`, `name`, `note`) VALUES (?, ?, ?)", st.SQL)
	assert.Equal(t, []any{1, "O'Brien", nil}, st.Args)
	assert.NotContains(t, st.SQL, "O'Brien")
}

func TestInsert_Postgres(t *testing.T) {
	st, err := Insert(dollar{}, "users", RowData{"id": 1, "name": "Ann"})
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users" ("id", "name") VALUES ($1, $2)`, st.SQL)
}

func TestInsert_RejectsUnsupportedValues(t *testing.T) {
	_, err := Insert(backtick{}, "users", RowData{"tags": []string{"a"}})
	assert.True(t, errs.IsInvalidInput(err))

	_, err = Insert(backtick{}, "users", RowData{})
	assert.True(t, errs.IsInvalidInput(err))

	_, err = Insert(backtick{}, "users", RowData{"at": time.Unix(0, 0), "ok": true, "f": 1.5})
	assert.NoError(t, err)
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name     string
		q        Quoter
		columns  []string
		where    string
		args     []any
		orderBy  string
		limit    int
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "all columns unbounded",
			q:        backtick{},
			wantSQL:  "SELECT * FROM `users`",
			wantArgs: []any{},
		},
		{
			name:     "columns where order limit",
			q:        backtick{},
			columns:  []string{"id", "name"},
			where:    "age > ?",
			args:     []any{30},
			orderBy:  "id DESC",
			limit:    10,
			wantSQL:  "SELECT `id`, `name` FROM `users` WHERE age > ? ORDER BY id DESC LIMIT ?",
			wantArgs: []any{30, 10},
		},
		{
			name:     "negative limit is unbounded",
			q:        backtick{},
			limit:    -1,
			wantSQL:  "SELECT * FROM `users`",
			wantArgs: []any{},
		},
		{
			name:     "postgres numbering continues after where args",
			q:        dollar{},
			columns:  []string{"id"},
			where:    "name = $1",
			args:     []any{"Ann"},
			limit:    5,
			wantSQL:  `SELECT "id" FROM "users" WHERE name = $1 LIMIT $2`,
			wantArgs: []any{"Ann", 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Select(tt.q, "users", tt.columns, tt.where, tt.args, tt.orderBy, tt.limit)
			assert.Equal(t, tt.wantSQL, st.SQL)
			assert.Equal(t, tt.wantArgs, st.Args)
		})
	}
}

func TestUpdate(t *testing.T) {
	st, err := Update(backtick{}, "users", RowData{"name": "Bo", "age": 4}, "id = ?", []any{7})
	require.NoError(t, err)
	assert.Equal(t, "UPDATE `users` SET `age` = ?, `name` = ? WHERE id = ?", st.SQL)
	assert.Equal(t, []any{4, "Bo", 7}, st.Args)

	st, err = Update(dollar{}, "users", RowData{"name": "Bo", "age": 4}, "id = $1", []any{7})
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "users" SET "age" = $2, "name" = $3 WHERE id = $1`, st.SQL)
	assert.Equal(t, []any{7, 4, "Bo"}, st.Args)

	st, err = Update(backtick{}, "users", RowData{"active": false}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE `users` SET `active` = ?", st.SQL)

	_, err = Update(backtick{}, "users", nil, "id = 1", nil)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestDelete(t *testing.T) {
	st := Delete(backtick{}, "users", "id = ?", []any{3})
	assert.Equal(t, "DELETE FROM `users` WHERE id = ?", st.SQL)
	assert.Equal(t, []any{3}, st.Args)

	st = Delete(backtick{}, "users", "  ", nil)
	assert.Equal(t, "DELETE FROM `users`", st.SQL)
}

func TestForeignKeyClause(t *testing.T) {
	fk := ForeignKey{
		Table: "orders", Column: "user_id",
		RefTable: "users", RefColumn: "id",
	}

	clause, err := ForeignKeyClause(backtick{}, fk)
	require.NoError(t, err)
	assert.Equal(t, "FOREIGN KEY (`user_id`) REFERENCES `users` (`id`)", clause)

	fk.Name = "fk_orders_user"
	fk.OnDelete = "cascade"
	fk.OnUpdate = "set  null"
	clause, err = ForeignKeyClause(backtick{}, fk)
	require.NoError(t, err)
	assert.Equal(t,
		"CONSTRAINT `fk_orders_user` FOREIGN KEY (`user_id`) REFERENCES `users` (`id`) ON DELETE CASCADE ON UPDATE SET NULL",
		clause)

	fk.OnDelete = "CASCADE; DROP TABLE users"
	_, err = ForeignKeyClause(backtick{}, fk)
	assert.True(t, errs.IsInvalidInput(err))
}
