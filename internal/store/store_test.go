package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/koustreak/schemastore/internal/database"
	"github.com/koustreak/schemastore/internal/database/sqlite"
	"github.com/koustreak/schemastore/internal/errs"
	"github.com/koustreak/schemastore/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig(t *testing.T) database.Config {
	t.Helper()
	return database.Config{
		Driver:   database.DriverSQLite,
		Database: filepath.Join(t.TempDir(), "app.db"),
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(context.Background(), sqliteConfig(t))
	require.NoError(t, s.Err())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func usersTable(t *testing.T, s *Store) {
	t.Helper()
	res, err := s.CreateTable(context.Background(), "users",
		database.Columns("id", "INTEGER PRIMARY KEY", "name", "TEXT NOT NULL", "age", "INTEGER"))
	require.NoError(t, err)
	require.Equal(t, Success, res.Kind)
}

func TestNew_CreatesMissingDatabase(t *testing.T) {
	cfg := sqliteConfig(t)
	_, err := os.Stat(cfg.Database)
	require.True(t, os.IsNotExist(err))

	s := New(context.Background(), cfg)
	defer s.Close()

	require.NoError(t, s.Err())
	assert.Equal(t, StateConnected, s.State())
	assert.Equal(t, cfg.Database, s.Database())
	assert.NoError(t, s.Ping(context.Background()))

	_, err = os.Stat(cfg.Database)
	assert.NoError(t, err)
}

func TestNew_ConnectionFailure(t *testing.T) {
	cfg := database.Config{
		Driver:   database.DriverSQLite,
		Database: filepath.Join(t.TempDir(), "missing", "dir", "app.db"),
	}

	s := New(context.Background(), cfg)
	assert.Equal(t, StateDisconnected, s.State())
	require.Error(t, s.Err())
	assert.True(t, errs.IsConnectionFailed(s.Err()))
	assert.NotContains(t, s.Err().Error(), "no such file")

	res, err := s.CreateTable(context.Background(), "users", database.Columns("id", "INTEGER"))
	assert.Equal(t, NotConnected, res.Kind)
	assert.True(t, errs.IsNotConnected(err))
}

func TestNew_ConnectionFailureLogging(t *testing.T) {
	cfg := database.Config{
		Driver:   database.DriverSQLite,
		Database: filepath.Join(t.TempDir(), "missing", "dir", "app.db"),
	}
	bufLogger := func(level string) (*logger.Logger, *bytes.Buffer) {
		var buf bytes.Buffer
		return logger.New(&logger.Config{Level: level, Format: "json", Output: &buf}), &buf
	}

	log, buf := bufLogger("info")
	s := New(context.Background(), cfg, WithLogger(log))
	require.Equal(t, StateDisconnected, s.State())
	assert.Contains(t, buf.String(), "connect failed, creating database")
	assert.Contains(t, buf.String(), "store disconnected")
	assert.NotContains(t, buf.String(), "no such file")

	log, buf = bufLogger("debug")
	New(context.Background(), cfg, WithLogger(log))
	assert.Contains(t, buf.String(), "no such file")
}

type noCountResult struct{}

func (noCountResult) LastInsertId() (int64, error) { return 0, nil }
func (noCountResult) RowsAffected() (int64, error) { return 0, errors.New("no count for ddl") }

func TestRowsAffected_Unavailable(t *testing.T) {
	var buf bytes.Buffer
	s := &Store{log: logger.New(&logger.Config{Level: "debug", Format: "json", Output: &buf})}

	assert.Equal(t, int64(0), s.rowsAffected("create table", noCountResult{}))
	assert.Contains(t, buf.String(), "rows affected unavailable")
	assert.Contains(t, buf.String(), "no count for ddl")
}

func TestNew_UnknownDriver(t *testing.T) {
	s := New(context.Background(), database.Config{Driver: "oracle", Database: "app"})
	assert.Equal(t, StateDisconnected, s.State())
	assert.True(t, errs.IsInvalidInput(s.Err()))
	assert.Nil(t, s.Dialect())

	_, err := s.ListTables(context.Background())
	assert.True(t, errs.IsNotConnected(err))
}

func TestClose(t *testing.T) {
	s := New(context.Background(), sqliteConfig(t))
	require.NoError(t, s.Err())

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, StateDisconnected, s.State())
	assert.True(t, errs.IsNotConnected(s.Err()))

	rows, res, err := s.SelectRows(context.Background(), "users", nil, SelectOptions{})
	assert.Nil(t, rows)
	assert.Equal(t, NotConnected, res.Kind)
	assert.True(t, errs.IsNotConnected(err))
}

func TestCreateTable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	usersTable(t, s)

	res, err := s.CreateTable(ctx, "users", database.Columns("id", "INTEGER"))
	require.NoError(t, err)
	assert.Equal(t, AlreadyExists, res.Kind)

	cols, res, err := s.DescribeTable(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, Success, res.Kind)
	require.Len(t, cols, 3)
	assert.Equal(t, "id", cols[0].Name)
	assert.Equal(t, "name", cols[1].Name)
	assert.False(t, cols[1].Nullable)
	assert.True(t, cols[2].Nullable)
}

func TestCreateTable_InvalidInput(t *testing.T) {
	s := newTestStore(t)

	res, err := s.CreateTable(context.Background(), "empty", nil)
	assert.Equal(t, InvalidInput, res.Kind)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestDropTable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	usersTable(t, s)

	for i := 0; i < 2; i++ {
		res, err := s.DropTable(ctx, "users")
		require.NoError(t, err)
		assert.Equal(t, Success, res.Kind)
	}

	tables, err := s.ListTables(ctx)
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestRenameTable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	usersTable(t, s)

	res, err := s.RenameTable(ctx, "ghosts", "spirits")
	require.NoError(t, err)
	assert.Equal(t, NotFound, res.Kind)

	_, err = s.CreateTable(ctx, "people", database.Columns("id", "INTEGER"))
	require.NoError(t, err)
	res, err = s.RenameTable(ctx, "users", "people")
	require.NoError(t, err)
	assert.Equal(t, AlreadyExists, res.Kind)

	res, err = s.RenameTable(ctx, "users", "members")
	require.NoError(t, err)
	assert.Equal(t, Success, res.Kind)

	tables, err := s.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"members", "people"}, tables)
}

func TestDescribeTable_NotFound(t *testing.T) {
	s := newTestStore(t)

	cols, res, err := s.DescribeTable(context.Background(), "ghosts")
	require.NoError(t, err)
	assert.Equal(t, NotFound, res.Kind)
	assert.NotNil(t, cols)
	assert.Empty(t, cols)
}

func TestColumnGuards(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	usersTable(t, s)

	tests := []struct {
		name string
		run  func() (Result, error)
	}{
		{"rename in missing table", func() (Result, error) {
			return s.RenameColumn(ctx, "ghosts", "name", "full_name", "")
		}},
		{"rename missing column", func() (Result, error) {
			return s.RenameColumn(ctx, "users", "nickname", "alias", "")
		}},
		{"drop missing column", func() (Result, error) {
			return s.DropColumn(ctx, "users", "nickname")
		}},
		{"drop in missing table", func() (Result, error) {
			return s.DropColumn(ctx, "ghosts", "name")
		}},
		{"add to missing table", func() (Result, error) {
			return s.AddColumn(ctx, "ghosts", "email", "TEXT", "")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.run()
			require.NoError(t, err)
			assert.Equal(t, SchemaMismatch, res.Kind)
		})
	}
}

func TestColumnLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	usersTable(t, s)

	res, err := s.AddColumn(ctx, "users", "email", "TEXT", "")
	require.NoError(t, err)
	assert.Equal(t, Success, res.Kind)

	res, err = s.AddColumn(ctx, "users", "email", "TEXT", "")
	require.NoError(t, err)
	assert.Equal(t, AlreadyExists, res.Kind)

	res, err = s.RenameColumn(ctx, "users", "email", "contact", "")
	require.NoError(t, err)
	assert.Equal(t, Success, res.Kind)

	res, err = s.DropColumn(ctx, "users", "contact")
	require.NoError(t, err)
	assert.Equal(t, Success, res.Kind)

	cols, _, err := s.DescribeTable(ctx, "users")
	require.NoError(t, err)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"id", "name", "age"}, names)
}

func TestUnsupportedOperations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	usersTable(t, s)

	res, err := s.ModifyColumn(ctx, "users", "name", "VARCHAR(100)")
	assert.Equal(t, Unsupported, res.Kind)
	assert.True(t, errs.IsUnsupported(err))

	res, err = s.AddColumn(ctx, "users", "email", "TEXT", "FIRST")
	assert.Equal(t, Unsupported, res.Kind)
	assert.True(t, errs.IsUnsupported(err))

	res, err = s.AddForeignKey(ctx, ForeignKey{
		Table: "users", Column: "id", RefTable: "users", RefColumn: "id",
	})
	assert.Equal(t, Unsupported, res.Kind)
	assert.True(t, errs.IsUnsupported(err))
}

// alterDialect is SQLite with MODIFY COLUMN and ADD FOREIGN KEY turned
// into no-ops, so the guards in front of them can run.
type alterDialect struct {
	sqlite.Dialect
}

func (alterDialect) ModifyColumnSQL(string, string, string) ([]string, error) {
	return []string{"SELECT 1"}, nil
}

func (alterDialect) AddForeignKeySQL(database.ForeignKey) (string, error) {
	return "SELECT 1", nil
}

func TestAlterGuards(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, sqliteConfig(t), WithDialect(alterDialect{}))
	require.NoError(t, s.Err())
	defer s.Close()
	usersTable(t, s)

	_, err := s.CreateTable(ctx, "orders", database.Columns("id", "INTEGER PRIMARY KEY", "user_id", "INTEGER"))
	require.NoError(t, err)

	tests := []struct {
		name string
		run  func() (Result, error)
		want Kind
	}{
		{"modify missing column", func() (Result, error) {
			return s.ModifyColumn(ctx, "users", "nickname", "TEXT")
		}, SchemaMismatch},
		{"modify in missing table", func() (Result, error) {
			return s.ModifyColumn(ctx, "ghosts", "name", "TEXT")
		}, SchemaMismatch},
		{"modify existing column", func() (Result, error) {
			return s.ModifyColumn(ctx, "users", "name", "TEXT")
		}, Success},
		{"fk missing table", func() (Result, error) {
			return s.AddForeignKey(ctx, ForeignKey{Table: "ghosts", Column: "user_id", RefTable: "users", RefColumn: "id"})
		}, SchemaMismatch},
		{"fk missing column", func() (Result, error) {
			return s.AddForeignKey(ctx, ForeignKey{Table: "orders", Column: "owner_id", RefTable: "users", RefColumn: "id"})
		}, SchemaMismatch},
		{"fk missing referenced table", func() (Result, error) {
			return s.AddForeignKey(ctx, ForeignKey{Table: "orders", Column: "user_id", RefTable: "accounts", RefColumn: "id"})
		}, SchemaMismatch},
		{"fk missing referenced column", func() (Result, error) {
			return s.AddForeignKey(ctx, ForeignKey{Table: "orders", Column: "user_id", RefTable: "users", RefColumn: "uid"})
		}, SchemaMismatch},
		{"fk all present", func() (Result, error) {
			return s.AddForeignKey(ctx, ForeignKey{Table: "orders", Column: "user_id", RefTable: "users", RefColumn: "id"})
		}, Success},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.run()
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Kind)
		})
	}
}

func TestNamesAreCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	usersTable(t, s)

	res, err := s.CreateTable(ctx, "USERS", database.Columns("id", "INTEGER"))
	require.NoError(t, err)
	assert.Equal(t, AlreadyExists, res.Kind)

	res, err = s.AddColumn(ctx, "users", "NAME", "TEXT", "")
	require.NoError(t, err)
	assert.Equal(t, AlreadyExists, res.Kind)

	res, err = s.InsertRow(ctx, "Users", RowData{"id": 1, "name": "Ann"})
	require.NoError(t, err)
	assert.Equal(t, Success, res.Kind)

	res, err = s.DropColumn(ctx, "Users", "AGE")
	require.NoError(t, err)
	assert.Equal(t, Success, res.Kind)

	rows, res, err := s.SelectRows(ctx, "users", []string{"id", "name"}, SelectOptions{})
	require.NoError(t, err)
	assert.Equal(t, Success, res.Kind)
	assert.Equal(t, []RowData{{"id": int64(1), "name": "Ann"}}, rows)
}

func TestInsertAndSelect(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	usersTable(t, s)

	res, err := s.InsertRow(ctx, "users", RowData{"id": 1, "name": "Alice", "age": 30})
	require.NoError(t, err)
	assert.Equal(t, Success, res.Kind)
	assert.Equal(t, int64(1), res.RowsAffected)

	res, err = s.InsertRow(ctx, "users", RowData{"id": 2, "name": "O'Brien", "age": nil})
	require.NoError(t, err)
	assert.Equal(t, Success, res.Kind)

	rows, res, err := s.SelectRows(ctx, "users", nil, SelectOptions{OrderBy: "id"})
	require.NoError(t, err)
	assert.Equal(t, Success, res.Kind)
	require.Len(t, rows, 2)
	assert.Equal(t, RowData{"id": int64(1), "name": "Alice", "age": int64(30)}, rows[0])
	assert.Equal(t, "O'Brien", rows[1]["name"])
	assert.Nil(t, rows[1]["age"])

	rows, _, err = s.SelectRows(ctx, "users", []string{"name"}, SelectOptions{
		Where: "name = ?",
		Args:  []any{"O'Brien"},
	})
	require.NoError(t, err)
	assert.Equal(t, []RowData{{"name": "O'Brien"}}, rows)

	rows, _, err = s.SelectRows(ctx, "users", []string{"id"}, SelectOptions{OrderBy: "id DESC", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []RowData{{"id": int64(2)}}, rows)
}

func TestSelectRows_Empty(t *testing.T) {
	s := newTestStore(t)
	usersTable(t, s)

	rows, res, err := s.SelectRows(context.Background(), "users", nil, SelectOptions{})
	require.NoError(t, err)
	assert.Equal(t, Success, res.Kind)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestDataOperations_MissingTable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	res, err := s.InsertRow(ctx, "ghosts", RowData{"id": 1})
	require.NoError(t, err)
	assert.Equal(t, NotFound, res.Kind)

	rows, res, err := s.SelectRows(ctx, "ghosts", nil, SelectOptions{})
	require.NoError(t, err)
	assert.Equal(t, NotFound, res.Kind)
	assert.Empty(t, rows)

	res, err = s.UpdateRows(ctx, "ghosts", RowData{"id": 2}, "")
	require.NoError(t, err)
	assert.Equal(t, NotFound, res.Kind)

	res, err = s.DeleteRows(ctx, "ghosts", "")
	require.NoError(t, err)
	assert.Equal(t, NotFound, res.Kind)
}

func TestInsertRow_InvalidInput(t *testing.T) {
	s := newTestStore(t)
	usersTable(t, s)

	res, err := s.InsertRow(context.Background(), "users", RowData{})
	assert.Equal(t, InvalidInput, res.Kind)
	assert.True(t, errs.IsInvalidInput(err))

	res, err = s.InsertRow(context.Background(), "users", RowData{"id": struct{}{}})
	assert.Equal(t, InvalidInput, res.Kind)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestInsertRow_DriverError(t *testing.T) {
	s := newTestStore(t)
	usersTable(t, s)
	ctx := context.Background()

	_, err := s.InsertRow(ctx, "users", RowData{"id": 1, "name": "Alice"})
	require.NoError(t, err)

	res, err := s.InsertRow(ctx, "users", RowData{"id": 1, "name": "Bob"})
	assert.Equal(t, DriverError, res.Kind)
	assert.Error(t, err)
}

func TestUpdateAndDeleteRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	usersTable(t, s)

	for i, name := range []string{"Alice", "Bob", "Carol"} {
		_, err := s.InsertRow(ctx, "users", RowData{"id": i + 1, "name": name, "age": 20 + i})
		require.NoError(t, err)
	}

	res, err := s.UpdateRows(ctx, "users", RowData{"age": 99}, "name = ?", "Bob")
	require.NoError(t, err)
	assert.Equal(t, Success, res.Kind)
	assert.Equal(t, int64(1), res.RowsAffected)

	rows, _, err := s.SelectRows(ctx, "users", []string{"age"}, SelectOptions{Where: "id = ?", Args: []any{2}})
	require.NoError(t, err)
	assert.Equal(t, []RowData{{"age": int64(99)}}, rows)

	res, err = s.DeleteRows(ctx, "users", "age < ?", 25)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.RowsAffected)

	res, err = s.DeleteRows(ctx, "users", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)
}

func TestDropDatabase(t *testing.T) {
	cfg := sqliteConfig(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		s := New(ctx, cfg)
		require.NoError(t, s.Err())

		res, err := s.DropDatabase(ctx)
		require.NoError(t, err)
		assert.Equal(t, Success, res.Kind)
		assert.Equal(t, StateDisconnected, s.State())
		assert.True(t, errs.IsNotConnected(s.Err()))

		_, err = os.Stat(cfg.Database)
		assert.True(t, os.IsNotExist(err))
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "schema_mismatch", SchemaMismatch.String())
	text, err := NotFound.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "not_found", string(text))
	assert.Equal(t, "kind(42)", Kind(42).String())
}

func TestKindUnmarshalText(t *testing.T) {
	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("already_exists")))
	assert.Equal(t, AlreadyExists, k)
	assert.True(t, errs.IsInvalidInput(k.UnmarshalText([]byte("bogus"))))
}

func TestAppScenario(t *testing.T) {
	ctx := context.Background()
	cfg := database.Config{Driver: database.DriverSQLite, Database: filepath.Join(t.TempDir(), "app_test")}

	s := New(ctx, cfg)
	defer s.Close()
	require.Equal(t, StateConnected, s.State())

	res, err := s.CreateTable(ctx, "users", database.Columns("id", "INT PRIMARY KEY", "name", "VARCHAR(50)"))
	require.NoError(t, err)
	assert.Equal(t, Success, res.Kind)

	res, err = s.InsertRow(ctx, "users", RowData{"id": 1, "name": "Ann"})
	require.NoError(t, err)
	assert.Equal(t, Success, res.Kind)

	rows, _, err := s.SelectRows(ctx, "users", []string{"id", "name"}, SelectOptions{})
	require.NoError(t, err)
	assert.Equal(t, []RowData{{"id": int64(1), "name": "Ann"}}, rows)

	res, err = s.DropTable(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, Success, res.Kind)

	rows, res, err = s.SelectRows(ctx, "users", []string{"id"}, SelectOptions{})
	require.NoError(t, err)
	assert.Equal(t, NotFound, res.Kind)
	assert.Empty(t, rows)
}
