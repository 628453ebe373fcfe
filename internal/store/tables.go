package store

import (
	"context"

	"github.com/koustreak/schemastore/internal/database"
)

// CreateTable creates table with columns in the given order. An existing
// table is left as it is and reported as AlreadyExists.
func (s *Store) CreateTable(ctx context.Context, table string, columns ColumnSpec) (Result, error) {
	if err := s.connected(); err != nil {
		return failure(err)
	}
	stmt, err := database.CreateTable(s.dialect, table, columns)
	if err != nil {
		return failure(err)
	}

	exists, err := s.tableExists(ctx, table)
	if err != nil {
		return failure(err)
	}
	if exists {
		return outcome(AlreadyExists, "Table %s already exists", table), nil
	}

	if _, err := s.exec(ctx, "create table", stmt); err != nil {
		return failure(err)
	}
	return success("Table %s created", table), nil
}

// DropTable drops table if it exists. A missing table is not an error.
func (s *Store) DropTable(ctx context.Context, table string) (Result, error) {
	if err := s.connected(); err != nil {
		return failure(err)
	}
	if _, err := s.exec(ctx, "drop table", database.DropTable(s.dialect, table)); err != nil {
		return failure(err)
	}
	return success("Table %s dropped", table), nil
}

// RenameTable renames oldName to newName. A missing oldName is NotFound;
// an existing newName is AlreadyExists.
func (s *Store) RenameTable(ctx context.Context, oldName, newName string) (Result, error) {
	if err := s.connected(); err != nil {
		return failure(err)
	}

	exists, err := s.tableExists(ctx, oldName)
	if err != nil {
		return failure(err)
	}
	if !exists {
		return outcome(NotFound, "Table %s does not exist", oldName), nil
	}

	taken, err := s.tableExists(ctx, newName)
	if err != nil {
		return failure(err)
	}
	if taken {
		return outcome(AlreadyExists, "Table %s already exists", newName), nil
	}

	if _, err := s.exec(ctx, "rename table", s.dialect.RenameTableSQL(oldName, newName)); err != nil {
		return failure(err)
	}
	return success("Table %s renamed to %s", oldName, newName), nil
}

// ListTables returns the names of all tables in the database, sorted.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	if err := s.connected(); err != nil {
		return nil, err
	}
	ctx, cancel := s.roundTrip(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, s.dialect.ListTablesQuery())
	if err != nil {
		return nil, s.dialect.MapError(err, "list tables failed")
	}
	defer rows.Close()

	tables := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, s.dialect.MapError(err, "failed to scan table name")
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, s.dialect.MapError(err, "error iterating tables")
	}
	return tables, nil
}

// DescribeTable returns table's columns in ordinal order, or NotFound.
func (s *Store) DescribeTable(ctx context.Context, table string) ([]ColumnInfo, Result, error) {
	if err := s.connected(); err != nil {
		res, err := failure(err)
		return nil, res, err
	}

	exists, err := s.tableExists(ctx, table)
	if err != nil {
		res, err := failure(err)
		return nil, res, err
	}
	if !exists {
		return []ColumnInfo{}, outcome(NotFound, "Table %s does not exist", table), nil
	}

	ctx, cancel := s.roundTrip(ctx)
	defer cancel()

	q, args := s.dialect.DescribeTableQuery(table)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		res, err := failure(s.dialect.MapError(err, "describe table failed"))
		return nil, res, err
	}
	defer rows.Close()

	cols := make([]ColumnInfo, 0)
	for rows.Next() {
		var c ColumnInfo
		if err := rows.Scan(&c.Name, &c.DataType, &c.Nullable); err != nil {
			res, err := failure(s.dialect.MapError(err, "failed to scan column info"))
			return nil, res, err
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		res, err := failure(s.dialect.MapError(err, "error iterating columns"))
		return nil, res, err
	}
	return cols, success("Table %s has %d columns", table, len(cols)), nil
}
