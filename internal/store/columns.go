package store

import (
	"context"
	"fmt"
)

// requireColumn is the two-level guard: table, then column. It returns a
// SchemaMismatch result when either is missing.
func (s *Store) requireColumn(ctx context.Context, table, column string) (*Result, error) {
	exists, err := s.tableExists(ctx, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		r := outcome(SchemaMismatch, "Table %s does not exist", table)
		return &r, nil
	}

	exists, err = s.columnExists(ctx, table, column)
	if err != nil {
		return nil, err
	}
	if !exists {
		r := outcome(SchemaMismatch, "Column %s does not exist in table %s", column, table)
		return &r, nil
	}
	return nil, nil
}

// execAll runs statements in order, stopping at the first failure.
func (s *Store) execAll(ctx context.Context, op string, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := s.exec(ctx, op, stmt); err != nil {
			return err
		}
	}
	return nil
}

// RenameColumn renames oldName to newName and applies definition in the
// same step. MySQL requires the full definition even for a pure rename.
func (s *Store) RenameColumn(ctx context.Context, table, oldName, newName, definition string) (Result, error) {
	if err := s.connected(); err != nil {
		return failure(err)
	}
	stmts, err := s.dialect.RenameColumnSQL(table, oldName, newName, definition)
	if err != nil {
		return failure(err)
	}

	miss, err := s.requireColumn(ctx, table, oldName)
	if err != nil {
		return failure(err)
	}
	if miss != nil {
		return *miss, nil
	}

	if err := s.execAll(ctx, "rename column", stmts); err != nil {
		return failure(err)
	}
	return success("Column %s renamed to %s in table %s", oldName, newName, table), nil
}

// ModifyColumn changes column's definition in place.
func (s *Store) ModifyColumn(ctx context.Context, table, column, definition string) (Result, error) {
	if err := s.connected(); err != nil {
		return failure(err)
	}
	stmts, err := s.dialect.ModifyColumnSQL(table, column, definition)
	if err != nil {
		return failure(err)
	}

	miss, err := s.requireColumn(ctx, table, column)
	if err != nil {
		return failure(err)
	}
	if miss != nil {
		return *miss, nil
	}

	if err := s.execAll(ctx, "modify column", stmts); err != nil {
		return failure(err)
	}
	return success("Column %s modified in table %s", column, table), nil
}

// AddColumn adds column to table. position is "" (append), "FIRST" or
// "AFTER <column>"; only MySQL supports placement. An existing column is
// reported as AlreadyExists.
func (s *Store) AddColumn(ctx context.Context, table, column, definition, position string) (Result, error) {
	if err := s.connected(); err != nil {
		return failure(err)
	}
	stmt, err := s.dialect.AddColumnSQL(table, column, definition, position)
	if err != nil {
		return failure(err)
	}

	exists, err := s.tableExists(ctx, table)
	if err != nil {
		return failure(err)
	}
	if !exists {
		return outcome(SchemaMismatch, "Table %s does not exist", table), nil
	}
	present, err := s.columnExists(ctx, table, column)
	if err != nil {
		return failure(err)
	}
	if present {
		return outcome(AlreadyExists, "Column %s already exists in table %s", column, table), nil
	}

	if _, err := s.exec(ctx, "add column", stmt); err != nil {
		return failure(err)
	}
	return success("Column %s added to table %s", column, table), nil
}

// DropColumn removes column from table.
func (s *Store) DropColumn(ctx context.Context, table, column string) (Result, error) {
	if err := s.connected(); err != nil {
		return failure(err)
	}

	miss, err := s.requireColumn(ctx, table, column)
	if err != nil {
		return failure(err)
	}
	if miss != nil {
		return *miss, nil
	}

	if _, err := s.exec(ctx, "drop column", s.dialect.DropColumnSQL(table, column)); err != nil {
		return failure(err)
	}
	return success("Column %s dropped from table %s", column, table), nil
}

// AddForeignKey adds a foreign key from fk.Table.fk.Column to
// fk.RefTable.fk.RefColumn after checking all four exist. Without a
// constraint name the database picks one.
func (s *Store) AddForeignKey(ctx context.Context, fk ForeignKey) (Result, error) {
	if err := s.connected(); err != nil {
		return failure(err)
	}
	stmt, err := s.dialect.AddForeignKeySQL(fk)
	if err != nil {
		return failure(err)
	}

	for _, ref := range [][2]string{{fk.Table, fk.Column}, {fk.RefTable, fk.RefColumn}} {
		miss, err := s.requireColumn(ctx, ref[0], ref[1])
		if err != nil {
			return failure(err)
		}
		if miss != nil {
			return *miss, nil
		}
	}

	if _, err := s.exec(ctx, "add foreign key", stmt); err != nil {
		return failure(err)
	}
	return success("Foreign key %s added to table %s", fkLabel(fk), fk.Table), nil
}

func fkLabel(fk ForeignKey) string {
	if fk.Name != "" {
		return fk.Name
	}
	return fmt.Sprintf("%s(%s)->%s(%s)", fk.Table, fk.Column, fk.RefTable, fk.RefColumn)
}
