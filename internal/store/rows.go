package store

import (
	"context"

	"github.com/koustreak/schemastore/internal/database"
)

// SelectOptions narrows SelectRows.
//
// Where and OrderBy are raw SQL fragments inserted verbatim; Args bind any
// placeholders inside Where. Limit <= 0 means no limit.
type SelectOptions struct {
	Where   string
	Args    []any
	OrderBy string
	Limit   int
}

// InsertRow inserts row into table. Every value is bound as a parameter.
func (s *Store) InsertRow(ctx context.Context, table string, row RowData) (Result, error) {
	if err := s.connected(); err != nil {
		return failure(err)
	}
	stmt, err := database.Insert(s.dialect, table, row)
	if err != nil {
		return failure(err)
	}

	exists, err := s.tableExists(ctx, table)
	if err != nil {
		return failure(err)
	}
	if !exists {
		return outcome(NotFound, "Table %s does not exist", table), nil
	}

	n, err := s.exec(ctx, "insert", stmt.SQL, stmt.Args...)
	if err != nil {
		return failure(err)
	}
	res := success("Row inserted into %s", table)
	res.RowsAffected = n
	return res, nil
}

// SelectRows returns the matching rows of table, fully read into memory.
// An empty columns list selects every column. A missing table yields an
// empty slice and a NotFound result. The slice is never nil on a nil error.
func (s *Store) SelectRows(ctx context.Context, table string, columns []string, opts SelectOptions) ([]RowData, Result, error) {
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
		return []RowData{}, outcome(NotFound, "Table %s does not exist", table), nil
	}

	stmt := database.Select(s.dialect, table, columns, opts.Where, opts.Args, opts.OrderBy, opts.Limit)
	s.log.DebugWith("query", map[string]any{"op": "select", "sql": stmt.SQL, "args": len(stmt.Args)})

	ctx, cancel := s.roundTrip(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		res, err := failure(s.dialect.MapError(err, "select failed"))
		return nil, res, err
	}

	out, err := database.ScanRows(rows, func(err error, msg string) error {
		return s.dialect.MapError(err, msg)
	})
	if err != nil {
		res, err := failure(err)
		return nil, res, err
	}
	return out, success("%d rows selected from %s", len(out), table), nil
}

// UpdateRows sets row's columns on every row of table matching where.
// An empty where updates ALL rows. args bind placeholders inside where.
func (s *Store) UpdateRows(ctx context.Context, table string, row RowData, where string, args ...any) (Result, error) {
	if err := s.connected(); err != nil {
		return failure(err)
	}
	stmt, err := database.Update(s.dialect, table, row, where, args)
	if err != nil {
		return failure(err)
	}
	return s.guardedWrite(ctx, "update", table, stmt)
}

// DeleteRows deletes every row of table matching where. An empty where
// deletes ALL rows. args bind placeholders inside where.
func (s *Store) DeleteRows(ctx context.Context, table, where string, args ...any) (Result, error) {
	if err := s.connected(); err != nil {
		return failure(err)
	}
	return s.guardedWrite(ctx, "delete", table, database.Delete(s.dialect, table, where, args))
}

func (s *Store) guardedWrite(ctx context.Context, op, table string, stmt database.Statement) (Result, error) {
	exists, err := s.tableExists(ctx, table)
	if err != nil {
		return failure(err)
	}
	if !exists {
		return outcome(NotFound, "Table %s does not exist", table), nil
	}

	n, err := s.exec(ctx, op, stmt.SQL, stmt.Args...)
	if err != nil {
		return failure(err)
	}
	res := success("%d rows affected by %s on %s", n, op, table)
	res.RowsAffected = n
	return res, nil
}
