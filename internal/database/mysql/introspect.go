package mysql

// Catalog queries against information_schema, scoped to the selected
// database. Exact-match predicates avoid the wildcard semantics of
// SHOW TABLES LIKE ('_' and '%' in names).

// TableExistsQuery counts base tables named table.
func (Dialect) TableExistsQuery(table string) (string, []any) {
	const q = `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_type   = 'BASE TABLE'
		  AND table_name   = ?`
	return q, []any{table}
}

// ColumnExistsQuery counts columns named column in table.
func (Dialect) ColumnExistsQuery(table, column string) (string, []any) {
	const q = `
		SELECT COUNT(*)
		FROM information_schema.columns
		WHERE table_schema = DATABASE()
		  AND table_name   = ?
		  AND column_name  = ?`
	return q, []any{table, column}
}

// ListTablesQuery returns every base table name, sorted.
func (Dialect) ListTablesQuery() string {
	return `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_type   = 'BASE TABLE'
		ORDER BY table_name`
}

// DescribeTableQuery returns (name, column type, nullable) per column.
func (Dialect) DescribeTableQuery(table string) (string, []any) {
	const q = `
		SELECT column_name,
		       column_type,
		       is_nullable = 'YES'
		FROM information_schema.columns
		WHERE table_schema = DATABASE()
		  AND table_name   = ?
		ORDER BY ordinal_position`
	return q, []any{table}
}
