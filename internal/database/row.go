package database

import (
	"database/sql"
	"strings"
)

// ScanRows reads all rows from the result set and returns them as a slice
// of RowData keyed by column name.
//
// The returned slice is always non-nil (empty slice on zero rows).
// ScanRows always closes rows. scanErr maps driver errors raised while
// reading.
//
// Drivers hand back text columns as []byte; those become strings. Binary
// columns (BLOB, BINARY, BYTEA) stay []byte.
func ScanRows(rows *sql.Rows, scanErr func(error, string) error) ([]RowData, error) {
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, scanErr(err, "failed to read column names")
	}

	binary := make([]bool, len(types))
	for i, ct := range types {
		binary[i] = isBinaryType(ct.DatabaseTypeName())
	}

	result := make([]RowData, 0)

	for rows.Next() {
		// Allocate scan targets as *any so the driver can write any type.
		dest := make([]any, len(types))
		destPtrs := make([]any, len(types))
		for i := range dest {
			destPtrs[i] = &dest[i]
		}

		if err := rows.Scan(destPtrs...); err != nil {
			return nil, scanErr(err, "failed to scan row")
		}

		row := make(RowData, len(types))
		for i, ct := range types {
			if b, ok := dest[i].([]byte); ok && !binary[i] {
				row[ct.Name()] = string(b)
				continue
			}
			row[ct.Name()] = dest[i]
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, scanErr(err, "error during row iteration")
	}

	return result, nil
}

func isBinaryType(name string) bool {
	n := strings.ToUpper(name)
	return strings.Contains(n, "BLOB") || strings.Contains(n, "BINARY") || n == "BYTEA"
}
