package repository

import (
	"database/sql"
	"fmt"

	"github.com/fortuna/courtside/internal/stats"
)

// scanRawTable reads every row into a text table. NULL becomes "".
func scanRawTable(rows *sql.Rows) (stats.RawTable, error) {
	cols, err := rows.Columns()
	if err != nil {
		return stats.RawTable{}, fmt.Errorf("reading columns: %w", err)
	}

	table := stats.RawTable{Columns: cols, Rows: []map[string]string{}}
	vals := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range vals {
		dest[i] = &vals[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return stats.RawTable{}, fmt.Errorf("scanning row: %w", err)
		}
		row := make(map[string]string, len(cols))
		for i, c := range cols {
			if vals[i].Valid {
				row[c] = vals[i].String
			} else {
				row[c] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, rows.Err()
}
