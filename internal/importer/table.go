package importer

import "strings"

// Table is an in-memory sheet: all cells are strings, the empty string
// means missing.
type Table struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewTable builds a table from header and data rows. Fully empty rows are
// dropped and short rows are padded to the header width.
func NewTable(columns []string, rows [][]string) *Table {
	t := &Table{Columns: columns}
	for _, row := range rows {
		empty := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}
		if len(row) < len(columns) {
			padded := make([]string, len(columns))
			copy(padded, row)
			row = padded
		}
		t.Rows = append(t.Rows, row[:len(columns)])
	}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, col := range t.Columns {
		t.index[col] = i
	}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Row returns a view over the i-th data row.
func (t *Table) Row(i int) Row {
	return Row{t: t, i: i}
}

// Row is a lightweight accessor over one table row.
type Row struct {
	t *Table
	i int
}

// Get returns the raw cell under the given column, or the empty string
// when the column does not exist.
func (r Row) Get(column string) string {
	idx, ok := r.t.index[column]
	if !ok {
		return ""
	}
	return r.t.Rows[r.i][idx]
}

// Value returns the raw cell as any, with nil for a column the table does
// not have. Empty cells are returned as the empty string and left to the
// normalizer.
func (r Row) Value(column string) any {
	idx, ok := r.t.index[column]
	if !ok {
		return nil
	}
	return r.t.Rows[r.i][idx]
}

// Values returns the raw cells of the row, for diagnostics.
func (r Row) Values() []string {
	return r.t.Rows[r.i]
}
