// Package table provides the flat result table produced by cracking.
//
// A Table is immutable by convention once returned: reshaping
// operations read a table and build a new one, never touching the
// input. Cells are plain strings; an empty string is an empty (NA)
// cell.
package table

import (
	"fmt"
)

// Table is a named grid of string cells with ordered, unique columns.
type Table struct {
	Name    string
	columns []string
	rows    [][]string
}

// New creates an empty table with the given columns.
func New(name string, columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Name: name, columns: cols}
}

// Columns returns the column names in table order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	return len(t.columns)
}

// ColumnIndex returns the position of a column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// AppendRow adds one row. The row must have exactly one cell per column.
func (t *Table) AppendRow(row []string) error {
	if len(row) != len(t.columns) {
		return fmt.Errorf("table %q: row has %d cells, want %d", t.Name, len(row), len(t.columns))
	}
	r := make([]string, len(row))
	copy(r, row)
	t.rows = append(t.rows, r)
	return nil
}

// Row returns the cells of row i. The returned slice must not be modified.
func (t *Table) Row(i int) []string {
	return t.rows[i]
}

// Cell returns the cell at row i, column name. ok is false when the
// column does not exist.
func (t *Table) Cell(i int, column string) (string, bool) {
	c := t.ColumnIndex(column)
	if c < 0 || i < 0 || i >= len(t.rows) {
		return "", false
	}
	return t.rows[i][c], true
}

// Column returns all cells of one column, top to bottom.
func (t *Table) Column(name string) ([]string, bool) {
	c := t.ColumnIndex(name)
	if c < 0 {
		return nil, false
	}
	out := make([]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[c]
	}
	return out, true
}

// Copy returns a deep copy of the table.
func (t *Table) Copy() *Table {
	cp := New(t.Name, t.columns)
	cp.rows = make([][]string, len(t.rows))
	for i, row := range t.rows {
		r := make([]string, len(row))
		copy(r, row)
		cp.rows[i] = r
	}
	return cp
}

// DropColumns returns a copy of the table without the named columns.
func (t *Table) DropColumns(names ...string) *Table {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}

	var keep []int
	var cols []string
	for i, c := range t.columns {
		if _, skip := drop[c]; !skip {
			keep = append(keep, i)
			cols = append(cols, c)
		}
	}

	cp := New(t.Name, cols)
	for _, row := range t.rows {
		r := make([]string, len(keep))
		for j, idx := range keep {
			r[j] = row[idx]
		}
		cp.rows = append(cp.rows, r)
	}
	return cp
}

// Equal reports whether two tables have identical columns and cells.
// Names are not compared.
func (t *Table) Equal(o *Table) bool {
	if o == nil || len(t.columns) != len(o.columns) || len(t.rows) != len(o.rows) {
		return false
	}
	for i := range t.columns {
		if t.columns[i] != o.columns[i] {
			return false
		}
	}
	for i := range t.rows {
		for j := range t.rows[i] {
			if t.rows[i][j] != o.rows[i][j] {
				return false
			}
		}
	}
	return true
}
