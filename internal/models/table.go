package models

import (
	"bytes"
	"encoding/json"
)

// Row maps column names to cells. Columns keep the order in which they
// were first set; sibling rows in a table may have different columns.
type Row struct {
	columns []string
	cells   map[string]Value
}

// NewRow returns an empty row.
func NewRow() Row {
	return Row{cells: make(map[string]Value)}
}

// Set stores value under column. Setting an existing column replaces its
// value and keeps its position.
func (r *Row) Set(column string, value Value) {
	if r.cells == nil {
		r.cells = make(map[string]Value)
	}
	if _, ok := r.cells[column]; !ok {
		r.columns = append(r.columns, column)
	}
	r.cells[column] = value
}

// Get returns the cell stored under column.
func (r Row) Get(column string) (Value, bool) {
	v, ok := r.cells[column]
	return v, ok
}

// Columns returns the row's column names in display order.
func (r Row) Columns() []string {
	return append([]string(nil), r.columns...)
}

// Len returns the number of columns in the row.
func (r Row) Len() int { return len(r.columns) }

// MarshalJSON encodes the row as an object whose keys follow column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.cells[col])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Table is the output of a single collector. Source labels the producer
// for display grouping; Rows keep production order.
type Table struct {
	Source string `json:"source"`
	Rows   []Row  `json:"rows"`
}

// NewTable returns a table labelled source holding rows.
func NewTable(source string, rows ...Row) Table {
	if rows == nil {
		rows = []Row{}
	}
	return Table{Source: source, Rows: rows}
}

// Append adds row at the end of the table.
func (t *Table) Append(row Row) {
	t.Rows = append(t.Rows, row)
}

// Columns returns the union of the rows' columns in first-seen order.
func (t Table) Columns() []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, row := range t.Rows {
		for _, col := range row.columns {
			if _, ok := seen[col]; ok {
				continue
			}
			seen[col] = struct{}{}
			cols = append(cols, col)
		}
	}
	return cols
}

// Result is the envelope returned by every collector: either a single
// table or, for groups, an ordered sequence of tables.
type Result struct {
	tables []Table
	group  bool
}

// Single wraps one table.
func Single(t Table) Result {
	return Result{tables: []Table{t}}
}

// Group wraps an ordered sequence of tables.
func Group(tables ...Table) Result {
	return Result{tables: append([]Table{}, tables...), group: true}
}

// IsGroup reports whether r is a group envelope.
func (r Result) IsGroup() bool { return r.group }

// Table returns the table of a single envelope.
func (r Result) Table() (Table, bool) {
	if r.group || len(r.tables) != 1 {
		return Table{}, false
	}
	return r.tables[0], true
}

// Tables returns the envelope's tables in order: one for a single
// envelope, all of them for a group.
func (r Result) Tables() []Table {
	return append([]Table(nil), r.tables...)
}
