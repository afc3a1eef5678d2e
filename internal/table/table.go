// Package table is the typed in-memory table shared by the entity builders and
// the materializer. Cells hold nil (null) or a Go value matching the column
// type: string, float64, int64, bool, or time.Time.
package table

import (
	"fmt"
	"time"
)

// Type is a column's storage type.
type Type string

const (
	Text      Type = "TEXT"
	Real      Type = "REAL"
	Integer   Type = "INTEGER"
	Boolean   Type = "BOOLEAN"
	Timestamp Type = "TIMESTAMP"
)

// ParseType maps a declared SQL column type back to a Type.
func ParseType(decl string) (Type, error) {
	switch Type(decl) {
	case Text, Real, Integer, Boolean, Timestamp:
		return Type(decl), nil
	default:
		return "", fmt.Errorf("unsupported column type %q", decl)
	}
}

// Column names and types one table column.
type Column struct {
	Name string
	Type Type
}

// Table is an ordered set of typed rows.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
	index   map[string]int
}

// New returns an empty table with the given columns.
func New(name string, columns ...Column) *Table {
	t := &Table{Name: name, Columns: append([]Column(nil), columns...)}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, col := range t.Columns {
		t.index[col.Name] = i
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	if t.index == nil {
		t.reindex()
	}
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Append validates and adds one row. Values must be nil or match the column type.
func (t *Table) Append(values ...any) error {
	if len(values) != len(t.Columns) {
		return fmt.Errorf("table %s: row has %d values, want %d", t.Name, len(values), len(t.Columns))
	}
	row := make([]any, len(values))
	for i, v := range values {
		checked, err := checkValue(t.Columns[i], v)
		if err != nil {
			return fmt.Errorf("table %s: %w", t.Name, err)
		}
		row[i] = checked
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// MustAppend is Append for rows built from typed structs, where a mismatch is
// a programming error.
func (t *Table) MustAppend(values ...any) {
	if err := t.Append(values...); err != nil {
		panic(err)
	}
}

// Value returns the cell at (row, column name), or nil when the column is absent.
func (t *Table) Value(row int, column string) any {
	i := t.ColumnIndex(column)
	if i < 0 {
		return nil
	}
	return t.Rows[row][i]
}

// Clone returns a deep copy of the row slices.
func (t *Table) Clone() *Table {
	out := New(t.Name, t.Columns...)
	out.Rows = make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append([]any(nil), row...)
	}
	return out
}

func checkValue(col Column, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	ok := false
	switch col.Type {
	case Text:
		_, ok = v.(string)
	case Real:
		switch n := v.(type) {
		case float64:
			ok = true
		case int64:
			return float64(n), nil
		}
	case Integer:
		_, ok = v.(int64)
	case Boolean:
		_, ok = v.(bool)
	case Timestamp:
		if ts, isTime := v.(time.Time); isTime {
			return ts.UTC(), nil
		}
	}
	if !ok {
		return nil, fmt.Errorf("column %s (%s): unexpected value %T", col.Name, col.Type, v)
	}
	return v, nil
}

// Opt converts a nullable pointer into a cell value.
func Opt[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// SameShape reports whether a and b have identical column names and types.
func SameShape(a, b *Table) bool {
	if len(a.Columns) != len(b.Columns) {
		return false
	}
	for i := range a.Columns {
		if a.Columns[i] != b.Columns[i] {
			return false
		}
	}
	return true
}

// Equal reports whether a and b have the same shape and row-for-row equal
// cells. Timestamps compare by instant.
func Equal(a, b *Table) bool {
	if !SameShape(a, b) || len(a.Rows) != len(b.Rows) {
		return false
	}
	for i := range a.Rows {
		for j := range a.Rows[i] {
			if !cellEqual(a.Rows[i][j], b.Rows[i][j]) {
				return false
			}
		}
	}
	return true
}

func cellEqual(x, y any) bool {
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	if tx, ok := x.(time.Time); ok {
		ty, ok := y.(time.Time)
		return ok && tx.Equal(ty)
	}
	return x == y
}
