package models

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Table is an in-memory, column-ordered table of scraped cells.
//
// Cell values are string (as scraped), float64 (after numeric coercion),
// or nil (missing).
type Table struct {
	Columns []string
	Rows    []Row
}

// Row is one table row. Index is the row's position in the table it was
// originally built or concatenated into; filtering keeps it unchanged.
type Row struct {
	Index  int
	Values []any
}

// NewTable creates an empty table with the given header.
func NewTable(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// AppendRow adds a row at the next index. Short rows are padded with nil.
func (t *Table) AppendRow(values ...any) error {
	if len(values) > len(t.Columns) {
		return fmt.Errorf("row has %d cells, header has %d", len(values), len(t.Columns))
	}
	row := make([]any, len(t.Columns))
	copy(row, values)
	t.Rows = append(t.Rows, Row{Index: len(t.Rows), Values: row})
	return nil
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// Column returns the values of the named column in row order.
func (t *Table) Column(name string) ([]any, error) {
	idx, ok := t.ColumnIndex(name)
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Values[idx]
	}
	return out, nil
}

// Filter returns a new table holding the rows for which keep returns true,
// in their original order and with their original indexes.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := NewTable(t.Columns)
	for _, r := range t.Rows {
		if keep(r) {
			values := make([]any, len(r.Values))
			copy(values, r.Values)
			out.Rows = append(out.Rows, Row{Index: r.Index, Values: values})
		}
	}
	return out
}

// MapColumn replaces every value of the named column with fn(value).
// It stops at the first error, which names the offending row index.
func (t *Table) MapColumn(name string, fn func(any) (any, error)) error {
	idx, ok := t.ColumnIndex(name)
	if !ok {
		return fmt.Errorf("column %q not found", name)
	}
	for i := range t.Rows {
		v, err := fn(t.Rows[i].Values[idx])
		if err != nil {
			return fmt.Errorf("column %q row %d: %w", name, t.Rows[i].Index, err)
		}
		t.Rows[i].Values[idx] = v
	}
	return nil
}

// AddColumn appends a column. values must have one entry per row.
func (t *Table) AddColumn(name string, values []any) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), len(t.Rows))
	}
	if _, exists := t.ColumnIndex(name); exists {
		return fmt.Errorf("column %q already exists", name)
	}
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i].Values = append(t.Rows[i].Values, values[i])
	}
	return nil
}

// Concat stacks tables in order. The result's columns are the union of all
// input columns in first-seen order; cells a table lacks are nil. Rows are
// re-indexed from zero.
func Concat(tables ...*Table) *Table {
	var columns []string
	seen := make(map[string]int)
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.Columns {
			if _, ok := seen[c]; !ok {
				seen[c] = len(columns)
				columns = append(columns, c)
			}
		}
	}

	out := NewTable(columns)
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, r := range t.Rows {
			values := make([]any, len(columns))
			for i, c := range t.Columns {
				values[seen[c]] = r.Values[i]
			}
			out.Rows = append(out.Rows, Row{Index: len(out.Rows), Values: values})
		}
	}
	return out
}

// Records returns each row as an insertion-ordered column→value map.
func (t *Table) Records() []*orderedmap.OrderedMap[string, any] {
	out := make([]*orderedmap.OrderedMap[string, any], 0, len(t.Rows))
	for _, r := range t.Rows {
		rec := orderedmap.New[string, any]()
		for i, c := range t.Columns {
			rec.Set(c, r.Values[i])
		}
		out = append(out, rec)
	}
	return out
}

// DetailRecord is the key/value content of one detail-page table,
// in document order.
type DetailRecord = *orderedmap.OrderedMap[string, string]

// NewDetailRecord creates an empty DetailRecord.
func NewDetailRecord() DetailRecord {
	return orderedmap.New[string, string]()
}
