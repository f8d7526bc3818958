// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package tabular holds the generic table that every extractor produces and
// every renderer consumes.
package tabular

import (
	"strconv"
	"strings"
)

// Table is an ordered set of uniquely named columns and ordered rows of
// string cells. Every row has exactly len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New creates a table whose columns come from header. Blank names become
// "Unnamed: <i>" and repeated names get a ".<n>" suffix so that column names
// are unique.
func New(header []string) *Table {
	return &Table{Columns: uniqueNames(header)}
}

// Append adds a row, padding it with empty cells or truncating it to the
// column count.
func (t *Table) Append(row []string) {
	cells := make([]string, len(t.Columns))
	copy(cells, row)
	t.Rows = append(t.Rows, cells)
}

// Concat appends the rows of other under t's columns, by position.
func (t *Table) Concat(other *Table) {
	if other == nil {
		return
	}
	for _, row := range other.Rows {
		t.Append(row)
	}
}

// Empty reports whether the table has no columns or no rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.Columns) == 0 || len(t.Rows) == 0
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Width returns the number of columns.
func (t *Table) Width() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// Records returns one column-name-keyed map per row.
func (t *Table) Records() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Columns))
		for i, col := range t.Columns {
			rec[col] = row[i]
		}
		out = append(out, rec)
	}
	return out
}

// FromRows builds a table from a header row followed by data rows, the shape
// every document extractor produces.
func FromRows(rows [][]string) *Table {
	if len(rows) == 0 {
		return &Table{}
	}
	t := New(rows[0])
	for _, row := range rows[1:] {
		t.Append(row)
	}
	return t
}

func uniqueNames(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		candidate := name
		for n := 1; seen[candidate]; n++ {
			candidate = name + "." + strconv.Itoa(n)
		}
		seen[candidate] = true
		names[i] = candidate
	}
	return names
}
