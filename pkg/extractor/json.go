// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/leseb/tabconv/pkg/core/tabular"
)

// extractJSON accepts the common tabular JSON layouts:
//
//	[{"a":1,"b":2}, ...]                   records
//	[["a","b"], [1,2], ...]                values, first row is the header
//	{"a":{"0":1}, "b":{"0":2}}             columns keyed by row label
//	{"a":[1], "b":[2]}                     columns as arrays
//	{"columns":["a","b"], "data":[[1,2]]}  split
//
// Key order is preserved; nested values are kept as raw JSON text.
func extractJSON(content []byte) (*tabular.Table, error) {
	content = decodeText(content)
	if !gjson.ValidBytes(content) {
		return nil, fmt.Errorf("invalid JSON")
	}

	root := gjson.ParseBytes(content)
	switch {
	case root.IsArray():
		return jsonArrayTable(root), nil
	case root.IsObject():
		if root.Get("columns").IsArray() && root.Get("data").IsArray() {
			return jsonSplitTable(root), nil
		}
		return jsonColumnsTable(root), nil
	default:
		return nil, fmt.Errorf("top-level JSON value must be an array or an object")
	}
}

func jsonArrayTable(root gjson.Result) *tabular.Table {
	items := root.Array()
	if len(items) == 0 {
		return &tabular.Table{}
	}

	switch {
	case items[0].IsArray():
		rows := make([][]string, 0, len(items))
		for _, item := range items {
			rows = append(rows, jsonCells(item))
		}
		return tabular.FromRows(rows)

	case items[0].IsObject():
		cols := newColumnSet()
		records := make([]map[string]string, 0, len(items))
		for _, item := range items {
			if !item.IsObject() {
				continue
			}
			rec := make(map[string]string)
			item.ForEach(func(key, value gjson.Result) bool {
				cols.add(key.String())
				rec[key.String()] = value.String()
				return true
			})
			records = append(records, rec)
		}
		return cols.table(records)

	default:
		tbl := tabular.New([]string{"0"})
		for _, item := range items {
			tbl.Append([]string{item.String()})
		}
		return tbl
	}
}

func jsonSplitTable(root gjson.Result) *tabular.Table {
	tbl := tabular.New(jsonCells(root.Get("columns")))
	for _, row := range root.Get("data").Array() {
		tbl.Append(jsonCells(row))
	}
	return tbl
}

func jsonColumnsTable(root gjson.Result) *tabular.Table {
	cols := newColumnSet()
	labels := newColumnSet()
	byLabel := make(map[string]map[string]string)

	put := func(label, col, value string) {
		labels.add(label)
		rec, ok := byLabel[label]
		if !ok {
			rec = make(map[string]string)
			byLabel[label] = rec
		}
		rec[col] = value
	}

	root.ForEach(func(key, column gjson.Result) bool {
		col := key.String()
		cols.add(col)
		switch {
		case column.IsObject():
			column.ForEach(func(label, value gjson.Result) bool {
				put(label.String(), col, value.String())
				return true
			})
		case column.IsArray():
			for i, value := range column.Array() {
				put(strconv.Itoa(i), col, value.String())
			}
		default:
			put("0", col, column.String())
		}
		return true
	})

	records := make([]map[string]string, 0, len(labels.names))
	for _, label := range labels.names {
		records = append(records, byLabel[label])
	}
	return cols.table(records)
}

func jsonCells(row gjson.Result) []string {
	values := row.Array()
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = v.String()
	}
	return cells
}

// columnSet collects names in first-seen order.
type columnSet struct {
	names []string
	seen  map[string]bool
}

func newColumnSet() *columnSet {
	return &columnSet{seen: make(map[string]bool)}
}

func (c *columnSet) add(name string) {
	if !c.seen[name] {
		c.seen[name] = true
		c.names = append(c.names, name)
	}
}

func (c *columnSet) table(records []map[string]string) *tabular.Table {
	tbl := tabular.New(c.names)
	for _, rec := range records {
		cells := make([]string, len(c.names))
		for i, name := range c.names {
			cells[i] = rec[name]
		}
		tbl.Append(cells)
	}
	return tbl
}
