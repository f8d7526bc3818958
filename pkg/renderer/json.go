// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package renderer

import (
	"bytes"
	"encoding/json"

	"github.com/leseb/tabconv/pkg/core/tabular"
)

// renderJSON writes one object per row with keys in column order, which a
// map-based encoding would lose.
func renderJSON(t *tabular.Table) (*Output, error) {
	keys := make([][]byte, len(t.Columns))
	for i, col := range t.Columns {
		k, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for r, row := range t.Rows {
		if r > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for i, cell := range row {
			if i > 0 {
				buf.WriteByte(',')
			}
			v, err := json.Marshal(cell)
			if err != nil {
				return nil, err
			}
			buf.Write(keys[i])
			buf.WriteByte(':')
			buf.Write(v)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')

	return &Output{Body: buf.Bytes(), ContentType: "application/json"}, nil
}
