// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package renderer

import (
	"bytes"
	"encoding/csv"

	"github.com/leseb/tabconv/pkg/core/tabular"
)

func renderCSV(t *tabular.Table) (*Output, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns); err != nil {
		return nil, err
	}
	for _, row := range t.Rows {
		// csv.Writer emits a lone empty field as a blank line, which readers skip.
		if len(row) == 1 && row[0] == "" {
			w.Flush()
			buf.WriteString("\"\"\n")
			continue
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return &Output{Body: buf.Bytes(), ContentType: "text/csv"}, nil
}
