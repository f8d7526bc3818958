// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"

	"github.com/leseb/tabconv/pkg/core/tabular"
)

// extractCSV reads comma-separated content whose first record is the header.
func extractCSV(content []byte) (*tabular.Table, error) {
	reader := csv.NewReader(bytes.NewReader(decodeText(content)))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // allow variable field counts

	var tbl *tabular.Table
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if tbl == nil {
			tbl = tabular.New(record)
			continue
		}
		tbl.Append(record)
	}

	if tbl == nil {
		return &tabular.Table{}, nil
	}
	return tbl, nil
}
