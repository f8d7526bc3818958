// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/leseb/tabconv/pkg/core/tabular"
)

// xmlRow accumulates one child of the document root. Fields keep their
// first-seen order.
type xmlRow struct {
	tag    string
	names  []string
	values map[string]string
	text   strings.Builder
}

func (r *xmlRow) set(name, value string) {
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = value
}

// extractXML treats every child of the root element as a row. A row's
// attributes and the text of its child elements become fields; the column
// set is the union of all fields in first-seen order.
func extractXML(content []byte) (*tabular.Table, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))
	decoder.CharsetReader = charset.NewReaderLabel

	var (
		rows      []*xmlRow
		current   *xmlRow
		field     string
		fieldText strings.Builder
		depth     int
		sawRoot   bool
	)

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch depth {
			case 1:
				sawRoot = true
			case 2:
				current = &xmlRow{tag: t.Name.Local, values: make(map[string]string)}
				for _, attr := range t.Attr {
					if attr.Name.Space == "xmlns" || attr.Name.Local == "xmlns" {
						continue
					}
					current.set(attr.Name.Local, attr.Value)
				}
			case 3:
				field = t.Name.Local
				fieldText.Reset()
			}

		case xml.CharData:
			switch depth {
			case 2:
				current.text.Write(t)
			case 3:
				fieldText.Write(t)
			}

		case xml.EndElement:
			switch depth {
			case 2:
				if len(current.names) == 0 {
					if text := strings.TrimSpace(current.text.String()); text != "" {
						current.set(current.tag, text)
					}
				}
				rows = append(rows, current)
				current = nil
			case 3:
				current.set(field, strings.TrimSpace(fieldText.String()))
			}
			depth--
		}
	}

	if !sawRoot {
		return nil, fmt.Errorf("no root element")
	}

	cols := newColumnSet()
	records := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		for _, name := range row.names {
			cols.add(name)
		}
		records = append(records, row.values)
	}
	return cols.table(records), nil
}
