// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package renderer

import (
	"bytes"
	"encoding/xml"
	"strings"
	"unicode"

	"github.com/leseb/tabconv/pkg/core/tabular"
)

// renderXML writes <data><row><column>value</column>...</row>...</data>.
func renderXML(t *tabular.Table) (*Output, error) {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = xmlName(col)
	}
	// Sanitising can make two names collide.
	names = tabular.New(names).Columns

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	data := xml.StartElement{Name: xml.Name{Local: "data"}}
	if err := enc.EncodeToken(data); err != nil {
		return nil, err
	}
	for _, row := range t.Rows {
		rowEl := xml.StartElement{Name: xml.Name{Local: "row"}}
		if err := enc.EncodeToken(rowEl); err != nil {
			return nil, err
		}
		for i, cell := range row {
			el := xml.StartElement{Name: xml.Name{Local: names[i]}}
			if err := enc.EncodeElement(cell, el); err != nil {
				return nil, err
			}
		}
		if err := enc.EncodeToken(rowEl.End()); err != nil {
			return nil, err
		}
	}
	if err := enc.EncodeToken(data.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')

	return &Output{Body: buf.Bytes(), ContentType: "application/xml"}, nil
}

// xmlName maps an arbitrary column name onto a valid XML element name.
func xmlName(s string) string {
	var sb strings.Builder
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
			sb.WriteRune(r)
		case i > 0 && (r == '-' || r == '.' || unicode.IsDigit(r)):
			sb.WriteRune(r)
		case i == 0 && (r == '-' || r == '.' || unicode.IsDigit(r)):
			sb.WriteByte('_')
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "_"
	}
	return sb.String()
}
