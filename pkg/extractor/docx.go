// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/leseb/tabconv/pkg/core/tabular"
)

// docxCell is a w:tc being read.
type docxCell struct {
	paragraphs []string
	span       int
	vMerge     string // "", "restart" or "continue"
}

// extractDocx reads every top-level w:tbl of word/document.xml. Horizontally
// merged cells (gridSpan) repeat their text across the spanned columns and
// vertically merged continuation cells (vMerge) repeat the text of the cell
// that started the merge. Cell paragraphs are joined with newlines.
func extractDocx(content []byte) (*tabular.Table, error) {
	doc, err := readPart(content, "word/document.xml")
	if err != nil {
		return nil, err
	}

	decoder := xml.NewDecoder(bytes.NewReader(doc))

	var (
		tables   []*tabular.Table
		rows     [][]string
		row      []string
		cell     *docxCell
		para     strings.Builder
		inText   bool
		tblDepth int
		above    map[int]string // text by grid column of the previous row
		gridCol  int
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
			if t.Name.Local == "tbl" {
				tblDepth++
				if tblDepth == 1 {
					rows = nil
					above = make(map[int]string)
				}
				continue
			}
			if tblDepth != 1 {
				continue
			}
			switch t.Name.Local {
			case "tr":
				row = nil
				gridCol = 0
			case "tc":
				cell = &docxCell{span: 1}
			case "p":
				para.Reset()
			case "t":
				inText = cell != nil
			case "tab":
				if cell != nil {
					para.WriteByte('\t')
				}
			case "br", "cr":
				if cell != nil {
					para.WriteByte('\n')
				}
			case "gridSpan":
				if cell != nil {
					cell.span = intAttr(attrValue(t, "val"), 1)
				}
			case "vMerge":
				if cell != nil {
					cell.vMerge = "continue"
					if attrValue(t, "val") == "restart" {
						cell.vMerge = "restart"
					}
				}
			}

		case xml.CharData:
			if inText && tblDepth == 1 {
				para.Write(t)
			}

		case xml.EndElement:
			if t.Name.Local == "tbl" {
				if tblDepth == 1 && len(rows) > 0 {
					tables = append(tables, tabular.FromRows(rows))
				}
				tblDepth--
				continue
			}
			if tblDepth != 1 {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if cell != nil {
					cell.paragraphs = append(cell.paragraphs, para.String())
				}
			case "tc":
				if cell == nil {
					continue
				}
				text := strings.Join(cell.paragraphs, "\n")
				for i := 0; i < cell.span; i++ {
					if cell.vMerge == "continue" {
						text = above[gridCol]
					} else {
						above[gridCol] = text
					}
					row = append(row, text)
					gridCol++
				}
				cell = nil
			case "tr":
				rows = append(rows, row)
			}
		}
	}

	return concatTables(tables), nil
}

func attrValue(el xml.StartElement, local string) string {
	for _, attr := range el.Attr {
		if attr.Name.Local == local {
			return attr.Value
		}
	}
	return ""
}
