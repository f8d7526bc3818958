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

const odfTableNS = "urn:oasis:names:tc:opendocument:xmlns:table:1.0"

// maxRepeat caps table:number-*-repeated expansion.
const maxRepeat = 1024

// odtRow collects the cells of one table:table-row. Empty cells produced by
// a repeat attribute are held back and dropped if nothing follows them, since
// office suites pad rows to the full sheet width that way.
type odtRow struct {
	cells   []string
	pending int
	repeat  int
}

func (r *odtRow) add(text string, repeat int) {
	if text == "" && repeat > 1 {
		r.pending = min(r.pending+repeat, maxRepeat)
		return
	}
	for ; r.pending > 0; r.pending-- {
		r.cells = append(r.cells, "")
	}
	for i := 0; i < min(repeat, maxRepeat); i++ {
		r.cells = append(r.cells, text)
	}
}

// extractODT reads every top-level table:table of content.xml, header rows
// included. Covered (merged-away) cells keep their column as empty strings.
func extractODT(content []byte) (*tabular.Table, error) {
	doc, err := readPart(content, "content.xml")
	if err != nil {
		return nil, err
	}

	decoder := xml.NewDecoder(bytes.NewReader(doc))

	var (
		tables     []*tabular.Table
		rows       [][]string
		blankRows  int
		row        *odtRow
		inCell     bool
		cellRepeat int
		paragraphs []string
		para       strings.Builder
		paraDepth  int
		tblDepth   int
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
			if t.Name.Local == "table" && t.Name.Space == odfTableNS {
				tblDepth++
				if tblDepth == 1 {
					rows = nil
					blankRows = 0
				}
				continue
			}
			if tblDepth != 1 {
				continue
			}
			switch t.Name.Local {
			case "table-row":
				row = &odtRow{repeat: intAttr(attrValue(t, "number-rows-repeated"), 1)}
			case "table-cell", "covered-table-cell":
				inCell = row != nil
				cellRepeat = intAttr(attrValue(t, "number-columns-repeated"), 1)
				paragraphs = nil
			case "p", "h":
				if inCell {
					paraDepth++
					if paraDepth == 1 {
						para.Reset()
					}
				}
			case "s":
				if paraDepth > 0 {
					para.WriteString(strings.Repeat(" ", intAttr(attrValue(t, "c"), 1)))
				}
			case "tab":
				if paraDepth > 0 {
					para.WriteByte('\t')
				}
			case "line-break":
				if paraDepth > 0 {
					para.WriteByte('\n')
				}
			}

		case xml.CharData:
			if tblDepth == 1 && paraDepth > 0 {
				para.Write(t)
			}

		case xml.EndElement:
			if t.Name.Local == "table" && t.Name.Space == odfTableNS {
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
			case "p", "h":
				if paraDepth > 0 {
					paraDepth--
					if paraDepth == 0 {
						paragraphs = append(paragraphs, para.String())
					}
				}
			case "table-cell", "covered-table-cell":
				if inCell {
					row.add(strings.Join(paragraphs, "\n"), cellRepeat)
				}
				inCell = false
			case "table-row":
				if row == nil {
					continue
				}
				if len(row.cells) == 0 {
					if len(rows) > 0 {
						blankRows = min(blankRows+row.repeat, maxRepeat)
					}
				} else {
					for ; blankRows > 0; blankRows-- {
						rows = append(rows, nil)
					}
					for i := 0; i < min(row.repeat, maxRepeat); i++ {
						rows = append(rows, row.cells)
					}
				}
				row = nil
			}
		}
	}

	return concatTables(tables), nil
}
