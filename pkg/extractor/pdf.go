// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/leseb/tabconv/pkg/core/tabular"
)

// pdfLine is a run of glyphs sharing a baseline, in content-stream order.
type pdfLine struct {
	y      float64
	glyphs []pdf.Text
}

// pdfCell is a horizontally contiguous group of glyphs on one line.
type pdfCell struct {
	x0, x1 float64
	text   strings.Builder
}

// extractPDF treats the text of each page as one table. Glyphs are grouped
// into lines by baseline and into cells by horizontal gaps; the first line of
// a page is its header and later cells are placed under the header cell whose
// left edge they start after.
func extractPDF(content []byte) (*tabular.Table, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	var tables []*tabular.Table
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows := pageRows(page.Content().Text)
		if len(rows) == 0 {
			continue
		}
		tables = append(tables, tabular.FromRows(rows))
	}

	return concatTables(tables), nil
}

func pageRows(glyphs []pdf.Text) [][]string {
	lines := groupLines(glyphs)
	if len(lines) == 0 {
		return nil
	}

	header := splitCells(lines[0])
	if len(header) == 0 {
		return nil
	}
	starts := make([]float64, len(header))
	headerRow := make([]string, len(header))
	for i, c := range header {
		starts[i] = c.x0
		headerRow[i] = strings.TrimSpace(c.text.String())
	}

	rows := [][]string{headerRow}
	for _, line := range lines[1:] {
		cells := splitCells(line)
		if len(cells) == 0 {
			continue
		}
		row := make([]string, len(starts))
		for _, c := range cells {
			col := columnFor(starts, c.x0)
			text := strings.TrimSpace(c.text.String())
			if row[col] != "" {
				row[col] += " " + text
			} else {
				row[col] = text
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// groupLines buckets glyphs by baseline and orders lines top to bottom.
func groupLines(glyphs []pdf.Text) []*pdfLine {
	var lines []*pdfLine
	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		tol := math.Max(1, 0.3*g.FontSize)
		var line *pdfLine
		for _, l := range lines {
			if math.Abs(l.y-g.Y) <= tol {
				line = l
				break
			}
		}
		if line == nil {
			line = &pdfLine{y: g.Y}
			lines = append(lines, line)
		}
		line.glyphs = append(line.glyphs, g)
	}

	// PDF user space grows upwards.
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].y > lines[j].y
	})
	return lines
}

// splitCells walks a line in stream order and starts a new cell whenever a
// glyph does not continue where the previous one ended.
func splitCells(line *pdfLine) []*pdfCell {
	var cells []*pdfCell
	var cur *pdfCell
	for _, g := range line.glyphs {
		gap := g.X - cur.end()
		maxGap := math.Max(1, 0.6*g.FontSize)
		if cur == nil || gap < -0.5 || gap > maxGap {
			cur = &pdfCell{x0: g.X, x1: g.X}
			cells = append(cells, cur)
		}
		cur.text.WriteString(g.S)
		cur.x1 = math.Max(cur.x1, g.X+g.W)
	}

	out := cells[:0]
	for _, c := range cells {
		if strings.TrimSpace(c.text.String()) != "" {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].x0 < out[j].x0
	})
	return out
}

func (c *pdfCell) end() float64 {
	if c == nil {
		return math.Inf(-1)
	}
	return c.x1
}

// columnFor returns the last column whose left edge is at or before x.
func columnFor(starts []float64, x float64) int {
	col := 0
	for i, s := range starts {
		if s <= x+1 {
			col = i
		}
	}
	return col
}
