// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package renderer

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/leseb/tabconv/pkg/core/tabular"
)

const (
	pdfMargin      = 10.0 // mm
	pdfMinFontSize = 4.0  // pt
	pdfCellPadding = 2.0  // mm, both sides together
	ptPerMM        = 72.0 / 25.4
)

// PDFOptions controls the page the table is laid out on.
type PDFOptions struct {
	PageSize    string  `yaml:"page_size"`   // "A4", "Letter", ...
	Orientation string  `yaml:"orientation"` // "P" or "L"
	FontFamily  string  `yaml:"font_family"` // a core font: Helvetica, Times, Courier
	FontSize    float64 `yaml:"font_size"`   // upper bound, in points
	Title       string  `yaml:"title"`
}

func (o *PDFOptions) defaults() {
	if o.PageSize == "" {
		o.PageSize = "A4"
	}
	if o.Orientation == "" {
		o.Orientation = "P"
	}
	if o.FontFamily == "" {
		o.FontFamily = "Helvetica"
	}
	if o.FontSize <= 0 {
		o.FontSize = 10
	}
	if o.Title == "" {
		o.Title = "Converted table"
	}
}

// render lays the table out as a bordered grid on a single page. Column
// widths are equal; the font shrinks until every row fits vertically and the
// widest cell fits its column.
func (o PDFOptions) render(t *tabular.Table) (*Output, error) {
	doc := fpdf.New(o.Orientation, "mm", o.PageSize, "")
	doc.SetTitle(o.Title, true)
	doc.SetCreator("tabconv", true)
	doc.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	doc.SetAutoPageBreak(false, pdfMargin)
	doc.AddPage()

	tr := doc.UnicodeTranslatorFromDescriptor("")
	header := translate(tr, t.Columns)
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = translate(tr, row)
	}

	pageW, pageH := doc.GetPageSize()
	usableW := pageW - 2*pdfMargin
	usableH := pageH - 2*pdfMargin

	cols := max(len(header), 1)
	colW := usableW / float64(cols)

	// Row height is 1.6 × font size; pick the largest size whose rows fit.
	fontSize := o.FontSize
	lines := float64(len(rows) + 1)
	if fit := usableH / lines / 1.6 * ptPerMM; fit < fontSize {
		fontSize = fit
	}

	widest := 0.0
	doc.SetFont(o.FontFamily, "B", fontSize)
	for _, s := range header {
		widest = math.Max(widest, doc.GetStringWidth(s))
	}
	doc.SetFont(o.FontFamily, "", fontSize)
	for _, row := range rows {
		for _, s := range row {
			widest = math.Max(widest, doc.GetStringWidth(s))
		}
	}
	if room := colW - pdfCellPadding; widest > room && widest > 0 {
		fontSize *= room / widest
	}
	fontSize = math.Max(fontSize, pdfMinFontSize)
	rowH := fontSize * 1.6 / ptPerMM

	doc.SetFont(o.FontFamily, "B", fontSize)
	doc.SetFillColor(230, 230, 230)
	for _, s := range header {
		doc.CellFormat(colW, rowH, s, "1", 0, "L", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont(o.FontFamily, "", fontSize)
	for _, row := range rows {
		for _, s := range row {
			doc.CellFormat(colW, rowH, s, "1", 0, "L", false, 0, "")
		}
		doc.Ln(-1)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return &Output{
		Body:        buf.Bytes(),
		ContentType: "application/pdf",
		Filename:    "result.pdf",
	}, nil
}

func translate(tr func(string) string, cells []string) []string {
	out := make([]string, len(cells))
	for i, s := range cells {
		out[i] = tr(s)
	}
	return out
}
