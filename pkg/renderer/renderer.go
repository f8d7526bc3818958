// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package renderer serialises a tabular.Table into one of the supported
// output formats.
package renderer

import (
	"errors"
	"fmt"

	"github.com/leseb/tabconv/pkg/core/tabular"
)

// Format identifies an output format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXML  Format = "xml"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

// ErrUnsupportedFormat is returned for format tags with no renderer.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Output is a rendered document.
type Output struct {
	Body        []byte
	ContentType string
	Filename    string // set when the result should be served as an attachment
}

// Func renders a table.
type Func func(t *tabular.Table) (*Output, error)

// Renderer holds the per-format rendering routines.
type Renderer struct {
	funcs map[Format]Func
}

// New creates a Renderer. PDF layout follows opts; zero fields take defaults.
func New(opts PDFOptions) *Renderer {
	opts.defaults()
	return &Renderer{
		funcs: map[Format]Func{
			FormatCSV:  renderCSV,
			FormatXML:  renderXML,
			FormatJSON: renderJSON,
			FormatPDF:  opts.render,
		},
	}
}

// ParseFormat validates a format tag.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCSV, FormatXML, FormatJSON, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Formats lists the supported output formats.
func Formats() []Format {
	return []Format{FormatCSV, FormatXML, FormatJSON, FormatPDF}
}

// Render serialises t as format.
func (r *Renderer) Render(format Format, t *tabular.Table) (*Output, error) {
	fn, ok := r.funcs[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if t == nil {
		t = &tabular.Table{}
	}
	out, err := fn(t)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return out, nil
}
