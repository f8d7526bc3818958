// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package extractor turns uploaded documents into a tabular.Table, choosing
// the parser by file extension.
package extractor

import (
	"errors"
	"fmt"
	"sort"

	"github.com/leseb/tabconv/pkg/core/tabular"
)

var (
	// ErrUnsupportedExtension is returned for extensions with no extractor.
	ErrUnsupportedExtension = errors.New("unsupported file extension")

	// ErrLegacyDoc is returned for binary .doc uploads, which cannot be
	// parsed without external tools.
	ErrLegacyDoc = errors.New("legacy .doc format is not supported")

	// ErrMalformed wraps any parser failure. The table returned alongside it
	// is empty, never nil.
	ErrMalformed = errors.New("malformed document")
)

// Func parses raw file content into a table.
type Func func(content []byte) (*tabular.Table, error)

var extractors = map[string]Func{
	"csv":  extractCSV,
	"xml":  extractXML,
	"json": extractJSON,
	"docx": extractDocx,
	"odt":  extractODT,
	"pdf":  extractPDF,
}

// Extract parses content according to ext, matched exactly (no leading dot,
// case-sensitive). Parser failures yield an empty table and an error wrapping
// ErrMalformed.
func Extract(content []byte, ext string) (tbl *tabular.Table, err error) {
	if err := Check(ext); err != nil {
		return nil, err
	}
	fn := extractors[ext]

	defer func() {
		if r := recover(); r != nil {
			tbl, err = &tabular.Table{}, fmt.Errorf("%w: %s parser panic: %v", ErrMalformed, ext, r)
		}
	}()

	tbl, err = fn(content)
	if err != nil {
		return &tabular.Table{}, fmt.Errorf("%w: %s: %v", ErrMalformed, ext, err)
	}
	if tbl == nil {
		tbl = &tabular.Table{}
	}
	return tbl, nil
}

// Check reports whether ext can be extracted, returning ErrLegacyDoc or
// ErrUnsupportedExtension when it cannot.
func Check(ext string) error {
	if ext == "doc" {
		return ErrLegacyDoc
	}
	if _, ok := extractors[ext]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}
	return nil
}

// Supports reports whether ext has an extractor. "doc" is recognised but not
// supported.
func Supports(ext string) bool {
	_, ok := extractors[ext]
	return ok
}

// Supported returns the sorted list of extensions with an extractor.
func Supported() []string {
	exts := make([]string, 0, len(extractors))
	for ext := range extractors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// concatTables merges tables in encounter order under the first table's
// header.
func concatTables(tables []*tabular.Table) *tabular.Table {
	if len(tables) == 0 {
		return &tabular.Table{}
	}
	out := tables[0]
	for _, t := range tables[1:] {
		out.Concat(t)
	}
	return out
}
