// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"archive/zip"
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/go-pdf/fpdf"
)

func TestExtract_Dispatch(t *testing.T) {
	tests := []struct {
		name    string
		ext     string
		wantErr error
	}{
		{"legacy doc", "doc", ErrLegacyDoc},
		{"unknown", "xlsx", ErrUnsupportedExtension},
		{"empty", "", ErrUnsupportedExtension},
		{"case sensitive", "CSV", ErrUnsupportedExtension},
		{"leading dot", ".csv", ErrUnsupportedExtension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract([]byte("a,b\n1,2"), tt.ext)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Extract(%q) error = %v, want %v", tt.ext, err, tt.wantErr)
			}
		})
	}
}

func TestSupported(t *testing.T) {
	want := []string{"csv", "docx", "json", "odt", "pdf", "xml"}
	if got := Supported(); !reflect.DeepEqual(got, want) {
		t.Errorf("Supported() = %v, want %v", got, want)
	}
	if Supports("doc") {
		t.Error("doc must not be reported as supported")
	}
}

func TestExtract_MalformedYieldsEmptyTable(t *testing.T) {
	for _, ext := range []string{"xml", "json", "docx", "odt", "pdf"} {
		t.Run(ext, func(t *testing.T) {
			tbl, err := Extract([]byte("definitely not a document"), ext)
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("error = %v, want ErrMalformed", err)
			}
			if tbl == nil || !tbl.Empty() {
				t.Fatalf("expected empty non-nil table, got %+v", tbl)
			}
		})
	}
}

func TestExtractCSV(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		columns []string
		rows    [][]string
	}{
		{
			name:    "simple",
			content: []byte("a,b\n1,2\n"),
			columns: []string{"a", "b"},
			rows:    [][]string{{"1", "2"}},
		},
		{
			name:    "quoted and ragged",
			content: []byte("name,note\n\"Doe, J\",\"said \"\"hi\"\"\"\nSolo\n"),
			columns: []string{"name", "note"},
			rows:    [][]string{{"Doe, J", `said "hi"`}, {"Solo", ""}},
		},
		{
			name:    "utf8 bom",
			content: append([]byte{0xEF, 0xBB, 0xBF}, []byte("a,b\n1,2")...),
			columns: []string{"a", "b"},
			rows:    [][]string{{"1", "2"}},
		},
		{
			name:    "windows-1252",
			content: []byte("city\nS\xe3o Paulo\n"),
			columns: []string{"city"},
			rows:    [][]string{{"São Paulo"}},
		},
		{
			name:    "utf-16le bom",
			content: []byte{0xFF, 0xFE, 'x', 0, '\n', 0, '7', 0},
			columns: []string{"x"},
			rows:    [][]string{{"7"}},
		},
		{
			name:    "duplicate headers",
			content: []byte("a,a\n1,2"),
			columns: []string{"a", "a.1"},
			rows:    [][]string{{"1", "2"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := Extract(tt.content, "csv")
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if !reflect.DeepEqual(tbl.Columns, tt.columns) {
				t.Errorf("Columns = %q, want %q", tbl.Columns, tt.columns)
			}
			if !reflect.DeepEqual(tbl.Rows, tt.rows) {
				t.Errorf("Rows = %q, want %q", tbl.Rows, tt.rows)
			}
		})
	}
}

func TestExtractCSV_HeaderOnlyIsEmpty(t *testing.T) {
	tbl, err := Extract([]byte("a,b\n"), "csv")
	if err != nil {
		t.Fatal(err)
	}
	if !tbl.Empty() {
		t.Errorf("expected empty table, got %+v", tbl)
	}
}

func TestExtractXML(t *testing.T) {
	content := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<data>
  <row id="1">
    <name>Alice</name>
    <city>Paris</city>
  </row>
  <row id="2">
    <name>Bob</name>
    <age>30</age>
  </row>
</data>`)

	tbl, err := Extract(content, "xml")
	if err != nil {
		t.Fatal(err)
	}
	wantCols := []string{"id", "name", "city", "age"}
	if !reflect.DeepEqual(tbl.Columns, wantCols) {
		t.Errorf("Columns = %q, want %q", tbl.Columns, wantCols)
	}
	wantRows := [][]string{{"1", "Alice", "Paris", ""}, {"2", "Bob", "", "30"}}
	if !reflect.DeepEqual(tbl.Rows, wantRows) {
		t.Errorf("Rows = %q, want %q", tbl.Rows, wantRows)
	}
}

func TestExtractXML_Latin1(t *testing.T) {
	content := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><data><row><v>caf\xe9</v></row></data>")
	tbl, err := Extract(content, "xml")
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Len() != 1 || tbl.Rows[0][0] != "café" {
		t.Errorf("Rows = %q, want [[café]]", tbl.Rows)
	}
}

func TestExtractXML_TrimsElementText(t *testing.T) {
	content := []byte("<data><row><v>  x </v></row><row><v>\n\ty\n</v></row></data>")
	tbl, err := Extract(content, "xml")
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"x"}, {"y"}}
	if !reflect.DeepEqual(tbl.Rows, want) {
		t.Errorf("Rows = %q, want %q", tbl.Rows, want)
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		columns []string
		rows    [][]string
	}{
		{
			name:    "records keep key order",
			content: `[{"b":"2","a":1},{"a":3,"c":null}]`,
			columns: []string{"b", "a", "c"},
			rows:    [][]string{{"2", "1", ""}, {"", "3", ""}},
		},
		{
			name:    "values",
			content: `[["x","y"],[1,true]]`,
			columns: []string{"x", "y"},
			rows:    [][]string{{"1", "true"}},
		},
		{
			name:    "columns orient",
			content: `{"a":{"0":"1","1":"3"},"b":{"0":"2","1":"4"}}`,
			columns: []string{"a", "b"},
			rows:    [][]string{{"1", "2"}, {"3", "4"}},
		},
		{
			name:    "column arrays",
			content: `{"a":[1,3],"b":[2]}`,
			columns: []string{"a", "b"},
			rows:    [][]string{{"1", "2"}, {"3", ""}},
		},
		{
			name:    "split orient",
			content: `{"columns":["a","b"],"index":[0],"data":[[1,2]]}`,
			columns: []string{"a", "b"},
			rows:    [][]string{{"1", "2"}},
		},
		{
			name:    "nested value kept as json",
			content: `[{"a":{"k":1}}]`,
			columns: []string{"a"},
			rows:    [][]string{{`{"k":1}`}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := Extract([]byte(tt.content), "json")
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if !reflect.DeepEqual(tbl.Columns, tt.columns) {
				t.Errorf("Columns = %q, want %q", tbl.Columns, tt.columns)
			}
			if !reflect.DeepEqual(tbl.Rows, tt.rows) {
				t.Errorf("Rows = %q, want %q", tbl.Rows, tt.rows)
			}
		})
	}
}

func TestExtractJSON_ScalarIsMalformed(t *testing.T) {
	_, err := Extract([]byte(`42`), "json")
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("error = %v, want ErrMalformed", err)
	}
}

func TestExtractDocx(t *testing.T) {
	body := `<w:tbl>
  <w:tr><w:tc><w:p><w:r><w:t>Name</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Age</w:t></w:r></w:p></w:tc></w:tr>
  <w:tr><w:tc><w:p><w:r><w:t>Ali</w:t></w:r><w:r><w:t>ce</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>30</w:t></w:r></w:p></w:tc></w:tr>
</w:tbl>
<w:p><w:r><w:t>Between tables</w:t></w:r></w:p>
<w:tbl>
  <w:tr><w:tc><w:p><w:r><w:t>ignored</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>header</w:t></w:r></w:p></w:tc></w:tr>
  <w:tr>
    <w:tc><w:tcPr><w:gridSpan w:val="2"/></w:tcPr><w:p><w:r><w:t>wide</w:t></w:r></w:p></w:tc>
  </w:tr>
  <w:tr>
    <w:tc><w:tcPr><w:vMerge w:val="restart"/></w:tcPr><w:p><w:r><w:t>top</w:t></w:r></w:p><w:p><w:r><w:t>line2</w:t></w:r></w:p></w:tc>
    <w:tc><w:p><w:r><w:t>a</w:t></w:r></w:p></w:tc>
  </w:tr>
  <w:tr>
    <w:tc><w:tcPr><w:vMerge/></w:tcPr><w:p/></w:tc>
    <w:tc><w:p><w:r><w:t>b</w:t></w:r></w:p><w:tbl><w:tr><w:tc><w:p><w:r><w:t>nested</w:t></w:r></w:p></w:tc></w:tr></w:tbl></w:tc>
  </w:tr>
</w:tbl>`

	tbl, err := Extract(buildDocx(t, body), "docx")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tbl.Columns, []string{"Name", "Age"}) {
		t.Errorf("Columns = %q", tbl.Columns)
	}
	want := [][]string{
		{"Alice", "30"},
		{"wide", "wide"},
		{"top\nline2", "a"},
		{"top\nline2", "b"},
	}
	if !reflect.DeepEqual(tbl.Rows, want) {
		t.Errorf("Rows = %q, want %q", tbl.Rows, want)
	}
}

func TestExtractDocx_NoTables(t *testing.T) {
	tbl, err := Extract(buildDocx(t, `<w:p><w:r><w:t>Just prose.</w:t></w:r></w:p>`), "docx")
	if err != nil {
		t.Fatal(err)
	}
	if !tbl.Empty() {
		t.Errorf("expected empty table, got %+v", tbl)
	}
}

func TestExtractODT(t *testing.T) {
	body := `<table:table table:name="T1">
  <table:table-column table:number-columns-repeated="2"/>
  <table:table-header-rows>
    <table:table-row>
      <table:table-cell><text:p>City</text:p></table:table-cell>
      <table:table-cell><text:p>Pop<text:s text:c="2"/>k</text:p></table:table-cell>
      <table:table-cell table:number-columns-repeated="1000"/>
    </table:table-row>
  </table:table-header-rows>
  <table:table-row>
    <table:table-cell><text:p>Oslo</text:p><text:p>Norway</text:p></table:table-cell>
    <table:table-cell><text:p>700</text:p></table:table-cell>
  </table:table-row>
  <table:table-row table:number-rows-repeated="2">
    <table:table-cell table:number-columns-repeated="2"><text:p>x</text:p></table:table-cell>
  </table:table-row>
  <table:table-row table:number-rows-repeated="5000">
    <table:table-cell table:number-columns-repeated="1024"/>
  </table:table-row>
</table:table>
<text:p>between</text:p>
<table:table table:name="T2">
  <table:table-row>
    <table:table-cell><text:p>h1</text:p></table:table-cell>
    <table:table-cell><text:p>h2</text:p></table:table-cell>
  </table:table-row>
  <table:table-row>
    <table:table-cell table:number-columns-spanned="2"><text:p>merged</text:p></table:table-cell>
    <table:covered-table-cell/>
  </table:table-row>
</table:table>`

	tbl, err := Extract(buildODT(t, body), "odt")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tbl.Columns, []string{"City", "Pop  k"}) {
		t.Errorf("Columns = %q", tbl.Columns)
	}
	want := [][]string{
		{"Oslo\nNorway", "700"},
		{"x", "x"},
		{"x", "x"},
		{"merged", ""},
	}
	if !reflect.DeepEqual(tbl.Rows, want) {
		t.Errorf("Rows = %q, want %q", tbl.Rows, want)
	}
}

func TestExtractODT_NoTables(t *testing.T) {
	tbl, err := Extract(buildODT(t, `<text:p>Nothing tabular here.</text:p>`), "odt")
	if err != nil {
		t.Fatal(err)
	}
	if !tbl.Empty() {
		t.Errorf("expected empty table, got %+v", tbl)
	}
}

func TestExtractPDF(t *testing.T) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	doc.SetFont("Helvetica", "", 10)
	rows := [][]string{{"Name", "Score", "Note"}, {"Alice", "10", "ok"}, {"Bob", "", "late"}}
	for _, row := range rows {
		for _, cell := range row {
			doc.CellFormat(40, 8, cell, "1", 0, "L", false, 0, "")
		}
		doc.Ln(-1)
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("render fixture: %v", err)
	}

	tbl, err := Extract(buf.Bytes(), "pdf")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tbl.Columns, rows[0]) {
		t.Errorf("Columns = %q, want %q", tbl.Columns, rows[0])
	}
	if !reflect.DeepEqual(tbl.Rows, rows[1:]) {
		t.Errorf("Rows = %q, want %q", tbl.Rows, rows[1:])
	}
}

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	return buildZip(t, "word/document.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`+body+`</w:body></w:document>`)
}

func buildODT(t *testing.T, body string) []byte {
	t.Helper()
	return buildZip(t, "content.xml", `<?xml version="1.0" encoding="UTF-8"?>
<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"
  xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0"
  xmlns:table="urn:oasis:names:tc:opendocument:xmlns:table:1.0">
<office:body><office:text>`+body+`</office:text></office:body>
</office:document-content>`)
}

func buildZip(t *testing.T, name, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
