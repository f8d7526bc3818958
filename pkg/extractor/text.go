// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText returns content as UTF-8 without a byte order mark. Valid UTF-8
// passes through; UTF-16 with a BOM and legacy single-byte encodings are
// transcoded.
func decodeText(content []byte) []byte {
	if utf8.Valid(content) {
		return bytes.TrimPrefix(content, utf8BOM)
	}
	enc, _, _ := charset.DetermineEncoding(content, "text/plain")
	decoded, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		return content
	}
	return bytes.TrimPrefix(decoded, utf8BOM)
}
