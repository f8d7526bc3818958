// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import "github.com/leseb/tabconv/pkg/storage"

// Conversion is the API representation of a journal record.
type Conversion struct {
	ID          string  `json:"id"`
	Object      string  `json:"object"` // Always "conversion"
	Filename    string  `json:"filename"`
	Extension   string  `json:"extension"`
	Format      string  `json:"format"`
	Status      string  `json:"status"`          // "completed" or "failed"
	Error       string  `json:"error,omitempty"` // Client-facing message for failed conversions
	Rows        int     `json:"rows"`
	Columns     int     `json:"columns"`
	InputBytes  int64   `json:"input_bytes"`
	OutputBytes int64   `json:"output_bytes"`
	HasResult   bool    `json:"has_result"` // Whether GET /v1/conversions/{id}/content can serve the output
	CreatedAt   int64   `json:"created_at"` // Unix seconds
	DurationMS  float64 `json:"duration_ms"`
}

// NewConversion converts a journal record to its API form.
func NewConversion(c *storage.Conversion) Conversion {
	return Conversion{
		ID:          c.ID,
		Object:      "conversion",
		Filename:    c.Filename,
		Extension:   c.Extension,
		Format:      c.Format,
		Status:      string(c.Status),
		Error:       c.Error,
		Rows:        c.Rows,
		Columns:     c.Columns,
		InputBytes:  c.InputBytes,
		OutputBytes: c.OutputBytes,
		HasResult:   c.ResultFileID != "",
		CreatedAt:   c.CreatedAt.Unix(),
		DurationMS:  float64(c.Duration.Microseconds()) / 1000,
	}
}

// ListConversionsResponse represents a paginated list of conversions
type ListConversionsResponse struct {
	Object  string       `json:"object"` // Always "list"
	Data    []Conversion `json:"data"`
	FirstID string       `json:"first_id,omitempty"`
	LastID  string       `json:"last_id,omitempty"`
	HasMore bool         `json:"has_more"`
}

// DeleteConversionResponse represents the response from deleting a conversion
type DeleteConversionResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"` // Always "conversion.deleted"
	Deleted bool   `json:"deleted"`
}

// ErrorResponse is the JSON error envelope used by the /v1 endpoints.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one API error.
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
