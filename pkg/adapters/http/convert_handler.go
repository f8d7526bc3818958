// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/leseb/tabconv/pkg/core/services"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

// handleConvert handles POST /
//
// The output format comes from the "format" query parameter or form field,
// the document from the "file" multipart field.
func (h *Handler) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			h.writeText(w, http.StatusBadRequest, "File too large")
			return
		}
		h.logger.Debug("Failed to parse multipart form", "error", err)
		h.writeText(w, http.StatusBadRequest, "Failed to parse multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeText(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Failed to read uploaded file", "error", err)
		h.writeText(w, http.StatusBadRequest, "Failed to parse multipart form")
		return
	}

	res, err := h.conversions.Convert(r.Context(), services.Request{
		Filename: header.Filename,
		Content:  content,
		Format:   r.FormValue("format"),
	})
	if err != nil {
		var cerr *services.Error
		if errors.As(err, &cerr) {
			h.writeText(w, http.StatusBadRequest, cerr.Message)
			return
		}
		h.logger.Error("Conversion failed", "error", err)
		h.writeText(w, http.StatusBadRequest, "Could not render result.")
		return
	}

	out := res.Output
	w.Header().Set("Content-Type", out.ContentType)
	if out.Filename != "" {
		w.Header().Set("Content-Disposition", "attachment; filename="+out.Filename)
	}
	w.Header().Set("X-Conversion-Id", res.ID)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out.Body); err != nil {
		h.logger.Warn("Failed to write conversion result", "id", res.ID, "error", err)
	}
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	// multipart wraps some read errors without %w.
	return strings.Contains(err.Error(), "request body too large")
}
