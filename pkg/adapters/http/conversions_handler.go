// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/leseb/tabconv/pkg/core/schema"
	"github.com/leseb/tabconv/pkg/core/services"
	"github.com/leseb/tabconv/pkg/storage"
)

// handleListConversions handles GET /v1/conversions
func (h *Handler) handleListConversions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > storage.MaxLimit {
			h.writeError(w, http.StatusBadRequest, "invalid_request", "limit must be an integer between 1 and 100")
			return
		}
		limit = n
	}
	order := q.Get("order")
	if order != "" && order != "asc" && order != "desc" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "order must be asc or desc")
		return
	}

	records, hasMore, err := h.conversions.ListConversions(r.Context(), q.Get("after"), limit, order)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := schema.ListConversionsResponse{
		Object:  "list",
		Data:    make([]schema.Conversion, 0, len(records)),
		HasMore: hasMore,
	}
	for _, rec := range records {
		resp.Data = append(resp.Data, schema.NewConversion(rec))
	}
	if len(resp.Data) > 0 {
		resp.FirstID = resp.Data[0].ID
		resp.LastID = resp.Data[len(resp.Data)-1].ID
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// handleGetConversion handles GET /v1/conversions/{id}
func (h *Handler) handleGetConversion(w http.ResponseWriter, r *http.Request) {
	rec, err := h.conversions.GetConversion(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, schema.NewConversion(rec))
}

// handleGetConversionContent handles GET /v1/conversions/{id}/content
func (h *Handler) handleGetConversionContent(w http.ResponseWriter, r *http.Request) {
	meta, content, err := h.conversions.GetResult(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", meta.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+meta.Filename)
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

// handleDeleteConversion handles DELETE /v1/conversions/{id}
func (h *Handler) handleDeleteConversion(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.conversions.DeleteConversion(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, schema.DeleteConversionResponse{
		ID:      id,
		Object:  "conversion.deleted",
		Deleted: true,
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrJournalDisabled):
		h.writeError(w, http.StatusNotFound, "not_found", "Conversion journal is disabled")
	case errors.Is(err, storage.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "not_found", "Conversion not found")
	case errors.Is(err, services.ErrNotArchived):
		h.writeError(w, http.StatusNotFound, "not_found", "Conversion result is not archived")
	default:
		h.logger.Error("Journal request failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "server_error", "Internal server error")
	}
}
