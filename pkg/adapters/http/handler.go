// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"encoding/json"
	"net/http"

	"github.com/leseb/tabconv/pkg/core/schema"
	"github.com/leseb/tabconv/pkg/core/services"
	"github.com/leseb/tabconv/pkg/observability/logging"
)

// Options configures the HTTP adapter.
type Options struct {
	// MaxUploadBytes bounds the request body of POST /.
	MaxUploadBytes int64
	// Metrics, when set, is served at GET /metrics.
	Metrics http.Handler
}

// Handler implements the HTTP adapter
type Handler struct {
	logger         *logging.Logger
	mux            *http.ServeMux
	conversions    *services.ConversionService
	maxUploadBytes int64
}

// New creates a new HTTP handler
func New(logger *logging.Logger, conversions *services.ConversionService, opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	h := &Handler{
		logger:         logger,
		mux:            http.NewServeMux(),
		conversions:    conversions,
		maxUploadBytes: opts.MaxUploadBytes,
	}

	h.mux.HandleFunc("POST /{$}", h.handleConvert)

	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /openapi.json", h.handleOpenAPI)
	if opts.Metrics != nil {
		h.mux.Handle("GET /metrics", opts.Metrics)
	}

	// Conversion journal
	h.mux.HandleFunc("GET /v1/conversions", h.handleListConversions)
	h.mux.HandleFunc("GET /v1/conversions/{id}", h.handleGetConversion)
	h.mux.HandleFunc("GET /v1/conversions/{id}/content", h.handleGetConversionContent)
	h.mux.HandleFunc("DELETE /v1/conversions/{id}", h.handleDeleteConversion)

	return h
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("Request",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	h.mux.ServeHTTP(w, r)
}

// handleHealth handles health check requests
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to write response", "error", err)
	}
}

// writeError writes a JSON error envelope. Used by the /v1 endpoints.
func (h *Handler) writeError(w http.ResponseWriter, status int, errType, message string) {
	h.writeJSON(w, status, schema.ErrorResponse{
		Error: schema.ErrorDetail{Type: errType, Message: message},
	})
}

// writeText writes a plain-text error. Used by POST /.
func (h *Handler) writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	w.Write([]byte(message))
}
