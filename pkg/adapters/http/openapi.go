// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/leseb/tabconv/docs"
	"gopkg.in/yaml.v3"
)

var (
	cachedJSON []byte
	jsonOnce   sync.Once
)

// handleOpenAPI serves the OpenAPI specification as JSON.
// The document is embedded from docs/openapi.yaml.
func (h *Handler) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	jsonOnce.Do(func() {
		var spec interface{}
		if err := yaml.Unmarshal(docs.OpenAPISpec, &spec); err != nil {
			h.logger.Error("Failed to parse embedded OpenAPI spec", "error", err)
			return
		}
		converted := convertYAMLToJSON(spec)
		data, err := json.Marshal(converted)
		if err != nil {
			h.logger.Error("Failed to marshal OpenAPI spec to JSON", "error", err)
			return
		}
		cachedJSON = data
	})

	if cachedJSON == nil {
		h.writeError(w, http.StatusInternalServerError, "spec_error", "Failed to load OpenAPI spec")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(cachedJSON)
}

// convertYAMLToJSON makes a yaml.v3 document encodable as JSON. yaml.v3
// decodes mappings with non-string keys (e.g. unquoted status codes) into
// map[interface{}]interface{}, which encoding/json rejects.
func convertYAMLToJSON(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, item := range val {
			val[k] = convertYAMLToJSON(item)
		}
		return val
	case map[interface{}]interface{}:
		result := make(map[string]interface{}, len(val))
		for k, item := range val {
			result[fmt.Sprint(k)] = convertYAMLToJSON(item)
		}
		return result
	case []interface{}:
		for i, item := range val {
			val[i] = convertYAMLToJSON(item)
		}
		return val
	default:
		return v
	}
}
