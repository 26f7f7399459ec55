package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"facet-search-service/services"

	"github.com/gorilla/mux"
)

// GetDocument answers GET /{collection}/{id}.
func GetDocument(registry *services.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		svc, err := registry.Get(vars["collection"])
		if err != nil {
			writeError(w, r, err)
			return
		}
		doc, err := svc.Get(r.Context(), vars["id"])
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

type aggregationState struct {
	Active *bool `json:"active"`
}

// SetAggregation answers PUT /{collection}/aggregations[/{name}] with a
// body {"active": bool}. Without a name every facet is switched.
func SetAggregation(registry *services.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		svc, err := registry.Get(vars["collection"])
		if err != nil {
			writeError(w, r, err)
			return
		}

		var state aggregationState
		if err := json.NewDecoder(r.Body).Decode(&state); err != nil || state.Active == nil {
			writeError(w, r, fmt.Errorf("body must be {\"active\": bool}: %w", errBadRequest))
			return
		}
		if err := svc.SetAggregationActive(vars["name"], *state.Active); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"aggregation": vars["name"],
			"active":      *state.Active,
		})
	}
}
