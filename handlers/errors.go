package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"facet-search-service/models"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	jsonResponse, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Error converting response to JSON: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(jsonResponse)
}

// errorStatus maps sentinel errors to HTTP status codes.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrUnknownCollection):
		return http.StatusNotFound, "unknown_collection"
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, models.ErrIndexEngine):
		return http.StatusBadGateway, "index_engine"
	case errors.Is(err, models.ErrConfiguration):
		return http.StatusInternalServerError, "configuration"
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"
	}
	return http.StatusInternalServerError, "internal"
}

var errBadRequest = errors.New("bad request")

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := errorStatus(err)
	if status >= http.StatusInternalServerError {
		Logger(r.Context()).Error("request failed", zap.Error(err), zap.Int("status", status))
	}
	writeJSON(w, status, map[string]string{"error": err.Error(), "type": kind})
}
