package handlers

import (
	"context"
	"net/http"

	"facet-search-service/services"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports the registered collections and, when pinger is set, the
// reachability of the index engine.
func Health(registry *services.Registry, pinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"status":      "ok",
			"collections": registry.Names(),
		}
		if pinger != nil {
			if err := pinger.Ping(r.Context()); err != nil {
				body["status"] = "unavailable"
				body["error"] = err.Error()
				writeJSON(w, http.StatusServiceUnavailable, body)
				return
			}
		}
		writeJSON(w, http.StatusOK, body)
	}
}
