package handlers

import (
	"net/http"

	"facet-search-service/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Search answers GET /{collection}/search in the requested mode.
func Search(registry *services.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc, err := registry.Get(mux.Vars(r)["collection"])
		if err != nil {
			writeError(w, r, err)
			return
		}

		raw := ParseQuery(r.URL.Query())
		mode := services.ParseMode(r.URL.Query().Get("mode"))
		Logger(r.Context()).Debug("search", zap.String("mode", string(mode)))

		res, err := svc.Run(r.Context(), raw, mode, services.AggregationOptions{})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// Paginate answers GET /{collection}/paginate with the ids of all matches.
func Paginate(registry *services.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc, err := registry.Get(mux.Vars(r)["collection"])
		if err != nil {
			writeError(w, r, err)
			return
		}
		ids, err := svc.Paginate(r.Context(), ParseQuery(r.URL.Query()))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ids)
	}
}
