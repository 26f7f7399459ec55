package handlers

import (
	"net/http"

	"facet-search-service/services"

	"github.com/gorilla/mux"
)

// GetFacets answers GET /{collection}/facets with the facet map only.
// "only[]" and "exclude[]" restrict the computed facets.
func GetFacets(registry *services.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc, err := registry.Get(mux.Vars(r)["collection"])
		if err != nil {
			writeError(w, r, err)
			return
		}

		query := r.URL.Query()
		raw := ParseQuery(query)
		filters, _ := raw["filters"].(map[string]interface{})
		opts := services.AggregationOptions{
			Only:    query["only[]"],
			Exclude: query["exclude[]"],
		}

		res, err := svc.Aggregate(r.Context(), filters, opts)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
