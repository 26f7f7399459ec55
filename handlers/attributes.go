package handlers

import (
	"context"
	"errors"
	"net/http"

	"facet-search-service/models"
	"facet-search-service/services"

	"github.com/gorilla/mux"
)

type MappingInferrer interface {
	InferMappings(ctx context.Context, indexName string) (*models.MappingInfo, error)
}

// GetIndexAttributesHandler answers GET /{collection}/attributes with the
// mapped fields of the collection index and the result of checking the
// schema against them.
func GetIndexAttributesHandler(registry *services.Registry, inferrer MappingInferrer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc, err := registry.Get(mux.Vars(r)["collection"])
		if err != nil {
			writeError(w, r, err)
			return
		}
		info, err := inferrer.InferMappings(r.Context(), svc.IndexName())
		if err != nil {
			writeError(w, r, err)
			return
		}

		body := map[string]interface{}{
			"index":       info.IndexName,
			"fields":      info.FieldMappings,
			"nestedPaths": info.NestedPaths,
			"valid":       true,
		}
		if err := services.ValidateMappings(svc.Collection(), info); err != nil {
			if !errors.Is(err, models.ErrConfiguration) {
				writeError(w, r, err)
				return
			}
			body["valid"] = false
			body["error"] = err.Error()
		}
		writeJSON(w, http.StatusOK, body)
	}
}
