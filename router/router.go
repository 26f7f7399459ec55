package router

import (
	"net/http"
	"time"

	"facet-search-service/handlers"
	"facet-search-service/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Engine is the part of the index engine client used by the operational
// endpoints.
type Engine interface {
	handlers.Pinger
	handlers.MappingInferrer
}

func NewRouter(registry *services.Registry, engine Engine, logger *zap.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogger(logger))

	r.HandleFunc("/health", handlers.Health(registry, engine)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/{collection}/search", handlers.Search(registry)).Methods(http.MethodGet)
	r.HandleFunc("/{collection}/paginate", handlers.Paginate(registry)).Methods(http.MethodGet)
	r.HandleFunc("/{collection}/facets", handlers.GetFacets(registry)).Methods(http.MethodGet)
	r.HandleFunc("/{collection}/attributes", handlers.GetIndexAttributesHandler(registry, engine)).Methods(http.MethodGet)
	r.HandleFunc("/{collection}/aggregations", handlers.SetAggregation(registry)).Methods(http.MethodPut)
	r.HandleFunc("/{collection}/aggregations/{name}", handlers.SetAggregation(registry)).Methods(http.MethodPut)
	r.HandleFunc("/{collection}/{id}", handlers.GetDocument(registry)).Methods(http.MethodGet)

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// requestLogger tags every request with an id and logs its outcome.
func requestLogger(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", id)

			reqLogger := logger.With(zap.String("request_id", id))
			if collection := mux.Vars(r)["collection"]; collection != "" {
				reqLogger = reqLogger.With(zap.String("collection", collection))
			}
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r.WithContext(handlers.WithLogger(r.Context(), reqLogger)))

			reqLogger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)))
		})
	}
}
