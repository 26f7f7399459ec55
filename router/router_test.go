package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"facet-search-service/collections"
	"facet-search-service/models"
	"facet-search-service/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeEngine struct {
	pingErr error
	nested  map[string]bool
}

func (f *fakeEngine) Search(_ context.Context, _ string, body map[string]interface{}) (*models.EngineResponse, error) {
	if body["size"] == 0 {
		return &models.EngineResponse{Aggregations: map[string]interface{}{
			"author": map[string]interface{}{"author": map[string]interface{}{"buckets": []interface{}{
				map[string]interface{}{"key": "5_Homer", "doc_count": 2.0},
			}}},
		}}, nil
	}
	return &models.EngineResponse{Hits: models.EngineHits{
		Total: models.TotalHits{Value: 1},
		Hits:  []models.EngineHit{{ID: "1", Source: map[string]interface{}{"id": 1}}},
	}}, nil
}

func (f *fakeEngine) Get(_ context.Context, _, id string) (map[string]interface{}, error) {
	if id != "1" {
		return nil, models.ErrNotFound
	}
	return map[string]interface{}{"id": 1}, nil
}

func (f *fakeEngine) Ping(context.Context) error {
	return f.pingErr
}

func (f *fakeEngine) InferMappings(_ context.Context, index string) (*models.MappingInfo, error) {
	return &models.MappingInfo{IndexName: index, FieldMappings: map[string]models.FieldMapping{}, NestedPaths: f.nested}, nil
}

func newTestRouter(t *testing.T, engine *fakeEngine) http.Handler {
	t.Helper()
	c, err := collections.Embedded()
	require.NoError(t, err)
	svc, err := services.NewSearchService(engine, c, "", zaptest.NewLogger(t))
	require.NoError(t, err)
	registry := services.NewRegistry()
	require.NoError(t, registry.Register(svc))
	return NewRouter(registry, engine, zaptest.NewLogger(t))
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestSearchEndpoint(t *testing.T) {
	h := newTestRouter(t, &fakeEngine{})

	rec, body := do(t, h, http.MethodGet, "/text/search?filters[author][]=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, body["count"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Contains(t, body["filters"], "author")
	assert.Contains(t, body["aggregation"], "author")

	_, body = do(t, h, http.MethodGet, "/text/search?mode=search", "")
	assert.NotContains(t, body, "aggregation")

	_, body = do(t, h, http.MethodGet, "/text/search?mode=aggregate", "")
	assert.Contains(t, body, "author")
	assert.NotContains(t, body, "count")

	rec, body = do(t, h, http.MethodGet, "/nope/search", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "unknown_collection", body["type"])
}

func TestRequestIDIsEchoed(t *testing.T) {
	h := newTestRouter(t, &fakeEngine{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
}

func TestFacetsAndAggregationSwitch(t *testing.T) {
	h := newTestRouter(t, &fakeEngine{})

	rec, body := do(t, h, http.MethodGet, "/text/facets?only[]=author&only[]=work", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "author")
	assert.Contains(t, body, "work")
	assert.NotContains(t, body, "century")

	rec, _ = do(t, h, http.MethodPut, "/text/aggregations/author", `{"active": false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	_, body = do(t, h, http.MethodGet, "/text/facets", "")
	assert.NotContains(t, body, "author")
	assert.Contains(t, body, "work")

	rec, _ = do(t, h, http.MethodPut, "/text/aggregations", `{"active": false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	_, body = do(t, h, http.MethodGet, "/text/facets", "")
	assert.Empty(t, body)

	rec, body = do(t, h, http.MethodPut, "/text/aggregations/author", `{"enabled": true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", body["type"])

	rec, _ = do(t, h, http.MethodPut, "/text/aggregations/nope", `{"active": true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDocumentEndpoints(t *testing.T) {
	h := newTestRouter(t, &fakeEngine{})

	rec, body := do(t, h, http.MethodGet, "/text/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, body["id"])

	rec, body = do(t, h, http.MethodGet, "/text/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["type"])

	rec, _ = do(t, h, http.MethodGet, "/text/paginate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[1]`, rec.Body.String())
}

func TestHealthEndpoint(t *testing.T) {
	rec, body := do(t, newTestRouter(t, &fakeEngine{}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"text"}, body["collections"])

	rec, body = do(t, newTestRouter(t, &fakeEngine{pingErr: errors.New("refused")}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", body["status"])
}

func TestAttributesEndpoint(t *testing.T) {
	rec, body := do(t, newTestRouter(t, &fakeEngine{nested: map[string]bool{"works": true}}), http.MethodGet, "/text/attributes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["valid"])

	_, body = do(t, newTestRouter(t, &fakeEngine{nested: map[string]bool{}}), http.MethodGet, "/text/attributes", "")
	assert.Equal(t, false, body["valid"])
	assert.Contains(t, body["error"], "works")
}
