package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"facet-search-service/models"

	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

// testCollection covers every filter family used by the builders.
func testCollection() models.Collection {
	return models.Collection{
		Name:  "text",
		Index: "text",
		Defaults: models.SearchDefaults{
			Limit:     25,
			Page:      1,
			Ascending: true,
			OrderBy:   []string{"id"},
		},
		OrderBy: map[string][]string{
			"id":     {"id"},
			"author": {"authors.name"},
		},
		Filters: models.FilterConfigs{
			{Name: "author", Type: models.FilterObjectID, Field: "authors"},
			{Name: "textType", Type: models.FilterObjectID, Field: "textTypes"},
			{Name: "works_nested", Type: models.FilterNestedMultiple, NestedPath: "works", Filters: models.FilterConfigs{
				{Name: "work", Type: models.FilterObjectID, Field: "works"},
				{Name: "century", Type: models.FilterObjectID, Field: "centuries"},
			}},
			{Name: "manuscript", Type: models.FilterNestedID, Field: "manuscripts"},
			{Name: "genre"},
			{Name: "year", Type: models.FilterNumericRange, FloorField: "year_floor", CeilingField: "year_ceiling", Ignore: []float64{-1}},
			{Name: "date", Type: models.FilterDMYRange},
			{Name: "period", Type: models.FilterDateRange, FloorField: "period_floor", CeilingField: "period_ceiling"},
			{Name: "text", Type: models.FilterText},
			{Name: "title", Type: models.FilterTextPrefix},
			{Name: "public", Type: models.FilterBoolean},
			{Name: "has_image", Type: models.FilterExists, Field: "images"},
			{Name: "query", Type: models.FilterQueryString, Field: "body"},
		},
		Aggregations: models.AggregationConfigs{
			{Name: "author", Type: models.AggregationObjectIDName, Field: "authors", CountMissing: true, CountAny: true},
			{Name: "work", Type: models.AggregationObjectIDName, Field: "works", NestedPath: "works"},
			{Name: "century", Type: models.AggregationObjectIDName, Field: "centuries", NestedPath: "works"},
			{Name: "genre", Type: models.AggregationTerms},
			{Name: "year", Type: models.AggregationStats, Field: "year_floor"},
		},
	}
}

func normalizedCollection(t *testing.T) models.Collection {
	t.Helper()
	c, err := NormalizeCollection(testCollection())
	require.NoError(t, err)
	return c
}

func sanitize(t *testing.T, c models.Collection, raw map[string]interface{}) models.FilterValues {
	t.Helper()
	return SanitizeFilters(raw, c.Filters)
}

// asJSON renders query or body sources for comparison with assert.JSONEq.
func asJSON(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

// dig walks nested maps by key.
func dig(t *testing.T, m map[string]interface{}, keys ...string) map[string]interface{} {
	t.Helper()
	current := m
	for _, k := range keys {
		next, ok := current[k].(map[string]interface{})
		require.Truef(t, ok, "missing key %q in %v", k, current)
		current = next
	}
	return current
}

type fakeEngine struct {
	mu       sync.Mutex
	bodies   []map[string]interface{}
	indexes  []string
	search   func(body map[string]interface{}) (*models.EngineResponse, error)
	docs     map[string]map[string]interface{}
	getCalls int
}

func (f *fakeEngine) Search(_ context.Context, index string, body map[string]interface{}) (*models.EngineResponse, error) {
	f.mu.Lock()
	f.bodies = append(f.bodies, body)
	f.indexes = append(f.indexes, index)
	f.mu.Unlock()
	if f.search != nil {
		return f.search(body)
	}
	return &models.EngineResponse{}, nil
}

func (f *fakeEngine) Get(_ context.Context, index, id string) (map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	doc, ok := f.docs[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return doc, nil
}

func (f *fakeEngine) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bodies)
}
