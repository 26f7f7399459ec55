package collections

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"facet-search-service/models"
	"facet-search-service/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestEmbeddedCollection(t *testing.T) {
	c, err := Embedded()
	require.NoError(t, err)

	assert.Equal(t, "text", c.Name)
	assert.Equal(t, 25, c.Defaults.Limit)
	assert.Equal(t, []string{"authors.name"}, c.OrderBy["author"])
	assert.Equal(t, []string{"author", "textType", "works_nested", "reference"}, c.Filters.Names())
	assert.Equal(t, []string{"author", "work", "century", "textType", "reference"}, c.Aggregations.Names())

	works, ok := c.Filters.Get("works_nested")
	require.True(t, ok)
	assert.Equal(t, []string{"work", "century"}, works.Filters.Names())

	normalized, err := services.NormalizeCollection(c)
	require.NoError(t, err)
	century, _ := normalized.Aggregations.Get("century")
	assert.Equal(t, "works.centuries", century.Field)
}

func TestEmbeddedCollectionFacetScopes(t *testing.T) {
	raw, err := Embedded()
	require.NoError(t, err)
	c, err := services.NormalizeCollection(raw)
	require.NoError(t, err)

	filters := map[string]interface{}{"author": []interface{}{"5"}}
	authorScope := `{"bool": {"filter": [{"terms": {"authors.id": [5]}}]}}`

	values := services.SanitizeFilters(filters, c.Filters)
	body := services.BuildAggregationRequest(c, c.Aggregations, values).Body()
	assert.JSONEq(t, `{"bool": {}}`, jsonAt(t, body, "query"))
	assert.JSONEq(t, `{"bool": {}}`, jsonAt(t, body, "aggs", "author", "filter"))
	for _, name := range []string{"work", "century", "textType", "reference"} {
		assert.JSONEq(t, authorScope, jsonAt(t, body, "aggs", name, "filter"), name)
	}

	query := services.SanitizeQuery(map[string]interface{}{"filters": filters}, c)
	search := services.SearchRequestBody(c, query).Body()
	assert.JSONEq(t, authorScope, jsonAt(t, search, "query"))
}

func jsonAt(t *testing.T, body map[string]interface{}, keys ...string) string {
	t.Helper()
	var current interface{} = body
	for _, k := range keys {
		m, ok := current.(map[string]interface{})
		require.Truef(t, ok, "missing key %q", k)
		current = m[k]
	}
	data, err := json.Marshal(current)
	require.NoError(t, err)
	return string(data)
}

func TestParseNestedSections(t *testing.T) {
	c, err := Parse([]byte(`
name: manuscripts
index: manuscript
filters:
  origin:
    field: origins
    aggregationFilter: "true"
  published:
    type: boolean
    trueValue: "yes"
    falseValue: "no"
    onlyFilterIfTrue: true
aggregations:
  content:
    type: object_id_name
    nestedPath: contents
    limit: "50"
    filters: {}
  places:
    type: reverse_nested
    aggregations:
      origin:
        field: origins
`))
	require.NoError(t, err)

	origin, _ := c.Filters.Get("origin")
	require.NotNil(t, origin.AggregationFilter)
	assert.True(t, *origin.AggregationFilter)

	published, _ := c.Filters.Get("published")
	assert.Equal(t, "yes", published.TrueValue)
	assert.Equal(t, "no", published.FalseValue)
	assert.True(t, published.OnlyFilterIfTrue)

	content, _ := c.Aggregations.Get("content")
	assert.Equal(t, 50, content.Limit)
	assert.NotNil(t, content.Filters, "a declared empty list is kept")

	places, _ := c.Aggregations.Get("places")
	assert.Equal(t, []string{"origin"}, places.Aggregations.Names())

	normalized, err := services.NormalizeCollection(c)
	require.NoError(t, err)
	content, _ = normalized.Aggregations.Get("content")
	assert.True(t, content.OwnFilters)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown option", "index: x\nfilters:\n  a:\n    fieldd: b\n"},
		{"filters not a map", "index: x\nfilters: [a, b]\n"},
		{"invalid yaml", "index: [x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrConfiguration))
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "work.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: work\nindex: work\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "work", c.Index)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWatchReloadsChangedSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "text.yaml")
	require.NoError(t, os.WriteFile(path, []byte("index: text\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, []string{path}, zaptest.NewLogger(t), func(p string) {
			if p == path {
				reloads.Add(1)
			}
		})
	}()

	assert.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("index: text_v2\n"), 0o644)
		_ = os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644)
		return reloads.Load() > 0
	}, 5*time.Second, 200*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
