package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toJSON(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestBoolQuerySource(t *testing.T) {
	q := NewBoolQuery().
		AddFilter(NewTermsQuery("authors.id", []interface{}{int64(5), int64(7)})).
		AddMustNot(NewExistsQuery("textTypes.id"))

	assert.Equal(t, 2, q.Count())
	assert.JSONEq(t, `{"bool": {
		"filter": [{"terms": {"authors.id": [5, 7]}}],
		"must_not": [{"exists": {"field": "textTypes.id"}}]
	}}`, toJSON(t, q.Source()))
}

func TestEmptyBoolQuery(t *testing.T) {
	q := NewBoolQuery()
	assert.Zero(t, q.Count())
	assert.JSONEq(t, `{"bool": {}}`, toJSON(t, q.Source()))
}

func TestNestedQuerySource(t *testing.T) {
	q := NewNestedQuery("works", NewBoolQuery().AddMust(NewTermQuery("works.id", 3)))
	q.ScoreMode = "max"
	q.InnerHits = &InnerHits{Size: 10}

	assert.JSONEq(t, `{"nested": {
		"path": "works",
		"score_mode": "max",
		"inner_hits": {"size": 10},
		"query": {"bool": {"must": [{"term": {"works.id": 3}}]}}
	}}`, toJSON(t, q.Source()))
}

func TestRangeQueryOmitsUnsetBounds(t *testing.T) {
	r := NewRangeQuery("year")
	r.Gte = 1200
	assert.JSONEq(t, `{"range": {"year": {"gte": 1200}}}`, toJSON(t, r.Source()))
}

func TestTextQuerySources(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{
			name:  "query string",
			query: &QueryStringQuery{Query: "a AND b", DefaultField: "text", AnalyzeWildcard: true},
			want:  `{"query_string": {"query": "a AND b", "default_field": "text", "analyze_wildcard": true}}`,
		},
		{
			name:  "phrase prefix",
			query: &MatchPhrasePrefixQuery{Field: "title", Query: "gos"},
			want:  `{"match_phrase_prefix": {"title": {"query": "gos"}}}`,
		},
		{
			name:  "bool prefix",
			query: &MatchBoolPrefixQuery{Field: "title", Query: "gos"},
			want:  `{"match_bool_prefix": {"title": {"query": "gos"}}}`,
		},
		{
			name:  "wildcard",
			query: &WildcardQuery{Field: "code", Value: "ab*"},
			want:  `{"wildcard": {"code": {"value": "ab*"}}}`,
		},
		{
			name:  "match all",
			query: &MatchAllQuery{},
			want:  `{"match_all": {}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.JSONEq(t, tt.want, toJSON(t, tt.query.Source()))
		})
	}
}
