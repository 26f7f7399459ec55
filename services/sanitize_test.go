package services

import (
	"testing"

	"facet-search-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeIDs(t *testing.T) {
	c := normalizedCollection(t)

	values := sanitize(t, c, map[string]interface{}{
		"author":    5.0,
		"author_op": []interface{}{"and", "bogus"},
		"textType":  []interface{}{"", ""},
		"work":      []interface{}{"3", 4},
	})

	author, ok := values.Get("author")
	require.True(t, ok)
	assert.Equal(t, []string{"5"}, author.Values)
	assert.Equal(t, []models.Operator{models.OperatorAnd}, author.Operators)

	_, ok = values.Get("textType")
	assert.False(t, ok, "empty ids are dropped")

	work, ok := values.Get("work")
	require.True(t, ok, "children of groups are sanitized under their own name")
	assert.Equal(t, []string{"3", "4"}, work.Values)
	assert.Equal(t, []models.Operator{models.OperatorOr}, work.Operators)

	assert.Equal(t, 5.0, values.Raw["author"])
}

func TestSanitizeDMYRange(t *testing.T) {
	c := normalizedCollection(t)

	tests := []struct {
		name  string
		raw   interface{}
		ok    bool
		kind  string
		parts int
	}{
		{"exact year and month", map[string]interface{}{
			"from": map[string]interface{}{"year": "1990", "month": 5},
		}, true, models.DMYExact, 2},
		{"range", map[string]interface{}{
			"from": map[string]interface{}{"year": 1900},
			"till": map[string]interface{}{"year": 1950, "month": 3},
		}, true, models.DMYRange, 1},
		{"gap in parts", map[string]interface{}{
			"from": map[string]interface{}{"year": 1900, "day": 3},
		}, false, "", 0},
		{"till without from", map[string]interface{}{
			"till": map[string]interface{}{"year": 1950},
		}, false, "", 0},
		{"month range", map[string]interface{}{
			"from": map[string]interface{}{"year": 2000, "month": 1},
			"till": map[string]interface{}{"year": 2001, "month": 2},
		}, true, models.DMYRange, 2},
		{"day alone", map[string]interface{}{
			"till": map[string]interface{}{"day": 5},
		}, false, "", 0},
		{"not a map", "1990", false, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := sanitize(t, c, map[string]interface{}{"date": tt.raw})
			v, ok := values.Get("date")
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.kind, v.DMY.Type)
			assert.Len(t, v.DMY.From.Parts(), tt.parts)
		})
	}
}

func TestSanitizeNumericRangeIgnoresValues(t *testing.T) {
	c := normalizedCollection(t)

	values := sanitize(t, c, map[string]interface{}{"year": []interface{}{"-1", "1950"}})
	v, ok := values.Get("year")
	require.True(t, ok)
	assert.Nil(t, v.Range.Floor)
	require.NotNil(t, v.Range.Ceiling)
	assert.Equal(t, 1950.0, *v.Range.Ceiling)

	values = sanitize(t, c, map[string]interface{}{"year": []interface{}{-1, -1}})
	_, ok = values.Get("year")
	assert.False(t, ok)
}

func TestSanitizeText(t *testing.T) {
	c := normalizedCollection(t)

	values := sanitize(t, c, map[string]interface{}{
		"text":             "  foo:bar\n\t baz ",
		"text_combination": "all",
	})
	v, ok := values.Get("text")
	require.True(t, ok)
	assert.Equal(t, models.TextValue{Text: "foobar baz", Combination: models.CombinationAll}, *v.Text)

	values = sanitize(t, c, map[string]interface{}{"text": "x", "text_combination": "fuzzy"})
	v, _ = values.Get("text")
	assert.Equal(t, models.CombinationAny, v.Text.Combination)

	values = sanitize(t, c, map[string]interface{}{"text": " : "})
	_, ok = values.Get("text")
	assert.False(t, ok)
}

func TestSanitizeScalars(t *testing.T) {
	c := normalizedCollection(t)

	values := sanitize(t, c, map[string]interface{}{
		"public":       "0",
		"has_image":    "yes",
		"title":        []interface{}{"", "Ili"},
		"period_floor": "100",
		"period_type":  "overlap",
		"query":        "author:homer",
	})

	public, ok := values.Get("public")
	require.True(t, ok)
	assert.False(t, public.Flag)

	_, ok = values.Get("has_image")
	assert.False(t, ok, "exists only accepts the string true")

	title, _ := values.Get("title")
	assert.Equal(t, []string{"Ili"}, title.Values)

	period, ok := values.Get("period")
	require.True(t, ok)
	assert.Equal(t, 100.0, *period.DateRange.Floor)
	assert.Nil(t, period.DateRange.Ceiling)
	assert.Equal(t, models.DateRangeOverlap, period.DateRange.Type)

	query, _ := values.Get("query")
	assert.Equal(t, "author:homer", query.Raw)
}

func TestSanitizeFilterPrecedence(t *testing.T) {
	cfg := models.FilterConfig{Name: "status", Type: models.FilterKeyword, QueryKey: "status", DefaultValue: "draft"}

	v, ok := SanitizeFilter(cfg, map[string]interface{}{})
	require.True(t, ok)
	assert.Equal(t, []string{"draft"}, v.Values)

	v, _ = SanitizeFilter(cfg, map[string]interface{}{"status": "published"})
	assert.Equal(t, []string{"published"}, v.Values)

	cfg.Value = "fixed"
	v, _ = SanitizeFilter(cfg, map[string]interface{}{"status": "published"})
	assert.Equal(t, []string{"fixed"}, v.Values)
}

func TestSanitizeParameters(t *testing.T) {
	c := normalizedCollection(t)

	tests := []struct {
		name string
		raw  map[string]interface{}
		want models.SearchParams
	}{
		{"defaults", map[string]interface{}{},
			models.SearchParams{Limit: intPtr(25), Page: intPtr(1), OrderBy: []string{"id"}, Ascending: true}},
		{"request values", map[string]interface{}{"limit": "50", "page": 2.0, "orderBy": "author", "ascending": "0"},
			models.SearchParams{Limit: intPtr(50), Page: intPtr(2), OrderBy: []string{"authors.name"}, Ascending: false}},
		{"limit capped", map[string]interface{}{"limit": 999999},
			models.SearchParams{Limit: intPtr(models.MaxSearchLimit), Page: intPtr(1), OrderBy: []string{"id"}, Ascending: true}},
		{"invalid values ignored", map[string]interface{}{"limit": "abc", "page": -3, "orderBy": "unknown"},
			models.SearchParams{Limit: intPtr(25), Page: intPtr(1), OrderBy: []string{"id"}, Ascending: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeParameters(tt.raw, c, true))
		})
	}

	bare := SanitizeParameters(map[string]interface{}{}, c, false)
	assert.Nil(t, bare.Limit)
	assert.True(t, bare.Ascending)
}

func TestSanitizeQueryReadsFilters(t *testing.T) {
	c := normalizedCollection(t)
	q := SanitizeQuery(map[string]interface{}{
		"limit":   "5",
		"filters": map[string]interface{}{"genre": "epic"},
	}, c)
	assert.Equal(t, 5, *q.Params.Limit)
	genre, ok := q.Filters.Get("genre")
	require.True(t, ok)
	assert.Equal(t, []string{"epic"}, genre.Values)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText(" a \n b:\t c "))
	assert.Equal(t, "", CleanText(":::"))
}

func intPtr(i int) *int { return &i }
