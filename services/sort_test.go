package services

import (
	"testing"

	"facet-search-service/models"

	"github.com/stretchr/testify/assert"
)

func facetNames(items []models.FacetItem) []string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return names
}

func facetItems(names ...string) []models.FacetItem {
	items := make([]models.FacetItem, 0, len(names))
	for _, name := range names {
		items = append(items, models.FacetItem{ID: name, Name: name})
	}
	return items
}

func TestSortFacetItems(t *testing.T) {
	cfg := models.AggregationConfig{AnyLabel: models.AnyLabel, NoneLabel: models.NoneLabel}

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"sentinels first, true before false",
			[]string{"b", "any", "false", "a", "true", "none"},
			[]string{"any", "none", "a", "b", "true", "false"}},
		{"natural numbers", []string{"item 10", "item 9", "item 1"}, []string{"item 1", "item 9", "item 10"}},
		{"case insensitive", []string{"beta", "Alpha", "gamma"}, []string{"Alpha", "beta", "gamma"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := facetItems(tt.in...)
			sortFacetItems(items, cfg)
			assert.Equal(t, tt.want, facetNames(items))
		})
	}
}

func TestSortFacetItemsConfiguredLabels(t *testing.T) {
	cfg := models.AggregationConfig{AnyLabel: "alle", NoneLabel: "geen"}

	items := facetItems("b", "any", "geen", "a", "alle")
	sortFacetItems(items, cfg)
	assert.Equal(t, []string{"geen", "alle", "a", "any", "b"}, facetNames(items))
}
