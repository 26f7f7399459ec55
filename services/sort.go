package services

import (
	"sort"

	"facet-search-service/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// sortFacetItems orders items by name in natural, case-insensitive order.
// The any and none items keep their place in front, and true sorts
// directly before false.
func sortFacetItems(items []models.FacetItem, cfg models.AggregationConfig) {
	// a collator keeps state and must not be shared between goroutines
	c := collate.New(language.Und, collate.Numeric, collate.IgnoreCase)
	sentinel := func(item models.FacetItem) bool {
		return item.Name == cfg.AnyLabel || item.Name == cfg.NoneLabel
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if sentinel(a) || sentinel(b) {
			return sentinel(a) && !sentinel(b)
		}
		if cmp := c.CompareString(boolKey(a.Name), boolKey(b.Name)); cmp != 0 {
			return cmp < 0
		}
		return a.Name == "true" && b.Name == "false"
	})
}

func boolKey(name string) string {
	if name == "true" {
		return "false"
	}
	return name
}
