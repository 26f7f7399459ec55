package services

import (
	"facet-search-service/models"
)

// AggregationOptions restrict which facets of a collection are computed.
type AggregationOptions struct {
	Only    []string `json:"only,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

// Select applies the options to the collection facets.
func (o AggregationOptions) Select(aggs models.AggregationConfigs) models.AggregationConfigs {
	return aggs.Only(o.Only).Without(o.Exclude...)
}

// AggregationFilters returns the filters that narrow each facet separately
// instead of the document set shared by all facets.
func AggregationFilters(filters models.FilterConfigs) models.FilterConfigs {
	return filters.Filter(models.FilterConfig.IsAggregationFilter)
}

// BuildAggregationRequest compiles the size 0 request computing every
// enabled facet of aggs. Filters of multi-select facets are left out of the
// main query and applied per facet, so a facet never filters itself.
func BuildAggregationRequest(c models.Collection, aggs models.AggregationConfigs, values models.FilterValues) *models.SearchBody {
	aggFilters := AggregationFilters(c.Filters)
	body := &models.SearchBody{
		Query: BuildQuery(values, c.Filters.Without(aggFilters.Names()...)),
		Size:  0,
	}

	global := models.NewGlobalAggregation(models.GlobalAggregationName)
	body.AddAggregation(global)

	for _, cfg := range aggs {
		if !cfg.Enabled(values) {
			continue
		}

		excluded := append([]string{cfg.Name}, expandFilterNames(c.Filters, cfg.ExcludeFilter)...)

		var parent models.AggregationParent = body
		if cfg.IsGlobal() {
			parent = global
		} else {
			scope := BuildQuery(values.Without(excluded...), aggFilters.Without(excluded...))
			filter := models.NewFilterAggregation(cfg.Name, scope)
			parent.AddAggregation(filter)
			parent = filter
		}

		if cfg.IsNested() {
			nested := models.NewNestedAggregation(cfg.Name, cfg.NestedPath)
			parent.AddAggregation(nested)
			parent = nested

			scope := BuildQuery(values.Without(excluded...), nestedScopeFilters(cfg, aggFilters))
			if len(cfg.AllowedValue) > 0 {
				allowed := make([]interface{}, 0, len(cfg.AllowedValue))
				for _, v := range cfg.AllowedValue {
					allowed = append(allowed, v)
				}
				scope.AddFilter(models.NewTermsQuery(cfg.Field, allowed))
			}
			if scope.Count() > 0 {
				filter := models.NewFilterAggregation(cfg.Name, scope)
				parent.AddAggregation(filter)
				parent = filter
			}
		}

		addAggregation(parent, cfg, values)
	}
	return body
}

// nestedScopeFilters picks the filters reducing the nested documents of a
// facet: its own list when declared, else the children of every aggregation
// filter on the same nested path.
func nestedScopeFilters(cfg models.AggregationConfig, aggFilters models.FilterConfigs) models.FilterConfigs {
	if cfg.OwnFilters {
		return cfg.Filters
	}
	var scoping models.FilterConfigs
	for _, f := range aggFilters {
		if f.NestedPath == cfg.NestedPath {
			scoping = append(scoping, f.Filters...)
		}
	}
	return scoping
}

// expandFilterNames adds the child names of group filters.
func expandFilterNames(filters models.FilterConfigs, names []string) []string {
	out := append([]string{}, names...)
	for _, name := range names {
		if f, ok := filters.Get(name); ok {
			f.Filters.Walk(func(child models.FilterConfig) {
				out = append(out, child.Name)
			})
		}
	}
	return out
}

func addAggregations(parent models.AggregationParent, aggs models.AggregationConfigs, values models.FilterValues) {
	for _, cfg := range aggs {
		if cfg.Enabled(values) {
			addAggregation(parent, cfg, values)
		}
	}
}

func addAggregation(parent models.AggregationParent, cfg models.AggregationConfig, values models.FilterValues) {
	topDocuments := cfg.IsNested() && cfg.CountsTopDocuments()
	_, filtered := values.Get(cfg.Name)

	switch cfg.Type {
	case models.AggregationStats:
		parent.AddAggregation(models.NewStatsAggregation(cfg.Name, cfg.Field))
	case models.AggregationCardinality:
		parent.AddAggregation(models.NewCardinalityAggregation(cfg.Name, cfg.Field))
	case models.AggregationTerms, models.AggregationExactText, models.AggregationBool, models.AggregationNumeric:
		field := cfg.Field
		if cfg.Type == models.AggregationExactText {
			field += ".keyword"
		}
		terms := models.NewTermsAggregation(cfg.Name, field, cfg.Limit)
		// keep selected values visible at zero matches
		if filtered {
			terms.SetMinDocCount(0)
		}
		if topDocuments {
			terms.AddAggregation(models.NewReverseNestedAggregation(models.TopReverseNestedName))
		}
		addAggregations(terms, cfg.Aggregations, values)
		parent.AddAggregation(terms)
	case models.AggregationObjectIDName:
		field := ObjectIDNameField(cfg)
		terms := models.NewTermsAggregation(cfg.Name, field, cfg.Limit)
		if filtered {
			terms.SetMinDocCount(0)
		}
		if topDocuments {
			terms.AddAggregation(models.NewReverseNestedAggregation(models.TopReverseNestedName))
		}
		addAggregations(terms, cfg.Aggregations, values)
		parent.AddAggregation(terms)

		if cfg.CountMissing {
			missing := models.NewMissingAggregation(models.CountMissingName, field)
			if topDocuments {
				missing.AddAggregation(models.NewReverseNestedAggregation(models.TopReverseNestedName))
			}
			parent.AddAggregation(missing)
		}
		if cfg.CountAny {
			countAny := models.NewFilterAggregation(models.CountAnyName, models.NewExistsQuery(field))
			if topDocuments {
				countAny.AddAggregation(models.NewReverseNestedAggregation(models.TopReverseNestedName))
			}
			parent.AddAggregation(countAny)
		}
	case models.AggregationReverseNested:
		reverse := models.NewReverseNestedAggregation(cfg.Name)
		addAggregations(reverse, cfg.Aggregations, values)
		parent.AddAggregation(reverse)
	}
}

// ObjectIDNameField is the keyword field holding "<id>_<name>" pairs.
func ObjectIDNameField(cfg models.AggregationConfig) string {
	field := cfg.Field + ".id_name"
	if cfg.Locale != "" {
		field += "." + cfg.Locale
	}
	return field + ".keyword"
}
