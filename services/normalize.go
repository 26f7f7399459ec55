package services

import (
	"fmt"
	"strings"

	"facet-search-service/models"
)

// NormalizeCollection fills every schema default and validates references
// between filters and aggregations. Normalizing twice yields the same value.
func NormalizeCollection(c models.Collection) (models.Collection, error) {
	if c.Index == "" {
		return c, fmt.Errorf("collection %q has no index name: %w", c.Name, models.ErrConfiguration)
	}
	if c.Name == "" {
		c.Name = c.Index
	}
	if c.Defaults.Limit > models.MaxSearchLimit {
		c.Defaults.Limit = models.MaxSearchLimit
	}

	filters, err := NormalizeFilters(c.Filters, "")
	if err != nil {
		return c, fmt.Errorf("collection %q: %w", c.Name, err)
	}
	c.Filters = filters

	aggs, err := NormalizeAggregations(c.Aggregations, "")
	if err != nil {
		return c, fmt.Errorf("collection %q: %w", c.Name, err)
	}
	c.Aggregations = aggs

	known := map[string]bool{}
	c.Filters.Walk(func(f models.FilterConfig) { known[f.Name] = true })
	for _, agg := range c.Aggregations {
		for _, name := range append(append([]string{}, agg.ExcludeFilter...), agg.Requires...) {
			if !known[name] {
				return c, fmt.Errorf("aggregation %q references unknown filter %q: %w", agg.Name, name, models.ErrConfiguration)
			}
		}
	}
	return c, nil
}

// NormalizeFilters canonicalizes a filter tree. prefix is the nested path of
// the enclosing filter, empty at the top level.
func NormalizeFilters(configs models.FilterConfigs, prefix string) (models.FilterConfigs, error) {
	seen := map[string]bool{}
	return normalizeFilters(configs, prefix, seen)
}

func normalizeFilters(configs models.FilterConfigs, prefix string, seen map[string]bool) (models.FilterConfigs, error) {
	if configs == nil {
		return nil, nil
	}
	out := make(models.FilterConfigs, 0, len(configs))
	for _, cfg := range configs {
		if cfg.Name == "" || cfg.Name == models.RawFiltersKey {
			return nil, fmt.Errorf("invalid filter name %q: %w", cfg.Name, models.ErrConfiguration)
		}
		if seen[cfg.Name] {
			return nil, fmt.Errorf("duplicate filter %q: %w", cfg.Name, models.ErrConfiguration)
		}
		seen[cfg.Name] = true

		normalized, err := normalizeFilter(cfg, prefix, seen)
		if err != nil {
			return nil, err
		}
		out = append(out, normalized)
	}
	return out, nil
}

func normalizeFilter(cfg models.FilterConfig, prefix string, seen map[string]bool) (models.FilterConfig, error) {
	if cfg.Type == "" {
		cfg.Type = models.DefaultFilterType
	}
	if !cfg.Type.Valid() {
		return cfg, fmt.Errorf("filter %q has unknown type %q: %w", cfg.Name, cfg.Type, models.ErrConfiguration)
	}
	if cfg.Field == "" && cfg.Type != models.FilterNestedMultiple {
		cfg.Field = cfg.Name
	}
	cfg.Field = withPrefix(prefix, cfg.Field)

	if cfg.Type.RequiresNesting() || cfg.NestedPath != "" {
		if cfg.NestedPath == "" {
			cfg.NestedPath = cfg.Field
		}
		if cfg.NestedPath == "" {
			cfg.NestedPath = cfg.Name
		}
		cfg.Field = withPrefix(cfg.NestedPath, cfg.Field)
	}
	if cfg.AnyKey == "" {
		cfg.AnyKey = models.AnyKey
	}
	if cfg.NoneKey == "" {
		cfg.NoneKey = models.NoneKey
	}
	if cfg.QueryKey == "" {
		cfg.QueryKey = cfg.Name
	}

	switch cfg.Type {
	case models.FilterDateRange:
		if cfg.FloorField == "" || cfg.CeilingField == "" {
			return cfg, fmt.Errorf("date range filter %q needs floorField and ceilingField: %w", cfg.Name, models.ErrConfiguration)
		}
		if cfg.TypeField == "" {
			cfg.TypeField = cfg.Name + "_type"
		}
	case models.FilterNumericRange:
		if cfg.FloorField == "" {
			cfg.FloorField = cfg.Field
		}
		if cfg.CeilingField == "" {
			cfg.CeilingField = cfg.Field
		}
	case models.FilterNestedMultiple, models.FilterBoolAnd, models.FilterBoolOr:
		if len(cfg.Filters) == 0 {
			return cfg, fmt.Errorf("filter %q of type %s needs child filters: %w", cfg.Name, cfg.Type, models.ErrConfiguration)
		}
	}

	childPrefix := prefix
	if cfg.IsNested() {
		childPrefix = cfg.NestedPath
	}
	children, err := normalizeFilters(cfg.Filters, childPrefix, seen)
	if err != nil {
		return cfg, err
	}
	cfg.Filters = children
	return cfg, nil
}

// NormalizeAggregations canonicalizes an aggregation tree.
func NormalizeAggregations(configs models.AggregationConfigs, prefix string) (models.AggregationConfigs, error) {
	if configs == nil {
		return nil, nil
	}
	seen := map[string]bool{}
	out := make(models.AggregationConfigs, 0, len(configs))
	for _, cfg := range configs {
		if cfg.Name == "" {
			return nil, fmt.Errorf("aggregation without name: %w", models.ErrConfiguration)
		}
		if seen[cfg.Name] {
			return nil, fmt.Errorf("duplicate aggregation %q: %w", cfg.Name, models.ErrConfiguration)
		}
		seen[cfg.Name] = true

		normalized, err := normalizeAggregation(cfg, prefix)
		if err != nil {
			return nil, err
		}
		out = append(out, normalized)
	}
	return out, nil
}

func normalizeAggregation(cfg models.AggregationConfig, prefix string) (models.AggregationConfig, error) {
	if cfg.Type == "" {
		cfg.Type = models.DefaultAggregationType
	}
	if !cfg.Type.Valid() {
		return cfg, fmt.Errorf("aggregation %q has unknown type %q: %w", cfg.Name, cfg.Type, models.ErrConfiguration)
	}
	if cfg.Field == "" {
		cfg.Field = cfg.Name
	}
	fieldPrefix := prefix
	if cfg.NestedPath != "" {
		fieldPrefix = cfg.NestedPath
	}
	cfg.Field = withPrefix(fieldPrefix, cfg.Field)

	if cfg.Limit < 0 || cfg.SafeLimit < 0 {
		return cfg, fmt.Errorf("aggregation %q has a negative limit: %w", cfg.Name, models.ErrConfiguration)
	}
	if cfg.Limit == 0 {
		cfg.Limit = models.MaxAggregationSize
	}
	if cfg.CountTopDocuments == nil {
		v := true
		cfg.CountTopDocuments = &v
	}
	if cfg.Active == nil {
		v := true
		cfg.Active = &v
	}
	if cfg.AnyKey == "" {
		cfg.AnyKey = models.AnyKey
	}
	if cfg.AnyLabel == "" {
		cfg.AnyLabel = models.AnyLabel
	}
	if cfg.NoneKey == "" {
		cfg.NoneKey = models.NoneKey
	}
	if cfg.NoneLabel == "" {
		cfg.NoneLabel = models.NoneLabel
	}
	switch cfg.Formatter {
	case "":
		cfg.Formatter = models.FormatterFacet
	case models.FormatterFacet, models.FormatterKeys, models.FormatterKey:
	default:
		return cfg, fmt.Errorf("aggregation %q has unknown formatter %q: %w", cfg.Name, cfg.Formatter, models.ErrConfiguration)
	}
	if cfg.Type == models.AggregationReverseNested && len(cfg.Aggregations) == 0 {
		return cfg, fmt.Errorf("reverse nested aggregation %q needs sub-aggregations: %w", cfg.Name, models.ErrConfiguration)
	}

	if cfg.Filters != nil {
		cfg.OwnFilters = true
	}
	// children resolve against this aggregation's own nested path only
	filters, err := NormalizeFilters(cfg.Filters, cfg.NestedPath)
	if err != nil {
		return cfg, fmt.Errorf("aggregation %q: %w", cfg.Name, err)
	}
	cfg.Filters = filters

	subs, err := NormalizeAggregations(cfg.Aggregations, cfg.NestedPath)
	if err != nil {
		return cfg, fmt.Errorf("aggregation %q: %w", cfg.Name, err)
	}
	cfg.Aggregations = subs
	return cfg, nil
}

// withPrefix places field under the nested path unless it already is.
func withPrefix(prefix, field string) string {
	if prefix == "" || field == "" || field == prefix || strings.HasPrefix(field, prefix+".") {
		return field
	}
	return prefix + "." + field
}
