package models

import "fmt"

type SearchDefaults struct {
	Limit     int      `yaml:"limit"`
	Page      int      `yaml:"page"`
	Ascending bool     `yaml:"ascending"`
	OrderBy   []string `yaml:"orderBy"`
}

// Collection is the searchable schema of one document collection. Values
// are treated as immutable once published to a search service.
type Collection struct {
	Name  string
	Index string

	Defaults SearchDefaults
	// OrderBy maps request sort names to engine fields. Empty passes names through.
	OrderBy      map[string][]string
	ResultFields []string

	Filters      FilterConfigs
	Aggregations AggregationConfigs
}

// WithAggregationActive returns a copy with one aggregation, or all of them
// when name is empty, enabled or disabled.
func (c Collection) WithAggregationActive(name string, active bool) (Collection, error) {
	aggs, found := c.Aggregations.WithActive(name, active)
	if !found && name != "" {
		return c, fmt.Errorf("aggregation %q: %w", name, ErrNotFound)
	}
	c.Aggregations = aggs
	return c, nil
}
