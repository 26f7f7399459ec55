package models

type FilterType string

const (
	FilterNumeric        FilterType = "numeric"
	FilterBoolean        FilterType = "boolean"
	FilterKeyword        FilterType = "keyword"
	FilterTerms          FilterType = "terms"
	FilterTextPrefix     FilterType = "text_prefix"
	FilterKeywordPrefix  FilterType = "keyword_prefix"
	FilterWildcard       FilterType = "wildcard"
	FilterExists         FilterType = "exists"
	FilterText           FilterType = "text"
	FilterQueryString    FilterType = "query_string"
	FilterObjectID       FilterType = "object_id"
	FilterNestedID       FilterType = "nested_id"
	FilterNestedMultiple FilterType = "nested_multiple"
	FilterDateRange      FilterType = "date_range"
	FilterDMYRange       FilterType = "dmy_range"
	FilterNumericRange   FilterType = "numeric_range"
	FilterBoolAnd        FilterType = "boolquery_and"
	FilterBoolOr         FilterType = "boolquery_or"

	DefaultFilterType = FilterKeyword
)

// Sentinel filter keys and facet labels.
const (
	AnyKey    = "-2"
	AnyLabel  = "any"
	NoneKey   = "-1"
	NoneLabel = "none"
)

// RawFiltersKey holds the untouched request filters in sanitized values.
const RawFiltersKey = "_raw"

var filterTypes = map[FilterType]struct{}{
	FilterNumeric: {}, FilterBoolean: {}, FilterKeyword: {}, FilterTerms: {},
	FilterTextPrefix: {}, FilterKeywordPrefix: {}, FilterWildcard: {}, FilterExists: {},
	FilterText: {}, FilterQueryString: {}, FilterObjectID: {}, FilterNestedID: {},
	FilterNestedMultiple: {}, FilterDateRange: {}, FilterDMYRange: {}, FilterNumericRange: {},
	FilterBoolAnd: {}, FilterBoolOr: {},
}

func (t FilterType) Valid() bool {
	_, ok := filterTypes[t]
	return ok
}

// IsGroup reports whether the type only composes child filters.
func (t FilterType) IsGroup() bool {
	return t == FilterBoolAnd || t == FilterBoolOr
}

// IsIDLike reports whether the type takes a multi-select value list with operators.
func (t FilterType) IsIDLike() bool {
	switch t {
	case FilterNumeric, FilterObjectID, FilterNestedID, FilterKeyword, FilterTerms:
		return true
	}
	return false
}

// IsNumericID reports whether scalar values are coerced to integers.
func (t FilterType) IsNumericID() bool {
	return t == FilterNumeric || t == FilterObjectID || t == FilterNestedID
}

func (t FilterType) RequiresNesting() bool {
	return t == FilterNestedID || t == FilterNestedMultiple
}

// IDSuffix is appended to the field when matching id-like values.
func (t FilterType) IDSuffix() string {
	switch t {
	case FilterObjectID, FilterNestedID:
		return ".id"
	case FilterKeyword:
		return ".keyword"
	}
	return ""
}

type InnerHits struct {
	Size int    `mapstructure:"size" json:"size,omitempty"`
	Name string `mapstructure:"name" json:"name,omitempty"`
}

// FilterConfig is one normalized filter definition of a collection.
type FilterConfig struct {
	Name       string     `mapstructure:"-"`
	Type       FilterType `mapstructure:"type"`
	Field      string     `mapstructure:"field"`
	NestedPath string     `mapstructure:"nestedPath"`
	AnyKey     string     `mapstructure:"anyKey"`
	NoneKey    string     `mapstructure:"noneKey"`

	// QueryKey is the request parameter read for this filter, defaults to Name.
	QueryKey     string      `mapstructure:"queryKey"`
	Value        interface{} `mapstructure:"value"`
	DefaultValue interface{} `mapstructure:"defaultValue"`

	FloorField   string    `mapstructure:"floorField"`
	CeilingField string    `mapstructure:"ceilingField"`
	TypeField    string    `mapstructure:"typeField"`
	Ignore       []float64 `mapstructure:"ignore"`

	// TrueValue and FalseValue are the stored values matched by a boolean
	// filter. A false request matches FalseValue unless OnlyFilterIfTrue.
	TrueValue        interface{} `mapstructure:"trueValue"`
	FalseValue       interface{} `mapstructure:"falseValue"`
	OnlyFilterIfTrue bool        `mapstructure:"onlyFilterIfTrue"`

	ScoreEqual bool       `mapstructure:"scoreEqual"`
	ScoreMode  string     `mapstructure:"scoreMode"`
	InnerHits  *InnerHits `mapstructure:"innerHits"`

	AggregationFilter *bool `mapstructure:"aggregationFilter"`

	Filters FilterConfigs `mapstructure:"-"`
}

func (c FilterConfig) IsNested() bool {
	return c.NestedPath != ""
}

func (c FilterConfig) HasChildren() bool {
	return len(c.Filters) > 0
}

// IsAggregationFilter reports whether the filter narrows facets individually
// instead of the document set shared by all facets.
func (c FilterConfig) IsAggregationFilter() bool {
	switch c.Type {
	case FilterObjectID, FilterNestedID, FilterNestedMultiple:
		return c.AggregationFilter == nil || *c.AggregationFilter
	}
	return c.AggregationFilter != nil && *c.AggregationFilter
}

// FilterConfigs keeps filters in declaration order.
type FilterConfigs []FilterConfig

func (fc FilterConfigs) Get(name string) (FilterConfig, bool) {
	for _, c := range fc {
		if c.Name == name {
			return c, true
		}
	}
	return FilterConfig{}, false
}

func (fc FilterConfigs) Names() []string {
	names := make([]string, 0, len(fc))
	for _, c := range fc {
		names = append(names, c.Name)
	}
	return names
}

// Without returns a copy minus the named filters.
func (fc FilterConfigs) Without(names ...string) FilterConfigs {
	out := make(FilterConfigs, 0, len(fc))
	for _, c := range fc {
		if !contains(names, c.Name) {
			out = append(out, c)
		}
	}
	return out
}

// Filter returns the configs matching keep, in order.
func (fc FilterConfigs) Filter(keep func(FilterConfig) bool) FilterConfigs {
	out := make(FilterConfigs, 0, len(fc))
	for _, c := range fc {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// Walk visits every config depth first.
func (fc FilterConfigs) Walk(fn func(FilterConfig)) {
	for _, c := range fc {
		fn(c)
		c.Filters.Walk(fn)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
