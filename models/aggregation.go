package models

type AggregationType string

const (
	AggregationTerms         AggregationType = "terms"
	AggregationExactText     AggregationType = "exact_text"
	AggregationBool          AggregationType = "bool"
	AggregationNumeric       AggregationType = "numeric"
	AggregationStats         AggregationType = "stats"
	AggregationCardinality   AggregationType = "cardinality"
	AggregationObjectIDName  AggregationType = "object_id_name"
	AggregationReverseNested AggregationType = "reverse_nested"

	DefaultAggregationType = AggregationTerms
)

// MaxAggregationSize is the terms size used when no limit is configured.
const MaxAggregationSize = 2147483647

// Result formatters of terms-like aggregations.
const (
	FormatterFacet = "facet"
	FormatterKeys  = "keys"
	FormatterKey   = "key"
)

func (t AggregationType) Valid() bool {
	switch t {
	case AggregationTerms, AggregationExactText, AggregationBool, AggregationNumeric,
		AggregationStats, AggregationCardinality, AggregationObjectIDName, AggregationReverseNested:
		return true
	}
	return false
}

type LabelReplace struct {
	Search  string `mapstructure:"search"`
	Replace string `mapstructure:"replace"`
}

// AggregationConfig is one normalized facet definition of a collection.
type AggregationConfig struct {
	Name       string          `mapstructure:"-"`
	Type       AggregationType `mapstructure:"type"`
	Field      string          `mapstructure:"field"`
	NestedPath string          `mapstructure:"nestedPath"`
	Locale     string          `mapstructure:"locale"`

	Limit     int `mapstructure:"limit"`
	SafeLimit int `mapstructure:"safeLimit"`

	CountTopDocuments *bool `mapstructure:"countTopDocuments"`
	CountMissing      bool  `mapstructure:"countMissing"`
	CountAny          bool  `mapstructure:"countAny"`

	AnyKey    string `mapstructure:"anyKey"`
	AnyLabel  string `mapstructure:"anyLabel"`
	NoneKey   string `mapstructure:"noneKey"`
	NoneLabel string `mapstructure:"noneLabel"`

	ExcludeFilter []string `mapstructure:"excludeFilter"`
	// Requires names filters that must carry a value for the facet to be built.
	Requires []string `mapstructure:"requires"`
	Active   *bool    `mapstructure:"active"`
	Global   bool     `mapstructure:"global"`

	AllowedValue []string          `mapstructure:"allowedValue"`
	IgnoreValue  []string          `mapstructure:"ignoreValue"`
	ReplaceLabel *LabelReplace     `mapstructure:"replaceLabel"`
	MapLabel     map[string]string `mapstructure:"mapLabel"`
	Formatter    string            `mapstructure:"formatter"`

	// Filters scope a nested facet. OwnFilters is set when the schema declares
	// the list, even empty: an empty declared list means no nested scoping.
	Filters      FilterConfigs      `mapstructure:"-"`
	OwnFilters   bool               `mapstructure:"-"`
	Aggregations AggregationConfigs `mapstructure:"-"`

	Condition func(AggregationConfig, FilterValues) bool `mapstructure:"-"`
}

func (c AggregationConfig) IsNested() bool {
	return c.NestedPath != ""
}

// IsGlobal reports whether the facet is computed on the unfiltered dataset.
func (c AggregationConfig) IsGlobal() bool {
	return c.Type == AggregationStats || c.Global
}

func (c AggregationConfig) IsActive() bool {
	return c.Active == nil || *c.Active
}

func (c AggregationConfig) CountsTopDocuments() bool {
	return c.CountTopDocuments == nil || *c.CountTopDocuments
}

// Enabled reports whether the facet is built for the given filter values.
func (c AggregationConfig) Enabled(values FilterValues) bool {
	if !c.IsActive() {
		return false
	}
	for _, name := range c.Requires {
		if _, ok := values.Get(name); !ok {
			return false
		}
	}
	if c.Condition != nil && !c.Condition(c, values) {
		return false
	}
	return true
}

type AggregationConfigs []AggregationConfig

func (ac AggregationConfigs) Get(name string) (AggregationConfig, bool) {
	for _, c := range ac {
		if c.Name == name {
			return c, true
		}
	}
	return AggregationConfig{}, false
}

func (ac AggregationConfigs) Names() []string {
	names := make([]string, 0, len(ac))
	for _, c := range ac {
		names = append(names, c.Name)
	}
	return names
}

// Only keeps the named aggregations; an empty list keeps all of them.
func (ac AggregationConfigs) Only(names []string) AggregationConfigs {
	if len(names) == 0 {
		return ac
	}
	out := make(AggregationConfigs, 0, len(ac))
	for _, c := range ac {
		if contains(names, c.Name) {
			out = append(out, c)
		}
	}
	return out
}

func (ac AggregationConfigs) Without(names ...string) AggregationConfigs {
	out := make(AggregationConfigs, 0, len(ac))
	for _, c := range ac {
		if !contains(names, c.Name) {
			out = append(out, c)
		}
	}
	return out
}

// WithActive returns a copy in which the matching top-level aggregations
// have the given active state. An empty name matches every aggregation.
func (ac AggregationConfigs) WithActive(name string, active bool) (AggregationConfigs, bool) {
	out := make(AggregationConfigs, len(ac))
	found := false
	for i, c := range ac {
		if name == "" || c.Name == name {
			v := active
			c.Active = &v
			found = true
		}
		out[i] = c
	}
	return out, found
}
