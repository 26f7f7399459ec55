package models

import "encoding/json"

type Operator string

const (
	OperatorOr   Operator = "or"
	OperatorAnd  Operator = "and"
	OperatorNot  Operator = "not"
	OperatorOnly Operator = "only"
	OperatorAny  Operator = "any"
	OperatorNone Operator = "none"
)

func (o Operator) Valid() bool {
	switch o {
	case OperatorOr, OperatorAnd, OperatorNot, OperatorOnly, OperatorAny, OperatorNone:
		return true
	}
	return false
}

// Date range match types.
const (
	DateRangeExact    = "exact"
	DateRangeIncluded = "included"
	DateRangeInclude  = "include"
	DateRangeOverlap  = "overlap"
)

type DateRange struct {
	Floor   *float64 `json:"floor,omitempty"`
	Ceiling *float64 `json:"ceiling,omitempty"`
	Type    string   `json:"type,omitempty"`
}

// DMY range types.
const (
	DMYExact = "exact"
	DMYRange = "range"
)

type DMYPart struct {
	Name  string
	Value int
}

// DMYDate holds the optional year, month and day of one side of a range.
type DMYDate struct {
	Year  *int `json:"year,omitempty" mapstructure:"year"`
	Month *int `json:"month,omitempty" mapstructure:"month"`
	Day   *int `json:"day,omitempty" mapstructure:"day"`
}

// Parts returns the populated parts from coarse to fine.
func (d DMYDate) Parts() []DMYPart {
	var parts []DMYPart
	for _, p := range []struct {
		name string
		v    *int
	}{{"year", d.Year}, {"month", d.Month}, {"day", d.Day}} {
		if p.v != nil {
			parts = append(parts, DMYPart{Name: p.name, Value: *p.v})
		}
	}
	return parts
}

func (d DMYDate) IsEmpty() bool {
	return d.Year == nil && d.Month == nil && d.Day == nil
}

// IsContiguous reports whether the populated parts are year, year-month or
// year-month-day.
func (d DMYDate) IsContiguous() bool {
	switch {
	case d.Year == nil:
		return false
	case d.Month == nil:
		return d.Day == nil
	}
	return true
}

type DMYRangeValue struct {
	From DMYDate `json:"from"`
	Till DMYDate `json:"till"`
	Type string  `json:"type"`
}

type NumericRange struct {
	Floor   *float64 `json:"floor,omitempty"`
	Ceiling *float64 `json:"ceiling,omitempty"`
}

// Text combinations.
const (
	CombinationAny    = "any"
	CombinationAll    = "all"
	CombinationPhrase = "phrase"
)

type TextValue struct {
	Text        string `json:"text"`
	Combination string `json:"combination"`
}

// FilterValue is the typed value of one applied filter. Exactly one of the
// value fields is set, depending on the filter type.
type FilterValue struct {
	Values    []string
	Operators []Operator
	Flag      bool
	DateRange *DateRange
	DMY       *DMYRangeValue
	Range     *NumericRange
	Text      *TextValue
	Raw       interface{}
}

// Has reports whether key is among the selected values.
func (v FilterValue) Has(key string) bool {
	return contains(v.Values, key)
}

func (v FilterValue) HasOperator(op Operator) bool {
	for _, o := range v.Operators {
		if o == op {
			return true
		}
	}
	return false
}

func (v FilterValue) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{}
	switch {
	case v.Values != nil:
		out["value"] = v.Values
		if len(v.Operators) > 0 {
			out["operator"] = v.Operators
		}
	case v.DateRange != nil:
		out["value"] = v.DateRange
	case v.DMY != nil:
		out["value"] = v.DMY
	case v.Range != nil:
		out["value"] = v.Range
	case v.Text != nil:
		out["value"] = v.Text
	case v.Raw != nil:
		out["value"] = v.Raw
	default:
		out["value"] = v.Flag
	}
	return json.Marshal(out)
}

// FilterValues holds the sanitized value of every applied filter, keyed by
// filter name, plus the raw request filters.
type FilterValues struct {
	values map[string]FilterValue
	Raw    map[string]interface{}
}

func NewFilterValues(raw map[string]interface{}) FilterValues {
	return FilterValues{values: map[string]FilterValue{}, Raw: raw}
}

func (fv FilterValues) Get(name string) (FilterValue, bool) {
	v, ok := fv.values[name]
	return v, ok
}

// Selected returns the value list of an id-like filter, nil when absent.
func (fv FilterValues) Selected(name string) []string {
	return fv.values[name].Values
}

func (fv *FilterValues) Set(name string, v FilterValue) {
	if fv.values == nil {
		fv.values = map[string]FilterValue{}
	}
	fv.values[name] = v
}

func (fv FilterValues) Len() int {
	return len(fv.values)
}

func (fv FilterValues) Names() []string {
	names := make([]string, 0, len(fv.values))
	for name := range fv.values {
		names = append(names, name)
	}
	return names
}

// Without returns a copy minus the named values.
func (fv FilterValues) Without(names ...string) FilterValues {
	out := FilterValues{values: make(map[string]FilterValue, len(fv.values)), Raw: fv.Raw}
	for name, v := range fv.values {
		if !contains(names, name) {
			out.values[name] = v
		}
	}
	return out
}

func (fv FilterValues) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(fv.values)+1)
	for name, v := range fv.values {
		out[name] = v
	}
	if fv.Raw != nil {
		out[RawFiltersKey] = fv.Raw
	} else {
		out[RawFiltersKey] = map[string]interface{}{}
	}
	return json.Marshal(out)
}
