package models

// Aggregation is a named node of the aggregation tree sent to the index engine.
type Aggregation interface {
	Name() string
	Source() map[string]interface{}
}

// AggregationParent accepts sub-aggregations.
type AggregationParent interface {
	AddAggregation(Aggregation)
}

// Names of the helper aggregations added around facets.
const (
	GlobalAggregationName = "global_aggregation"
	TopReverseNestedName  = "top_reverse_nested"
	CountMissingName      = "count_missing"
	CountAnyName          = "count_any"
)

type bucketAggregation struct {
	name string
	aggs []Aggregation
}

func (b *bucketAggregation) Name() string {
	return b.name
}

func (b *bucketAggregation) AddAggregation(a Aggregation) {
	b.aggs = append(b.aggs, a)
}

func (b *bucketAggregation) SubAggregations() []Aggregation {
	return b.aggs
}

func (b *bucketAggregation) wrap(kind string, body interface{}) map[string]interface{} {
	src := map[string]interface{}{kind: body}
	if len(b.aggs) > 0 {
		src["aggs"] = AggregationsSource(b.aggs)
	}
	return src
}

// AggregationsSource renders sibling aggregations keyed by name.
func AggregationsSource(aggs []Aggregation) map[string]interface{} {
	out := make(map[string]interface{}, len(aggs))
	for _, a := range aggs {
		out[a.Name()] = a.Source()
	}
	return out
}

type TermsAggregation struct {
	bucketAggregation
	Field       string
	Size        int
	MinDocCount *int
}

func NewTermsAggregation(name, field string, size int) *TermsAggregation {
	return &TermsAggregation{bucketAggregation: bucketAggregation{name: name}, Field: field, Size: size}
}

func (a *TermsAggregation) SetMinDocCount(n int) *TermsAggregation {
	a.MinDocCount = &n
	return a
}

func (a *TermsAggregation) Source() map[string]interface{} {
	body := map[string]interface{}{"field": a.Field, "size": a.Size}
	if a.MinDocCount != nil {
		body["min_doc_count"] = *a.MinDocCount
	}
	return a.wrap("terms", body)
}

type FilterAggregation struct {
	bucketAggregation
	Query Query
}

func NewFilterAggregation(name string, query Query) *FilterAggregation {
	return &FilterAggregation{bucketAggregation: bucketAggregation{name: name}, Query: query}
}

func (a *FilterAggregation) Source() map[string]interface{} {
	return a.wrap("filter", a.Query.Source())
}

type NestedAggregation struct {
	bucketAggregation
	Path string
}

func NewNestedAggregation(name, path string) *NestedAggregation {
	return &NestedAggregation{bucketAggregation: bucketAggregation{name: name}, Path: path}
}

func (a *NestedAggregation) Source() map[string]interface{} {
	return a.wrap("nested", map[string]interface{}{"path": a.Path})
}

type ReverseNestedAggregation struct {
	bucketAggregation
}

func NewReverseNestedAggregation(name string) *ReverseNestedAggregation {
	return &ReverseNestedAggregation{bucketAggregation: bucketAggregation{name: name}}
}

func (a *ReverseNestedAggregation) Source() map[string]interface{} {
	return a.wrap("reverse_nested", map[string]interface{}{})
}

type GlobalAggregation struct {
	bucketAggregation
}

func NewGlobalAggregation(name string) *GlobalAggregation {
	return &GlobalAggregation{bucketAggregation: bucketAggregation{name: name}}
}

func (a *GlobalAggregation) Source() map[string]interface{} {
	return a.wrap("global", map[string]interface{}{})
}

type MissingAggregation struct {
	bucketAggregation
	Field string
}

func NewMissingAggregation(name, field string) *MissingAggregation {
	return &MissingAggregation{bucketAggregation: bucketAggregation{name: name}, Field: field}
}

func (a *MissingAggregation) Source() map[string]interface{} {
	return a.wrap("missing", map[string]interface{}{"field": a.Field})
}

type StatsAggregation struct {
	name  string
	Field string
}

func NewStatsAggregation(name, field string) *StatsAggregation {
	return &StatsAggregation{name: name, Field: field}
}

func (a *StatsAggregation) Name() string {
	return a.name
}

func (a *StatsAggregation) Source() map[string]interface{} {
	return map[string]interface{}{"stats": map[string]interface{}{"field": a.Field}}
}

type CardinalityAggregation struct {
	name  string
	Field string
}

func NewCardinalityAggregation(name, field string) *CardinalityAggregation {
	return &CardinalityAggregation{name: name, Field: field}
}

func (a *CardinalityAggregation) Name() string {
	return a.name
}

func (a *CardinalityAggregation) Source() map[string]interface{} {
	return map[string]interface{}{"cardinality": map[string]interface{}{"field": a.Field}}
}
