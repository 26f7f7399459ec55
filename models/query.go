package models

// Query is a node of the boolean query tree sent to the index engine.
type Query interface {
	Source() map[string]interface{}
}

type BoolQuery struct {
	Must    []Query
	Filter  []Query
	Should  []Query
	MustNot []Query
}

func NewBoolQuery() *BoolQuery {
	return &BoolQuery{}
}

func (q *BoolQuery) AddMust(queries ...Query) *BoolQuery {
	q.Must = append(q.Must, queries...)
	return q
}

func (q *BoolQuery) AddFilter(queries ...Query) *BoolQuery {
	q.Filter = append(q.Filter, queries...)
	return q
}

func (q *BoolQuery) AddShould(queries ...Query) *BoolQuery {
	q.Should = append(q.Should, queries...)
	return q
}

func (q *BoolQuery) AddMustNot(queries ...Query) *BoolQuery {
	q.MustNot = append(q.MustNot, queries...)
	return q
}

// Count is the number of clauses in the query.
func (q *BoolQuery) Count() int {
	return len(q.Must) + len(q.Filter) + len(q.Should) + len(q.MustNot)
}

func (q *BoolQuery) Source() map[string]interface{} {
	body := map[string]interface{}{}
	for key, clauses := range map[string][]Query{
		"must":     q.Must,
		"filter":   q.Filter,
		"should":   q.Should,
		"must_not": q.MustNot,
	} {
		if len(clauses) > 0 {
			body[key] = sources(clauses)
		}
	}
	return map[string]interface{}{"bool": body}
}

type NestedQuery struct {
	Path      string
	Query     Query
	ScoreMode string
	InnerHits *InnerHits
}

func NewNestedQuery(path string, query Query) *NestedQuery {
	return &NestedQuery{Path: path, Query: query}
}

func (q *NestedQuery) Source() map[string]interface{} {
	body := map[string]interface{}{
		"path":  q.Path,
		"query": q.Query.Source(),
	}
	if q.ScoreMode != "" {
		body["score_mode"] = q.ScoreMode
	}
	if q.InnerHits != nil {
		hits := map[string]interface{}{}
		if q.InnerHits.Size > 0 {
			hits["size"] = q.InnerHits.Size
		}
		if q.InnerHits.Name != "" {
			hits["name"] = q.InnerHits.Name
		}
		body["inner_hits"] = hits
	}
	return map[string]interface{}{"nested": body}
}

type TermQuery struct {
	Field string
	Value interface{}
}

func NewTermQuery(field string, value interface{}) *TermQuery {
	return &TermQuery{Field: field, Value: value}
}

func (q *TermQuery) Source() map[string]interface{} {
	return map[string]interface{}{"term": map[string]interface{}{q.Field: q.Value}}
}

type TermsQuery struct {
	Field  string
	Values []interface{}
}

func NewTermsQuery(field string, values []interface{}) *TermsQuery {
	return &TermsQuery{Field: field, Values: values}
}

func (q *TermsQuery) Source() map[string]interface{} {
	return map[string]interface{}{"terms": map[string]interface{}{q.Field: q.Values}}
}

// RangeQuery bounds a single field; nil bounds are omitted.
type RangeQuery struct {
	Field string
	Gt    interface{}
	Gte   interface{}
	Lt    interface{}
	Lte   interface{}
}

func NewRangeQuery(field string) *RangeQuery {
	return &RangeQuery{Field: field}
}

func (q *RangeQuery) Source() map[string]interface{} {
	bounds := map[string]interface{}{}
	for key, v := range map[string]interface{}{"gt": q.Gt, "gte": q.Gte, "lt": q.Lt, "lte": q.Lte} {
		if v != nil {
			bounds[key] = v
		}
	}
	return map[string]interface{}{"range": map[string]interface{}{q.Field: bounds}}
}

type ExistsQuery struct {
	Field string
}

func NewExistsQuery(field string) *ExistsQuery {
	return &ExistsQuery{Field: field}
}

func (q *ExistsQuery) Source() map[string]interface{} {
	return map[string]interface{}{"exists": map[string]interface{}{"field": q.Field}}
}

type QueryStringQuery struct {
	Query           string
	DefaultField    string
	AnalyzeWildcard bool
}

func (q *QueryStringQuery) Source() map[string]interface{} {
	body := map[string]interface{}{"query": q.Query}
	if q.DefaultField != "" {
		body["default_field"] = q.DefaultField
	}
	if q.AnalyzeWildcard {
		body["analyze_wildcard"] = true
	}
	return map[string]interface{}{"query_string": body}
}

type MatchPhrasePrefixQuery struct {
	Field string
	Query string
}

func (q *MatchPhrasePrefixQuery) Source() map[string]interface{} {
	return map[string]interface{}{"match_phrase_prefix": map[string]interface{}{
		q.Field: map[string]interface{}{"query": q.Query},
	}}
}

type MatchBoolPrefixQuery struct {
	Field string
	Query string
}

func (q *MatchBoolPrefixQuery) Source() map[string]interface{} {
	return map[string]interface{}{"match_bool_prefix": map[string]interface{}{
		q.Field: map[string]interface{}{"query": q.Query},
	}}
}

type WildcardQuery struct {
	Field string
	Value string
}

func (q *WildcardQuery) Source() map[string]interface{} {
	return map[string]interface{}{"wildcard": map[string]interface{}{
		q.Field: map[string]interface{}{"value": q.Value},
	}}
}

type MatchAllQuery struct{}

func (q *MatchAllQuery) Source() map[string]interface{} {
	return map[string]interface{}{"match_all": map[string]interface{}{}}
}

func sources(queries []Query) []interface{} {
	out := make([]interface{}, 0, len(queries))
	for _, q := range queries {
		out = append(out, q.Source())
	}
	return out
}
