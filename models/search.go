package models

// Search limits.
const (
	MaxSearchLimit    = 10000
	MaxRawSearchLimit = 500
	// DefaultSearchLimit is the engine page size used when neither the
	// request nor the collection sets a limit.
	DefaultSearchLimit = 10
)

// SearchParams are the sanitized paging and sorting parameters of a request.
type SearchParams struct {
	Limit     *int     `json:"limit,omitempty"`
	Page      *int     `json:"page,omitempty"`
	OrderBy   []string `json:"orderBy,omitempty"`
	Ascending bool     `json:"ascending"`
}

// SearchQuery is a fully sanitized search request.
type SearchQuery struct {
	Params  SearchParams
	Filters FilterValues
}

type Highlight struct {
	Fields []string
}

func (h Highlight) Source() map[string]interface{} {
	fields := make(map[string]interface{}, len(h.Fields))
	for _, f := range h.Fields {
		fields[f] = map[string]interface{}{}
	}
	return map[string]interface{}{
		"number_of_fragments": 0,
		"pre_tags":            []string{"<mark>"},
		"post_tags":           []string{"</mark>"},
		"fields":              fields,
	}
}

// SearchBody is one request body for the engine search endpoint.
type SearchBody struct {
	Query          Query
	Aggregations   []Aggregation
	Size           int
	From           int
	Sort           []map[string]string
	Highlight      *Highlight
	SourceFields   []string
	TrackTotalHits bool
}

func (b *SearchBody) AddAggregation(a Aggregation) {
	b.Aggregations = append(b.Aggregations, a)
}

func (b *SearchBody) Body() map[string]interface{} {
	body := map[string]interface{}{"size": b.Size}
	if b.Query != nil {
		body["query"] = b.Query.Source()
	}
	if b.From > 0 {
		body["from"] = b.From
	}
	if len(b.Sort) > 0 {
		body["sort"] = b.Sort
	}
	if b.Highlight != nil && len(b.Highlight.Fields) > 0 {
		body["highlight"] = b.Highlight.Source()
	}
	if len(b.SourceFields) > 0 {
		body["_source"] = b.SourceFields
	}
	if b.TrackTotalHits {
		body["track_total_hits"] = true
	}
	if len(b.Aggregations) > 0 {
		body["aggs"] = AggregationsSource(b.Aggregations)
	}
	return body
}

type EngineResponse struct {
	Hits         EngineHits             `json:"hits"`
	Aggregations map[string]interface{} `json:"aggregations"`
}

type EngineHits struct {
	Total TotalHits   `json:"total"`
	Hits  []EngineHit `json:"hits"`
}

type TotalHits struct {
	Value    int    `json:"value"`
	Relation string `json:"relation"`
}

type EngineHit struct {
	ID        string                     `json:"_id"`
	Score     *float64                   `json:"_score"`
	Source    map[string]interface{}     `json:"_source"`
	Highlight map[string][]string        `json:"highlight"`
	InnerHits map[string]EngineInnerHits `json:"inner_hits"`
}

type EngineInnerHits struct {
	Hits EngineHits `json:"hits"`
}

// SearchResult is the response of the search modes.
type SearchResult struct {
	Count       int                      `json:"count"`
	Data        []map[string]interface{} `json:"data"`
	Search      SearchParams             `json:"search"`
	Filters     FilterValues             `json:"filters"`
	Aggregation map[string]interface{}   `json:"aggregation,omitempty"`
}

// RawResult is the response of a raw search without defaults or formatting.
type RawResult struct {
	Count int                      `json:"count"`
	Data  []map[string]interface{} `json:"data"`
}

// FieldMapping describes one leaf field of the index mapping.
type FieldMapping struct {
	Path     string   `json:"path"`     // parent path of the field
	DataType []string `json:"dataType"` // mapping type plus multi-field types
	IsNested bool     `json:"isNested"` // field lives inside a nested object
}

type MappingInfo struct {
	IndexName     string
	FieldMappings map[string]FieldMapping
	NestedPaths   map[string]bool
}
