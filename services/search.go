package services

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync/atomic"

	"facet-search-service/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine executes compiled request bodies against an index.
type Engine interface {
	Search(ctx context.Context, index string, body map[string]interface{}) (*models.EngineResponse, error)
	Get(ctx context.Context, index, id string) (map[string]interface{}, error)
}

type Mode string

const (
	ModeSearch          Mode = "search"
	ModeAggregate       Mode = "aggregate"
	ModeSearchAggregate Mode = "search_aggregate"
)

// ParseMode falls back to search_aggregate for empty or unknown modes.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeSearch, ModeAggregate:
		return Mode(s)
	}
	return ModeSearchAggregate
}

// SearchService answers search and facet requests for one collection. The
// collection is an immutable snapshot replaced atomically, so requests in
// flight keep the snapshot they started with.
type SearchService struct {
	engine      Engine
	indexPrefix string
	collection  atomic.Pointer[models.Collection]
	logger      *zap.Logger
}

func NewSearchService(engine Engine, c models.Collection, indexPrefix string, logger *zap.Logger) (*SearchService, error) {
	normalized, err := NormalizeCollection(c)
	if err != nil {
		return nil, err
	}
	s := &SearchService{
		engine:      engine,
		indexPrefix: indexPrefix,
		logger:      logger.With(zap.String("collection", normalized.Name)),
	}
	s.collection.Store(&normalized)
	return s, nil
}

func (s *SearchService) Collection() models.Collection {
	return *s.collection.Load()
}

func (s *SearchService) IndexName() string {
	return models.GetIndexInfo(s.indexPrefix, s.Collection()).IndexName
}

// Replace publishes a new schema. The current one stays when c is invalid.
func (s *SearchService) Replace(c models.Collection) error {
	normalized, err := NormalizeCollection(c)
	if err != nil {
		return err
	}
	s.collection.Store(&normalized)
	s.logger.Info("collection replaced",
		zap.Int("filters", len(normalized.Filters)),
		zap.Int("aggregations", len(normalized.Aggregations)))
	return nil
}

// SetAggregationActive enables or disables a facet, or all facets when name
// is empty, by publishing a modified copy of the collection.
func (s *SearchService) SetAggregationActive(name string, active bool) error {
	for {
		current := s.collection.Load()
		next, err := current.WithAggregationActive(name, active)
		if err != nil {
			return err
		}
		if s.collection.CompareAndSwap(current, &next) {
			return nil
		}
	}
}

// Run dispatches a request by mode. Aggregate mode answers with the facet
// map only.
func (s *SearchService) Run(ctx context.Context, raw map[string]interface{}, mode Mode, opts AggregationOptions) (interface{}, error) {
	var (
		result interface{}
		err    error
	)
	switch mode {
	case ModeSearch:
		result, err = s.Search(ctx, raw)
	case ModeAggregate:
		filters, _ := raw["filters"].(map[string]interface{})
		result, err = s.Aggregate(ctx, filters, opts)
	default:
		mode = ModeSearchAggregate
		result, err = s.SearchAndAggregate(ctx, raw, opts)
	}
	searchRequests.WithLabelValues(s.Collection().Name, string(mode), outcome(err)).Inc()
	return result, err
}

func (s *SearchService) Search(ctx context.Context, raw map[string]interface{}) (*models.SearchResult, error) {
	c := s.Collection()
	return s.search(ctx, c, SanitizeQuery(raw, c))
}

func (s *SearchService) Aggregate(ctx context.Context, rawFilters map[string]interface{}, opts AggregationOptions) (map[string]interface{}, error) {
	c := s.Collection()
	return s.aggregate(ctx, c, SanitizeFilters(rawFilters, c.Filters), opts)
}

// SearchAndAggregate runs the hit search and the facet computation
// concurrently on the same sanitized query. Either failure fails both.
func (s *SearchService) SearchAndAggregate(ctx context.Context, raw map[string]interface{}, opts AggregationOptions) (*models.SearchResult, error) {
	c := s.Collection()
	query := SanitizeQuery(raw, c)

	var (
		result      *models.SearchResult
		aggregation map[string]interface{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		result, err = s.search(gctx, c, query)
		return err
	})
	g.Go(func() error {
		var err error
		aggregation, err = s.aggregate(gctx, c, query.Filters, opts)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	result.Aggregation = aggregation
	return result, nil
}

// Compile returns the engine request bodies a request would send, keyed by
// "search" and "aggregate".
func (s *SearchService) Compile(raw map[string]interface{}, mode Mode, opts AggregationOptions) map[string]interface{} {
	c := s.Collection()
	query := SanitizeQuery(raw, c)
	out := map[string]interface{}{}
	if mode != ModeAggregate {
		out["search"] = SearchRequestBody(c, query).Body()
	}
	if mode != ModeSearch {
		if mode == ModeAggregate {
			filters, _ := raw["filters"].(map[string]interface{})
			query.Filters = SanitizeFilters(filters, c.Filters)
		}
		out["aggregate"] = BuildAggregationRequest(c, opts.Select(c.Aggregations), query.Filters).Body()
	}
	return out
}

func (s *SearchService) search(ctx context.Context, c models.Collection, query models.SearchQuery) (*models.SearchResult, error) {
	body := SearchRequestBody(c, query)
	res, err := s.engine.Search(ctx, s.indexName(c), body.Body())
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	result := &models.SearchResult{
		Count:   res.Hits.Total.Value,
		Data:    make([]map[string]interface{}, 0, len(res.Hits.Hits)),
		Search:  query.Params,
		Filters: query.Filters,
	}
	for _, hit := range res.Hits.Hits {
		result.Data = append(result.Data, formatHit(hit, c.ResultFields))
	}
	s.logger.Debug("search done", zap.Int("count", result.Count), zap.Int("hits", len(result.Data)))
	return result, nil
}

func (s *SearchService) aggregate(ctx context.Context, c models.Collection, values models.FilterValues, opts AggregationOptions) (map[string]interface{}, error) {
	aggs := opts.Select(c.Aggregations)
	body := BuildAggregationRequest(c, aggs, values)
	res, err := s.engine.Search(ctx, s.indexName(c), body.Body())
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	return ParseAggregations(res.Aggregations, aggs, values), nil
}

// SearchRaw searches without collection defaults and returns unformatted
// sources, at most MaxRawSearchLimit of them.
func (s *SearchService) SearchRaw(ctx context.Context, raw map[string]interface{}, fields []string) (*models.RawResult, error) {
	c := s.Collection()
	params := SanitizeParameters(raw, c, false)
	filters, _ := raw["filters"].(map[string]interface{})
	values := SanitizeFilters(filters, c.Filters)

	body := &models.SearchBody{
		Size:           models.MaxRawSearchLimit,
		Sort:           sortClauses(params),
		SourceFields:   fields,
		TrackTotalHits: true,
	}
	if params.Limit != nil {
		body.Size = min(*params.Limit, models.MaxRawSearchLimit)
		if params.Page != nil {
			body.From = (*params.Page - 1) * *params.Limit
		}
	}
	if values.Len() > 0 {
		body.Query = BuildQuery(values, c.Filters)
	}

	res, err := s.engine.Search(ctx, s.indexName(c), body.Body())
	if err != nil {
		return nil, fmt.Errorf("raw search: %w", err)
	}
	result := &models.RawResult{
		Count: res.Hits.Total.Value,
		Data:  make([]map[string]interface{}, 0, len(res.Hits.Hits)),
	}
	for _, hit := range res.Hits.Hits {
		part := copySource(hit.Source)
		part["_score"] = hit.Score
		if len(hit.InnerHits) > 0 {
			inner := make(map[string]interface{}, len(hit.InnerHits))
			for name, ih := range hit.InnerHits {
				inner[name] = innerSources(ih)
			}
			part["inner_hits"] = inner
		}
		result.Data = append(result.Data, part)
	}
	return result, nil
}

// Paginate returns the ids of every matching document in result order.
func (s *SearchService) Paginate(ctx context.Context, raw map[string]interface{}) ([]interface{}, error) {
	res, err := s.SearchRaw(ctx, raw, []string{"id"})
	if err != nil {
		return nil, err
	}
	ids := make([]interface{}, 0, len(res.Data))
	for _, item := range res.Data {
		ids = append(ids, item["id"])
	}
	return ids, nil
}

// Get returns the source of a single document.
func (s *SearchService) Get(ctx context.Context, id string) (map[string]interface{}, error) {
	doc, err := s.engine.Get(ctx, s.IndexName(), id)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *SearchService) indexName(c models.Collection) string {
	return models.GetIndexInfo(s.indexPrefix, c).IndexName
}

// SearchRequestBody compiles the hit search of a sanitized query.
func SearchRequestBody(c models.Collection, query models.SearchQuery) *models.SearchBody {
	body := &models.SearchBody{
		Size:           models.DefaultSearchLimit,
		Sort:           sortClauses(query.Params),
		TrackTotalHits: true,
	}
	if query.Params.Limit != nil {
		body.Size = *query.Params.Limit
		if query.Params.Page != nil {
			body.From = (*query.Params.Page - 1) * *query.Params.Limit
		}
	}
	if query.Filters.Len() > 0 {
		body.Query = BuildQuery(query.Filters, c.Filters)
		if fields := HighlightFields(query.Filters, c.Filters); len(fields) > 0 {
			body.Highlight = &models.Highlight{Fields: fields}
		}
	} else {
		body.Query = &models.MatchAllQuery{}
	}
	return body
}

func sortClauses(params models.SearchParams) []map[string]string {
	order := "desc"
	if params.Ascending {
		order = "asc"
	}
	sort := make([]map[string]string, 0, len(params.OrderBy))
	for _, field := range params.OrderBy {
		sort = append(sort, map[string]string{field: order})
	}
	return sort
}

func formatHit(hit models.EngineHit, resultFields []string) map[string]interface{} {
	part := copySource(hit.Source)
	part["_score"] = hit.Score
	for key, fragments := range hit.Highlight {
		if len(fragments) == 0 {
			continue
		}
		part["original_"+key] = part[key]
		part[key] = formatHighlight(fragments[0])
	}
	if len(hit.InnerHits) > 0 {
		inner := make(map[string]interface{}, len(hit.InnerHits))
		for name, ih := range hit.InnerHits {
			inner[name] = map[string]interface{}{
				"data":  innerSources(ih),
				"count": ih.Hits.Total.Value,
			}
		}
		part["inner_hits"] = inner
	}
	if len(resultFields) > 0 {
		part = projectFields(part, resultFields)
	}
	addLocusOrder(part)
	return part
}

// formatHighlight keeps the lines of a highlighted field holding a mark.
func formatHighlight(highlight string) []string {
	lines := []string{}
	for _, line := range strings.Split(html.UnescapeString(highlight), "\n") {
		line = strings.TrimSpace(line)
		if strings.Contains(line, "<mark>") {
			lines = append(lines, line)
		}
	}
	return lines
}

// projectFields keeps the result fields plus the score, inner hits and the
// unhighlighted originals of kept fields.
func projectFields(part map[string]interface{}, fields []string) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+2)
	for _, f := range fields {
		if v, ok := part[f]; ok {
			out[f] = v
		}
		if v, ok := part["original_"+f]; ok {
			out["original_"+f] = v
		}
	}
	for _, f := range []string{"_score", "inner_hits"} {
		if v, ok := part[f]; ok {
			out[f] = v
		}
	}
	return out
}

// addLocusOrder adds a sort key next to every locus of the related lists
// of a hit that lacks one.
func addLocusOrder(part map[string]interface{}) {
	for _, v := range part {
		list, ok := v.([]interface{})
		if !ok {
			continue
		}
		for _, item := range list {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			locus, ok := m["locus"].(string)
			if !ok || locus == "" {
				continue
			}
			if _, ok := m["locus_order"]; !ok {
				m["locus_order"] = models.LocusSortKey(locus)
			}
		}
	}
}

func copySource(source map[string]interface{}) map[string]interface{} {
	part := make(map[string]interface{}, len(source)+1)
	for k, v := range source {
		part[k] = v
	}
	return part
}

func innerSources(ih models.EngineInnerHits) []map[string]interface{} {
	values := make([]map[string]interface{}, 0, len(ih.Hits.Hits))
	for _, h := range ih.Hits.Hits {
		if h.Source != nil {
			values = append(values, h.Source)
		}
	}
	return values
}
