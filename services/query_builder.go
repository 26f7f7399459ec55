package services

import (
	"regexp"
	"strconv"
	"strings"

	"facet-search-service/models"
)

var (
	advancedTextSyntax = regexp.MustCompile(`AND|OR|[/~\-"()]`)
	wildcardSyntax     = regexp.MustCompile(`[*?]`)
)

// BuildQuery compiles sanitized filter values into a boolean query, one
// filter config at a time.
func BuildQuery(values models.FilterValues, configs models.FilterConfigs) *models.BoolQuery {
	query := models.NewBoolQuery()
	for _, cfg := range configs {
		addFieldQuery(query, cfg, values)
	}
	return query
}

func addFieldQuery(query *models.BoolQuery, cfg models.FilterConfig, values models.FilterValues) {
	value, ok := values.Get(cfg.Name)
	if !ok && !cfg.HasChildren() {
		return
	}

	switch cfg.Type {
	case models.FilterNumeric, models.FilterObjectID, models.FilterNestedID,
		models.FilterKeyword, models.FilterTerms:
		addIDQuery(query, cfg, value)
	case models.FilterTextPrefix:
		if len(value.Values) > 0 {
			query.AddMust(&models.MatchPhrasePrefixQuery{Field: cfg.Field, Query: value.Values[0]})
		}
	case models.FilterKeywordPrefix:
		if len(value.Values) > 0 {
			query.AddMust(&models.MatchBoolPrefixQuery{Field: cfg.Field, Query: value.Values[0]})
		}
	case models.FilterExists:
		if value.Flag {
			query.AddMust(models.NewExistsQuery(cfg.Field))
		}
	case models.FilterBoolean:
		switch {
		case value.Flag:
			trueValue := cfg.TrueValue
			if trueValue == nil {
				trueValue = true
			}
			query.AddMust(models.NewTermQuery(cfg.Field, trueValue))
		case !cfg.OnlyFilterIfTrue && cfg.FalseValue != nil:
			query.AddMust(models.NewTermQuery(cfg.Field, cfg.FalseValue))
		}
	case models.FilterWildcard:
		if s := firstString(value.Raw); s != "" {
			query.AddMust(&models.WildcardQuery{Field: cfg.Field, Value: s})
		}
	case models.FilterText:
		if value.Text != nil {
			query.AddMust(&models.QueryStringQuery{Query: TextQueryString(*value.Text), DefaultField: cfg.Field})
		}
	case models.FilterQueryString:
		if s := firstString(value.Raw); s != "" {
			query.AddMust(&models.QueryStringQuery{Query: s, DefaultField: cfg.Field, AnalyzeWildcard: true})
		}
	case models.FilterNumericRange:
		addNumericRangeQuery(query, cfg, value)
	case models.FilterDMYRange:
		addDMYRangeQuery(query, cfg, value)
	case models.FilterDateRange:
		addDateRangeQuery(query, cfg, value)
	case models.FilterNestedMultiple:
		sub := BuildQuery(values, cfg.Filters)
		if sub.Count() == 0 {
			return
		}
		if cfg.ScoreEqual {
			sub.AddMust(&models.MatchAllQuery{})
		}
		query.AddMust(nestedQuery(cfg, sub))
	case models.FilterBoolOr:
		or := models.NewBoolQuery()
		for _, child := range cfg.Filters {
			sub := models.NewBoolQuery()
			addFieldQuery(sub, child, values)
			if sub.Count() > 0 {
				or.AddShould(sub)
			}
		}
		if or.Count() > 0 {
			query.AddMust(or)
		}
	case models.FilterBoolAnd:
		and := models.NewBoolQuery()
		for _, child := range cfg.Filters {
			addFieldQuery(and, child, values)
		}
		if and.Count() > 0 {
			query.AddMust(and)
		}
	}
}

// addIDQuery compiles a multi-select value list. The none sentinel wins over
// the any sentinel, and both win over the supplied values and operators.
func addIDQuery(query *models.BoolQuery, cfg models.FilterConfig, value models.FilterValue) {
	if len(value.Values) == 0 {
		return
	}
	field := cfg.Field + cfg.Type.IDSuffix()

	if value.Has(cfg.NoneKey) || value.HasOperator(models.OperatorNone) {
		exists := models.NewExistsQuery(field)
		if cfg.IsNested() {
			query.AddMustNot(nestedQuery(cfg, models.NewBoolQuery().AddFilter(exists)))
		} else {
			query.AddMustNot(exists)
		}
		return
	}
	if value.Has(cfg.AnyKey) || value.HasOperator(models.OperatorAny) {
		exists := models.NewExistsQuery(field)
		if cfg.IsNested() {
			query.AddMust(nestedQuery(cfg, models.NewBoolQuery().AddFilter(exists)))
		} else {
			query.AddMust(exists)
		}
		return
	}

	var clause models.Query
	if value.HasOperator(models.OperatorAnd) {
		and := models.NewBoolQuery()
		for _, v := range value.Values {
			term := models.NewTermQuery(field, termValue(cfg, v))
			if cfg.IsNested() {
				// one nested element cannot hold two values at once
				and.AddMust(nestedQuery(cfg, models.NewBoolQuery().AddMust(term)))
			} else {
				and.AddMust(term)
			}
		}
		clause = and
	} else {
		typed := make([]interface{}, 0, len(value.Values))
		for _, v := range value.Values {
			typed = append(typed, termValue(cfg, v))
		}
		clause = models.NewTermsQuery(field, typed)
		if cfg.IsNested() {
			clause = nestedQuery(cfg, models.NewBoolQuery().AddFilter(clause))
		}
	}

	if value.HasOperator(models.OperatorNot) {
		query.AddMustNot(clause)
	} else {
		query.AddFilter(clause)
	}
	if value.HasOperator(models.OperatorOnly) {
		query.AddMust(models.NewTermQuery(cfg.Field+"_count", len(value.Values)))
	}
}

// termValue sends numeric ids as integers.
func termValue(cfg models.FilterConfig, v string) interface{} {
	if cfg.Type.IsNumericID() {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return v
}

func nestedQuery(cfg models.FilterConfig, inner models.Query) *models.NestedQuery {
	q := models.NewNestedQuery(cfg.NestedPath, inner)
	q.ScoreMode = cfg.ScoreMode
	q.InnerHits = cfg.InnerHits
	return q
}

func addNumericRangeQuery(query *models.BoolQuery, cfg models.FilterConfig, value models.FilterValue) {
	if value.Range == nil {
		return
	}
	if value.Range.Floor != nil {
		r := models.NewRangeQuery(cfg.FloorField)
		r.Gte = *value.Range.Floor
		query.AddMust(r)
	}
	if value.Range.Ceiling != nil {
		r := models.NewRangeQuery(cfg.CeilingField)
		r.Lte = *value.Range.Ceiling
		query.AddMust(r)
	}
}

func addDMYRangeQuery(query *models.BoolQuery, cfg models.FilterConfig, value models.FilterValue) {
	if value.DMY == nil {
		return
	}
	switch value.DMY.Type {
	case models.DMYExact:
		for _, part := range value.DMY.From.Parts() {
			query.AddMust(models.NewTermQuery(cfg.Field+"."+part.Name, part.Value))
		}
	case models.DMYRange:
		if from := dmyCascade(cfg.Field, value.DMY.From, true); from.Count() > 0 {
			query.AddMust(from)
		}
		if till := dmyCascade(cfg.Field, value.DMY.Till, false); till.Count() > 0 {
			query.AddMust(till)
		}
	}
}

// dmyCascade compares a stored year/month/day against one side of a range
// the way dates compare lexicographically: every clause fixes the coarser
// parts and bounds the current one, the most precise part inclusively.
func dmyCascade(field string, date models.DMYDate, lower bool) *models.BoolQuery {
	parts := date.Parts()
	side := models.NewBoolQuery()
	for i, part := range parts {
		clause := models.NewBoolQuery()
		for _, coarser := range parts[:i] {
			clause.AddMust(models.NewTermQuery(field+"."+coarser.Name, coarser.Value))
		}
		r := models.NewRangeQuery(field + "." + part.Name)
		last := i == len(parts)-1
		switch {
		case lower && last:
			r.Gte = part.Value
		case lower:
			r.Gt = part.Value
		case last:
			r.Lte = part.Value
		default:
			r.Lt = part.Value
		}
		clause.AddMust(r)
		side.AddShould(clause)
	}
	return side
}

func addDateRangeQuery(query *models.BoolQuery, cfg models.FilterConfig, value models.FilterValue) {
	r := value.DateRange
	if r == nil {
		return
	}
	switch r.Type {
	case models.DateRangeExact:
		if r.Floor != nil {
			query.AddMust(models.NewTermQuery(cfg.FloorField, *r.Floor))
		}
		if r.Ceiling != nil {
			query.AddMust(models.NewTermQuery(cfg.CeilingField, *r.Ceiling))
		}
	case models.DateRangeIncluded:
		if r.Floor != nil {
			q := models.NewRangeQuery(cfg.FloorField)
			q.Gte = *r.Floor
			query.AddMust(q)
		}
		if r.Ceiling != nil {
			q := models.NewRangeQuery(cfg.CeilingField)
			q.Lte = *r.Ceiling
			query.AddMust(q)
		}
	case models.DateRangeInclude:
		if r.Floor != nil && r.Ceiling != nil {
			floor := models.NewRangeQuery(cfg.FloorField)
			floor.Lte = *r.Floor
			ceiling := models.NewRangeQuery(cfg.CeilingField)
			ceiling.Gte = *r.Ceiling
			query.AddMust(floor, ceiling)
		}
	case models.DateRangeOverlap:
		overlap := models.NewBoolQuery()
		for _, field := range []string{cfg.FloorField, cfg.CeilingField} {
			q := models.NewRangeQuery(field)
			if r.Floor != nil {
				q.Gte = *r.Floor
			}
			if r.Ceiling != nil {
				q.Lte = *r.Ceiling
			}
			overlap.AddShould(q)
		}
		if r.Floor != nil && r.Ceiling != nil {
			floor := models.NewRangeQuery(cfg.FloorField)
			floor.Lte = *r.Floor
			ceiling := models.NewRangeQuery(cfg.CeilingField)
			ceiling.Gte = *r.Ceiling
			overlap.AddShould(models.NewBoolQuery().AddMust(floor, ceiling))
		}
		query.AddMust(overlap)
	}
}

// TextQueryString rewrites plain text per combination. Text already using
// query string syntax passes through unchanged.
func TextQueryString(v models.TextValue) string {
	text := CleanText(v.Text)
	if advancedTextSyntax.MatchString(text) {
		return text
	}
	switch v.Combination {
	case models.CombinationPhrase:
		if !wildcardSyntax.MatchString(text) {
			return `"` + text + `"`
		}
		return strings.Join(strings.Split(text, " "), " AND ")
	case models.CombinationAll:
		return strings.Join(strings.Split(text, " "), " AND ")
	}
	return text
}

// HighlightFields lists the fields of applied full text filters.
func HighlightFields(values models.FilterValues, configs models.FilterConfigs) []string {
	var fields []string
	configs.Walk(func(cfg models.FilterConfig) {
		if cfg.Type != models.FilterText && cfg.Type != models.FilterQueryString {
			return
		}
		if _, ok := values.Get(cfg.Name); ok {
			fields = append(fields, cfg.Field)
		}
	})
	return fields
}

func firstString(v interface{}) string {
	list, _ := toStrings(v)
	if l := nonEmpty(list); len(l) > 0 {
		return l[0]
	}
	return ""
}
