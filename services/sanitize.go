package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"facet-search-service/models"

	"github.com/mitchellh/mapstructure"
)

var whitespace = regexp.MustCompile(`\s+`)

// SanitizeQuery sanitizes the paging parameters and the "filters" map of a
// request. Defaults of the collection are merged in.
func SanitizeQuery(raw map[string]interface{}, c models.Collection) models.SearchQuery {
	filters, _ := raw["filters"].(map[string]interface{})
	return models.SearchQuery{
		Params:  SanitizeParameters(raw, c, true),
		Filters: SanitizeFilters(filters, c.Filters),
	}
}

// SanitizeParameters reads limit, page, orderBy and ascending. Invalid values
// are ignored.
func SanitizeParameters(raw map[string]interface{}, c models.Collection, mergeDefaults bool) models.SearchParams {
	params := models.SearchParams{Ascending: true}
	if mergeDefaults {
		if c.Defaults.Limit > 0 {
			limit := c.Defaults.Limit
			params.Limit = &limit
		}
		if c.Defaults.Page > 0 {
			page := c.Defaults.Page
			params.Page = &page
		}
		params.OrderBy = c.Defaults.OrderBy
		params.Ascending = c.Defaults.Ascending
	}

	if limit, ok := toInt(raw["limit"]); ok && limit > 0 {
		if limit > models.MaxSearchLimit {
			limit = models.MaxSearchLimit
		}
		params.Limit = &limit
	}
	if page, ok := toInt(raw["page"]); ok && page > 0 {
		params.Page = &page
	}
	if orderBy := sortFields(raw["orderBy"], c.OrderBy); len(orderBy) > 0 {
		params.OrderBy = orderBy
	}
	if v, ok := raw["ascending"]; ok {
		params.Ascending = !isFalsy(v)
	}
	return params
}

// sortFields maps request sort names to engine fields. Unknown names are
// dropped when the collection declares a mapping.
func sortFields(v interface{}, mapping map[string][]string) []string {
	names, ok := toStrings(v)
	if !ok {
		return nil
	}
	var fields []string
	for _, name := range names {
		if name == "" {
			continue
		}
		if len(mapping) == 0 {
			fields = append(fields, name)
			continue
		}
		fields = append(fields, mapping[name]...)
	}
	return fields
}

func isFalsy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return !t
	case string:
		return t == "0" || t == "false" || t == "False"
	case int:
		return t == 0
	case float64:
		return t == 0
	}
	return false
}

// SanitizeFilters converts raw request filters into typed values. A value
// that fails the rule of its filter type is dropped, never reported.
func SanitizeFilters(raw map[string]interface{}, configs models.FilterConfigs) models.FilterValues {
	if raw == nil {
		raw = map[string]interface{}{}
	}
	values := models.NewFilterValues(raw)
	sanitizeInto(&values, raw, configs)
	return values
}

func sanitizeInto(values *models.FilterValues, raw map[string]interface{}, configs models.FilterConfigs) {
	for _, cfg := range configs {
		if cfg.HasChildren() {
			sanitizeInto(values, raw, cfg.Filters)
			continue
		}
		if v, ok := SanitizeFilter(cfg, raw); ok {
			values.Set(cfg.Name, v)
		}
	}
}

// SanitizeFilter resolves and converts the value of a single filter. The
// fixed config value wins over the request value, which wins over the default.
func SanitizeFilter(cfg models.FilterConfig, raw map[string]interface{}) (models.FilterValue, bool) {
	value := cfg.Value
	if value == nil {
		value = raw[cfg.QueryKey]
	}
	if value == nil {
		value = cfg.DefaultValue
	}

	switch cfg.Type {
	case models.FilterNumeric, models.FilterObjectID, models.FilterNestedID,
		models.FilterKeyword, models.FilterTerms:
		return sanitizeIDs(cfg, value, raw[cfg.Name+"_op"])
	case models.FilterTextPrefix, models.FilterKeywordPrefix:
		list, ok := toStrings(value)
		list = nonEmpty(list)
		if !ok || len(list) == 0 {
			return models.FilterValue{}, false
		}
		return models.FilterValue{Values: list[:1]}, true
	case models.FilterBoolean:
		if value == nil {
			return models.FilterValue{}, false
		}
		return models.FilterValue{Flag: isTruthy(value)}, true
	case models.FilterExists:
		if s, ok := value.(string); ok && s == "true" {
			return models.FilterValue{Flag: true}, true
		}
		return models.FilterValue{}, false
	case models.FilterDateRange:
		return sanitizeDateRange(cfg, raw)
	case models.FilterDMYRange:
		return sanitizeDMYRange(value)
	case models.FilterNumericRange:
		return sanitizeNumericRange(cfg, value)
	case models.FilterText:
		return sanitizeText(value, raw[cfg.Name+"_combination"])
	default:
		switch t := value.(type) {
		case string:
			if t == "" {
				return models.FilterValue{}, false
			}
			return models.FilterValue{Raw: t}, true
		case []interface{}, []string, map[string]interface{}:
			return models.FilterValue{Raw: t}, true
		}
	}
	return models.FilterValue{}, false
}

func sanitizeIDs(cfg models.FilterConfig, value interface{}, rawOps interface{}) (models.FilterValue, bool) {
	if value == nil {
		return models.FilterValue{}, false
	}
	var list []string
	if s, ok := toScalarString(value); ok {
		if f, err := strconv.ParseFloat(s, 64); err == nil && cfg.Type.IsNumericID() && !math.IsInf(f, 0) && !math.IsNaN(f) {
			s = strconv.FormatInt(int64(f), 10)
		}
		list = []string{s}
	} else if l, ok := toStrings(value); ok {
		list = l
	}
	list = nonEmpty(list)
	if len(list) == 0 {
		return models.FilterValue{}, false
	}

	var ops []models.Operator
	if names, ok := toStrings(rawOps); ok {
		for _, name := range names {
			if op := models.Operator(name); op.Valid() {
				ops = append(ops, op)
			}
		}
	}
	if len(ops) == 0 {
		ops = []models.Operator{models.OperatorOr}
	}
	return models.FilterValue{Values: list, Operators: ops}, true
}

func sanitizeDateRange(cfg models.FilterConfig, raw map[string]interface{}) (models.FilterValue, bool) {
	r := models.DateRange{}
	if f, ok := toFloat(raw[cfg.FloorField]); ok {
		r.Floor = &f
	}
	if f, ok := toFloat(raw[cfg.CeilingField]); ok {
		r.Ceiling = &f
	}
	if t, ok := raw[cfg.TypeField].(string); ok {
		switch t {
		case models.DateRangeExact, models.DateRangeIncluded, models.DateRangeInclude, models.DateRangeOverlap:
			r.Type = t
		}
	}
	if r.Floor == nil && r.Ceiling == nil && r.Type == "" {
		return models.FilterValue{}, false
	}
	return models.FilterValue{DateRange: &r}, true
}

func sanitizeDMYRange(value interface{}) (models.FilterValue, bool) {
	m, ok := value.(map[string]interface{})
	if !ok {
		return models.FilterValue{}, false
	}
	from := decodeDMY(m["from"])
	till := decodeDMY(m["till"])

	r := models.DMYRangeValue{From: from, Till: till}
	switch {
	case !from.IsEmpty() && till.IsEmpty() && from.IsContiguous():
		r.Type = models.DMYExact
	case !from.IsEmpty() && !till.IsEmpty() && from.IsContiguous() && till.IsContiguous():
		r.Type = models.DMYRange
	default:
		return models.FilterValue{}, false
	}
	return models.FilterValue{DMY: &r}, true
}

// decodeDMY reads the numeric year, month and day of one range side.
func decodeDMY(v interface{}) models.DMYDate {
	m, ok := v.(map[string]interface{})
	if !ok {
		return models.DMYDate{}
	}
	numeric := map[string]interface{}{}
	for _, part := range []string{"year", "month", "day"} {
		if n, ok := toInt(m[part]); ok {
			numeric[part] = n
		}
	}
	var d models.DMYDate
	if err := mapstructure.Decode(numeric, &d); err != nil {
		return models.DMYDate{}
	}
	return d
}

func sanitizeNumericRange(cfg models.FilterConfig, value interface{}) (models.FilterValue, bool) {
	list, ok := toList(value)
	if !ok {
		return models.FilterValue{}, false
	}
	r := models.NumericRange{}
	bound := func(i int) *float64 {
		if i >= len(list) {
			return nil
		}
		f, ok := toFloat(list[i])
		if !ok {
			return nil
		}
		for _, ignore := range cfg.Ignore {
			if f == ignore {
				return nil
			}
		}
		return &f
	}
	r.Floor = bound(0)
	r.Ceiling = bound(1)
	if r.Floor == nil && r.Ceiling == nil {
		return models.FilterValue{}, false
	}
	return models.FilterValue{Range: &r}, true
}

func sanitizeText(value interface{}, rawCombination interface{}) (models.FilterValue, bool) {
	var text string
	switch t := value.(type) {
	case string:
		text = t
	default:
		list, _ := toStrings(value)
		if l := nonEmpty(list); len(l) > 0 {
			text = l[0]
		}
	}
	text = CleanText(text)
	if text == "" {
		return models.FilterValue{}, false
	}

	combination := models.CombinationAny
	if c, ok := rawCombination.(string); ok {
		switch c {
		case models.CombinationAll, models.CombinationPhrase:
			combination = c
		}
	}
	return models.FilterValue{Text: &models.TextValue{Text: text, Combination: combination}}, true
}

// CleanText collapses whitespace and strips colons.
func CleanText(text string) string {
	text = whitespace.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, ":", "")
	return strings.TrimSpace(text)
}

func isTruthy(v interface{}) bool {
	switch t := v.(type) {
	case string:
		return t == "1" || t == "true"
	case bool:
		return t
	case int:
		return t == 1
	case float64:
		return t == 1
	}
	if list, ok := toList(v); ok {
		for _, item := range list {
			if s, ok := item.(string); ok && (s == "1" || s == "true") {
				return true
			}
		}
	}
	return false
}

func toScalarString(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

func toList(v interface{}) ([]interface{}, bool) {
	switch t := v.(type) {
	case []interface{}:
		return t, true
	case []string:
		out := make([]interface{}, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

// toStrings accepts a scalar or a list of scalars.
func toStrings(v interface{}) ([]string, bool) {
	if s, ok := toScalarString(v); ok {
		return []string{s}, true
	}
	list, ok := toList(v)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := toScalarString(item); ok {
			out = append(out, s)
		}
	}
	return out, true
}

func nonEmpty(list []string) []string {
	out := list[:0:0]
	for _, s := range list {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func toFloat(v interface{}) (float64, bool) {
	s, ok := toScalarString(v)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func toInt(v interface{}) (int, bool) {
	f, ok := toFloat(v)
	if !ok || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
