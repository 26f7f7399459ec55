package services

import (
	"strconv"
	"strings"

	"facet-search-service/models"

	"github.com/mitchellh/mapstructure"
)

// ParseAggregations turns the raw aggregation response into facet results
// keyed by aggregation name. Disabled facets are left out.
func ParseAggregations(raw map[string]interface{}, aggs models.AggregationConfigs, values models.FilterValues) map[string]interface{} {
	results := make(map[string]interface{}, len(aggs))
	for _, cfg := range aggs {
		if !cfg.Enabled(values) {
			continue
		}
		results[cfg.Name] = parseAggregation(raw, cfg, values)
	}
	return results
}

func parseAggregation(raw map[string]interface{}, cfg models.AggregationConfig, values models.FilterValues) interface{} {
	data := aggregationEntry(raw, cfg.Name)
	selected := values.Selected(cfg.Name)

	switch cfg.Type {
	case models.AggregationStats, models.AggregationCardinality:
		return aggregationData(data, cfg.Name, cfg.Name)
	case models.AggregationBool:
		// boolean filters carry a flag instead of a value list
		if v, ok := values.Get(cfg.Name); ok && len(v.Values) == 0 {
			selected = []string{"0"}
			if v.Flag {
				selected = []string{"1"}
			}
		}
		var items []models.FacetItem
		for _, b := range buckets(aggregationData(data, cfg.Name, cfg.Name)) {
			id := keyString(b.bucket.Key)
			name := b.bucket.KeyAsString
			if name == "" {
				name = id
			}
			items = append(items, models.FacetItem{
				ID:     id,
				Name:   name,
				Count:  b.bucket.Count(),
				Active: contains(selected, id),
			})
		}
		return sanitizeTermAggregationItems(items, cfg, selected)
	case models.AggregationTerms, models.AggregationExactText, models.AggregationNumeric:
		results := buckets(aggregationData(data, cfg.Name, cfg.Name))
		switch cfg.Formatter {
		case models.FormatterKey:
			if len(results) == 0 {
				return nil
			}
			return results[0].bucket.Key
		case models.FormatterKeys:
			keys := make([]interface{}, 0, len(results))
			for _, b := range results {
				keys = append(keys, b.bucket.Key)
			}
			return keys
		}
		var items []models.FacetItem
		for _, b := range results {
			id := keyString(b.bucket.Key)
			items = append(items, models.FacetItem{
				ID:     id,
				Name:   id,
				Count:  b.bucket.Count(),
				Active: contains(selected, id),
				Extra:  parseSubAggregations(b.raw, cfg.Aggregations, values),
			})
		}
		return sanitizeTermAggregationItems(items, cfg, selected)
	case models.AggregationObjectIDName:
		var items []models.FacetItem
		if cfg.CountMissing {
			missing := counter(aggregationData(data, cfg.Name, models.CountMissingName))
			if missing.Count() > 0 {
				items = append(items, models.FacetItem{
					ID:     cfg.NoneKey,
					Name:   cfg.NoneLabel,
					Count:  missing.Count(),
					Active: contains(selected, cfg.NoneKey),
				})
			}
		}
		if cfg.CountAny {
			countAny := counter(aggregationData(data, cfg.Name, models.CountAnyName))
			if countAny.Count() > 0 {
				items = append(items, models.FacetItem{
					ID:     cfg.AnyKey,
					Name:   cfg.AnyLabel,
					Count:  countAny.Count(),
					Active: contains(selected, cfg.AnyKey),
				})
			}
		}
		for _, b := range buckets(aggregationData(data, cfg.Name, cfg.Name)) {
			id, name := splitIDName(keyString(b.bucket.Key))
			items = append(items, models.FacetItem{
				ID:     id,
				Name:   name,
				Count:  b.bucket.Count(),
				Active: contains(selected, id),
				Extra:  parseSubAggregations(b.raw, cfg.Aggregations, values),
			})
		}
		return sanitizeTermAggregationItems(items, cfg, selected)
	case models.AggregationReverseNested:
		return parseSubAggregations(aggregationData(data, cfg.Name, cfg.Name), cfg.Aggregations, values)
	}
	return nil
}

func parseSubAggregations(raw map[string]interface{}, aggs models.AggregationConfigs, values models.FilterValues) map[string]interface{} {
	if len(aggs) == 0 {
		return nil
	}
	return ParseAggregations(raw, aggs, values)
}

// aggregationEntry looks the facet up below the global aggregation first.
func aggregationEntry(raw map[string]interface{}, name string) map[string]interface{} {
	if global, ok := raw[models.GlobalAggregationName].(map[string]interface{}); ok {
		if data, ok := global[name].(map[string]interface{}); ok {
			return data
		}
	}
	data, _ := raw[name].(map[string]interface{})
	return data
}

// aggregationData descends through the filter and nested wrappers sharing
// the facet name until the named result is reached.
func aggregationData(data map[string]interface{}, topName, name string) map[string]interface{} {
	results := data
	for {
		next, ok := results[name].(map[string]interface{})
		if !ok || len(next) == 0 {
			next, ok = results[topName].(map[string]interface{})
		}
		if !ok || len(next) == 0 {
			return results
		}
		results = next
	}
}

type rawBucket struct {
	bucket models.FacetBucket
	raw    map[string]interface{}
}

func buckets(data map[string]interface{}) []rawBucket {
	list, _ := data["buckets"].([]interface{})
	out := make([]rawBucket, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok || m["key"] == nil {
			continue
		}
		var b models.FacetBucket
		if err := mapstructure.Decode(m, &b); err != nil {
			continue
		}
		out = append(out, rawBucket{bucket: b, raw: m})
	}
	return out
}

func counter(data map[string]interface{}) models.FacetBucket {
	var b models.FacetBucket
	_ = mapstructure.Decode(data, &b)
	return b
}

// splitIDName splits an "<id>_<name>" key on the first underscore.
func splitIDName(key string) (string, string) {
	id, name, found := strings.Cut(key, "_")
	if !found {
		return key, key
	}
	return id, name
}

func keyString(key interface{}) string {
	switch k := key.(type) {
	case string:
		return k
	case float64:
		if k == float64(int64(k)) {
			return strconv.FormatInt(int64(k), 10)
		}
		return strconv.FormatFloat(k, 'f', -1, 64)
	case int:
		return strconv.Itoa(k)
	case int64:
		return strconv.FormatInt(k, 10)
	case bool:
		return strconv.FormatBool(k)
	}
	return ""
}

// sanitizeTermAggregationItems filters, relabels and orders facet items.
// Zero count items survive only while selected, and the safe limit never
// cuts selected items.
func sanitizeTermAggregationItems(items []models.FacetItem, cfg models.AggregationConfig, selected []string) []models.FacetItem {
	var active, rest []models.FacetItem
	for _, item := range items {
		if len(cfg.AllowedValue) > 0 && !contains(cfg.AllowedValue, item.ID) {
			continue
		}
		if len(cfg.IgnoreValue) > 0 && contains(cfg.IgnoreValue, item.ID) {
			continue
		}
		if item.Count == 0 && !contains(selected, item.ID) {
			continue
		}
		if cfg.ReplaceLabel != nil {
			item.Name = strings.ReplaceAll(item.Name, cfg.ReplaceLabel.Search, cfg.ReplaceLabel.Replace)
		}
		if label, ok := cfg.MapLabel[item.Name]; ok {
			item.Name = label
		}
		if item.Active {
			active = append(active, item)
		} else {
			rest = append(rest, item)
		}
	}
	if cfg.SafeLimit > 0 && len(rest) > cfg.SafeLimit {
		rest = rest[:cfg.SafeLimit]
	}
	out := append(make([]models.FacetItem, 0, len(active)+len(rest)), active...)
	out = append(out, rest...)
	sortFacetItems(out, cfg)
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
