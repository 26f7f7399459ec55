package models

import "encoding/json"

// FacetItem is one option of a facet list.
type FacetItem struct {
	ID     string
	Name   string
	Count  int
	Active bool
	// Extra holds parsed sub-aggregations keyed by name.
	Extra map[string]interface{}
}

func (f FacetItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(f.Extra)+4)
	for k, v := range f.Extra {
		out[k] = v
	}
	out["id"] = f.ID
	out["name"] = f.Name
	out["count"] = f.Count
	out["active"] = f.Active
	return json.Marshal(out)
}

// FacetBucket is a terms bucket as returned by the engine.
type FacetBucket struct {
	Key              interface{} `mapstructure:"key"`
	KeyAsString      string      `mapstructure:"key_as_string"`
	DocCount         int         `mapstructure:"doc_count"`
	TopReverseNested *DocCounter `mapstructure:"top_reverse_nested"`
}

type DocCounter struct {
	DocCount int `mapstructure:"doc_count"`
}

// Count prefers the parent document count of nested buckets.
func (b FacetBucket) Count() int {
	if b.TopReverseNested != nil {
		return b.TopReverseNested.DocCount
	}
	return b.DocCount
}
