// Package collections loads collection schemas from YAML.
//
// A schema declares filters and aggregations as ordered maps keyed by name.
// Both may nest a "filters" map, and aggregations may nest "aggregations".
package collections

import (
	_ "embed"
	"fmt"
	"os"

	"facet-search-service/models"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

//go:embed text.yaml
var textSchema []byte

type document struct {
	Name         string                `yaml:"name"`
	Index        string                `yaml:"index"`
	Defaults     models.SearchDefaults `yaml:"defaults"`
	OrderBy      map[string][]string   `yaml:"orderBy"`
	ResultFields []string              `yaml:"resultFields"`
	Filters      yaml.Node             `yaml:"filters"`
	Aggregations yaml.Node             `yaml:"aggregations"`
}

// Embedded returns the built-in text collection.
func Embedded() (models.Collection, error) {
	return Parse(textSchema)
}

func Load(path string) (models.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Collection{}, fmt.Errorf("reading schema %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return c, fmt.Errorf("schema %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a schema document. The result is not normalized.
func Parse(data []byte) (models.Collection, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return models.Collection{}, fmt.Errorf("parsing schema: %v: %w", err, models.ErrConfiguration)
	}
	c := models.Collection{
		Name:         doc.Name,
		Index:        doc.Index,
		Defaults:     doc.Defaults,
		OrderBy:      doc.OrderBy,
		ResultFields: doc.ResultFields,
	}

	var err error
	if c.Filters, err = decodeFilters(&doc.Filters); err != nil {
		return c, err
	}
	if c.Aggregations, err = decodeAggregations(&doc.Aggregations); err != nil {
		return c, err
	}
	return c, nil
}

// entries walks a mapping node in document order. A missing node yields
// nothing.
func entries(node *yaml.Node, fn func(name string, value *yaml.Node) error) error {
	if absent(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a map: %w", node.Line, models.ErrConfiguration)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func absent(node *yaml.Node) bool {
	return node == nil || node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null")
}

// splitChildren separates the nested child maps from the scalar options of
// one entry.
func splitChildren(value *yaml.Node, keys ...string) (map[string]interface{}, map[string]*yaml.Node, error) {
	options := map[string]interface{}{}
	children := map[string]*yaml.Node{}
	if absent(value) {
		return options, children, nil
	}
	if value.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("line %d: expected a map: %w", value.Line, models.ErrConfiguration)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, v := value.Content[i].Value, value.Content[i+1]
		isChild := false
		for _, k := range keys {
			if key == k {
				children[k] = v
				isChild = true
			}
		}
		if isChild {
			continue
		}
		var decoded interface{}
		if err := v.Decode(&decoded); err != nil {
			return nil, nil, fmt.Errorf("line %d: %v: %w", v.Line, err, models.ErrConfiguration)
		}
		options[key] = decoded
	}
	return options, children, nil
}

func decodeOptions(options map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(options)
}

func decodeFilters(node *yaml.Node) (models.FilterConfigs, error) {
	if absent(node) {
		return nil, nil
	}
	filters := models.FilterConfigs{}
	err := entries(node, func(name string, value *yaml.Node) error {
		options, children, err := splitChildren(value, "filters")
		if err != nil {
			return fmt.Errorf("filter %q: %w", name, err)
		}
		var cfg models.FilterConfig
		if err := decodeOptions(options, &cfg); err != nil {
			return fmt.Errorf("filter %q: %v: %w", name, err, models.ErrConfiguration)
		}
		cfg.Name = name
		if cfg.Filters, err = decodeFilters(children["filters"]); err != nil {
			return fmt.Errorf("filter %q: %w", name, err)
		}
		filters = append(filters, cfg)
		return nil
	})
	return filters, err
}

func decodeAggregations(node *yaml.Node) (models.AggregationConfigs, error) {
	if absent(node) {
		return nil, nil
	}
	aggs := models.AggregationConfigs{}
	err := entries(node, func(name string, value *yaml.Node) error {
		options, children, err := splitChildren(value, "filters", "aggregations")
		if err != nil {
			return fmt.Errorf("aggregation %q: %w", name, err)
		}
		var cfg models.AggregationConfig
		if err := decodeOptions(options, &cfg); err != nil {
			return fmt.Errorf("aggregation %q: %v: %w", name, err, models.ErrConfiguration)
		}
		cfg.Name = name
		if cfg.Filters, err = decodeFilters(children["filters"]); err != nil {
			return fmt.Errorf("aggregation %q: %w", name, err)
		}
		if cfg.Aggregations, err = decodeAggregations(children["aggregations"]); err != nil {
			return fmt.Errorf("aggregation %q: %w", name, err)
		}
		aggs = append(aggs, cfg)
		return nil
	})
	return aggs, err
}
