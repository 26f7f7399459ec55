package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"facet-search-service/models"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// processMapping recursively processes the Elasticsearch mapping
func processMapping(properties map[string]interface{}, prefix string, info *models.MappingInfo) {
	for field, mapping := range properties {
		mappingMap, ok := mapping.(map[string]interface{})
		if !ok {
			continue
		}
		currentPath := field
		if prefix != "" {
			currentPath = prefix + "." + field
		}

		if nestedProps, ok := mappingMap["properties"].(map[string]interface{}); ok {
			processMapping(nestedProps, currentPath, info)
			if mappingMap["type"] == "nested" {
				info.NestedPaths[currentPath] = true
				updateNestedStatus(currentPath, info.FieldMappings)
			}
			continue
		}

		var dataTypes []string
		if t, ok := mappingMap["type"].(string); ok {
			dataTypes = append(dataTypes, t)
		}
		if fields, ok := mappingMap["fields"].(map[string]interface{}); ok {
			for _, subMapping := range fields {
				if sub, ok := subMapping.(map[string]interface{}); ok {
					if t, ok := sub["type"].(string); ok {
						dataTypes = append(dataTypes, t)
					}
				}
			}
		}
		info.FieldMappings[currentPath] = models.FieldMapping{
			Path:     prefix,
			DataType: dataTypes,
		}
	}
}

// updateNestedStatus updates the IsNested status for all fields under a nested path
func updateNestedStatus(nestedPath string, fieldMappings map[string]models.FieldMapping) {
	for field, mapping := range fieldMappings {
		if strings.HasPrefix(field, nestedPath+".") {
			mapping.IsNested = true
			fieldMappings[field] = mapping
		}
	}
}

// ParseMappings builds MappingInfo from a get-mapping response. An alias
// resolves to its first index.
func ParseMappings(indexName string, response map[string]interface{}) (*models.MappingInfo, error) {
	names := make([]string, 0, len(response))
	for key := range response {
		names = append(names, key)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no mapping for index %s: %w", indexName, models.ErrNotFound)
	}
	sort.Strings(names)

	info := &models.MappingInfo{
		IndexName:     indexName,
		FieldMappings: map[string]models.FieldMapping{},
		NestedPaths:   map[string]bool{},
	}
	index, _ := response[names[0]].(map[string]interface{})
	mappings, _ := index["mappings"].(map[string]interface{})
	properties, _ := mappings["properties"].(map[string]interface{})
	processMapping(properties, "", info)
	return info, nil
}

// InferMappings loads the live mapping of index.
func (es *ElasticsearchClient) InferMappings(ctx context.Context, indexName string) (*models.MappingInfo, error) {
	req := esapi.IndicesGetMappingRequest{
		Index: []string{indexName},
	}
	res, err := req.Do(ctx, es.client)
	if err != nil {
		return nil, fmt.Errorf("getting mapping of %s: %v: %w", indexName, err, models.ErrIndexEngine)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("getting mapping of %s: %s: %w", indexName, res.String(), models.ErrIndexEngine)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decoding mapping of %s: %v: %w", indexName, err, models.ErrIndexEngine)
	}
	return ParseMappings(indexName, response)
}

// ValidateMappings checks that every nested path declared by the collection
// is mapped as nested in the index.
func ValidateMappings(c models.Collection, info *models.MappingInfo) error {
	var missing []string
	check := func(owner, path string) {
		if path != "" && !info.NestedPaths[path] {
			missing = append(missing, fmt.Sprintf("%s (%s)", path, owner))
		}
	}
	c.Filters.Walk(func(f models.FilterConfig) {
		check("filter "+f.Name, f.NestedPath)
	})
	var walkAggs func(models.AggregationConfigs)
	walkAggs = func(aggs models.AggregationConfigs) {
		for _, a := range aggs {
			check("aggregation "+a.Name, a.NestedPath)
			a.Filters.Walk(func(f models.FilterConfig) {
				check("filter "+f.Name, f.NestedPath)
			})
			walkAggs(a.Aggregations)
		}
	}
	walkAggs(c.Aggregations)

	if len(missing) > 0 {
		return fmt.Errorf("collection %q: paths not mapped as nested in %s: %s: %w",
			c.Name, info.IndexName, strings.Join(missing, ", "), models.ErrConfiguration)
	}
	return nil
}
