package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"facet-search-service/collections"
	"facet-search-service/config"
	"facet-search-service/models"
	"facet-search-service/services"

	"go.uber.org/zap"
)

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}
	zcfg.Level = level
	return zcfg.Build()
}

// schema is a collection with the file it was loaded from, empty for the
// embedded one.
type schema struct {
	path       string
	collection models.Collection
}

func loadSchemas(paths []string) ([]schema, error) {
	if len(paths) == 0 {
		c, err := collections.Embedded()
		if err != nil {
			return nil, err
		}
		return []schema{{collection: c}}, nil
	}
	schemas := make([]schema, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		c, err := collections.Load(abs)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, schema{path: abs, collection: c})
	}
	return schemas, nil
}

// buildServices normalizes every schema into a search service. Services are
// keyed by schema path.
func buildServices(engine services.Engine, schemas []schema, indexPrefix string, logger *zap.Logger) (*services.Registry, map[string]*services.SearchService, error) {
	registry := services.NewRegistry()
	byPath := map[string]*services.SearchService{}
	for _, s := range schemas {
		svc, err := services.NewSearchService(engine, s.collection, indexPrefix, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := registry.Register(svc); err != nil {
			return nil, nil, err
		}
		if s.path != "" {
			byPath[s.path] = svc
		}
	}
	return registry, byPath, nil
}

// checkMappings validates every collection against its live index mapping.
func checkMappings(ctx context.Context, es *services.ElasticsearchClient, registry *services.Registry) error {
	for _, name := range registry.Names() {
		svc, err := registry.Get(name)
		if err != nil {
			return err
		}
		info, err := es.InferMappings(ctx, svc.IndexName())
		if err != nil {
			return err
		}
		if err := services.ValidateMappings(svc.Collection(), info); err != nil {
			return err
		}
	}
	return nil
}
