package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"facet-search-service/collections"
	"facet-search-service/config"
	"facet-search-service/router"
	"facet-search-service/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the search API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	es, err := services.NewElasticsearchClient(cfg.Elasticsearch, logger.Named("elasticsearch"))
	if err != nil {
		return err
	}
	if err := es.Ping(ctx); err != nil {
		logger.Warn("index engine not reachable", zap.Error(err))
	}

	var engine services.Engine = es
	var cache *services.CachedEngine
	if cfg.Cache.Size > 0 && cfg.Cache.TTL > 0 {
		cache = services.NewCachedEngine(es, cfg.Cache.Size, cfg.Cache.TTL)
		engine = cache
	}

	schemas, err := loadSchemas(cfg.Collections)
	if err != nil {
		return err
	}
	registry, byPath, err := buildServices(engine, schemas, cfg.Elasticsearch.IndexPrefix, logger)
	if err != nil {
		return err
	}
	if cfg.Elasticsearch.ValidateMappings {
		if err := checkMappings(ctx, es, registry); err != nil {
			return err
		}
	}

	if cfg.Watch && len(byPath) > 0 {
		paths := make([]string, 0, len(byPath))
		for p := range byPath {
			paths = append(paths, p)
		}
		go func() {
			err := collections.Watch(ctx, paths, logger.Named("watch"), func(path string) {
				reloadSchema(path, byPath[path], cache, logger)
			})
			if err != nil {
				logger.Error("schema watcher stopped", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           router.NewRouter(registry, es, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Listen), zap.Strings("collections", registry.Names()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// reloadSchema swaps in the new collection, keeping the old one when the
// file does not load or normalize.
func reloadSchema(path string, svc *services.SearchService, cache *services.CachedEngine, logger *zap.Logger) {
	if svc == nil {
		return
	}
	c, err := collections.Load(path)
	if err == nil {
		err = svc.Replace(c)
	}
	if err != nil {
		logger.Error("schema reload rejected", zap.String("path", path), zap.Error(err))
		return
	}
	if cache != nil {
		cache.Purge()
	}
}
