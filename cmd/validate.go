package cmd

import (
	"fmt"

	"facet-search-service/config"
	"facet-search-service/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var validateLive bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the service config and collection schemas",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateLive, "live", false, "Also check nested paths against the live index mappings")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	schemas, err := loadSchemas(cfg.Collections)
	if err != nil {
		return err
	}
	registry, _, err := buildServices(nil, schemas, cfg.Elasticsearch.IndexPrefix, zap.NewNop())
	if err != nil {
		return err
	}

	if validateLive {
		logger, err := newLogger(cfg.Log)
		if err != nil {
			return err
		}
		es, err := services.NewElasticsearchClient(cfg.Elasticsearch, logger)
		if err != nil {
			return err
		}
		if err := checkMappings(cmd.Context(), es, registry); err != nil {
			return err
		}
	}

	for _, name := range registry.Names() {
		svc, _ := registry.Get(name)
		c := svc.Collection()
		fmt.Fprintf(cmd.OutOrStdout(), "%s: index %s, %d filters, %d aggregations\n",
			name, svc.IndexName(), len(c.Filters), len(c.Aggregations))
	}
	return nil
}
