package cmd

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"facet-search-service/collections"
	"facet-search-service/handlers"
	"facet-search-service/models"
	"facet-search-service/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	compileSchema  string
	compileQuery   string
	compilePrefix  string
	compileOnly    []string
	compileExclude []string
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Print the Elasticsearch requests compiled for a query string",
	Long: `Compile a search request without contacting Elasticsearch.

Examples:
  facetsearch compile --query 'filters[author][]=5'
  facetsearch compile --schema text.yaml --query 'mode=aggregate&filters[work][]=3' --only work,century`,
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&compileSchema, "schema", "s", "", "Collection schema file (embedded text schema when empty)")
	compileCmd.Flags().StringVarP(&compileQuery, "query", "q", "", "Request query string in bracket notation")
	compileCmd.Flags().StringVar(&compilePrefix, "index-prefix", "", "Index name prefix")
	compileCmd.Flags().StringSliceVar(&compileOnly, "only", nil, "Compute only these aggregations")
	compileCmd.Flags().StringSliceVar(&compileExclude, "exclude", nil, "Skip these aggregations")
}

func runCompile(cmd *cobra.Command, args []string) error {
	var (
		c   models.Collection
		err error
	)
	if compileSchema != "" {
		c, err = collections.Load(compileSchema)
	} else {
		c, err = collections.Embedded()
	}
	if err != nil {
		return err
	}

	values, err := url.ParseQuery(strings.TrimPrefix(compileQuery, "?"))
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	svc, err := services.NewSearchService(nil, c, compilePrefix, zap.NewNop())
	if err != nil {
		return err
	}

	bodies := svc.Compile(handlers.ParseQuery(values), services.ParseMode(values.Get("mode")), services.AggregationOptions{
		Only:    compileOnly,
		Exclude: compileExclude,
	})
	out, err := json.MarshalIndent(map[string]interface{}{
		"index":    svc.IndexName(),
		"requests": bodies,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
