package cmd

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "facetsearch",
	Short: "Faceted search over Elasticsearch collections",
	Long: `facetsearch compiles filter requests against collection schemas into
Elasticsearch queries and facet aggregations, and serves the results over HTTP.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the service config file")
}

func Execute() error {
	return rootCmd.Execute()
}
