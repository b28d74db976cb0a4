// Package cli implements the search-server command line front end.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/gcbaptista/go-search-server/config"
	"github.com/gcbaptista/go-search-server/engine"
	"github.com/gcbaptista/go-search-server/internal/logger"
)

// app carries the state shared by all subcommands of one invocation.
type app struct {
	cfgFile      string
	docsFile     string
	logLevel     string
	logFormat    string
	printMetrics bool

	registry *prometheus.Registry
	server   *engine.Server
	log      *slog.Logger
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "search-server",
		Short: "In-memory TF-IDF search over short text documents",
		Long: `search-server loads documents from a YAML file into an in-memory inverted index
and answers ranked plus/minus term queries against it.

Example usage:
  search-server --docs docs.yaml query -q "fluffy cat -dog"
  search-server --docs docs.yaml match -q "fluffy cat" --id 2
  search-server --docs docs.yaml dedup
  search-server --docs docs.yaml batch -q "cat" -q "dog" --joined`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if !a.printMetrics {
				return nil
			}
			return a.writeMetrics(cmd.OutOrStdout())
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "settings file (default settings when empty)")
	rootCmd.PersistentFlags().StringVar(&a.docsFile, "docs", "", "documents file to load before running the command")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&a.printMetrics, "metrics", false, "print Prometheus metrics after the command")

	rootCmd.AddCommand(
		newQueryCommand(a),
		newMatchCommand(a),
		newDedupCommand(a),
		newBatchCommand(a),
	)
	return rootCmd
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// setup configures logging, builds the server and loads documents.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	logger.SetupWriter(cmd.ErrOrStderr(), a.logLevel, a.logFormat)
	a.log = logger.WithComponent("cli")

	settings := config.DefaultSettings()
	if a.cfgFile != "" {
		var err error
		settings, err = config.LoadSettings(a.cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	a.registry = prometheus.NewRegistry()
	server, err := engine.NewServer(settings, engine.WithMetrics(a.registry))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	a.server = server

	if a.docsFile == "" {
		return nil
	}
	docs, err := config.LoadDocuments(a.docsFile)
	if err != nil {
		return err
	}
	if err := server.AddDocuments(docs); err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}
	a.log.Info("documents loaded", "file", a.docsFile, "count", server.GetDocumentCount())
	return nil
}

func (a *app) writeMetrics(w io.Writer) error {
	families, err := a.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}
