package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/cpubench/internal/config"
	"github.com/IshaanNene/cpubench/internal/observability"
)

var (
	cfgFile     string
	verbose     bool
	tablePath   string
	window      string
	concurrency int
	fetcherType string
	force       bool
	ids         string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cpubench",
		Short: "cpubench: keep a local table of CPU benchmark scores up to date",
		Long: `cpubench fetches processor pages from cpubenchmark.net, extracts benchmark
columns (single/multi thread rating, TDP, cores, samples, first seen) and keeps
them in a local CSV table.

Records updated within the staleness window are not fetched again. The table
is printed on every run and rewritten only when something changed.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("cpubench %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			printConfig(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "Crawl:\n")
	fmt.Fprintf(w, "  Link Base:         %s\n", cfg.Crawl.LinkBase)
	fmt.Fprintf(w, "  Staleness Window:  %s\n", cfg.Crawl.StalenessWindow)
	fmt.Fprintf(w, "  Placeholder:       %q\n", cfg.Crawl.Placeholder)
	fmt.Fprintf(w, "  Concurrency:       %d\n", cfg.Crawl.Concurrency)
	fmt.Fprintf(w, "  Force:             %v\n", cfg.Crawl.Force)
	fmt.Fprintf(w, "\nFetcher:\n")
	fmt.Fprintf(w, "  Type:              %s\n", cfg.Fetcher.Type)
	fmt.Fprintf(w, "  Request Timeout:   %s\n", cfg.Fetcher.RequestTimeout)
	fmt.Fprintf(w, "  Max Body Size:     %d bytes\n", cfg.Fetcher.MaxBodySize)
	fmt.Fprintf(w, "  User Agents:       %d configured\n", len(cfg.Fetcher.UserAgents))
	fmt.Fprintf(w, "\nExtractors:\n")
	for _, rule := range cfg.Extractors {
		fmt.Fprintf(w, "  %-18s %s\n", rule.Name+":", rule.Type)
	}
	fmt.Fprintf(w, "\nProcessors:\n")
	for _, p := range cfg.Processors {
		fmt.Fprintf(w, "  %-8s %s\n", p.ID, p.Name)
	}
	fmt.Fprintf(w, "\nStorage:\n")
	fmt.Fprintf(w, "  Table Path:        %s\n", cfg.Storage.TablePath)
	fmt.Fprintf(w, "  JSON Path:         %s\n", cfg.Storage.JSONPath)
	fmt.Fprintf(w, "  MongoDB:           %v\n", cfg.Storage.Mongo.URI != "")
	fmt.Fprintf(w, "\nLogging:\n")
	fmt.Fprintf(w, "  Level:             %s\n", cfg.Logging.Level)
	fmt.Fprintf(w, "  Format:            %s\n", cfg.Logging.Format)
	fmt.Fprintf(w, "  Output:            %s\n", cfg.Logging.Output)
}

// loadConfig loads the config file, applies flag overrides and validates.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := applyCLIOverrides(cfg); err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) error {
	if tablePath != "" {
		cfg.Storage.TablePath = tablePath
	}
	if window != "" {
		d, err := time.ParseDuration(window)
		if err != nil {
			return fmt.Errorf("invalid --window %q: %w", window, err)
		}
		cfg.Crawl.StalenessWindow = d
	}
	if concurrency > 0 {
		cfg.Crawl.Concurrency = concurrency
	}
	if fetcherType != "" {
		cfg.Fetcher.Type = strings.ToLower(fetcherType)
	}
	if force {
		cfg.Crawl.Force = true
	}
	if ids != "" {
		var only []string
		for _, id := range strings.Split(ids, ",") {
			if id = strings.TrimSpace(id); id != "" {
				only = append(only, id)
			}
		}
		cfg.Crawl.Only = only
	}
	return nil
}

// setupLogger creates the structured logger from config.
func setupLogger(cfg *config.Config) (*slog.Logger, io.Closer) {
	return observability.NewLogger(cfg.Logging, verbose)
}
