package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/cpubench/internal/config"
	"github.com/IshaanNene/cpubench/internal/engine"
	"github.com/IshaanNene/cpubench/internal/fetcher"
	"github.com/IshaanNene/cpubench/internal/parser"
	"github.com/IshaanNene/cpubench/internal/pipeline"
	"github.com/IshaanNene/cpubench/internal/records"
	"github.com/IshaanNene/cpubench/internal/report"
	"github.com/IshaanNene/cpubench/internal/storage"
)

// runCmd creates the "run" subcommand.
func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch stale processors, print the table and save it if it changed",
		Args:  cobra.NoArgs,
		RunE:  runUpdate,
	}

	cmd.Flags().StringVar(&tablePath, "table", "", "persisted CSV table path")
	cmd.Flags().StringVar(&window, "window", "", "staleness window (e.g. 168h)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "n", 0, "maximum concurrent fetches (0 = all at once)")
	cmd.Flags().StringVar(&fetcherType, "fetcher", "", "fetcher type: http or browser")
	cmd.Flags().BoolVar(&force, "force", false, "fetch every processor regardless of staleness")
	cmd.Flags().StringVar(&ids, "ids", "", "comma-separated processor ids to fetch")

	return cmd
}

// showCmd creates the "show" subcommand.
func showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the persisted table without fetching",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, closer := setupLogger(cfg)
			defer closer.Close()

			st, err := loadStore(cfg, logger)
			if err != nil {
				return err
			}
			return report.NewPrinter(cmd.OutOrStdout()).Print(cfg.ExtractorNames(), st.Records())
		},
	}
	cmd.Flags().StringVar(&tablePath, "table", "", "persisted CSV table path")
	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closer := setupLogger(cfg)
	defer closer.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down...", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	start := time.Now()
	res, err := update(ctx, cfg, logger, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	logger.Info("run complete",
		"elapsed", time.Since(start).Round(time.Millisecond),
		"changed", res.Changed(),
		"merged", res.Count(engine.StatusMerged),
		"skipped", res.Count(engine.StatusSkipped),
		"failed", res.Count(engine.StatusFailed),
	)

	attempted := len(res.Outcomes) - res.Count(engine.StatusSkipped)
	if failed := len(res.Failures()); attempted > 0 && failed == attempted {
		return fmt.Errorf("all %d fetches failed", failed)
	}
	return nil
}

// update runs prefill, crawl, print and persist once. The table is printed
// even when the crawl was interrupted, and records merged before the
// interruption are still saved.
func update(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) (*engine.Result, error) {
	st, err := loadStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	f, err := fetcher.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}
	defer f.Close()

	eng := engine.New(st, f, engine.OptionsFromConfig(cfg.Crawl), logger)
	eng.OnProgress(func(done, total int, o engine.Outcome) {
		logger.Info("progress", "done", done, "total", total, "id", o.ID, "status", o.Status.String(), "duration", o.Duration.Round(time.Millisecond))
	})

	res, runErr := eng.Run(ctx)
	if res == nil {
		return nil, runErr
	}

	if err := report.NewPrinter(out).Print(cfg.ExtractorNames(), st.Records()); err != nil {
		return res, fmt.Errorf("print table: %w", err)
	}

	if !res.Changed() {
		logger.Info("nothing changed, table not written", "path", cfg.Storage.TablePath)
		return res, runErr
	}

	saveCtx := context.WithoutCancel(ctx)
	store := openStorage(saveCtx, cfg, logger)
	defer store.Close(saveCtx)
	if err := store.Save(saveCtx, st.Columns(), st.Records()); err != nil {
		return res, fmt.Errorf("save table: %w", err)
	}
	return res, runErr
}

// loadStore seeds the record store and prefills it from the persisted table.
// A missing or unreadable table is logged and the store starts empty.
func loadStore(cfg *config.Config, logger *slog.Logger) (*records.Store, error) {
	reg, err := parser.NewRegistry(cfg.Extractors)
	if err != nil {
		return nil, fmt.Errorf("build extractors: %w", err)
	}
	pipe, err := pipeline.FromConfig(cfg.Pipeline, cfg.Crawl.Placeholder, logger)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	st := records.New(cfg.Processors, reg, records.Options{
		LinkBase:    cfg.Crawl.LinkBase,
		Placeholder: cfg.Crawl.Placeholder,
		Pipeline:    pipe,
	}, logger)

	tbl, err := storage.ReadTable(cfg.Storage.TablePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("no persisted table, starting empty", "path", cfg.Storage.TablePath)
		} else {
			logger.Warn("could not read persisted table, starting empty", "path", cfg.Storage.TablePath, "error", err)
		}
		return st, nil
	}
	n, err := st.Prefill(tbl)
	if err != nil {
		logger.Warn("persisted table not usable, starting empty", "path", cfg.Storage.TablePath, "error", err)
		return st, nil
	}
	logger.Debug("table loaded", "path", cfg.Storage.TablePath, "rows", n)
	return st, nil
}

// openStorage builds the CSV sink plus any configured mirrors. A mirror that
// cannot be opened is logged and left out.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) storage.Storage {
	primary := storage.NewCSVStorage(cfg.Storage.TablePath, logger)

	var mirrors []storage.Storage
	if cfg.Storage.JSONPath != "" {
		mirrors = append(mirrors, storage.NewJSONStorage(cfg.Storage.JSONPath, logger))
	}
	if cfg.Storage.Mongo.URI != "" {
		m, err := storage.NewMongoStorage(ctx, cfg.Storage.Mongo, logger)
		if err != nil {
			logger.Error("mongodb mirror disabled", "error", err)
		} else {
			mirrors = append(mirrors, m)
		}
	}
	return storage.NewMultiStorage(primary, mirrors, logger)
}
