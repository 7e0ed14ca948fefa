package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/skate-protocols/internal/config"
	"github.com/pfrederiksen/skate-protocols/internal/logger"
	"github.com/pfrederiksen/skate-protocols/internal/observability"
	"github.com/pfrederiksen/skate-protocols/internal/pdftext"
	"github.com/pfrederiksen/skate-protocols/internal/pipeline"
	"github.com/pfrederiksen/skate-protocols/internal/scraper"
	"github.com/pfrederiksen/skate-protocols/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitPartial = 2
)

// ErrPartialFailure is returned when a command finished but some inputs failed
var ErrPartialFailure = errors.New("some inputs failed")

var (
	configPath string
	dataDir    string
	workers    int
	logLevel   string
	format     string
	verbose    bool
	linksFile  string
	csvPath    string
	sqlitePath string
)

// flagKeys maps flag names to config keys
var flagKeys = map[string]string{
	"data-dir":  "data_dir",
	"workers":   "workers",
	"log-level": "log_level",
	"links":     "links_file",
	"csv":       "csv_path",
	"sqlite":    "sqlite_path",
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "skate-protocols",
		Short: "Turn ISU judges' protocols into a tidy score dataset",
		Long: `skate-protocols downloads figure skating result pages and their PDF protocols,
parses the judges' details per skater and writes one row per judge score.

Stages can be run one at a time (fetch, judges, protocols, dataset) or all
together with run. Every stage skips work whose output already exists.

Exit codes:
  0 - Success
  1 - Error
  2 - Finished, but some downloads, rosters or documents failed`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML config file (default $SKATE_CONFIG)")
	pf.StringVar(&dataDir, "data-dir", storage.DefaultDataDir, "Directory holding one folder per competition")
	pf.IntVarP(&workers, "workers", "w", 0, "Documents processed at once (default: number of CPUs)")
	pf.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVarP(&format, "format", "f", "text", "Output format: text or json")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(
		newFetchCmd(),
		newJudgesCmd(),
		newProtocolsCmd(),
		newDatasetCmd(),
		newRunCmd(),
	)
	return rootCmd
}

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [url...]",
		Short: "Download competition pages and their protocol documents",
		Long: `Download each competition page, extract its link table and download every
linked document. URLs default to the "links" column of the links file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, func(ctx context.Context, a *app) (*pipeline.Summary, error) {
				urls, err := a.urls(cmd, args, true)
				if err != nil {
					return nil, err
				}
				sum := &pipeline.Summary{RunID: a.runner.RunID()}
				sum.Fetch, err = a.runner.Fetch(ctx, urls)
				return sum, err
			})
		},
	}
	cmd.Flags().StringVar(&linksFile, "links", "links.csv", "CSV file with a links column")
	return cmd
}

func newJudgesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "judges",
		Short: "Build the cleaned judge table from the panel pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, func(ctx context.Context, a *app) (*pipeline.Summary, error) {
				sum := &pipeline.Summary{RunID: a.runner.RunID()}
				var err error
				sum.Judges, err = a.runner.Judges(ctx)
				return sum, err
			})
		},
	}
}

func newProtocolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "protocols",
		Short: "Parse downloaded protocol documents into score rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, func(ctx context.Context, a *app) (*pipeline.Summary, error) {
				sum := &pipeline.Summary{RunID: a.runner.RunID()}
				var err error
				sum.Protocols, err = a.runner.Protocols(ctx)
				return sum, err
			})
		},
	}
}

func newDatasetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Assemble the score table and export it as CSV and SQLite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, func(ctx context.Context, a *app) (*pipeline.Summary, error) {
				sum := &pipeline.Summary{RunID: a.runner.RunID()}
				var err error
				sum.Dataset, err = a.runner.Dataset(ctx, a.datasetOptions())
				return sum, err
			})
		},
	}
	addOutputFlags(cmd)
	return cmd
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [url...]",
		Short: "Run every stage in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, func(ctx context.Context, a *app) (*pipeline.Summary, error) {
				urls, err := a.urls(cmd, args, false)
				if err != nil {
					return nil, err
				}
				return a.runner.Run(ctx, urls, a.datasetOptions())
			})
		},
	}
	cmd.Flags().StringVar(&linksFile, "links", "links.csv", "CSV file with a links column")
	addOutputFlags(cmd)
	return cmd
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&csvPath, "csv", "scores.csv", "CSV output, relative to the data directory; empty disables it")
	cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "SQLite output, relative to the data directory; empty disables it")
}

// app holds what a command needs once the configuration is loaded
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	store   *storage.Storage
	metrics *observability.Metrics
	runner  *pipeline.Runner
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(configPath, overrides(cmd))
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg.Level(), os.Stderr)
	logger.SetDefault(log)

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	s := scraper.New(
		scraper.WithUserAgent(cfg.UserAgent),
		scraper.WithTimeout(cfg.HTTPTimeout),
		scraper.WithMaxRetries(uint64(cfg.MaxRetries)),
	)

	metrics := observability.NewMetrics()
	runner := pipeline.New(store,
		pipeline.WithScraper(s),
		pipeline.WithExtractor(pdftext.New(cfg.PDF)),
		pipeline.WithParser(cfg.Parser()),
		pipeline.WithMetrics(metrics),
		pipeline.WithLogger(log),
		pipeline.WithWorkers(cfg.Workers),
	)

	return &app{cfg: cfg, log: log, store: store, metrics: metrics, runner: runner}, nil
}

// overrides collects the flags that were set explicitly so they win over the
// file and the environment without masking them with flag defaults.
func overrides(cmd *cobra.Command) map[string]interface{} {
	out := make(map[string]interface{})
	flags := cmd.Flags()
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if name == "workers" {
			out[key] = workers
			continue
		}
		out[key] = f.Value.String()
	}
	if verbose && !flags.Changed("log-level") {
		out["log_level"] = "debug"
	}
	return out
}

// urls returns args when given, otherwise the links file. Unless required, a
// missing default links file means there is nothing to fetch.
func (a *app) urls(cmd *cobra.Command, args []string, required bool) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	urls, err := scraper.ReadLinksFile(a.cfg.LinksFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required && !cmd.Flags().Changed("links") {
			a.log.Info("No links file, working from downloaded files", logger.Fields{"links_file": a.cfg.LinksFile})
			return nil, nil
		}
		return nil, err
	}
	return urls, nil
}

func (a *app) datasetOptions() pipeline.DatasetOptions {
	return pipeline.DatasetOptions{CSVPath: a.cfg.CSVPath, SQLitePath: a.cfg.SQLitePath}
}

type stage func(ctx context.Context, a *app) (*pipeline.Summary, error)

// execute runs a stage and reports its summary
func execute(cmd *cobra.Command, run stage) error {
	outputFormat := OutputFormat(format)
	if outputFormat != FormatText && outputFormat != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", format)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if verbose {
		fmt.Fprintf(os.Stderr, "Data directory: %s\n", a.store.DataDir())
		fmt.Fprintf(os.Stderr, "Run: %s\n", a.runner.RunID())
	}

	sum, runErr := run(ctx, a)

	if a.cfg.MetricsFile != "" {
		if err := a.metrics.WriteTextfile(a.store.Resolve(a.cfg.MetricsFile)); err != nil {
			a.log.Error("Failed to write metrics", logger.Fields{"path": a.cfg.MetricsFile}, err)
		}
	}

	if sum != nil {
		result := &OutputResult{
			Command:    cmd.Name(),
			FinishedAt: time.Now().UTC(),
			DataDir:    a.store.DataDir(),
			Summary:    sum,
		}
		if err := WriteOutput(cmd.OutOrStdout(), result, outputFormat, verbose); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	if runErr != nil {
		return runErr
	}
	if sum != nil && sum.Failed() {
		return ErrPartialFailure
	}
	return nil
}

// Execute runs the root command and exits with the matching code
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, ErrPartialFailure) {
			os.Exit(ExitPartial)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}
