// Package config defines the pipeline configuration and how it is loaded.
//
// Values are layered from low to high precedence: built-in defaults, an optional
// YAML file, SKATE_* environment variables and finally command-line flags that were
// set explicitly.
package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/pfrederiksen/skate-protocols/internal/logger"
	"github.com/pfrederiksen/skate-protocols/internal/pdftext"
	"github.com/pfrederiksen/skate-protocols/internal/protocol"
	"github.com/pfrederiksen/skate-protocols/internal/scraper"
	"github.com/pfrederiksen/skate-protocols/internal/storage"
)

// Config contains process configuration.
type Config struct {
	// DataDir holds one directory per competition.
	DataDir string `koanf:"data_dir"`

	// LinksFile is the CSV with a "links" column of competition result pages.
	LinksFile string `koanf:"links_file"`

	// Workers bounds how many documents are processed at once.
	Workers int `koanf:"workers"`

	HTTPTimeout time.Duration `koanf:"http_timeout"`
	UserAgent   string        `koanf:"user_agent"`
	MaxRetries  int           `koanf:"max_retries"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsFile receives a node-exporter textfile at the end of a run. Empty disables it.
	MetricsFile string `koanf:"metrics_file"`

	CSVPath    string `koanf:"csv_path"`
	SQLitePath string `koanf:"sqlite_path"`

	// MarkSymbols extends the recognized annotation marks.
	MarkSymbols string `koanf:"mark_symbols"`

	// LayoutOverrides pin the protocol layout of single competitions.
	LayoutOverrides []protocol.LayoutOverride `koanf:"layout_overrides"`

	PDF pdftext.Options `koanf:"pdf"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		DataDir:     storage.DefaultDataDir,
		LinksFile:   "links.csv",
		Workers:     runtime.NumCPU(),
		HTTPTimeout: scraper.PageTimeout,
		UserAgent:   scraper.UserAgent,
		MaxRetries:  scraper.MaxRetries,
		LogLevel:    "info",
		CSVPath:     "scores.csv",
		PDF:         pdftext.DefaultOptions(),
	}
}

// Validate checks the values that cannot be defaulted
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("%w: http_timeout must be positive, got %s", ErrInvalidConfig, c.HTTPTimeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries must not be negative, got %d", ErrInvalidConfig, c.MaxRetries)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.PDF.WordGap <= 0 || c.PDF.ColumnGap <= 0 || c.PDF.RowTolerance <= 0 {
		return fmt.Errorf("%w: pdf gaps and tolerance must be positive", ErrInvalidConfig)
	}
	if c.PDF.WordGap >= c.PDF.ColumnGap {
		return fmt.Errorf("%w: pdf.word_gap must be smaller than pdf.column_gap", ErrInvalidConfig)
	}
	for i, o := range c.LayoutOverrides {
		if o.Competition == "" {
			return fmt.Errorf("%w: layout_overrides[%d]: competition must not be empty", ErrInvalidConfig, i)
		}
		if o.SummaryColumns != 0 && o.SummaryColumns != 7 && o.SummaryColumns != 8 {
			return fmt.Errorf("%w: layout_overrides[%d]: summary_columns must be 7 or 8, got %d",
				ErrInvalidConfig, i, o.SummaryColumns)
		}
	}
	return nil
}

// Level returns the parsed log level. Call it on a validated Config.
func (c *Config) Level() logger.Level {
	level, err := logger.ParseLevel(c.LogLevel)
	if err != nil {
		return logger.LevelInfo
	}
	return level
}

// Parser builds the protocol parser the config describes
func (c *Config) Parser() *protocol.Parser {
	return protocol.NewParser(protocol.NewLayoutRules(c.LayoutOverrides), protocol.NewMarkSet(c.MarkSymbols))
}
