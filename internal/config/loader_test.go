package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/pfrederiksen/skate-protocols/internal/config"
	"github.com/pfrederiksen/skate-protocols/internal/logger"
	"github.com/pfrederiksen/skate-protocols/internal/protocol"
)

func TestConfigLoader(t *testing.T) {
	dir := t.TempDir()

	convey.Convey("Given a config loader", t, func() {
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load("", nil)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DataDir, convey.ShouldEqual, "~/.local/share/skate-protocols")
				convey.So(cfg.Workers, convey.ShouldEqual, runtime.NumCPU())
				convey.So(cfg.HTTPTimeout, convey.ShouldEqual, 30*time.Second)
				convey.So(cfg.MaxRetries, convey.ShouldEqual, 3)
				convey.So(cfg.Level(), convey.ShouldEqual, logger.LevelInfo)
				convey.So(cfg.PDF.ColumnGap, convey.ShouldEqual, 0.9)
				convey.So(cfg.LayoutOverrides, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SKATE_DATA_DIR", "/tmp/skate")
			_ = os.Setenv("SKATE_WORKERS", "3")
			_ = os.Setenv("SKATE_HTTP_TIMEOUT", "45s")
			_ = os.Setenv("SKATE_LOG_LEVEL", "warn")
			_ = os.Setenv("SKATE_PDF_WORD_GAP", "0.2")
			defer clearConfigEnvVars()

			cfg, err := config.Load("", nil)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DataDir, convey.ShouldEqual, "/tmp/skate")
				convey.So(cfg.Workers, convey.ShouldEqual, 3)
				convey.So(cfg.HTTPTimeout, convey.ShouldEqual, 45*time.Second)
				convey.So(cfg.Level(), convey.ShouldEqual, logger.LevelWarn)
				convey.So(cfg.PDF.WordGap, convey.ShouldEqual, 0.2)
				convey.So(cfg.PDF.ColumnGap, convey.ShouldEqual, 0.9)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			path := writeConfigFile(dir, "skate.yaml", `
data_dir: /srv/skate
workers: 8
mark_symbols: "?"
csv_path: out/scores.csv
pdf:
  column_gap: 1.2
layout_overrides:
  - competition: gpusa2004
    season: 2004
    reversed: true
  - competition: wc2008
    start_number: true
`)
			_ = os.Setenv("SKATE_WORKERS", "2")
			defer clearConfigEnvVars()

			cfg, err := config.Load(path, nil)

			convey.Convey("Then it should load from YAML file with env taking precedence", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DataDir, convey.ShouldEqual, "/srv/skate")
				convey.So(cfg.Workers, convey.ShouldEqual, 2)
				convey.So(cfg.MarkSymbols, convey.ShouldEqual, "?")
				convey.So(cfg.CSVPath, convey.ShouldEqual, "out/scores.csv")
				convey.So(cfg.PDF.ColumnGap, convey.ShouldEqual, 1.2)
				convey.So(cfg.PDF.WordGap, convey.ShouldEqual, 0.15)
				convey.So(len(cfg.LayoutOverrides), convey.ShouldEqual, 2)
				convey.So(cfg.LayoutOverrides[0].Reversed, convey.ShouldBeTrue)
				convey.So(cfg.LayoutOverrides[0].Season, convey.ShouldEqual, 2004)
				convey.So(cfg.LayoutOverrides[1].StartNumber, convey.ShouldBeTrue)
			})

			convey.Convey("Then the parser applies the layout overrides", func() {
				convey.So(err, convey.ShouldBeNil)
				p := cfg.Parser()
				convey.So(p.Layout("wc2008", 2007).SummaryColumns, convey.ShouldEqual, 8)
				convey.So(p.Layout("gpusa2004", 2004).Reversed, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the config file is named by SKATE_CONFIG", func() {
			path := writeConfigFile(dir, "env.yaml", "log_level: debug\n")
			_ = os.Setenv("SKATE_CONFIG", path)
			defer clearConfigEnvVars()

			cfg, err := config.Load("", nil)

			convey.Convey("Then it should be loaded", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Level(), convey.ShouldEqual, logger.LevelDebug)
			})
		})

		convey.Convey("When flags override env vars", func() {
			_ = os.Setenv("SKATE_WORKERS", "2")
			defer clearConfigEnvVars()

			cfg, err := config.Load("", map[string]interface{}{
				"workers":  5,
				"data_dir": "/flag/dir",
			})

			convey.Convey("Then the flags win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Workers, convey.ShouldEqual, 5)
				convey.So(cfg.DataDir, convey.ShouldEqual, "/flag/dir")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_, err := config.Load(filepath.Join(dir, "missing.yaml"), nil)

			convey.Convey("Then loading fails", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestConfigValidation(t *testing.T) {
	convey.Convey("Given an invalid setting", t, func() {
		clearConfigEnvVars()

		cases := map[string]map[string]interface{}{
			"zero workers":          {"workers": 0},
			"unknown log level":     {"log_level": "verbose"},
			"negative retries":      {"max_retries": -1},
			"zero timeout":          {"http_timeout": "0s"},
			"empty data dir":        {"data_dir": ""},
			"word gap above column": {"pdf.word_gap": 1.5},
		}

		for name, overrides := range cases {
			convey.Convey("When loading with "+name, func() {
				_, err := config.Load("", overrides)

				convey.Convey("Then it fails with ErrInvalidConfig", func() {
					convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}

		convey.Convey("When a layout override has an impossible column count", func() {
			cfg := config.New()
			cfg.LayoutOverrides = append(cfg.LayoutOverrides, protocol.LayoutOverride{Competition: "wc2015", SummaryColumns: 9})

			convey.Convey("Then Validate rejects it", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func writeConfigFile(dir, name, content string) string {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		panic(err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"SKATE_CONFIG",
		"SKATE_DATA_DIR",
		"SKATE_WORKERS",
		"SKATE_HTTP_TIMEOUT",
		"SKATE_LOG_LEVEL",
		"SKATE_PDF_WORD_GAP",
	} {
		_ = os.Unsetenv(key)
	}
}
