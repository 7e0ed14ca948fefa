package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional file, env vars and flags.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) from path, or SKATE_CONFIG when path is empty
//  3. env (prefix SKATE_)
//  4. overrides, keyed like the YAML file ("workers", "pdf.word_gap")
func Load(path string, overrides map[string]interface{}) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path == "" {
		path = os.Getenv("SKATE_CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// Environment variables: SKATE_DATA_DIR, SKATE_PDF_WORD_GAP, ...
	envProvider := env.Provider("SKATE_", ".", envKey)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	for key, v := range overrides {
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("%w: flag %s: %v", ErrLoadConfig, key, err)
		}
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps SKATE_HTTP_TIMEOUT to http_timeout and SKATE_PDF_WORD_GAP to pdf.word_gap
func envKey(s string) string {
	s = strings.ToLower(s)
	s = strings.TrimPrefix(s, "skate_")
	if rest, ok := strings.CutPrefix(s, "pdf_"); ok {
		return "pdf." + rest
	}
	return s
}
