package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional file, and env
// vars. Order of precedence (low -> high):
//  1. defaults (New)
//  2. YAML file named by ATTUNE_CONFIG
//  3. env vars with prefix ATTUNE_ (ATTUNE_SYNC_TOLERANCE_MS -> sync_tolerance_ms)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("ATTUNE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	envProvider := env.Provider("ATTUNE_", ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), "attune_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.SyncToleranceMS <= 0:
		return fmt.Errorf("%w: sync_tolerance_ms must be positive", ErrInvalidConfig)
	case c.BufferCapacity <= 0:
		return fmt.Errorf("%w: buffer_capacity must be positive", ErrInvalidConfig)
	case c.DedupeSize <= 0:
		return fmt.Errorf("%w: dedupe_size must be positive", ErrInvalidConfig)
	case c.EyeOpenHigh <= c.EyeOpenLow:
		return fmt.Errorf("%w: eye_open_high must exceed eye_open_low", ErrInvalidConfig)
	case c.RMSLoud <= c.RMSQuiet:
		return fmt.Errorf("%w: rms_loud must exceed rms_quiet", ErrInvalidConfig)
	}
	return nil
}
