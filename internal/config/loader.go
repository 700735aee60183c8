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

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if PADEL_CONFIG is set
//  3. env (prefix PADEL_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("PADEL_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: PADEL_ADDR, PADEL_SHEET_ID, PADEL_CACHE_TTL_SECONDS, ...
	// Map env keys like PADEL_SHEET_ID -> sheet_id (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("PADEL_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "padel_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Basic validation
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch cfg.Source {
	case SourceSheets, SourceDemo:
	default:
		return nil, fmt.Errorf("%w: unknown source %q", ErrInvalidConfig, cfg.Source)
	}
	if cfg.Source == SourceSheets && cfg.SheetID == "" {
		return nil, fmt.Errorf("%w: sheet_id required for sheets source", ErrInvalidConfig)
	}
	if cfg.CacheTTLSeconds < 0 {
		return nil, fmt.Errorf("%w: cache_ttl_seconds must not be negative", ErrInvalidConfig)
	}
	return &cfg, nil
}
