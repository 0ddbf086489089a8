package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment keys.
const (
	EnvPrefix     = "RAPPORT_"
	EnvConfigPath = "RAPPORT_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if RAPPORT_CONFIG is set
//  3. env (prefix RAPPORT_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// RAPPORT_WORKER_COUNT -> worker_count. Underscores are kept to match
	// the flat koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration and joins every problem found.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Addr == "" {
		bad("addr must not be empty")
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		bad("log_format must be text or json, got %q", c.LogFormat)
	}
	if c.WorkerCount < 1 {
		bad("worker_count must be positive, got %d", c.WorkerCount)
	}
	if c.LookupShards < 1 {
		bad("lookup_shards must be positive, got %d", c.LookupShards)
	}
	if c.RefreshIntervalMS < 0 {
		bad("refresh_interval_ms must not be negative, got %d", c.RefreshIntervalMS)
	}
	if c.MaxLeaderboardLimit < 1 {
		bad("max_leaderboard_limit must be positive, got %d", c.MaxLeaderboardLimit)
	}
	if c.DefaultLeaderboardLimit < 1 || c.DefaultLeaderboardLimit > c.MaxLeaderboardLimit {
		bad("default_leaderboard_limit must be in [1, %d], got %d", c.MaxLeaderboardLimit, c.DefaultLeaderboardLimit)
	}
	switch c.Provider {
	case ProviderFile:
		if c.DatasetPath == "" {
			bad("dataset_path is required for the file provider")
		}
	case ProviderRPC:
		if c.RPCBaseURL == "" {
			bad("rpc_base_url is required for the rpc provider")
		}
		if c.RPCTimeoutMS < 1 {
			bad("rpc_timeout_ms must be positive, got %d", c.RPCTimeoutMS)
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %w: provider must be %s or %s, got %q",
			ErrInvalidConfig, ErrUnknownProvider, ProviderFile, ProviderRPC, c.Provider))
	}

	return errors.Join(errs...)
}
