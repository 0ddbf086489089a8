// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers a YAML file and RAPPORT_* environment variables on top.
// - Validate reports every problem wrapped in ErrInvalidConfig.
package config

import (
	"runtime"
	"time"
)

// Provider kinds.
const (
	ProviderFile = "file"
	ProviderRPC  = "rpc"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// WorkerCount bounds the goroutines used by batch transforms.
	WorkerCount int `koanf:"worker_count"`

	// LookupShards is the number of partitions folded concurrently when
	// building the chemistry lookup. 1 keeps a sequential fold.
	LookupShards int `koanf:"lookup_shards"`

	// RefreshIntervalMS is how often snapshots are rebuilt. 0 disables
	// periodic refresh.
	RefreshIntervalMS int `koanf:"refresh_interval_ms"`

	// MaxLeaderboardLimit caps ?limit on leaderboard and partner queries.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// DefaultLeaderboardLimit is used when ?limit is absent.
	DefaultLeaderboardLimit int `koanf:"default_leaderboard_limit"`

	// Provider selects the aggregation source: file or rpc.
	Provider string `koanf:"provider"`

	// DatasetPath is the YAML or JSON dataset read by the file provider.
	DatasetPath string `koanf:"dataset_path"`

	// RPCBaseURL is the aggregation backend root for the rpc provider.
	RPCBaseURL string `koanf:"rpc_base_url"`

	// RPCAPIKey authenticates rpc calls.
	RPCAPIKey string `koanf:"rpc_api_key"`

	// RPCTimeoutMS bounds each rpc call.
	RPCTimeoutMS int `koanf:"rpc_timeout_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		Addr:                    ":9080",
		WorkerCount:             runtime.NumCPU(),
		LookupShards:            8,
		RefreshIntervalMS:       60_000,
		MaxLeaderboardLimit:     100,
		DefaultLeaderboardLimit: 10,
		Provider:                ProviderFile,
		DatasetPath:             "dataset.yaml",
		RPCTimeoutMS:            10_000,
	}
}

// RefreshInterval returns RefreshIntervalMS as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMS) * time.Millisecond
}

// RPCTimeout returns RPCTimeoutMS as a duration.
func (c *Config) RPCTimeout() time.Duration {
	return time.Duration(c.RPCTimeoutMS) * time.Millisecond
}
