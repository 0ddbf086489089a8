package lookup

import "github.com/okian/rapport/pkg/logger"

// Option applies a configuration option to Build.
type Option func(*buildConfig)

type buildConfig struct {
	shards int
	logger logger.Logger
}

// WithShards folds the records in n partitions concurrently. n <= 1 keeps a
// single sequential fold.
func WithShards(n int) Option {
	return func(c *buildConfig) {
		if n > 0 {
			c.shards = n
		}
	}
}

// WithLogger sets the logger used for collision warnings.
func WithLogger(l logger.Logger) Option {
	return func(c *buildConfig) {
		if l != nil {
			c.logger = l
		}
	}
}
