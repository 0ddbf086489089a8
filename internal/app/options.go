package service

import (
	"time"

	"github.com/okian/rapport/internal/adapters/repository"
	"github.com/okian/rapport/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount bounds the goroutines used by batch transforms.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithLookupShards sets the number of partitions for the lookup build.
func WithLookupShards(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.lookupShards = n
		}
	}
}

// WithRefreshInterval sets how often Start rebuilds the snapshot. Zero
// disables periodic refresh.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.refreshInterval = d
		}
	}
}

// WithStore replaces the snapshot store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
