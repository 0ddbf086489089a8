package transform

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/okian/rapport/internal/domain/model"
	"github.com/okian/rapport/internal/domain/scoring"
	"github.com/okian/rapport/pkg/logger"
	"github.com/okian/rapport/pkg/metrics"
)

// Default batch configuration constants.
const (
	defaultChunkSize = 256
)

// Option applies a configuration option to Batch.
type Option func(*batchConfig)

type batchConfig struct {
	workers   int
	chunkSize int
	logger    logger.Logger
}

// WithWorkers bounds the number of goroutines mapping rows.
func WithWorkers(n int) Option {
	return func(c *batchConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithChunkSize sets how many consecutive rows one goroutine handles.
func WithChunkSize(n int) Option {
	return func(c *batchConfig) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// WithLogger sets the logger used for rejected rows.
func WithLogger(l logger.Logger) Option {
	return func(c *batchConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Rejected is a row that failed to transform.
type Rejected struct {
	Index int
	Row   model.Row
	Err   error
}

// Result holds the records of a batch in input order, minus rejected rows.
type Result[T any] struct {
	Records  []T
	Rejected []Rejected
}

// Batch applies fn to every row in parallel. A row that fails is skipped and
// logged; it never fails the batch. The only error returned is ctx's.
func Batch[T any](ctx context.Context, c scoring.Category, rows []model.Row, fn func(model.Row) (T, error), opts ...Option) (Result[T], error) {
	cfg := batchConfig{
		workers:   runtime.NumCPU(),
		chunkSize: defaultChunkSize,
		logger:    logger.GetOrNop().Named("transform"),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	out := make([]T, len(rows))
	errs := make([]error, len(rows))

	// Each goroutine owns a disjoint index range, so no locking is needed.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)
	for start := 0; start < len(rows); start += cfg.chunkSize {
		if gctx.Err() != nil {
			break
		}
		lo, hi := start, min(start+cfg.chunkSize, len(rows))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				out[i], errs[i] = fn(rows[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result[T]{}, fmt.Errorf("transform %s batch: %w", c, err)
	}
	if err := ctx.Err(); err != nil {
		return Result[T]{}, fmt.Errorf("transform %s batch: %w", c, err)
	}

	res := Result[T]{Records: make([]T, 0, len(rows))}
	for i, err := range errs {
		if err == nil {
			res.Records = append(res.Records, out[i])
			continue
		}
		reason := Reason(err)
		if reason == "" {
			reason = ReasonInvalid
		}
		res.Rejected = append(res.Rejected, Rejected{Index: i, Row: rows[i], Err: err})
		metrics.RecordRowRejected(c.String(), reason)
		cfg.logger.Warn(ctx, "skipping corrupt aggregate row",
			logger.String("category", c.String()),
			logger.Int("index", i),
			logger.String("reason", reason),
			logger.Error(err),
		)
	}
	metrics.RecordRowsTransformed(c.String(), len(res.Records))
	return res, nil
}
