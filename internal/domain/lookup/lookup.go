// Package lookup folds scored pairs into a canonical-key index for O(1)
// chemistry reads by a team-balancing optimizer.
//
// A ChemistryLookup is never mutated after Build returns and is safe for
// concurrent reads. Get reports unknown pairs with ok == false: a missing pair
// has no history and must be treated as neutral, while 0 is a real computed
// score.
package lookup

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/okian/rapport/internal/domain/model"
	"github.com/okian/rapport/internal/domain/pairkey"
	"github.com/okian/rapport/pkg/logger"
	"github.com/okian/rapport/pkg/metrics"
)

// ChemistryLookup maps canonical pair keys to chemistry scores.
type ChemistryLookup struct {
	scores map[string]float64
	loaded bool
}

// Empty returns a lookup that has not been built.
func Empty() *ChemistryLookup {
	return &ChemistryLookup{scores: map[string]float64{}}
}

// PairCount is the number of distinct pairs in the lookup.
func (l *ChemistryLookup) PairCount() int {
	if l == nil {
		return 0
	}
	return len(l.scores)
}

// IsLoaded reports whether the lookup came from Build.
func (l *ChemistryLookup) IsLoaded() bool {
	return l != nil && l.loaded
}

// Get returns the chemistry score stored under a canonical key.
func (l *ChemistryLookup) Get(key string) (float64, bool) {
	if l == nil {
		return 0, false
	}
	v, ok := l.scores[key]
	return v, ok
}

// GetPair canonicalizes a and b before reading.
func (l *ChemistryLookup) GetPair(a, b string) (float64, bool) {
	return l.Get(pairkey.Pair(a, b))
}

// Keys returns every canonical key in the lookup in ascending order.
func (l *ChemistryLookup) Keys() []string {
	if l == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(l.scores))
}

// Build folds records into a loaded lookup. When a key repeats, the later
// record wins and the collision is logged. Build never fails.
func Build(ctx context.Context, records []model.PairChemistry, opts ...Option) *ChemistryLookup {
	cfg := buildConfig{
		shards: 1,
		logger: logger.GetOrNop().Named("lookup"),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	start := time.Now()
	var scores map[string]float64
	if cfg.shards <= 1 || len(records) < cfg.shards {
		scores = fold(ctx, cfg.logger, records, allIndexes(len(records)), len(records))
	} else {
		scores = buildSharded(ctx, cfg, records)
	}

	metrics.RecordLookupBuild(len(scores), float64(time.Since(start).Microseconds())/1000.0)
	return &ChemistryLookup{scores: scores, loaded: true}
}

// buildSharded routes each key to one shard so every occurrence of a key is
// folded by the same goroutine in input order. Shards are disjoint, so the
// merge never collides.
func buildSharded(ctx context.Context, cfg buildConfig, records []model.PairChemistry) map[string]float64 {
	n := uint64(cfg.shards)
	routes := make([][]int, cfg.shards)
	for i := range records {
		s := xxhash.Sum64String(records[i].Key()) % n
		routes[s] = append(routes[s], i)
	}

	parts := make([]map[string]float64, cfg.shards)
	var g errgroup.Group
	for s := range routes {
		g.Go(func() error {
			parts[s] = fold(ctx, cfg.logger, records, routes[s], len(routes[s]))
			return nil
		})
	}
	_ = g.Wait()

	scores := make(map[string]float64, len(records))
	for _, p := range parts {
		for k, v := range p {
			scores[k] = v
		}
	}
	return scores
}

// fold is the single-writer insert loop over records[idx...].
func fold(ctx context.Context, log logger.Logger, records []model.PairChemistry, idx []int, hint int) map[string]float64 {
	scores := make(map[string]float64, hint)
	for _, i := range idx {
		r := records[i]
		key := r.Key()
		if prev, dup := scores[key]; dup {
			metrics.RecordLookupCollision()
			log.Warn(ctx, "duplicate pair key in lookup build, keeping last",
				logger.String("key", key),
				logger.Float64("previous", prev),
				logger.Float64("current", r.ChemistryScore),
			)
		}
		scores[key] = r.ChemistryScore
	}
	return scores
}

func allIndexes(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
