// Package service provides the analytics service behind the HTTP API and
// CLI: it refreshes scored snapshots from the aggregation provider and
// answers leaderboard, pair and lookup queries from them.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/rapport/internal/adapters/provider"
	"github.com/okian/rapport/internal/adapters/repository"
	"github.com/okian/rapport/internal/domain/leaderboard"
	"github.com/okian/rapport/internal/domain/lookup"
	"github.com/okian/rapport/internal/domain/model"
	"github.com/okian/rapport/internal/domain/scoring"
	"github.com/okian/rapport/internal/domain/threshold"
	"github.com/okian/rapport/internal/domain/transform"
	"github.com/okian/rapport/internal/domain/types"
	"github.com/okian/rapport/pkg/logger"
	"github.com/okian/rapport/pkg/metrics"
)

// Service implements the API dependencies for the analytics engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	provider provider.Provider
	store    repository.Store

	// Configuration
	workerCount     int
	lookupShards    int
	refreshInterval time.Duration

	// State
	started   bool
	stopCh    chan struct{}
	wg        sync.WaitGroup
	refreshMu sync.Mutex
	refreshes atomic.Int64
	failures  atomic.Int64
	lastErr   atomic.Pointer[string]

	logger logger.Logger
}

// New constructs a Service reading from p.
func New(p provider.Provider, opts ...Option) *Service {
	s := &Service{
		provider:        p,
		workerCount:     runtime.NumCPU(),
		lookupShards:    1,
		refreshInterval: time.Minute,
		logger:          logger.GetOrNop().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewSnapshotStore(repository.WithLogger(s.logger))
	}
	return s
}

// Start runs a first refresh and then refreshes periodically until Stop or
// ctx is done. A failed first refresh is logged and retried on the next tick
// so the API can come up while the provider is unavailable.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting analytics service...",
		logger.Int("workers", s.workerCount),
		logger.Int("lookupShards", s.lookupShards),
		logger.String("refreshInterval", s.refreshInterval.String()),
	)

	if _, err := s.Refresh(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		s.logger.Error(ctx, "initial refresh failed; serving empty snapshot", logger.Error(err))
	}

	s.stopCh = make(chan struct{})
	s.wg.Add(1)
	go s.loop(ctx)

	s.started = true
	s.logger.Info(ctx, "analytics service started")
	return nil
}

// loop refreshes on the configured interval and samples runtime metrics.
func (s *Service) loop(ctx context.Context) {
	defer s.wg.Done()

	var refreshC <-chan time.Time
	if s.refreshInterval > 0 {
		t := time.NewTicker(s.refreshInterval)
		defer t.Stop()
		refreshC = t.C
	}
	sys := time.NewTicker(5 * time.Second)
	defer sys.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-refreshC:
			if _, err := s.Refresh(ctx); err != nil {
				s.logger.Error(ctx, "periodic refresh failed", logger.Error(err))
			}
		case <-sys.C:
			sampleRuntime()
		}
	}
}

func sampleRuntime() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	metrics.UpdateSystemMemoryUsage(ms.HeapAlloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if ms.NumGC > 0 {
		last := ms.PauseNs[(ms.NumGC+255)%256]
		metrics.RecordSystemGCPauseTime(float64(last) / float64(time.Millisecond))
	}
}

// Stop gracefully shuts down the refresh loop.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping analytics service...")
	close(s.stopCh)
	s.wg.Wait()

	s.started = false
	s.logger.Info(context.Background(), "analytics service stopped")
}

// Refresh fetches every bulk aggregate, scores it and publishes a new
// snapshot. Corrupt rows are skipped; provider failures abort the refresh
// and leave the previous snapshot in place.
func (s *Service) Refresh(ctx context.Context) (*repository.Snapshot, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	snap, err := s.refresh(ctx)
	s.refreshes.Add(1)
	if err != nil {
		s.failures.Add(1)
		msg := err.Error()
		s.lastErr.Store(&msg)
		metrics.RecordErrorByComponent("service", "refresh")
		return nil, fmt.Errorf("%w: %w", ErrRefresh, err)
	}
	s.lastErr.Store(nil)
	return snap, nil
}

func (s *Service) refresh(ctx context.Context) (*repository.Snapshot, error) {
	start := time.Now()

	var pairRows, rivalryRows, trioRows, placementRows []model.Row
	g, gctx := errgroup.WithContext(ctx)
	fetch := func(dst *[]model.Row, query string, fn func(context.Context) ([]model.Row, error)) {
		g.Go(func() error {
			rows, err := fn(gctx)
			if err != nil {
				return fmt.Errorf("%s: %w", query, err)
			}
			*dst = rows
			return nil
		})
	}
	fetch(&pairRows, provider.QueryAllPairs, s.provider.PairRows)
	fetch(&rivalryRows, provider.QueryAllRivalries, s.provider.RivalryRows)
	fetch(&trioRows, provider.QueryAllTrios, s.provider.TrioRows)
	fetch(&placementRows, provider.QueryTeamPlacements, s.provider.TeamPlacementRows)
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bopts := []transform.Option{transform.WithWorkers(s.workerCount), transform.WithLogger(s.logger)}
	var (
		pairs      transform.Result[model.PairChemistry]
		rivalries  transform.Result[model.RivalryRecord]
		trios      transform.Result[model.TrioRecord]
		placements transform.Result[model.TeamPlacementRecord]
	)
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		pairs, err = transform.Batch(gctx, scoring.CategoryPair, pairRows, transform.PairRow, bopts...)
		return err
	})
	g.Go(func() (err error) {
		rivalries, err = transform.Batch(gctx, scoring.CategoryRivalry, rivalryRows, transform.RivalryRow, bopts...)
		return err
	})
	g.Go(func() (err error) {
		trios, err = transform.Batch(gctx, scoring.CategoryTrio, trioRows, transform.TrioRow, bopts...)
		return err
	})
	g.Go(func() (err error) {
		placements, err = transform.Batch(gctx, scoring.CategoryTeamPlacement, placementRows, transform.TeamPlacementRow, bopts...)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	lk := lookup.Build(ctx, pairs.Records, lookup.WithShards(s.lookupShards), lookup.WithLogger(s.logger))

	snap, err := s.store.Publish(&repository.Snapshot{
		BuildDuration:  time.Since(start),
		Pairs:          pairs.Records,
		Rivalries:      rivalries.Records,
		Trios:          trios.Records,
		TeamPlacements: placements.Records,
		Rejected: map[scoring.Category]int{
			scoring.CategoryPair:          len(pairs.Rejected),
			scoring.CategoryRivalry:       len(rivalries.Rejected),
			scoring.CategoryTrio:          len(trios.Rejected),
			scoring.CategoryTeamPlacement: len(placements.Rejected),
		},
		Lookup: lk,
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Snapshot returns the current snapshot.
func (s *Service) Snapshot() *repository.Snapshot {
	return s.store.Load()
}

// Lookup returns the chemistry lookup of the current snapshot.
func (s *Service) Lookup() *lookup.ChemistryLookup {
	return s.store.Load().Lookup
}

// LookupPair reads one pair from the current lookup. An unknown pair has a
// nil score.
func (s *Service) LookupPair(_ context.Context, a, b string) types.LookupView {
	lk := s.Lookup()
	key := pairKey(a, b)
	v := types.LookupView{Key: key, Loaded: lk.IsLoaded()}
	if score, ok := lk.Get(key); ok {
		v.Known = true
		v.Score = &score
	}
	return v
}

// Leaderboard selects the top n standings of board from the current
// snapshot.
func (s *Service) Leaderboard(ctx context.Context, board leaderboard.Board, n int) (types.LeaderboardView, error) {
	snap := s.store.Load()
	standings, err := selectBoard(snap, board, n)
	if err != nil {
		return types.LeaderboardView{}, err
	}
	metrics.RecordLeaderboardQuery(board.String())
	s.logger.Debug(ctx, "leaderboard selected",
		logger.String("board", board.String()),
		logger.Int("limit", n),
		logger.Int("returned", len(standings)),
	)
	return types.LeaderboardView{
		Board:     board.String(),
		Title:     board.Title(),
		Category:  board.Category().String(),
		Version:   snap.Version,
		BuiltAt:   snap.BuiltAt,
		Standings: standings,
	}, nil
}

// PairChemistry queries one pair on demand and scores it. Returns
// ErrNotFound if the provider has no row for the pair.
func (s *Service) PairChemistry(ctx context.Context, a, b string) (types.PairView, error) {
	row, err := s.provider.PairRow(ctx, a, b)
	if err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			return types.PairView{}, fmt.Errorf("%w: pair %s", ErrNotFound, pairKey(a, b))
		}
		return types.PairView{}, err
	}
	rec, err := transform.PairRow(row)
	if err != nil {
		return types.PairView{}, err
	}
	return pairView(rec), nil
}

// TopPartners ranks player's significant partners by chemistry.
func (s *Service) TopPartners(ctx context.Context, player string, n int) (types.LeaderboardView, error) {
	if n < 1 {
		return types.LeaderboardView{}, leaderboard.ErrInvalidLimit
	}
	rows, err := s.provider.PartnerRows(ctx, player)
	if err != nil {
		return types.LeaderboardView{}, err
	}
	res, err := transform.Batch(ctx, scoring.CategoryPair, rows, transform.PartnerRows(player),
		transform.WithWorkers(s.workerCount), transform.WithLogger(s.logger))
	if err != nil {
		return types.LeaderboardView{}, err
	}
	entries, err := leaderboard.Partners(res.Records, n)
	if err != nil {
		return types.LeaderboardView{}, err
	}
	return types.LeaderboardView{
		Board:     "partners",
		Title:     "Top Partners",
		Category:  scoring.CategoryPair.String(),
		Standings: standings(entries, partnerNames),
	}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	snap := s.store.Load()
	counts := make(map[string]int, 4)
	for c, n := range snap.Counts() {
		counts[c.String()] = n
	}
	rejected := make(map[string]int, len(snap.Rejected))
	for c, n := range snap.Rejected {
		rejected[c.String()] = n
	}
	significant := map[string]int{
		scoring.CategoryPair.String():          len(threshold.Filter(scoring.CategoryPair, snap.Pairs)),
		scoring.CategoryRivalry.String():       len(threshold.Filter(scoring.CategoryRivalry, snap.Rivalries)),
		scoring.CategoryTrio.String():          len(threshold.Filter(scoring.CategoryTrio, snap.Trios)),
		scoring.CategoryTeamPlacement.String(): len(threshold.Filter(scoring.CategoryTeamPlacement, snap.TeamPlacements)),
	}

	stats := map[string]interface{}{
		"started":         started,
		"workerCount":     s.workerCount,
		"lookupShards":    s.lookupShards,
		"refreshInterval": s.refreshInterval.String(),
		"refreshes":       s.refreshes.Load(),
		"refreshFailures": s.failures.Load(),
		"snapshotVersion": snap.Version,
		"records":         counts,
		"significant":     significant,
		"rejected":        rejected,
		"lookupPairs":     snap.Lookup.PairCount(),
		"lookupLoaded":    snap.Lookup.IsLoaded(),
	}
	if snap.Loaded() {
		stats["builtAt"] = snap.BuiltAt
		stats["buildDurationMs"] = float64(snap.BuildDuration.Microseconds()) / 1000.0
	}
	if msg := s.lastErr.Load(); msg != nil {
		stats["lastError"] = *msg
	}
	return stats
}
