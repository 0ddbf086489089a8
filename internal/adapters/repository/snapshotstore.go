package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/okian/rapport/internal/domain/lookup"
	"github.com/okian/rapport/internal/domain/scoring"
	"github.com/okian/rapport/pkg/logger"
	"github.com/okian/rapport/pkg/metrics"
)

// SnapshotStore publishes snapshots with a single atomic pointer swap, so
// reads never block and never observe a half-built snapshot.
type SnapshotStore struct {
	snapshot atomic.Pointer[Snapshot]
	version  atomic.Uint64

	now    func() time.Time
	logger logger.Logger
}

// NewSnapshotStore constructs an empty store.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{
		now:    time.Now,
		logger: logger.GetOrNop().Named("repository"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snapshot.Store(emptySnapshot())
	return s
}

// Load implements Store.
func (s *SnapshotStore) Load() *Snapshot {
	return s.snapshot.Load()
}

// Publish implements Store. The snapshot is stamped with the next version
// and its build time; a nil lookup is replaced by an unloaded one.
func (s *SnapshotStore) Publish(snap *Snapshot) (*Snapshot, error) {
	if snap == nil {
		return nil, ErrNilSnapshot
	}
	if snap.Lookup == nil {
		snap.Lookup = lookup.Empty()
	}
	if snap.Rejected == nil {
		snap.Rejected = map[scoring.Category]int{}
	}
	if snap.BuiltAt.IsZero() {
		snap.BuiltAt = s.now()
	}
	snap.Version = s.version.Add(1)

	s.snapshot.Store(snap)

	metrics.RecordSnapshotPublished(snap.BuiltAt.Unix(), float64(snap.BuildDuration.Microseconds())/1000.0)
	for c, n := range snap.Counts() {
		metrics.UpdateSnapshotRecords(c.String(), n)
	}
	s.logger.Info(context.Background(), "snapshot published",
		logger.Int("version", int(snap.Version)),
		logger.Int("pairs", len(snap.Pairs)),
		logger.Int("rivalries", len(snap.Rivalries)),
		logger.Int("trios", len(snap.Trios)),
		logger.Int("team_placements", len(snap.TeamPlacements)),
		logger.Int("lookup_pairs", snap.Lookup.PairCount()),
	)
	return snap, nil
}
