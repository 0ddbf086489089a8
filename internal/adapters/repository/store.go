// Package repository holds the read model served to queries: the scored
// records and chemistry lookup of the latest refresh.
package repository

import (
	"time"

	"github.com/okian/rapport/internal/domain/lookup"
	"github.com/okian/rapport/internal/domain/model"
	"github.com/okian/rapport/internal/domain/scoring"
)

// Snapshot is one immutable refresh result. Readers must not modify it.
type Snapshot struct {
	Version        uint64
	BuiltAt        time.Time
	BuildDuration  time.Duration
	Pairs          []model.PairChemistry
	Rivalries      []model.RivalryRecord
	Trios          []model.TrioRecord
	TeamPlacements []model.TeamPlacementRecord
	// Rejected counts skipped rows per category.
	Rejected map[scoring.Category]int
	Lookup   *lookup.ChemistryLookup
}

// Store provides access to the current snapshot.
type Store interface {
	// Load returns the current snapshot. It never returns nil.
	Load() *Snapshot
	// Publish replaces the current snapshot and returns it stamped.
	Publish(s *Snapshot) (*Snapshot, error)
}

// emptySnapshot is what readers see before the first publish.
func emptySnapshot() *Snapshot {
	return &Snapshot{
		Rejected: map[scoring.Category]int{},
		Lookup:   lookup.Empty(),
	}
}

// Counts returns the number of records per category.
func (s *Snapshot) Counts() map[scoring.Category]int {
	return map[scoring.Category]int{
		scoring.CategoryPair:          len(s.Pairs),
		scoring.CategoryRivalry:       len(s.Rivalries),
		scoring.CategoryTrio:          len(s.Trios),
		scoring.CategoryTeamPlacement: len(s.TeamPlacements),
	}
}

// Loaded reports whether the snapshot came from a refresh.
func (s *Snapshot) Loaded() bool {
	return s.Version > 0
}
