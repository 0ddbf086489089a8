// Package leaderboard selects the top records of one category for display.
//
// Selection is gate, sort, truncate. Records below the category's minimum
// games never appear, whatever their score. Order is score descending, then
// games descending, then canonical key ascending, so equal inputs always
// produce equal output.
package leaderboard

import (
	"sort"

	"github.com/okian/rapport/internal/domain/model"
	"github.com/okian/rapport/internal/domain/scoring"
	"github.com/okian/rapport/internal/domain/threshold"
)

// Ranked is a record the selector can order.
type Ranked interface {
	threshold.Sampled
	Key() string
}

// Entry is one leaderboard row.
type Entry[T any] struct {
	Rank   int     `json:"rank"`
	Key    string  `json:"key"`
	Score  float64 `json:"score"`
	Games  int     `json:"games"`
	Record T       `json:"record"`
}

// less returns true if a should appear before b.
func less[T any](a, b Entry[T]) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Games != b.Games {
		return a.Games > b.Games
	}
	return a.Key < b.Key
}

// Top returns the n best significant records by score. records is not
// modified. Fewer than n entries are returned when fewer qualify.
func Top[T Ranked](c scoring.Category, records []T, score func(T) float64, n int) ([]Entry[T], error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	entries := make([]Entry[T], 0, len(records))
	for _, r := range records {
		if !threshold.Significant(c, r) {
			continue
		}
		entries = append(entries, Entry[T]{
			Key:    r.Key(),
			Score:  score(r),
			Games:  r.SampleSize(),
			Record: r,
		})
	}

	sort.Slice(entries, func(i, j int) bool { return less(entries[i], entries[j]) })

	if len(entries) > n {
		entries = entries[:n]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// DreamTeams ranks pairs by chemistry.
func DreamTeams(records []model.PairChemistry, n int) ([]Entry[model.PairChemistry], error) {
	return Top(scoring.CategoryPair, records, func(r model.PairChemistry) float64 { return r.ChemistryScore }, n)
}

// CursedPairs ranks pairs by curse.
func CursedPairs(records []model.PairChemistry, n int) ([]Entry[model.PairChemistry], error) {
	return Top(scoring.CategoryPair, records, func(r model.PairChemistry) float64 { return r.CurseScore }, n)
}

// Rivalries ranks head-to-heads by confidence-weighted dominance.
func Rivalries(records []model.RivalryRecord, n int) ([]Entry[model.RivalryRecord], error) {
	return Top(scoring.CategoryRivalry, records, func(r model.RivalryRecord) float64 { return r.RivalryScore }, n)
}

// Dominance ranks head-to-heads by raw dominance.
func Dominance(records []model.RivalryRecord, n int) ([]Entry[model.RivalryRecord], error) {
	return Top(scoring.CategoryRivalry, records, func(r model.RivalryRecord) float64 { return r.DominanceScore }, n)
}

// DreamTrios ranks trios by trio score.
func DreamTrios(records []model.TrioRecord, n int) ([]Entry[model.TrioRecord], error) {
	return Top(scoring.CategoryTrio, records, func(r model.TrioRecord) float64 { return r.TrioScore }, n)
}

// CursedTrios ranks trios by curse.
func CursedTrios(records []model.TrioRecord, n int) ([]Entry[model.TrioRecord], error) {
	return Top(scoring.CategoryTrio, records, func(r model.TrioRecord) float64 { return r.CurseScore }, n)
}

// Inseparable ranks pairs by how often they shared a team.
func Inseparable(records []model.TeamPlacementRecord, n int) ([]Entry[model.TeamPlacementRecord], error) {
	return Top(scoring.CategoryTeamPlacement, records, func(r model.TeamPlacementRecord) float64 { return r.TogetherRate }, n)
}

// Opposites ranks pairs by how often they faced each other.
func Opposites(records []model.TeamPlacementRecord, n int) ([]Entry[model.TeamPlacementRecord], error) {
	return Top(scoring.CategoryTeamPlacement, records, func(r model.TeamPlacementRecord) float64 { return r.AgainstRate }, n)
}

// Partners ranks one player's partners by chemistry with pair significance.
func Partners(records []model.PartnerChemistry, n int) ([]Entry[model.PartnerChemistry], error) {
	return Top(scoring.CategoryPair, records, func(r model.PartnerChemistry) float64 { return r.ChemistryScore }, n)
}
