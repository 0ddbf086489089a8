// Package scoring holds the metric formulas behind every relationship score:
// points-based performance rate, the sample-size confidence factor, and the
// derived chemistry, curse, dominance and rivalry scores.
//
// All functions are pure. Zero-game inputs take an explicit branch and never
// divide by zero.
package scoring

import (
	"fmt"
	"math"
)

// Points awarded per result.
const (
	PointsPerWin  = 3
	PointsPerDraw = 1
)

// Rate bounds.
const (
	MaxRate     = 100.0
	NeutralRate = 50.0
	EmptyRate   = 0.0
)

// Confidence constants per category. Higher K needs more games before a
// score is trusted.
const (
	PairK    = 10
	RivalryK = 5
	TrioK    = 3
)

// Minimum games for a record to count as significant.
const (
	PairMinGames          = 10
	RivalryMinGames       = 5
	TrioMinGames          = 3
	TeamPlacementMinGames = 5
)

// Category is the closed set of relationship kinds.
type Category int

// Categories.
const (
	CategoryPair Category = iota + 1
	CategoryRivalry
	CategoryTrio
	CategoryTeamPlacement
)

func (c Category) String() string {
	switch c {
	case CategoryPair:
		return "pair"
	case CategoryRivalry:
		return "rivalry"
	case CategoryTrio:
		return "trio"
	case CategoryTeamPlacement:
		return "team_placement"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// ParseCategory is the inverse of Category.String.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "pair":
		return CategoryPair, nil
	case "rivalry":
		return CategoryRivalry, nil
	case "trio":
		return CategoryTrio, nil
	case "team_placement":
		return CategoryTeamPlacement, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// K returns the confidence constant for c. Team placement has no confidence
// weighting and returns 0.
func K(c Category) int {
	switch c {
	case CategoryPair:
		return PairK
	case CategoryRivalry:
		return RivalryK
	case CategoryTrio:
		return TrioK
	default:
		return 0
	}
}

// MinGames returns the significance threshold for c.
func MinGames(c Category) int {
	switch c {
	case CategoryPair:
		return PairMinGames
	case CategoryRivalry:
		return RivalryMinGames
	case CategoryTrio:
		return TrioMinGames
	case CategoryTeamPlacement:
		return TeamPlacementMinGames
	default:
		return math.MaxInt
	}
}

// ZeroGamesRate is the performance rate a category reports when no games
// were played: neutral for head-to-head, empty otherwise.
func ZeroGamesRate(c Category) float64 {
	if c == CategoryRivalry {
		return NeutralRate
	}
	return EmptyRate
}

// PerformanceRate returns points earned as a percentage of points available.
// zeroDefault is returned when games <= 0.
func PerformanceRate(games, wins, draws int, zeroDefault float64) float64 {
	if games <= 0 {
		return zeroDefault
	}
	earned := float64(wins*PointsPerWin + draws*PointsPerDraw)
	available := float64(games * PointsPerWin)
	return earned / available * MaxRate
}

// ConfidenceFactor returns games/(games+k), in [0,1). It is 0 for games <= 0.
func ConfidenceFactor(games, k int) float64 {
	if games <= 0 {
		return 0
	}
	return float64(games) / float64(games+k)
}

// Chemistry weights a performance rate by confidence.
func Chemistry(rate, confidence float64) float64 {
	return rate * confidence
}

// Curse weights the complement of a performance rate by confidence.
func Curse(rate, confidence float64) float64 {
	return (MaxRate - rate) * confidence
}

// Dominance is the distance of a head-to-head rate from an even split.
func Dominance(rate float64) float64 {
	return math.Abs(rate - NeutralRate)
}

// RivalryScore weights dominance by confidence.
func RivalryScore(dominance, confidence float64) float64 {
	return dominance * confidence
}

// Share returns part as a percentage of total, or 0 when total <= 0.
func Share(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * MaxRate
}
