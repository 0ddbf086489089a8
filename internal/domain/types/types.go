// Package types contains the read shapes shared by the service and its
// HTTP and CLI surfaces.
package types

import "time"

// Standing is one leaderboard row, flattened across categories.
type Standing struct {
	Rank    int      `json:"rank"`
	Key     string   `json:"key"`
	Players []string `json:"players"`
	Score   float64  `json:"score"`
	Games   int      `json:"games"`
	// Leader names the player ahead on rivalry boards; empty when even.
	Leader string `json:"leader,omitempty"`
	Record any    `json:"record"`
}

// LeaderboardView is one selected board.
type LeaderboardView struct {
	Board     string     `json:"board"`
	Title     string     `json:"title"`
	Category  string     `json:"category"`
	Version   uint64     `json:"version"`
	BuiltAt   time.Time  `json:"built_at"`
	Standings []Standing `json:"standings"`
}

// PairView is a single pair's scores and whether they clear the pair
// minimum.
type PairView struct {
	Key         string  `json:"key"`
	Player1ID   string  `json:"player1_id"`
	Player2ID   string  `json:"player2_id"`
	Games       int     `json:"games"`
	Wins        int     `json:"wins"`
	Draws       int     `json:"draws"`
	Losses      int     `json:"losses"`
	Rate        float64 `json:"performance_rate"`
	Confidence  float64 `json:"confidence_factor"`
	Chemistry   float64 `json:"chemistry_score"`
	Curse       float64 `json:"curse_score"`
	Significant bool    `json:"significant"`
}

// LookupView answers an optimizer read. Score is nil when the pair is
// unknown, which callers treat as neutral.
type LookupView struct {
	Key    string   `json:"key"`
	Known  bool     `json:"known"`
	Score  *float64 `json:"score"`
	Loaded bool     `json:"loaded"`
}
