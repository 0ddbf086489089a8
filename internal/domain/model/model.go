// Package model contains the aggregate rows read from the aggregation
// provider and the scored records derived from them.
//
// Aggregates carry raw counts only. Records embed their aggregate so the
// original counts travel with the derived scores for display and audit.
package model

import "github.com/okian/rapport/internal/domain/pairkey"

// Row is one raw provider row, keyed by column name. Numeric columns may
// arrive as numbers or as text.
type Row map[string]any

// PairAggregate counts games two players spent on the same team.
type PairAggregate struct {
	Player1ID      string `json:"player1_id" yaml:"player1_id" validate:"required"`
	Player1Name    string `json:"player1_name,omitempty" yaml:"player1_name,omitempty"`
	Player2ID      string `json:"player2_id" yaml:"player2_id" validate:"required,nefield=Player1ID"`
	Player2Name    string `json:"player2_name,omitempty" yaml:"player2_name,omitempty"`
	GamesTogether  int    `json:"games_together" yaml:"games_together" validate:"gte=0"`
	WinsTogether   int    `json:"wins_together" yaml:"wins_together" validate:"gte=0"`
	DrawsTogether  int    `json:"draws_together" yaml:"draws_together" validate:"gte=0"`
	LossesTogether int    `json:"losses_together" yaml:"losses_together" validate:"gte=0"`
}

// Key returns the canonical pair key.
func (a PairAggregate) Key() string { return pairkey.Pair(a.Player1ID, a.Player2ID) }

// PairChemistry is a scored PairAggregate.
type PairChemistry struct {
	PairAggregate
	PerformanceRate  float64 `json:"performance_rate"`
	ConfidenceFactor float64 `json:"confidence_factor"`
	ChemistryScore   float64 `json:"chemistry_score"`
	CurseScore       float64 `json:"curse_score"`
}

// SampleSize is the number of games behind the scores.
func (r PairChemistry) SampleSize() int { return r.GamesTogether }

// PartnerAggregate is one row of a player's top-partners query. PlayerID is
// the subject of the query and is filled in by the caller.
type PartnerAggregate struct {
	PlayerID       string `json:"player_id" yaml:"player_id" validate:"required"`
	PartnerID      string `json:"partner_id" yaml:"partner_id" validate:"required,nefield=PlayerID"`
	PartnerName    string `json:"partner_name,omitempty" yaml:"partner_name,omitempty"`
	GamesTogether  int    `json:"games_together" yaml:"games_together" validate:"gte=0"`
	WinsTogether   int    `json:"wins_together" yaml:"wins_together" validate:"gte=0"`
	DrawsTogether  int    `json:"draws_together" yaml:"draws_together" validate:"gte=0"`
	LossesTogether int    `json:"losses_together" yaml:"losses_together" validate:"gte=0"`
}

// Key returns the canonical pair key of player and partner.
func (a PartnerAggregate) Key() string { return pairkey.Pair(a.PlayerID, a.PartnerID) }

// PartnerChemistry is a scored PartnerAggregate.
type PartnerChemistry struct {
	PartnerAggregate
	PerformanceRate  float64 `json:"performance_rate"`
	ConfidenceFactor float64 `json:"confidence_factor"`
	ChemistryScore   float64 `json:"chemistry_score"`
	CurseScore       float64 `json:"curse_score"`
}

// SampleSize is the number of games behind the scores.
func (r PartnerChemistry) SampleSize() int { return r.GamesTogether }

// RivalryAggregate counts games two players spent on opposite teams.
type RivalryAggregate struct {
	Player1ID    string `json:"player1_id" yaml:"player1_id" validate:"required"`
	Player1Name  string `json:"player1_name,omitempty" yaml:"player1_name,omitempty"`
	Player2ID    string `json:"player2_id" yaml:"player2_id" validate:"required,nefield=Player1ID"`
	Player2Name  string `json:"player2_name,omitempty" yaml:"player2_name,omitempty"`
	GamesAgainst int    `json:"games_against" yaml:"games_against" validate:"gte=0"`
	Player1Wins  int    `json:"player1_wins" yaml:"player1_wins" validate:"gte=0"`
	Player2Wins  int    `json:"player2_wins" yaml:"player2_wins" validate:"gte=0"`
	Draws        int    `json:"draws" yaml:"draws" validate:"gte=0"`
}

// Key returns the canonical pair key.
func (a RivalryAggregate) Key() string { return pairkey.Pair(a.Player1ID, a.Player2ID) }

// RivalryRecord is a scored RivalryAggregate. PerformanceRate is from
// player 1's side.
type RivalryRecord struct {
	RivalryAggregate
	PerformanceRate  float64 `json:"performance_rate"`
	ConfidenceFactor float64 `json:"confidence_factor"`
	DominanceScore   float64 `json:"dominance_score"`
	RivalryScore     float64 `json:"rivalry_score"`
}

// SampleSize is the number of games behind the scores.
func (r RivalryRecord) SampleSize() int { return r.GamesAgainst }

// Leader returns the id of the player ahead in the matchup, or "" when even.
func (r RivalryRecord) Leader() string {
	switch {
	case r.PerformanceRate > 50:
		return r.Player1ID
	case r.PerformanceRate < 50:
		return r.Player2ID
	default:
		return ""
	}
}

// TrioAggregate counts games three players spent on the same team.
type TrioAggregate struct {
	Player1ID     string `json:"player1_id" yaml:"player1_id" validate:"required"`
	Player1Name   string `json:"player1_name,omitempty" yaml:"player1_name,omitempty"`
	Player2ID     string `json:"player2_id" yaml:"player2_id" validate:"required,nefield=Player1ID"`
	Player2Name   string `json:"player2_name,omitempty" yaml:"player2_name,omitempty"`
	Player3ID     string `json:"player3_id" yaml:"player3_id" validate:"required,nefield=Player1ID,nefield=Player2ID"`
	Player3Name   string `json:"player3_name,omitempty" yaml:"player3_name,omitempty"`
	GamesTogether int    `json:"games_together" yaml:"games_together" validate:"gte=0"`
	Wins          int    `json:"wins" yaml:"wins" validate:"gte=0"`
	Draws         int    `json:"draws" yaml:"draws" validate:"gte=0"`
	Losses        int    `json:"losses" yaml:"losses" validate:"gte=0"`
}

// Key returns the canonical trio key.
func (a TrioAggregate) Key() string { return pairkey.Trio(a.Player1ID, a.Player2ID, a.Player3ID) }

// TrioRecord is a scored TrioAggregate.
type TrioRecord struct {
	TrioAggregate
	PerformanceRate  float64 `json:"performance_rate"`
	ConfidenceFactor float64 `json:"confidence_factor"`
	TrioScore        float64 `json:"trio_score"`
	CurseScore       float64 `json:"curse_score"`
}

// SampleSize is the number of games behind the scores.
func (r TrioRecord) SampleSize() int { return r.GamesTogether }

// TeamPlacementAggregate counts how two players were split across teams in
// the games they both played.
type TeamPlacementAggregate struct {
	Player1ID     string `json:"player1_id" yaml:"player1_id" validate:"required"`
	Player1Name   string `json:"player1_name,omitempty" yaml:"player1_name,omitempty"`
	Player2ID     string `json:"player2_id" yaml:"player2_id" validate:"required,nefield=Player1ID"`
	Player2Name   string `json:"player2_name,omitempty" yaml:"player2_name,omitempty"`
	TotalGames    int    `json:"total_games" yaml:"total_games" validate:"gte=0"`
	GamesTogether int    `json:"games_together" yaml:"games_together" validate:"gte=0"`
	GamesAgainst  int    `json:"games_against" yaml:"games_against" validate:"gte=0"`
}

// Key returns the canonical pair key.
func (a TeamPlacementAggregate) Key() string { return pairkey.Pair(a.Player1ID, a.Player2ID) }

// TeamPlacementRecord is a scored TeamPlacementAggregate. Both rates are
// percentages of TotalGames.
type TeamPlacementRecord struct {
	TeamPlacementAggregate
	TogetherRate float64 `json:"together_rate"`
	AgainstRate  float64 `json:"against_rate"`
}

// SampleSize is the number of shared games behind the rates.
func (r TeamPlacementRecord) SampleSize() int { return r.TotalGames }
