package service

import (
	"github.com/okian/rapport/internal/adapters/repository"
	"github.com/okian/rapport/internal/domain/leaderboard"
	"github.com/okian/rapport/internal/domain/model"
	"github.com/okian/rapport/internal/domain/pairkey"
	"github.com/okian/rapport/internal/domain/scoring"
	"github.com/okian/rapport/internal/domain/threshold"
	"github.com/okian/rapport/internal/domain/types"
)

func pairKey(a, b string) string { return pairkey.Pair(a, b) }

// selectBoard dispatches a board to its typed selector.
func selectBoard(snap *repository.Snapshot, board leaderboard.Board, n int) ([]types.Standing, error) {
	switch board {
	case leaderboard.DreamTeamsBoard:
		e, err := leaderboard.DreamTeams(snap.Pairs, n)
		return standings(e, pairNames), err
	case leaderboard.CursedPairsBoard:
		e, err := leaderboard.CursedPairs(snap.Pairs, n)
		return standings(e, pairNames), err
	case leaderboard.RivalriesBoard:
		e, err := leaderboard.Rivalries(snap.Rivalries, n)
		return rivalryStandings(e), err
	case leaderboard.DominanceBoard:
		e, err := leaderboard.Dominance(snap.Rivalries, n)
		return rivalryStandings(e), err
	case leaderboard.DreamTriosBoard:
		e, err := leaderboard.DreamTrios(snap.Trios, n)
		return standings(e, trioNames), err
	case leaderboard.CursedTriosBoard:
		e, err := leaderboard.CursedTrios(snap.Trios, n)
		return standings(e, trioNames), err
	case leaderboard.InseparableBoard:
		e, err := leaderboard.Inseparable(snap.TeamPlacements, n)
		return standings(e, placementNames), err
	case leaderboard.OppositesBoard:
		e, err := leaderboard.Opposites(snap.TeamPlacements, n)
		return standings(e, placementNames), err
	default:
		_, err := leaderboard.ParseBoard(board.String())
		return nil, err
	}
}

func standings[T any](entries []leaderboard.Entry[T], names func(T) []string) []types.Standing {
	out := make([]types.Standing, len(entries))
	for i, e := range entries {
		out[i] = types.Standing{
			Rank:    e.Rank,
			Key:     e.Key,
			Players: names(e.Record),
			Score:   e.Score,
			Games:   e.Games,
			Record:  e.Record,
		}
	}
	return out
}

// rivalryStandings adds who leads each head-to-head.
func rivalryStandings(entries []leaderboard.Entry[model.RivalryRecord]) []types.Standing {
	out := standings(entries, rivalryNames)
	for i, e := range entries {
		switch e.Record.Leader() {
		case e.Record.Player1ID:
			out[i].Leader = display(e.Record.Player1ID, e.Record.Player1Name)
		case e.Record.Player2ID:
			out[i].Leader = display(e.Record.Player2ID, e.Record.Player2Name)
		}
	}
	return out
}

// display prefers a player's name and falls back to the id.
func display(id, name string) string {
	if name != "" {
		return name
	}
	return id
}

func pairNames(r model.PairChemistry) []string {
	return []string{display(r.Player1ID, r.Player1Name), display(r.Player2ID, r.Player2Name)}
}

func rivalryNames(r model.RivalryRecord) []string {
	return []string{display(r.Player1ID, r.Player1Name), display(r.Player2ID, r.Player2Name)}
}

func trioNames(r model.TrioRecord) []string {
	return []string{
		display(r.Player1ID, r.Player1Name),
		display(r.Player2ID, r.Player2Name),
		display(r.Player3ID, r.Player3Name),
	}
}

func placementNames(r model.TeamPlacementRecord) []string {
	return []string{display(r.Player1ID, r.Player1Name), display(r.Player2ID, r.Player2Name)}
}

func partnerNames(r model.PartnerChemistry) []string {
	return []string{r.PlayerID, display(r.PartnerID, r.PartnerName)}
}

func pairView(r model.PairChemistry) types.PairView {
	return types.PairView{
		Key:         r.Key(),
		Player1ID:   r.Player1ID,
		Player2ID:   r.Player2ID,
		Games:       r.GamesTogether,
		Wins:        r.WinsTogether,
		Draws:       r.DrawsTogether,
		Losses:      r.LossesTogether,
		Rate:        r.PerformanceRate,
		Confidence:  r.ConfidenceFactor,
		Chemistry:   r.ChemistryScore,
		Curse:       r.CurseScore,
		Significant: threshold.Significant(scoring.CategoryPair, r),
	}
}
