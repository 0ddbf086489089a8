package transform

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/rapport/internal/domain/model"
	"github.com/okian/rapport/internal/domain/pairkey"
	"github.com/okian/rapport/internal/domain/scoring"
)

// Provider column names.
const (
	colPlayer1ID      = "player1_id"
	colPlayer1Name    = "player1_name"
	colPlayer2ID      = "player2_id"
	colPlayer2Name    = "player2_name"
	colPlayer3ID      = "player3_id"
	colPlayer3Name    = "player3_name"
	colPartnerID      = "partner_id"
	colPartnerName    = "partner_name"
	colGamesTogether  = "games_together"
	colWinsTogether   = "wins_together"
	colDrawsTogether  = "draws_together"
	colLossesTogether = "losses_together"
	colGamesAgainst   = "games_against"
	colPlayer1Wins    = "player1_wins"
	colPlayer2Wins    = "player2_wins"
	colDraws          = "draws"
	colWins           = "wins"
	colLosses         = "losses"
	colTotalGames     = "total_games"
)

// rowReader pulls typed fields out of a row and keeps the first failure.
type rowReader struct {
	cat scoring.Category
	row model.Row
	err *ValidationError
}

func (r *rowReader) id(col string) string {
	if r.err != nil {
		return ""
	}
	v, ok := r.row[col]
	if !ok || v == nil {
		r.err = invalid(r.cat, col, ReasonMissing, "")
		return ""
	}
	id, ok := pairkey.ID(v)
	if !ok {
		if s, isText := v.(string); isText && strings.TrimSpace(s) == "" {
			return "" // reported as missing by the struct validator
		}
		r.err = invalid(r.cat, col, ReasonInvalid, fmt.Sprintf("unsupported id %T(%v)", v, v))
		return ""
	}
	if pairkey.Reserved(id) {
		r.err = invalid(r.cat, col, ReasonReservedSeparator, strconv.Quote(id))
		return ""
	}
	return id
}

// name reads an optional display column.
func (r *rowReader) name(col string) string {
	if s, ok := r.row[col].(string); ok {
		return s
	}
	return ""
}

func (r *rowReader) count(col string) int {
	if r.err != nil {
		return 0
	}
	v, ok := r.row[col]
	if !ok || v == nil {
		r.err = invalid(r.cat, col, ReasonMissing, "")
		return 0
	}
	n, reason, detail := toCount(v)
	if reason != "" {
		r.err = invalid(r.cat, col, reason, detail)
		return 0
	}
	return n
}

// toCount coerces a provider value into a non-negative integer count.
func toCount(v any) (int, string, string) {
	var f float64
	switch t := v.(type) {
	case int:
		return signed(int64(t))
	case int32:
		return signed(int64(t))
	case int64:
		return signed(t)
	case uint:
		return int(t), "", ""
	case uint32:
		return int(t), "", ""
	case uint64:
		if t > math.MaxInt32 {
			return 0, ReasonInvalid, "count out of range"
		}
		return int(t), "", ""
	case float32:
		f = float64(t)
	case float64:
		f = t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return signed(i)
		}
		parsed, err := t.Float64()
		if err != nil {
			return 0, ReasonNonNumeric, t.String()
		}
		f = parsed
	case string:
		s := strings.TrimSpace(t)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return signed(i)
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, ReasonNonNumeric, strconv.Quote(t)
		}
		f = parsed
	default:
		return 0, ReasonNonNumeric, fmt.Sprintf("%T", v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ReasonNonNumeric, strconv.FormatFloat(f, 'g', -1, 64)
	}
	if f != math.Trunc(f) {
		return 0, ReasonNonInteger, strconv.FormatFloat(f, 'g', -1, 64)
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, ReasonInvalid, "count out of range"
	}
	return signed(int64(f))
}

func signed(i int64) (int, string, string) {
	if i < 0 {
		return 0, ReasonNegative, strconv.FormatInt(i, 10)
	}
	if i > math.MaxInt32 {
		return 0, ReasonInvalid, "count out of range"
	}
	return int(i), "", ""
}

func (r *rowReader) done() error {
	if r.err != nil {
		return r.err
	}
	return nil
}

// DecodePair reads a bulk or single-pair row. Precomputed performance_rate
// and chemistry_score columns are ignored.
func DecodePair(row model.Row) (model.PairAggregate, error) {
	r := rowReader{cat: scoring.CategoryPair, row: row}
	agg := model.PairAggregate{
		Player1ID:      r.id(colPlayer1ID),
		Player1Name:    r.name(colPlayer1Name),
		Player2ID:      r.id(colPlayer2ID),
		Player2Name:    r.name(colPlayer2Name),
		GamesTogether:  r.count(colGamesTogether),
		WinsTogether:   r.count(colWinsTogether),
		DrawsTogether:  r.count(colDrawsTogether),
		LossesTogether: r.count(colLossesTogether),
	}
	return agg, r.done()
}

// DecodePartner reads one row of player's top-partners query.
func DecodePartner(player string, row model.Row) (model.PartnerAggregate, error) {
	r := rowReader{cat: scoring.CategoryPair, row: row}
	agg := model.PartnerAggregate{
		PlayerID:       player,
		PartnerID:      r.id(colPartnerID),
		PartnerName:    r.name(colPartnerName),
		GamesTogether:  r.count(colGamesTogether),
		WinsTogether:   r.count(colWinsTogether),
		DrawsTogether:  r.count(colDrawsTogether),
		LossesTogether: r.count(colLossesTogether),
	}
	return agg, r.done()
}

// DecodeRivalry reads a head-to-head row.
func DecodeRivalry(row model.Row) (model.RivalryAggregate, error) {
	r := rowReader{cat: scoring.CategoryRivalry, row: row}
	agg := model.RivalryAggregate{
		Player1ID:    r.id(colPlayer1ID),
		Player1Name:  r.name(colPlayer1Name),
		Player2ID:    r.id(colPlayer2ID),
		Player2Name:  r.name(colPlayer2Name),
		GamesAgainst: r.count(colGamesAgainst),
		Player1Wins:  r.count(colPlayer1Wins),
		Player2Wins:  r.count(colPlayer2Wins),
		Draws:        r.count(colDraws),
	}
	return agg, r.done()
}

// DecodeTrio reads a trio row.
func DecodeTrio(row model.Row) (model.TrioAggregate, error) {
	r := rowReader{cat: scoring.CategoryTrio, row: row}
	agg := model.TrioAggregate{
		Player1ID:     r.id(colPlayer1ID),
		Player1Name:   r.name(colPlayer1Name),
		Player2ID:     r.id(colPlayer2ID),
		Player2Name:   r.name(colPlayer2Name),
		Player3ID:     r.id(colPlayer3ID),
		Player3Name:   r.name(colPlayer3Name),
		GamesTogether: r.count(colGamesTogether),
		Wins:          r.count(colWins),
		Draws:         r.count(colDraws),
		Losses:        r.count(colLosses),
	}
	return agg, r.done()
}

// DecodeTeamPlacement reads a team-placement row.
func DecodeTeamPlacement(row model.Row) (model.TeamPlacementAggregate, error) {
	r := rowReader{cat: scoring.CategoryTeamPlacement, row: row}
	agg := model.TeamPlacementAggregate{
		Player1ID:     r.id(colPlayer1ID),
		Player1Name:   r.name(colPlayer1Name),
		Player2ID:     r.id(colPlayer2ID),
		Player2Name:   r.name(colPlayer2Name),
		TotalGames:    r.count(colTotalGames),
		GamesTogether: r.count(colGamesTogether),
		GamesAgainst:  r.count(colGamesAgainst),
	}
	return agg, r.done()
}
