// Package transform turns raw aggregate rows into scored records.
//
// One function per category. Each validates its aggregate, computes the
// category's metrics with package scoring, and returns a record that carries
// both the original counts and the derived scores. Functions work on a single
// row and touch no shared state, so a batch is a plain element-wise map (see
// Batch).
package transform

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/okian/rapport/internal/domain/model"
	"github.com/okian/rapport/internal/domain/scoring"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report provider column names rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// check runs struct-tag validation and maps the first failure.
func check(c scoring.Category, agg any) error {
	err := validate.Struct(agg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return invalid(c, "", ReasonInvalid, err.Error())
	}
	fe := fieldErrs[0]
	reason := ReasonInvalid
	switch fe.Tag() {
	case "required":
		reason = ReasonMissing
	case "gte":
		reason = ReasonNegative
	case "nefield":
		reason = ReasonSamePlayer
	}
	return invalid(c, fe.Field(), reason, fmt.Sprintf("%v", fe.Value()))
}

// checkResults rejects rows whose results add up to more than the games played.
func checkResults(c scoring.Category, gamesField string, games int, results ...int) error {
	sum := 0
	for _, n := range results {
		sum += n
	}
	if sum > games {
		return invalid(c, gamesField, ReasonResultsExceedGames, fmt.Sprintf("%d results over %d games", sum, games))
	}
	return nil
}

// teamScores holds the shared pair/trio computation.
type teamScores struct {
	rate, confidence, chemistry, curse float64
}

func scoreTeam(c scoring.Category, games, wins, draws int) teamScores {
	rate := scoring.PerformanceRate(games, wins, draws, scoring.ZeroGamesRate(c))
	conf := scoring.ConfidenceFactor(games, scoring.K(c))
	return teamScores{
		rate:       rate,
		confidence: conf,
		chemistry:  scoring.Chemistry(rate, conf),
		curse:      scoring.Curse(rate, conf),
	}
}

// Pair scores a same-team pair aggregate.
func Pair(agg model.PairAggregate) (model.PairChemistry, error) {
	const c = scoring.CategoryPair
	if err := check(c, agg); err != nil {
		return model.PairChemistry{}, err
	}
	if err := checkResults(c, colGamesTogether, agg.GamesTogether, agg.WinsTogether, agg.DrawsTogether, agg.LossesTogether); err != nil {
		return model.PairChemistry{}, err
	}
	s := scoreTeam(c, agg.GamesTogether, agg.WinsTogether, agg.DrawsTogether)
	return model.PairChemistry{
		PairAggregate:    agg,
		PerformanceRate:  s.rate,
		ConfidenceFactor: s.confidence,
		ChemistryScore:   s.chemistry,
		CurseScore:       s.curse,
	}, nil
}

// Partner scores one row of a top-partners query with pair constants.
func Partner(agg model.PartnerAggregate) (model.PartnerChemistry, error) {
	const c = scoring.CategoryPair
	if err := check(c, agg); err != nil {
		return model.PartnerChemistry{}, err
	}
	if err := checkResults(c, colGamesTogether, agg.GamesTogether, agg.WinsTogether, agg.DrawsTogether, agg.LossesTogether); err != nil {
		return model.PartnerChemistry{}, err
	}
	s := scoreTeam(c, agg.GamesTogether, agg.WinsTogether, agg.DrawsTogether)
	return model.PartnerChemistry{
		PartnerAggregate: agg,
		PerformanceRate:  s.rate,
		ConfidenceFactor: s.confidence,
		ChemistryScore:   s.chemistry,
		CurseScore:       s.curse,
	}, nil
}

// Rivalry scores a head-to-head aggregate from player 1's side.
func Rivalry(agg model.RivalryAggregate) (model.RivalryRecord, error) {
	const c = scoring.CategoryRivalry
	if err := check(c, agg); err != nil {
		return model.RivalryRecord{}, err
	}
	if err := checkResults(c, colGamesAgainst, agg.GamesAgainst, agg.Player1Wins, agg.Player2Wins, agg.Draws); err != nil {
		return model.RivalryRecord{}, err
	}
	rate := scoring.PerformanceRate(agg.GamesAgainst, agg.Player1Wins, agg.Draws, scoring.ZeroGamesRate(c))
	conf := scoring.ConfidenceFactor(agg.GamesAgainst, scoring.RivalryK)
	dom := scoring.Dominance(rate)
	return model.RivalryRecord{
		RivalryAggregate: agg,
		PerformanceRate:  rate,
		ConfidenceFactor: conf,
		DominanceScore:   dom,
		RivalryScore:     scoring.RivalryScore(dom, conf),
	}, nil
}

// Trio scores a same-team trio aggregate.
func Trio(agg model.TrioAggregate) (model.TrioRecord, error) {
	const c = scoring.CategoryTrio
	if err := check(c, agg); err != nil {
		return model.TrioRecord{}, err
	}
	if err := checkResults(c, colGamesTogether, agg.GamesTogether, agg.Wins, agg.Draws, agg.Losses); err != nil {
		return model.TrioRecord{}, err
	}
	s := scoreTeam(c, agg.GamesTogether, agg.Wins, agg.Draws)
	return model.TrioRecord{
		TrioAggregate:    agg,
		PerformanceRate:  s.rate,
		ConfidenceFactor: s.confidence,
		TrioScore:        s.chemistry,
		CurseScore:       s.curse,
	}, nil
}

// TeamPlacement computes how often two players shared a team.
func TeamPlacement(agg model.TeamPlacementAggregate) (model.TeamPlacementRecord, error) {
	const c = scoring.CategoryTeamPlacement
	if err := check(c, agg); err != nil {
		return model.TeamPlacementRecord{}, err
	}
	if err := checkResults(c, colTotalGames, agg.TotalGames, agg.GamesTogether, agg.GamesAgainst); err != nil {
		return model.TeamPlacementRecord{}, err
	}
	return model.TeamPlacementRecord{
		TeamPlacementAggregate: agg,
		TogetherRate:           scoring.Share(agg.GamesTogether, agg.TotalGames),
		AgainstRate:            scoring.Share(agg.GamesAgainst, agg.TotalGames),
	}, nil
}

// Row-level entry points: decode then score.

// PairRow decodes and scores a pair row.
func PairRow(row model.Row) (model.PairChemistry, error) {
	agg, err := DecodePair(row)
	if err != nil {
		return model.PairChemistry{}, err
	}
	return Pair(agg)
}

// PartnerRows returns a row function scoring player's top-partner rows.
func PartnerRows(player string) func(model.Row) (model.PartnerChemistry, error) {
	return func(row model.Row) (model.PartnerChemistry, error) {
		agg, err := DecodePartner(player, row)
		if err != nil {
			return model.PartnerChemistry{}, err
		}
		return Partner(agg)
	}
}

// RivalryRow decodes and scores a rivalry row.
func RivalryRow(row model.Row) (model.RivalryRecord, error) {
	agg, err := DecodeRivalry(row)
	if err != nil {
		return model.RivalryRecord{}, err
	}
	return Rivalry(agg)
}

// TrioRow decodes and scores a trio row.
func TrioRow(row model.Row) (model.TrioRecord, error) {
	agg, err := DecodeTrio(row)
	if err != nil {
		return model.TrioRecord{}, err
	}
	return Trio(agg)
}

// TeamPlacementRow decodes and scores a team-placement row.
func TeamPlacementRow(row model.Row) (model.TeamPlacementRecord, error) {
	agg, err := DecodeTeamPlacement(row)
	if err != nil {
		return model.TeamPlacementRecord{}, err
	}
	return TeamPlacement(agg)
}
