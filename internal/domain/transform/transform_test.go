package transform_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/rapport/internal/domain/model"
	"github.com/okian/rapport/internal/domain/scoring"
	"github.com/okian/rapport/internal/domain/transform"
)

func pairRow(a, b any, games, wins, draws, losses any) model.Row {
	return model.Row{
		"player1_id":      a,
		"player2_id":      b,
		"games_together":  games,
		"wins_together":   wins,
		"draws_together":  draws,
		"losses_together": losses,
	}
}

func reasonOf(err error) string { return transform.Reason(err) }

func TestPairRow(t *testing.T) {
	Convey("Given a pair row with 7-1-2 over 10 games", t, func() {
		row := pairRow("p-b", "p-a", 10, 7, 1, 2)

		Convey("When the provider also sent legacy precomputed columns", func() {
			row["performance_rate"] = 70.0
			row["chemistry_score"] = 99.0
			rec, err := transform.PairRow(row)

			Convey("Then scores are recomputed from the counts", func() {
				So(err, ShouldBeNil)
				So(rec.PerformanceRate, ShouldAlmostEqual, 73.33, 0.01)
				So(rec.ConfidenceFactor, ShouldEqual, 0.5)
				So(rec.ChemistryScore, ShouldAlmostEqual, 36.67, 0.01)
				So(rec.CurseScore, ShouldAlmostEqual, 13.33, 0.01)
				So(rec.ChemistryScore+rec.CurseScore, ShouldAlmostEqual, 100*rec.ConfidenceFactor, 1e-9)
				So(rec.Key(), ShouldEqual, "p-a|p-b")
				So(rec.GamesTogether, ShouldEqual, 10)
			})
		})

		Convey("When numbers arrive as text", func() {
			rec, err := transform.PairRow(pairRow("p-a", "p-b", "10", " 7 ", json.Number("1"), "2.0"))

			Convey("Then they are coerced", func() {
				So(err, ShouldBeNil)
				So(rec.WinsTogether, ShouldEqual, 7)
				So(rec.DrawsTogether, ShouldEqual, 1)
				So(rec.LossesTogether, ShouldEqual, 2)
				So(rec.ChemistryScore, ShouldAlmostEqual, 36.67, 0.01)
			})
		})

		Convey("When ids are numeric", func() {
			rec, err := transform.PairRow(pairRow(12, json.Number("7"), 10, 7, 1, 2))
			So(err, ShouldBeNil)
			So(rec.Key(), ShouldEqual, "12|7")
		})
	})

	Convey("Given a brand-new pair with no games", t, func() {
		rec, err := transform.PairRow(pairRow("a", "b", 0, 0, 0, 0))

		Convey("Then every score is zero and nothing is NaN", func() {
			So(err, ShouldBeNil)
			So(rec.PerformanceRate, ShouldEqual, 0.0)
			So(rec.ChemistryScore, ShouldEqual, 0.0)
			So(rec.CurseScore, ShouldEqual, 0.0)
			So(math.IsNaN(rec.ChemistryScore), ShouldBeFalse)
		})
	})
}

func TestPairValidation(t *testing.T) {
	Convey("Given corrupt pair rows", t, func() {
		cases := []struct {
			name   string
			row    model.Row
			field  string
			reason string
		}{
			{"negative count", pairRow("a", "b", 5, -1, 0, 0), "wins_together", transform.ReasonNegative},
			{"fractional count", pairRow("a", "b", 5, 2.5, 0, 0), "wins_together", transform.ReasonNonInteger},
			{"fractional text", pairRow("a", "b", "5.5", 2, 0, 0), "games_together", transform.ReasonNonInteger},
			{"non-numeric text", pairRow("a", "b", "ten", 2, 0, 0), "games_together", transform.ReasonNonNumeric},
			{"non-numeric type", pairRow("a", "b", true, 2, 0, 0), "games_together", transform.ReasonNonNumeric},
			{"NaN", pairRow("a", "b", math.NaN(), 2, 0, 0), "games_together", transform.ReasonNonNumeric},
			{"results exceed games", pairRow("a", "b", 5, 3, 2, 1), "games_together", transform.ReasonResultsExceedGames},
			{"missing column", model.Row{"player1_id": "a", "player2_id": "b", "games_together": 1}, "wins_together", transform.ReasonMissing},
			{"missing id", pairRow("", "b", 1, 1, 0, 0), "player1_id", transform.ReasonMissing},
			{"same player twice", pairRow("a", "a", 1, 1, 0, 0), "player2_id", transform.ReasonSamePlayer},
			{"separator in an id", pairRow("a|b", "c", 1, 1, 0, 0), "player1_id", transform.ReasonReservedSeparator},
			{"fractional id", pairRow(1.5, "b", 1, 1, 0, 0), "player1_id", transform.ReasonInvalid},
		}

		for _, tc := range cases {
			Convey("When the row has a "+tc.name, func() {
				_, err := transform.PairRow(tc.row)

				Convey("Then it fails validation on "+tc.field, func() {
					So(err, ShouldNotBeNil)
					So(errors.Is(err, transform.ErrInvalidAggregate), ShouldBeTrue)

					var ve *transform.ValidationError
					So(errors.As(err, &ve), ShouldBeTrue)
					So(ve.Field, ShouldEqual, tc.field)
					So(ve.Reason, ShouldEqual, tc.reason)
					So(ve.Category, ShouldEqual, scoring.CategoryPair)
				})
			})
		}
	})

	Convey("Given ids that would collide once joined", t, func() {
		_, errLeft := transform.PairRow(pairRow("a|b", "c", 1, 1, 0, 0))
		_, errRight := transform.PairRow(pairRow("a", "b|c", 1, 1, 0, 0))

		Convey("Then both rows are rejected instead of sharing key a|b|c", func() {
			So(reasonOf(errLeft), ShouldEqual, transform.ReasonReservedSeparator)
			So(reasonOf(errRight), ShouldEqual, transform.ReasonReservedSeparator)
		})

		Convey("And trio rows are held to the same rule", func() {
			_, err := transform.TrioRow(model.Row{
				"player1_id": "a", "player2_id": "b", "player3_id": "c|d",
				"games_together": 3, "wins": 1, "draws": 1, "losses": 1,
			})
			So(reasonOf(err), ShouldEqual, transform.ReasonReservedSeparator)
		})
	})

	Convey("Given results that leave games unaccounted for", t, func() {
		_, err := transform.PairRow(pairRow("a", "b", 10, 3, 2, 1))

		Convey("Then the row is accepted", func() {
			So(err, ShouldBeNil)
		})
	})
}

func TestRivalry(t *testing.T) {
	Convey("Given a 5-0 head-to-head sweep", t, func() {
		rec, err := transform.RivalryRow(model.Row{
			"player1_id": "p1", "player2_id": "p2",
			"games_against": 5, "player1_wins": 5, "player2_wins": 0, "draws": 0,
		})

		Convey("Then player 1 dominates with half confidence", func() {
			So(err, ShouldBeNil)
			So(rec.PerformanceRate, ShouldEqual, 100.0)
			So(rec.DominanceScore, ShouldEqual, 50.0)
			So(rec.ConfidenceFactor, ShouldEqual, 0.5)
			So(rec.RivalryScore, ShouldEqual, 25.0)
			So(rec.Leader(), ShouldEqual, "p1")
		})
	})

	Convey("Given a rivalry with no games", t, func() {
		rec, err := transform.Rivalry(model.RivalryAggregate{Player1ID: "p1", Player2ID: "p2"})

		Convey("Then the matchup is neutral", func() {
			So(err, ShouldBeNil)
			So(rec.PerformanceRate, ShouldEqual, 50.0)
			So(rec.DominanceScore, ShouldEqual, 0.0)
			So(rec.RivalryScore, ShouldEqual, 0.0)
			So(rec.Leader(), ShouldEqual, "")
		})
	})

	Convey("Given more results than games", t, func() {
		_, err := transform.Rivalry(model.RivalryAggregate{Player1ID: "p1", Player2ID: "p2", GamesAgainst: 2, Player1Wins: 2, Player2Wins: 1})
		So(reasonOf(err), ShouldEqual, transform.ReasonResultsExceedGames)
	})
}

func TestTrio(t *testing.T) {
	Convey("Given a trio that won 2 of 3", t, func() {
		rec, err := transform.TrioRow(model.Row{
			"player1_id": "c", "player2_id": "a", "player3_id": "b",
			"games_together": 3, "wins": 2, "draws": 0, "losses": 1,
		})

		Convey("Then it is scored with the trio constant", func() {
			So(err, ShouldBeNil)
			So(rec.Key(), ShouldEqual, "a|b|c")
			So(rec.PerformanceRate, ShouldAlmostEqual, 66.667, 0.001)
			So(rec.ConfidenceFactor, ShouldEqual, 0.5)
			So(rec.TrioScore, ShouldAlmostEqual, 33.333, 0.001)
			So(rec.CurseScore, ShouldAlmostEqual, 16.667, 0.001)
		})
	})

	Convey("Given a trio with no games", t, func() {
		rec, err := transform.Trio(model.TrioAggregate{Player1ID: "a", Player2ID: "b", Player3ID: "c"})
		So(err, ShouldBeNil)
		So(rec.PerformanceRate, ShouldEqual, 0.0)
		So(rec.TrioScore, ShouldEqual, 0.0)
		So(rec.CurseScore, ShouldEqual, 0.0)
	})

	Convey("Given a trio naming a player twice", t, func() {
		_, err := transform.Trio(model.TrioAggregate{Player1ID: "a", Player2ID: "b", Player3ID: "a"})
		So(reasonOf(err), ShouldEqual, transform.ReasonSamePlayer)
	})
}

func TestTeamPlacement(t *testing.T) {
	Convey("Given two players who shared 9 of 12 games", t, func() {
		rec, err := transform.TeamPlacementRow(model.Row{
			"player1_id": "a", "player2_id": "b",
			"total_games": "12", "games_together": 9, "games_against": 3,
		})

		Convey("Then the rates split 75/25", func() {
			So(err, ShouldBeNil)
			So(rec.TogetherRate, ShouldEqual, 75.0)
			So(rec.AgainstRate, ShouldEqual, 25.0)
			So(rec.TogetherRate+rec.AgainstRate, ShouldEqual, 100.0)
		})
	})

	Convey("Given a placement row with more splits than games", t, func() {
		_, err := transform.TeamPlacement(model.TeamPlacementAggregate{Player1ID: "a", Player2ID: "b", TotalGames: 3, GamesTogether: 3, GamesAgainst: 1})
		So(reasonOf(err), ShouldEqual, transform.ReasonResultsExceedGames)
	})

	Convey("Given no shared games", t, func() {
		rec, err := transform.TeamPlacement(model.TeamPlacementAggregate{Player1ID: "a", Player2ID: "b"})
		So(err, ShouldBeNil)
		So(rec.TogetherRate, ShouldEqual, 0.0)
		So(rec.AgainstRate, ShouldEqual, 0.0)
	})
}

func TestPartnerRows(t *testing.T) {
	Convey("Given a top-partners row for a player", t, func() {
		fn := transform.PartnerRows("me")
		rec, err := fn(model.Row{
			"partner_id": "you", "partner_name": "You",
			"games_together": 20, "wins_together": 10, "draws_together": 5, "losses_together": 5,
		})

		Convey("Then it is scored like a pair keyed on both players", func() {
			So(err, ShouldBeNil)
			So(rec.Key(), ShouldEqual, "me|you")
			So(rec.PartnerName, ShouldEqual, "You")
			So(rec.PerformanceRate, ShouldAlmostEqual, 58.333, 0.001)
			So(rec.ConfidenceFactor, ShouldAlmostEqual, 0.6667, 0.0001)
		})
	})
}

func TestBatch(t *testing.T) {
	Convey("Given a batch with one corrupt row in the middle", t, func() {
		rows := []model.Row{
			pairRow("a", "b", 10, 7, 1, 2),
			pairRow("a", "c", 3, 5, 0, 0),
			pairRow("b", "c", 4, 1, 1, 2),
		}

		Convey("When it is transformed", func() {
			res, err := transform.Batch(context.Background(), scoring.CategoryPair, rows, transform.PairRow, transform.WithChunkSize(1))

			Convey("Then only the corrupt row is skipped and order is kept", func() {
				So(err, ShouldBeNil)
				So(len(res.Records), ShouldEqual, 2)
				So(res.Records[0].Key(), ShouldEqual, "a|b")
				So(res.Records[1].Key(), ShouldEqual, "b|c")
				So(len(res.Rejected), ShouldEqual, 1)
				So(res.Rejected[0].Index, ShouldEqual, 1)
				So(reasonOf(res.Rejected[0].Err), ShouldEqual, transform.ReasonResultsExceedGames)
			})
		})
	})

	Convey("Given a large batch", t, func() {
		rows := make([]model.Row, 0, 2000)
		for i := 0; i < 2000; i++ {
			g := i % 40
			rows = append(rows, pairRow(fmt.Sprintf("p%04d", i), fmt.Sprintf("q%04d", i), g, g/2, g/4, g-g/2-g/4))
		}

		Convey("Then the parallel map equals a sequential map", func() {
			res, err := transform.Batch(context.Background(), scoring.CategoryPair, rows, transform.PairRow, transform.WithWorkers(8), transform.WithChunkSize(17))
			So(err, ShouldBeNil)
			So(res.Rejected, ShouldBeEmpty)

			want := make([]model.PairChemistry, 0, len(rows))
			for _, r := range rows {
				rec, err := transform.PairRow(r)
				So(err, ShouldBeNil)
				want = append(want, rec)
			}
			So(cmp.Diff(want, res.Records, cmpopts.EquateApprox(0, 1e-12)), ShouldBeEmpty)
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := transform.Batch(ctx, scoring.CategoryTrio, []model.Row{{}}, transform.TrioRow)

		Convey("Then the batch reports the cancellation", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})

	Convey("Given an empty batch", t, func() {
		res, err := transform.Batch(context.Background(), scoring.CategoryRivalry, nil, transform.RivalryRow)
		So(err, ShouldBeNil)
		So(res.Records, ShouldBeEmpty)
		So(res.Rejected, ShouldBeEmpty)
	})
}
