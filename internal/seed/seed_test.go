package seed_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/rapport/internal/adapters/provider"
	"github.com/okian/rapport/internal/domain/scoring"
	"github.com/okian/rapport/internal/domain/transform"
	"github.com/okian/rapport/internal/seed"
)

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	Convey("Given a seeded generator", t, func() {
		cfg := seed.Config{Players: 8, MaxGames: 30, Seed: 42}
		ds, err := seed.Generate(ctx, cfg)
		So(err, ShouldBeNil)

		Convey("Then every pair of players has rows", func() {
			So(len(ds.Players), ShouldEqual, 8)
			So(len(ds.Pairs), ShouldEqual, 28)
			So(len(ds.Rivalries), ShouldEqual, 28)
			So(len(ds.TeamPlacements), ShouldEqual, 28)
		})

		Convey("And every row transforms without rejection", func() {
			pairs, err := transform.Batch(ctx, scoring.CategoryPair, ds.Pairs, transform.PairRow)
			So(err, ShouldBeNil)
			So(pairs.Rejected, ShouldBeEmpty)

			rivals, _ := transform.Batch(ctx, scoring.CategoryRivalry, ds.Rivalries, transform.RivalryRow)
			So(rivals.Rejected, ShouldBeEmpty)

			trios, _ := transform.Batch(ctx, scoring.CategoryTrio, ds.Trios, transform.TrioRow)
			So(trios.Rejected, ShouldBeEmpty)

			places, _ := transform.Batch(ctx, scoring.CategoryTeamPlacement, ds.TeamPlacements, transform.TeamPlacementRow)
			So(places.Rejected, ShouldBeEmpty)
		})

		Convey("And the same seed gives the same dataset", func() {
			again, err := seed.Generate(ctx, cfg)
			So(err, ShouldBeNil)
			So(again, ShouldResemble, ds)
		})

		Convey("And a different seed gives different players", func() {
			other, err := seed.Generate(ctx, seed.Config{Players: 8, MaxGames: 30, Seed: 7})
			So(err, ShouldBeNil)
			So(other.Pairs[0]["player1_id"], ShouldNotEqual, ds.Pairs[0]["player1_id"])
		})
	})

	Convey("Given an empty config", t, func() {
		ds, err := seed.Generate(ctx, seed.Config{})

		Convey("Then defaults are applied", func() {
			So(err, ShouldBeNil)
			So(len(ds.Players), ShouldEqual, 12)
		})
	})

	Convey("Given a cancelled context", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := seed.Generate(cctx, seed.Config{})
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}

func TestWriteFile(t *testing.T) {
	Convey("Given a dataset written to disk", t, func() {
		path := filepath.Join(t.TempDir(), "dataset.yaml")
		So(seed.WriteFile(context.Background(), path, seed.Config{Players: 5, Seed: 1}), ShouldBeNil)

		Convey("Then the file provider can serve it", func() {
			p, err := provider.NewFileProvider(path)
			So(err, ShouldBeNil)
			rows, err := p.PairRows(context.Background())
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 10)
			So(rows[0]["player1_name"], ShouldStartWith, "Player ")
		})
	})

	Convey("Given Write into a buffer", t, func() {
		var buf bytes.Buffer
		So(seed.Write(context.Background(), &buf, seed.Config{Players: 3, Seed: 9}), ShouldBeNil)
		So(buf.String(), ShouldContainSubstring, "team_placements:")
	})
}
