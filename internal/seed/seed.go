// Package seed generates synthetic aggregation datasets for local runs and
// load tests. Every generated row satisfies the aggregate invariants, so a
// seeded dataset scores without rejections.
package seed

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/google/uuid"

	"github.com/okian/rapport/internal/adapters/provider"
	"github.com/okian/rapport/internal/domain/model"
	"github.com/okian/rapport/pkg/logger"
)

// Default generation parameters.
const (
	defaultPlayers  = 12
	defaultMaxGames = 40
	minPlayers      = 3
)

// Config controls the generated dataset.
type Config struct {
	// Players is the size of the player pool.
	Players int
	// MaxGames bounds the games any two players shared.
	MaxGames int
	// Seed makes generation reproducible. Equal seeds give equal datasets.
	Seed uint64
}

func (c Config) withDefaults() Config {
	if c.Players < minPlayers {
		c.Players = defaultPlayers
	}
	if c.MaxGames < 1 {
		c.MaxGames = defaultMaxGames
	}
	return c
}

type player struct {
	id   string
	name string
}

// Generate builds a dataset over a pool of players. For every pair it draws
// the shared games, splits them into together and against, and splits each
// side into results. Trios never exceed the games their pairs shared.
func Generate(ctx context.Context, cfg Config) (provider.Dataset, error) {
	cfg = cfg.withDefaults()

	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], cfg.Seed)
	src := rand.NewChaCha8(key)
	rng := rand.New(src)

	players := make([]player, cfg.Players)
	for i := range players {
		id, err := uuid.NewRandomFromReader(src)
		if err != nil {
			return provider.Dataset{}, fmt.Errorf("generate player id: %w", err)
		}
		players[i] = player{id: id.String(), name: fmt.Sprintf("Player %02d", i+1)}
	}

	ds := provider.Dataset{Players: make(map[string]string, len(players))}
	for _, p := range players {
		ds.Players[p.id] = p.name
	}

	n := len(players)
	together := make([][]int, n)
	for i := range together {
		together[i] = make([]int, n)
	}

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return provider.Dataset{}, err
		}
		for j := i + 1; j < n; j++ {
			a, b := players[i], players[j]
			total := rng.IntN(cfg.MaxGames + 1)
			with := rng.IntN(total + 1)
			against := total - with
			together[i][j], together[j][i] = with, with

			w, d, l := split(rng, with)
			ds.Pairs = append(ds.Pairs, model.Row{
				"player1_id": a.id, "player2_id": b.id,
				"games_together": with, "wins_together": w, "draws_together": d, "losses_together": l,
			})

			p1, dr, p2 := split(rng, against)
			ds.Rivalries = append(ds.Rivalries, model.Row{
				"player1_id": a.id, "player2_id": b.id,
				"games_against": against, "player1_wins": p1, "player2_wins": p2, "draws": dr,
			})

			ds.TeamPlacements = append(ds.TeamPlacements, model.Row{
				"player1_id": a.id, "player2_id": b.id,
				"total_games": total, "games_together": with, "games_against": against,
			})
		}
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				limit := min(together[i][j], together[i][k], together[j][k])
				if limit == 0 {
					continue
				}
				games := rng.IntN(limit + 1)
				if games == 0 {
					continue
				}
				w, d, l := split(rng, games)
				ds.Trios = append(ds.Trios, model.Row{
					"player1_id": players[i].id, "player2_id": players[j].id, "player3_id": players[k].id,
					"games_together": games, "wins": w, "draws": d, "losses": l,
				})
			}
		}
	}

	logger.GetOrNop().Named("seed").Info(ctx, "dataset generated",
		logger.Int("players", n),
		logger.Int("pairs", len(ds.Pairs)),
		logger.Int("trios", len(ds.Trios)),
	)
	return ds, nil
}

// split divides games into three non-negative counts that sum to games.
func split(rng *rand.Rand, games int) (int, int, int) {
	first := rng.IntN(games + 1)
	second := rng.IntN(games - first + 1)
	return first, second, games - first - second
}

// Write generates a dataset and encodes it as YAML to w.
func Write(ctx context.Context, w io.Writer, cfg Config) error {
	ds, err := Generate(ctx, cfg)
	if err != nil {
		return err
	}
	return provider.EncodeDataset(w, ds)
}

// WriteFile generates a dataset into path.
func WriteFile(ctx context.Context, path string, cfg Config) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return Write(ctx, f, cfg)
}
