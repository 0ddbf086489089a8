package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/rapport/internal/domain/model"
	"github.com/okian/rapport/internal/domain/pairkey"
)

// Dataset is the on-disk form of the aggregation backend's output.
type Dataset struct {
	// Players maps player id to display name. Rows without names are
	// filled from it.
	Players        map[string]string `json:"players,omitempty" yaml:"players,omitempty"`
	Pairs          []model.Row       `json:"pairs" yaml:"pairs"`
	Rivalries      []model.Row       `json:"rivalries" yaml:"rivalries"`
	Trios          []model.Row       `json:"trios" yaml:"trios"`
	TeamPlacements []model.Row       `json:"team_placements" yaml:"team_placements"`
}

// DecodeDataset reads a dataset. JSON input keeps numbers as json.Number;
// anything else is parsed as YAML.
func DecodeDataset(r io.Reader, format string) (Dataset, error) {
	var ds Dataset
	switch strings.ToLower(format) {
	case "json", ".json":
		dec := json.NewDecoder(r)
		dec.UseNumber()
		if err := dec.Decode(&ds); err != nil {
			return Dataset{}, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
		}
	default:
		if err := yaml.NewDecoder(r).Decode(&ds); err != nil && err != io.EOF {
			return Dataset{}, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
		}
	}
	ds.fillNames()
	return ds, nil
}

// EncodeDataset writes ds as YAML.
func EncodeDataset(w io.Writer, ds Dataset) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(ds); err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	return enc.Close()
}

func (ds *Dataset) fillNames() {
	if len(ds.Players) == 0 {
		return
	}
	fill := func(rows []model.Row, cols ...[2]string) {
		for _, row := range rows {
			for _, c := range cols {
				if _, ok := row[c[1]]; ok {
					continue
				}
				if id, ok := pairkey.ID(row[c[0]]); ok {
					if name, ok := ds.Players[id]; ok {
						row[c[1]] = name
					}
				}
			}
		}
	}
	p1 := [2]string{"player1_id", "player1_name"}
	p2 := [2]string{"player2_id", "player2_name"}
	p3 := [2]string{"player3_id", "player3_name"}
	fill(ds.Pairs, p1, p2)
	fill(ds.Rivalries, p1, p2)
	fill(ds.Trios, p1, p2, p3)
	fill(ds.TeamPlacements, p1, p2)
}

// FileProvider serves a dataset loaded once into memory.
type FileProvider struct {
	ds    Dataset
	pairs map[string]model.Row
}

// NewFileProvider loads the dataset at path. The format follows the file
// extension.
func NewFileProvider(path string) (*FileProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	ds, err := DecodeDataset(bytes.NewReader(data), filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", path, err)
	}
	return NewDatasetProvider(ds), nil
}

// NewDatasetProvider serves an in-memory dataset. Ids are matched by their
// normalised text, so numeric ids in the file answer string queries.
func NewDatasetProvider(ds Dataset) *FileProvider {
	p := &FileProvider{ds: ds, pairs: make(map[string]model.Row, len(ds.Pairs))}
	for _, row := range ds.Pairs {
		a, okA := pairkey.ID(row["player1_id"])
		b, okB := pairkey.ID(row["player2_id"])
		if !okA || !okB {
			continue
		}
		p.pairs[pairkey.Pair(a, b)] = row
	}
	return p
}

func cloneRows(rows []model.Row) []model.Row {
	out := make([]model.Row, len(rows))
	for i, r := range rows {
		out[i] = maps.Clone(r)
	}
	return out
}

// PairRows implements Provider.
func (p *FileProvider) PairRows(ctx context.Context) ([]model.Row, error) {
	defer observe(QueryAllPairs, time.Now(), nil)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cloneRows(p.ds.Pairs), nil
}

// PairRow implements Provider.
func (p *FileProvider) PairRow(ctx context.Context, a, b string) (model.Row, error) {
	defer observe(QueryPair, time.Now(), nil)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := pairkey.Pair(a, b)
	row, ok := p.pairs[key]
	if !ok {
		return nil, fmt.Errorf("%w: pair %s", ErrNotFound, key)
	}
	return maps.Clone(row), nil
}

// PartnerRows implements Provider. Each row is re-keyed from the player's
// side: partner_id, partner_name and the shared W/D/L counts.
func (p *FileProvider) PartnerRows(ctx context.Context, player string) ([]model.Row, error) {
	defer observe(QueryTopPartners, time.Now(), nil)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []model.Row
	for _, row := range p.ds.Pairs {
		a, _ := pairkey.ID(row["player1_id"])
		b, _ := pairkey.ID(row["player2_id"])
		var partner, name any
		switch player {
		case a:
			partner, name = row["player2_id"], row["player2_name"]
		case b:
			partner, name = row["player1_id"], row["player1_name"]
		default:
			continue
		}
		out = append(out, model.Row{
			"partner_id":      partner,
			"partner_name":    name,
			"games_together":  row["games_together"],
			"wins_together":   row["wins_together"],
			"draws_together":  row["draws_together"],
			"losses_together": row["losses_together"],
		})
	}
	return out, nil
}

// RivalryRows implements Provider.
func (p *FileProvider) RivalryRows(ctx context.Context) ([]model.Row, error) {
	defer observe(QueryAllRivalries, time.Now(), nil)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cloneRows(p.ds.Rivalries), nil
}

// TrioRows implements Provider.
func (p *FileProvider) TrioRows(ctx context.Context) ([]model.Row, error) {
	defer observe(QueryAllTrios, time.Now(), nil)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cloneRows(p.ds.Trios), nil
}

// TeamPlacementRows implements Provider.
func (p *FileProvider) TeamPlacementRows(ctx context.Context) ([]model.Row, error) {
	defer observe(QueryTeamPlacements, time.Now(), nil)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cloneRows(p.ds.TeamPlacements), nil
}
