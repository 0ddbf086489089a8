// Package provider reads precomputed relationship aggregates from the
// aggregation backend. Providers return raw rows; scoring happens in package
// transform.
package provider

import (
	"context"
	"time"

	"github.com/okian/rapport/internal/domain/model"
	"github.com/okian/rapport/pkg/metrics"
)

// Query names, also used as metric labels and RPC function names.
const (
	QueryAllPairs       = "get_all_pair_chemistry"
	QueryPair           = "get_pair_chemistry"
	QueryTopPartners    = "get_player_top_partners"
	QueryAllRivalries   = "get_all_rivalries"
	QueryAllTrios       = "get_all_trio_chemistry"
	QueryTeamPlacements = "get_team_placement_stats"
)

// Provider supplies aggregate rows. Bulk queries span the whole player pool
// in one call.
type Provider interface {
	// PairRows returns every same-team pair aggregate.
	PairRows(ctx context.Context) ([]model.Row, error)
	// PairRow returns the aggregate for one pair in either order.
	// Returns ErrNotFound if the pair never played together.
	PairRow(ctx context.Context, a, b string) (model.Row, error)
	// PartnerRows returns one row per teammate of player.
	PartnerRows(ctx context.Context, player string) ([]model.Row, error)
	// RivalryRows returns every head-to-head aggregate.
	RivalryRows(ctx context.Context) ([]model.Row, error)
	// TrioRows returns every same-team trio aggregate.
	TrioRows(ctx context.Context) ([]model.Row, error)
	// TeamPlacementRows returns every team-placement aggregate.
	TeamPlacementRows(ctx context.Context) ([]model.Row, error)
}

// observe records latency for a query and counts it as failed when err is set.
func observe(query string, start time.Time, err error) {
	metrics.RecordProviderFetch(query, float64(time.Since(start).Microseconds())/1000.0)
	if err != nil {
		metrics.RecordProviderError(query)
	}
}
