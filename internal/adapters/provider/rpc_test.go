package provider_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/rapport/internal/adapters/provider"
	"github.com/okian/rapport/internal/domain/transform"
)

type capturedCall struct {
	path   string
	apikey string
	auth   string
	args   map[string]any
}

func newBackend(t *testing.T, status int, body string, calls *[]capturedCall) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var args map[string]any
		_ = json.Unmarshal(raw, &args)
		if calls != nil {
			*calls = append(*calls, capturedCall{
				path:   r.URL.Path,
				apikey: r.Header.Get("apikey"),
				auth:   r.Header.Get("Authorization"),
				args:   args,
			})
		}
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRPCProviderBulkPairs(t *testing.T) {
	var calls []capturedCall
	srv := newBackend(t, http.StatusOK, `[
		{"player1_id":"a","player2_id":"b","games_together":10,"wins_together":7,"draws_together":1,"losses_together":2,"chemistry_score":99.9},
		{"player1_id":"a","player2_id":"c","games_together":"4","wins_together":1,"draws_together":1,"losses_together":2}
	]`, &calls)

	p, err := provider.NewRPCProvider(srv.URL+"/", "secret", provider.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	rows, err := p.PairRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Len(t, calls, 1)
	assert.Equal(t, "/rest/v1/rpc/get_all_pair_chemistry", calls[0].path)
	assert.Equal(t, "secret", calls[0].apikey)
	assert.Equal(t, "Bearer secret", calls[0].auth)

	// Counts arrive as json.Number and decode without float rounding.
	assert.Equal(t, json.Number("10"), rows[0]["games_together"])

	rec, err := transform.PairRow(rows[0])
	require.NoError(t, err)
	assert.InDelta(t, 36.67, rec.ChemistryScore, 0.01)
}

func TestRPCProviderPairRow(t *testing.T) {
	var calls []capturedCall
	srv := newBackend(t, http.StatusOK, `[{"player1_id":"a","player2_id":"b","games_together":3,"wins_together":1,"draws_together":0,"losses_together":2}]`, &calls)

	p, err := provider.NewRPCProvider(srv.URL, "k", provider.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	row, err := p.PairRow(context.Background(), "b", "a")
	require.NoError(t, err)
	assert.Equal(t, "a", row["player1_id"])
	require.Len(t, calls, 1)
	assert.Equal(t, "/rest/v1/rpc/get_pair_chemistry", calls[0].path)
	assert.Equal(t, map[string]any{"p_player1_id": "b", "p_player2_id": "a"}, calls[0].args)
}

func TestRPCProviderPairRowNotFound(t *testing.T) {
	srv := newBackend(t, http.StatusOK, `[]`, nil)
	p, err := provider.NewRPCProvider(srv.URL, "", provider.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = p.PairRow(context.Background(), "a", "z")
	require.ErrorIs(t, err, provider.ErrNotFound)
}

func TestRPCProviderPartnerRows(t *testing.T) {
	var calls []capturedCall
	srv := newBackend(t, http.StatusOK, `[{"partner_id":"b","partner_name":"Bea","games_together":12,"wins_together":6,"draws_together":3,"losses_together":3}]`, &calls)
	p, err := provider.NewRPCProvider(srv.URL, "k", provider.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	rows, err := p.PartnerRows(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "/rest/v1/rpc/get_player_top_partners", calls[0].path)
	assert.Equal(t, "a", calls[0].args["p_player_id"])

	rec, err := transform.PartnerRows("a")(rows[0])
	require.NoError(t, err)
	assert.Equal(t, "a|b", rec.Key())
}

func TestRPCProviderEndpoints(t *testing.T) {
	cases := []struct {
		name string
		call func(*provider.RPCProvider) error
		path string
	}{
		{"rivalries", func(p *provider.RPCProvider) error { _, err := p.RivalryRows(context.Background()); return err }, "/rest/v1/rpc/get_all_rivalries"},
		{"trios", func(p *provider.RPCProvider) error { _, err := p.TrioRows(context.Background()); return err }, "/rest/v1/rpc/get_all_trio_chemistry"},
		{"placements", func(p *provider.RPCProvider) error { _, err := p.TeamPlacementRows(context.Background()); return err }, "/rest/v1/rpc/get_team_placement_stats"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var calls []capturedCall
			srv := newBackend(t, http.StatusOK, `[]`, &calls)
			p, err := provider.NewRPCProvider(srv.URL, "k", provider.WithHTTPClient(srv.Client()))
			require.NoError(t, err)

			require.NoError(t, tc.call(p))
			require.Len(t, calls, 1)
			assert.Equal(t, tc.path, calls[0].path)
			assert.Empty(t, calls[0].args)
		})
	}
}

func TestRPCProviderUpstreamError(t *testing.T) {
	srv := newBackend(t, http.StatusInternalServerError, `{"message":"boom"}`, nil)
	p, err := provider.NewRPCProvider(srv.URL, "k", provider.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = p.RivalryRows(context.Background())
	require.ErrorIs(t, err, provider.ErrUpstream)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "boom")
}

func TestRPCProviderMalformedBody(t *testing.T) {
	srv := newBackend(t, http.StatusOK, `{"not":"an array"}`, nil)
	p, err := provider.NewRPCProvider(srv.URL, "k", provider.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = p.TrioRows(context.Background())
	require.ErrorIs(t, err, provider.ErrUpstream)
}

func TestRPCProviderTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	p, err := provider.NewRPCProvider(srv.URL, "k",
		provider.WithHTTPClient(srv.Client()),
		provider.WithTimeout(50*time.Millisecond),
	)
	require.NoError(t, err)

	start := time.Now()
	_, err = p.PairRows(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestNewRPCProviderRequiresURL(t *testing.T) {
	_, err := provider.NewRPCProvider("", "k")
	require.Error(t, err)
}
