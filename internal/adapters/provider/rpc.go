package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/rapport/internal/domain/model"
	"github.com/okian/rapport/pkg/logger"
)

// Default RPC configuration constants.
const (
	defaultRPCTimeout = 10 * time.Second
	maxErrorBody      = 1 << 10
	rpcPath           = "/rest/v1/rpc/"
)

// RPCProvider calls the aggregation backend's stored procedures over HTTP.
// Each query is POST {base}/rest/v1/rpc/{function} with a JSON argument
// object and answers with a JSON array of row objects.
type RPCProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
	logger     logger.Logger
}

// RPCOption configures an RPCProvider.
type RPCOption func(*RPCProvider)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) RPCOption {
	return func(p *RPCProvider) {
		if c != nil {
			p.httpClient = c
		}
	}
}

// WithTimeout bounds every call.
func WithTimeout(d time.Duration) RPCOption {
	return func(p *RPCProvider) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger configures structured logging.
func WithLogger(l logger.Logger) RPCOption {
	return func(p *RPCProvider) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewRPCProvider creates a provider for the backend at baseURL. apiKey is
// sent both as the apikey header and as a bearer token.
func NewRPCProvider(baseURL, apiKey string, opts ...RPCOption) (*RPCProvider, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: base url is required", ErrUpstream)
	}
	p := &RPCProvider{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{},
		timeout:    defaultRPCTimeout,
		logger:     logger.GetOrNop().Named("provider"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// call runs one stored procedure and decodes its rows. Numbers are kept as
// json.Number so integer counts survive untouched.
func (p *RPCProvider) call(ctx context.Context, function string, args any) (rows []model.Row, err error) {
	defer func(start time.Time) { observe(function, start, err) }(time.Now())

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if args == nil {
		args = struct{}{}
	}
	body, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("%s: encode args: %w", function, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+rpcPath+function, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", function, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("apikey", p.apiKey)
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Error(ctx, "provider call failed", logger.String("function", function), logger.Error(err))
		return nil, fmt.Errorf("%s: do request: %w", function, err)
	}
	defer resp.Body.Close()

	p.logger.Debug(ctx, "provider response", logger.String("function", function), logger.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		p.logger.Warn(ctx, "provider returned error status",
			logger.String("function", function),
			logger.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: %s: status %d: %s", ErrUpstream, function, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: %s: decode response: %w", ErrUpstream, function, err)
	}
	return rows, nil
}

// PairRows implements Provider.
func (p *RPCProvider) PairRows(ctx context.Context) ([]model.Row, error) {
	return p.call(ctx, QueryAllPairs, nil)
}

// PairRow implements Provider.
func (p *RPCProvider) PairRow(ctx context.Context, a, b string) (model.Row, error) {
	rows, err := p.call(ctx, QueryPair, map[string]string{
		"p_player1_id": a,
		"p_player2_id": b,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: pair %s/%s", ErrNotFound, a, b)
	}
	return rows[0], nil
}

// PartnerRows implements Provider.
func (p *RPCProvider) PartnerRows(ctx context.Context, player string) ([]model.Row, error) {
	return p.call(ctx, QueryTopPartners, map[string]string{"p_player_id": player})
}

// RivalryRows implements Provider.
func (p *RPCProvider) RivalryRows(ctx context.Context) ([]model.Row, error) {
	return p.call(ctx, QueryAllRivalries, nil)
}

// TrioRows implements Provider.
func (p *RPCProvider) TrioRows(ctx context.Context) ([]model.Row, error) {
	return p.call(ctx, QueryAllTrios, nil)
}

// TeamPlacementRows implements Provider.
func (p *RPCProvider) TeamPlacementRows(ctx context.Context) ([]model.Row, error) {
	return p.call(ctx, QueryTeamPlacements, nil)
}
