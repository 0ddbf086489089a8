// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/okian/rapport/internal/domain/leaderboard"
)

// Default limits applied when the server is built without overrides.
const (
	defaultMaxLimit     = 100
	defaultDefaultLimit = 10
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider
	LeaderboardDependencies
	PairDependencies
	LookupDependencies
}

// Server wires HTTP routes for the analytics API.
type Server struct {
	healthHandler      *HealthHandler
	leaderboardHandler *LeaderboardHandler
	pairHandler        *PairHandler
	lookupHandler      *LookupHandler
}

// ServerOption configures a Server.
type ServerOption func(*limits)

type limits struct {
	max  int
	def  int
	snap func() (uint64, bool)
}

// WithDefaultLimit sets the limit used when a request omits one.
func WithDefaultLimit(n int) ServerOption {
	return func(l *limits) {
		if n > 0 {
			l.def = n
		}
	}
}

// WithSnapshotState lets /healthz report the served snapshot version.
func WithSnapshotState(fn func() (version uint64, loaded bool)) ServerOption {
	return func(l *limits) {
		if fn != nil {
			l.snap = fn
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, maxLimit int, opts ...ServerOption) *Server {
	l := limits{max: maxLimit, def: defaultDefaultLimit}
	if l.max < 1 {
		l.max = defaultMaxLimit
	}
	for _, opt := range opts {
		opt(&l)
	}
	if l.def > l.max {
		l.def = l.max
	}
	return &Server{
		healthHandler:      NewHealthHandler(deps, l.snap),
		leaderboardHandler: NewLeaderboardHandler(deps, l.max, l.def),
		pairHandler:        NewPairHandler(deps, l.max, l.def),
		lookupHandler:      NewLookupHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.healthHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /leaderboards", MetricsMiddleware(s.leaderboardHandler.HandleListBoards, "leaderboards"))
	mux.HandleFunc("GET /leaderboard/{board}", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("GET /pairs/{a}/{b}", MetricsMiddleware(s.pairHandler.HandleGetPair, "pair"))
	mux.HandleFunc("GET /partners/{player}", MetricsMiddleware(s.pairHandler.HandleGetPartners, "partners"))
	mux.HandleFunc("GET /lookup/{a}/{b}", MetricsMiddleware(s.lookupHandler.HandleGetLookup, "lookup"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	tagError(w, code)
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure classifies err and writes it.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

// parseLimit reads ?limit=, falling back to def when absent.
func parseLimit(op string, r *http.Request, maxLimit, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, NewKind(op, ErrBadRequest)
	}
	if n > maxLimit {
		return 0, NewKind(op, ErrLimitExceeded)
	}
	return n, nil
}

// boardInfo describes one available board.
type boardInfo struct {
	Board    string `json:"board"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

func listBoards() []boardInfo {
	out := make([]boardInfo, len(leaderboard.Boards))
	for i, b := range leaderboard.Boards {
		out[i] = boardInfo{Board: b.String(), Title: b.Title(), Category: b.Category().String()}
	}
	return out
}
