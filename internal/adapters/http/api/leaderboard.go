// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/rapport/internal/domain/leaderboard"
	"github.com/okian/rapport/internal/domain/types"
)

// LeaderboardDependencies defines the interface for leaderboard operations
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, board leaderboard.Board, n int) (types.LeaderboardView, error)
}

// LeaderboardHandler handles leaderboard requests
type LeaderboardHandler struct {
	deps         LeaderboardDependencies
	maxLimit     int
	defaultLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit, defaultLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:         deps,
		maxLimit:     maxLimit,
		defaultLimit: defaultLimit,
	}
}

// HandleGetLeaderboard handles GET /leaderboard/{board}?limit=N requests
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	board, err := leaderboard.ParseBoard(r.PathValue("board"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	n, err := parseLimit(op, r, h.maxLimit, h.defaultLimit)
	if err != nil {
		writeFailure(w, err)
		return
	}
	view, err := h.deps.Leaderboard(r.Context(), board, n)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleListBoards handles GET /leaderboards requests
func (h *LeaderboardHandler) HandleListBoards(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, listBoards())
}
