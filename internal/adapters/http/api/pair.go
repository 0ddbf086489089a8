package api

import (
	"context"
	"net/http"

	"github.com/okian/rapport/internal/domain/types"
)

// PairDependencies defines the on-demand pair queries.
type PairDependencies interface {
	PairChemistry(ctx context.Context, a, b string) (types.PairView, error)
	TopPartners(ctx context.Context, player string, n int) (types.LeaderboardView, error)
}

// PairHandler handles single-pair and partner requests.
type PairHandler struct {
	deps         PairDependencies
	maxLimit     int
	defaultLimit int
}

// NewPairHandler creates a new pair handler.
func NewPairHandler(deps PairDependencies, maxLimit, defaultLimit int) *PairHandler {
	return &PairHandler{deps: deps, maxLimit: maxLimit, defaultLimit: defaultLimit}
}

// HandleGetPair handles GET /pairs/{a}/{b} requests.
func (h *PairHandler) HandleGetPair(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_pair"
	a, b := r.PathValue("a"), r.PathValue("b")
	if a == b {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}
	view, err := h.deps.PairChemistry(r.Context(), a, b)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleGetPartners handles GET /partners/{player}?limit=N requests.
func (h *PairHandler) HandleGetPartners(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_partners"
	n, err := parseLimit(op, r, h.maxLimit, h.defaultLimit)
	if err != nil {
		writeFailure(w, err)
		return
	}
	view, err := h.deps.TopPartners(r.Context(), r.PathValue("player"), n)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}
