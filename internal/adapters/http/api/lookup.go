package api

import (
	"context"
	"net/http"

	"github.com/okian/rapport/internal/domain/types"
)

// LookupDependencies reads the chemistry lookup used by team optimizers.
type LookupDependencies interface {
	LookupPair(ctx context.Context, a, b string) types.LookupView
}

// LookupHandler handles lookup requests.
type LookupHandler struct {
	deps LookupDependencies
}

// NewLookupHandler creates a new lookup handler.
func NewLookupHandler(deps LookupDependencies) *LookupHandler {
	return &LookupHandler{deps: deps}
}

// HandleGetLookup handles GET /lookup/{a}/{b}. An unknown pair is a 200
// with a null score, not a 404.
func (h *LookupHandler) HandleGetLookup(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_lookup"
	a, b := r.PathValue("a"), r.PathValue("b")
	if a == b {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.LookupPair(r.Context(), a, b))
}
