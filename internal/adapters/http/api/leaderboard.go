package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// defaultLeaderboardLimit is the page size when ?limit is absent.
const defaultLeaderboardLimit = 10

// LeaderboardDependencies reads the best-score table.
type LeaderboardDependencies interface {
	TopN(ctx context.Context, n int) ([]Entry, error)
	Rank(ctx context.Context, player string) (Entry, error)
}

// LeaderboardHandler serves the leaderboard and single player rows.
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
}

// NewLeaderboardHandler creates a leaderboard handler that serves at most
// maxLimit rows per request.
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleTop handles GET /leaderboard?limit=N.
func (h *LeaderboardHandler) HandleTop(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	n, ok := h.limit(w, r, op)
	if !ok {
		return
	}
	entries, err := h.deps.TopN(r.Context(), n)
	if err != nil {
		status, code := classify(err)
		writeError(w, status, code, Wrap(op, err))
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// limit parses ?limit and writes the error response itself when it is bad.
func (h *LeaderboardHandler) limit(w http.ResponseWriter, r *http.Request, op string) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return min(defaultLeaderboardLimit, h.maxLimit), true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, fmt.Errorf("limit must be a positive integer, got %q", raw)))
		return 0, false
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return 0, false
	}
	return n, true
}

// HandleRank handles GET /leaderboard/{player}.
func (h *LeaderboardHandler) HandleRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rank"
	player := strings.TrimSpace(r.PathValue("player"))
	if player == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	entry, err := h.deps.Rank(r.Context(), player)
	if err != nil {
		status, code := classify(err)
		writeError(w, status, code, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
