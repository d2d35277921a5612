package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/okian/pitchperfect/pkg/logger"
)

const maxPlayerLen = 64

type createGameRequest struct {
	Player string `json:"player"`
}

// GameHandler handles the game lifecycle.
type GameHandler struct {
	deps    GameDependencies
	limiter *Limiter
	logger  logger.Logger
}

// NewGameHandler creates a new game handler.
func NewGameHandler(deps GameDependencies, limiter *Limiter, log logger.Logger) *GameHandler {
	return &GameHandler{deps: deps, limiter: limiter, logger: log}
}

// HandleCreate handles POST /games. The body and its player are optional;
// anonymous games stay off the leaderboard.
func (h *GameHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_game"
	var req createGameRequest
	if err := decode(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	player := strings.TrimSpace(req.Player)
	if len(player) > maxPlayerLen || strings.Contains(player, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	view, err := h.deps.CreateGame(r.Context(), player)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// HandleGet handles GET /games/{id}.
func (h *GameHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_game"
	view, err := h.deps.Game(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleDelete handles DELETE /games/{id}.
func (h *GameHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_game"
	id := r.PathValue("id")
	if err := h.deps.DeleteGame(r.Context(), id); err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	h.limiter.Forget(id)
	w.WriteHeader(http.StatusNoContent)
}
