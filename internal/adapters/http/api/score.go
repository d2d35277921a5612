package api

import (
	"context"
	"net/http"

	"github.com/okian/pitchperfect/internal/domain/model"
	"github.com/okian/pitchperfect/pkg/logger"
)

// ScoreDependencies scores a finished pitch outside any game.
type ScoreDependencies interface {
	ScorePitch(ctx context.Context, in model.PitchInput) (model.ScoreResult, error)
}

// scoreRequest is the body of POST /score.
type scoreRequest struct {
	Transcript      string                  `json:"transcript"`
	DurationSeconds float64                 `json:"duration_seconds"`
	AttentionLevel  float64                 `json:"attention_level"`
	Delivery        *model.DeliveryAnalysis `json:"delivery,omitempty"`
}

// ScoreHandler handles one-shot scoring requests.
type ScoreHandler struct {
	deps   ScoreDependencies
	logger logger.Logger
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps ScoreDependencies, log logger.Logger) *ScoreHandler {
	return &ScoreHandler{deps: deps, logger: log}
}

// HandleScore handles POST /score requests.
func (h *ScoreHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.score"
	var req scoreRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.ScorePitch(r.Context(), model.PitchInput{
		Transcript:      req.Transcript,
		DurationSeconds: req.DurationSeconds,
		AttentionLevel:  req.AttentionLevel,
		Delivery:        req.Delivery,
	})
	if err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
