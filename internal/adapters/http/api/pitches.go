package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/okian/pitchperfect/internal/domain/model"
	"github.com/okian/pitchperfect/pkg/logger"
)

type startPitchRequest struct {
	InvestorID string `json:"investor_id"`
}

type startPitchResponse struct {
	PitchID string `json:"pitch_id"`
}

// transcriptRequest carries the full transcript so far. ChunkID makes
// retries idempotent.
type transcriptRequest struct {
	ChunkID string `json:"chunk_id"`
	Text    string `json:"text"`
}

// PitchHandler handles commands on the pitch in progress.
type PitchHandler struct {
	deps    PitchDependencies
	limiter *Limiter
	logger  logger.Logger
}

// NewPitchHandler creates a new pitch handler.
func NewPitchHandler(deps PitchDependencies, limiter *Limiter, log logger.Logger) *PitchHandler {
	return &PitchHandler{deps: deps, limiter: limiter, logger: log}
}

// HandleStart handles POST /games/{id}/pitches.
func (h *PitchHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	const op = "api.start_pitch"
	var req startPitchRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.InvestorID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing investor_id")))
		return
	}

	pitchID, err := h.deps.StartPitch(r.Context(), r.PathValue("id"), req.InvestorID)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, startPitchResponse{PitchID: pitchID})
}

// HandleTranscript handles POST /games/{id}/pitches/{pid}/transcript.
func (h *PitchHandler) HandleTranscript(w http.ResponseWriter, r *http.Request) {
	const op = "api.push_transcript"
	gameID, pitchID := r.PathValue("id"), r.PathValue("pid")
	if !h.limiter.Allow(gameID) {
		writeError(w, http.StatusTooManyRequests, "rate_limited", NewKind(op, ErrRateLimited))
		return
	}
	var req transcriptRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	dup, err := h.deps.PushTranscript(r.Context(), gameID, pitchID, req.ChunkID, req.Text)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	if dup {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

// HandleDelivery handles POST /games/{id}/pitches/{pid}/delivery.
func (h *PitchHandler) HandleDelivery(w http.ResponseWriter, r *http.Request) {
	const op = "api.push_delivery"
	gameID, pitchID := r.PathValue("id"), r.PathValue("pid")
	if !h.limiter.Allow(gameID) {
		writeError(w, http.StatusTooManyRequests, "rate_limited", NewKind(op, ErrRateLimited))
		return
	}
	var req model.DeliveryAnalysis
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	if err := h.deps.PushDelivery(r.Context(), gameID, pitchID, req); err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

// HandlePowerUp handles POST /games/{id}/pitches/{pid}/powerup.
func (h *PitchHandler) HandlePowerUp(w http.ResponseWriter, r *http.Request) {
	const op = "api.activate_power_up"
	pu, err := h.deps.ActivatePowerUp(r.Context(), r.PathValue("id"), r.PathValue("pid"))
	if err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, pu)
}

// HandleEnd handles POST /games/{id}/pitches/{pid}/end.
func (h *PitchHandler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	const op = "api.end_pitch"
	res, err := h.deps.EndPitch(r.Context(), r.PathValue("id"), r.PathValue("pid"))
	if err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleAbort handles DELETE /games/{id}/pitches/{pid}.
func (h *PitchHandler) HandleAbort(w http.ResponseWriter, r *http.Request) {
	const op = "api.abort_pitch"
	res, err := h.deps.AbortPitch(r.Context(), r.PathValue("id"), r.PathValue("pid"))
	if err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
