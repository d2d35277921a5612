// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/pitchperfect/internal/adapters/mq/queue"
	"github.com/okian/pitchperfect/internal/adapters/repository"
	service "github.com/okian/pitchperfect/internal/app"
	"github.com/okian/pitchperfect/internal/domain/game"
	"github.com/okian/pitchperfect/internal/domain/investor"
	"github.com/okian/pitchperfect/internal/domain/model"
	"github.com/okian/pitchperfect/internal/domain/scoring"
	"github.com/okian/pitchperfect/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ScoreDependencies
	GameDependencies
	PitchDependencies
	StreamDependencies
	LeaderboardDependencies
	StatsProvider
}

// GameDependencies covers the game lifecycle.
type GameDependencies interface {
	CreateGame(ctx context.Context, player string) (game.View, error)
	Game(ctx context.Context, id string) (game.View, error)
	DeleteGame(ctx context.Context, id string) error
}

// PitchDependencies covers commands on the pitch in progress.
type PitchDependencies interface {
	StartPitch(ctx context.Context, gameID, investorID string) (string, error)
	PushTranscript(ctx context.Context, gameID, pitchID, chunkID, text string) (bool, error)
	PushDelivery(ctx context.Context, gameID, pitchID string, a model.DeliveryAnalysis) error
	ActivatePowerUp(ctx context.Context, gameID, pitchID string) (investor.PowerUp, error)
	EndPitch(ctx context.Context, gameID, pitchID string) (game.PitchResult, error)
	AbortPitch(ctx context.Context, gameID, pitchID string) (game.PitchResult, error)
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = repository.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	scoreHandler       *ScoreHandler
	gameHandler        *GameHandler
	pitchHandler       *PitchHandler
	streamHandler      *StreamHandler
	leaderboardHandler *LeaderboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logger.Get().Named("api")
	}

	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		scoreHandler:       NewScoreHandler(deps, o.logger),
		gameHandler:        NewGameHandler(deps, o.limiter, o.logger),
		pitchHandler:       NewPitchHandler(deps, o.limiter, o.logger),
		streamHandler:      NewStreamHandler(deps, deps, o.limiter, o.logger, o.pingInterval),
		leaderboardHandler: NewLeaderboardHandler(deps, o.maxLimit),
	}
}

// route binds a method pattern to a handler and its metrics endpoint label.
type route struct {
	pattern  string
	endpoint string
	handler  http.HandlerFunc
}

func (s *Server) routes() []route {
	return []route{
		{"GET /healthz", "healthz", s.healthHandler.HandleHealth},
		{"GET /stats", "stats", s.statsHandler.HandleStats},
		{"POST /score", "score", s.scoreHandler.HandleScore},

		{"POST /games", "games", s.gameHandler.HandleCreate},
		{"GET /games/{id}", "game", s.gameHandler.HandleGet},
		{"DELETE /games/{id}", "game", s.gameHandler.HandleDelete},
		{"GET /games/{id}/stream", "stream", s.streamHandler.HandleStream},

		{"POST /games/{id}/pitches", "pitches", s.pitchHandler.HandleStart},
		{"POST /games/{id}/pitches/{pid}/transcript", "transcript", s.pitchHandler.HandleTranscript},
		{"POST /games/{id}/pitches/{pid}/delivery", "delivery", s.pitchHandler.HandleDelivery},
		{"POST /games/{id}/pitches/{pid}/powerup", "powerup", s.pitchHandler.HandlePowerUp},
		{"POST /games/{id}/pitches/{pid}/end", "end", s.pitchHandler.HandleEnd},
		{"DELETE /games/{id}/pitches/{pid}", "abort", s.pitchHandler.HandleAbort},

		{"GET /leaderboard", "leaderboard", s.leaderboardHandler.HandleTop},
		{"GET /leaderboard/{player}", "rank", s.leaderboardHandler.HandleRank},
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	for _, rt := range s.routes() {
		mux.HandleFunc(rt.pattern, MetricsMiddleware(rt.handler, rt.endpoint))
	}
}

// Patterns returns the registered "METHOD /path" patterns in order.
func (s *Server) Patterns() []string {
	rts := s.routes()
	out := make([]string, len(rts))
	for i, rt := range rts {
		out[i] = rt.pattern
	}
	return out
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
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
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err onto a status code and writes it.
func writeFailure(ctx context.Context, w http.ResponseWriter, log logger.Logger, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error(ctx, "request failed", logger.Error(err))
	}
	writeError(w, status, code, err)
}

// classify translates domain errors into HTTP semantics.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, scoring.ErrInvalidDuration),
		errors.Is(err, scoring.ErrInvalidInput),
		errors.Is(err, repository.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, repository.ErrGameNotFound),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, game.ErrInvestorNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, game.ErrGameOver),
		errors.Is(err, game.ErrPitchActive),
		errors.Is(err, game.ErrNoActivePitch),
		errors.Is(err, game.ErrStalePitch),
		errors.Is(err, game.ErrInvestorPitched),
		errors.Is(err, game.ErrNoPowerUp):
		return http.StatusConflict, "conflict"
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, ErrBackpressure), errors.Is(err, queue.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, ErrUnavailable),
		errors.Is(err, service.ErrNotStarted),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// decode reads a JSON body into v. An empty body yields io.EOF.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
