// Package service wires the scoring engine, game runners and stores into the
// operations the HTTP API exposes.
package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/pitchperfect/internal/adapters/mq/queue"
	"github.com/okian/pitchperfect/internal/adapters/mq/worker"
	"github.com/okian/pitchperfect/internal/adapters/repository"
	"github.com/okian/pitchperfect/internal/domain/attention"
	"github.com/okian/pitchperfect/internal/domain/dedupe"
	"github.com/okian/pitchperfect/internal/domain/game"
	"github.com/okian/pitchperfect/internal/domain/investor"
	"github.com/okian/pitchperfect/internal/domain/model"
	"github.com/okian/pitchperfect/internal/domain/scoring"
	"github.com/okian/pitchperfect/pkg/logger"
	"github.com/okian/pitchperfect/pkg/metrics"
)

const (
	defaultQueueSize        = 256
	runnerShutdownTimeout   = 5 * time.Second
	leaderboardWriteTimeout = time.Second
)

// Service implements the API dependencies for the pitch game.
type Service struct {
	mu sync.RWMutex

	engine       *scoring.Engine
	attentionCfg attention.Config
	gameCfg      game.Config
	catalog      *investor.Catalog

	games       *repository.Games
	leaderboard repository.Leaderboard
	deduper     dedupe.Deduper

	queueSize    int
	gameTTL      time.Duration
	dedupeTTL    time.Duration
	tickInterval time.Duration
	seed         int64
	newID        func() string

	seedMu sync.Mutex
	seeds  *rand.Rand

	started bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		engine:       scoring.NewEngine(),
		attentionCfg: attention.DefaultConfig(),
		gameCfg:      game.DefaultConfig(),
		catalog:      investor.Default(),
		queueSize:    defaultQueueSize,
		gameTTL:      repository.DefaultGameTTL,
		dedupeTTL:    dedupe.DefaultTTL,
		newID:        uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start creates the stores. Games created afterwards run until Stop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	seed := s.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s.seeds = rand.New(rand.NewSource(seed)) //nolint:gosec // game randomness, not security
	s.ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))

	s.leaderboard = repository.NewTreapStore()
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithTTL(s.dedupeTTL))
	s.games = repository.NewGames(s.gameTTL, repository.WithOnEvicted(s.evicted))

	s.started = true
	s.logger.Info(ctx, "pitch service started",
		logger.Int("queue_size", s.queueSize),
		logger.Duration("game_ttl", s.gameTTL),
		logger.Duration("dedupe_ttl", s.dedupeTTL),
		logger.Bool("seeded", s.seed != 0),
	)
	return nil
}

// Stop ends every game and waits for the runners to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.cancel()
	games := s.games
	s.mu.Unlock()

	games.Flush()
	s.wg.Wait()
	s.logger.Info(context.Background(), "pitch service stopped")
}

// evicted stops the runner of a game leaving the registry.
func (s *Service) evicted(g *repository.Game) {
	ctx, cancel := context.WithTimeout(context.Background(), runnerShutdownTimeout)
	defer cancel()
	if err := g.Runner.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "runner did not stop", logger.String("game_id", g.ID), logger.Error(err))
	}
	s.logger.Info(ctx, "game removed", logger.String("game_id", g.ID))
}

// ScorePitch scores a finished pitch outside of any game.
func (s *Service) ScorePitch(ctx context.Context, in model.PitchInput) (model.ScoreResult, error) {
	start := time.Now()
	res, err := s.engine.Score(ctx, in)
	metrics.RecordScoringLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordScoringError("score_pitch")
		return model.ScoreResult{}, err
	}
	metrics.RecordPitchScore(res.Total)
	return res, nil
}

// rngs derives the two per-game random sources from the service seed.
func (s *Service) rngs() (spawn, sim *rand.Rand) {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()
	spawn = rand.New(rand.NewSource(s.seeds.Int63())) //nolint:gosec // game randomness
	sim = rand.New(rand.NewSource(s.seeds.Int63()))   //nolint:gosec // game randomness
	return spawn, sim
}

// CreateGame starts a new game. player may be empty; named players enter the
// leaderboard when their game ends.
func (s *Service) CreateGame(ctx context.Context, player string) (game.View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return game.View{}, ErrNotStarted
	}

	id := s.newID()
	spawnRNG, simRNG := s.rngs()
	sim := attention.NewSimulator(s.attentionCfg, s.engine.Lexicon(), simRNG)
	session := game.NewSession(id, s.engine, sim, spawnRNG,
		game.WithConfig(s.gameCfg),
		game.WithCatalog(s.catalog),
	)

	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	tick := s.tickInterval
	if tick <= 0 {
		tick = s.attentionCfg.TickInterval
	}
	runner := worker.NewRunner(session, q,
		worker.WithName("game-"+id),
		worker.WithLogger(s.logger.Named("runner")),
		worker.WithTickInterval(tick),
	)

	g := &repository.Game{ID: id, Player: player, Runner: runner, Queue: q, CreatedAt: time.Now()}
	if err := s.games.Put(g); err != nil {
		return game.View{}, err
	}

	runCtx := s.ctx
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		runner.Run(runCtx)
		_ = q.Close()
		s.recordFinal(g)
	}()

	metrics.RecordGameCreated()
	s.logger.Info(ctx, "game created", logger.String("game_id", id), logger.String("player", player))
	return runner.Snapshot(), nil
}

func (s *Service) recordFinal(g *repository.Game) {
	if g.Player == "" {
		return
	}
	view := g.Runner.Snapshot()
	ctx, cancel := context.WithTimeout(context.Background(), leaderboardWriteTimeout)
	defer cancel()

	improved, err := s.leaderboard.UpdateBest(ctx, g.Player, view.Score, g.ID)
	if err != nil {
		s.logger.Error(ctx, "leaderboard update failed", logger.String("game_id", g.ID), logger.Error(err))
		return
	}
	if improved {
		s.logger.Info(ctx, "new personal best",
			logger.String("player", g.Player),
			logger.Float64("score", view.Score),
		)
	}
}

func (s *Service) runner(id string) (*worker.Runner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	g, err := s.games.Get(id)
	if err != nil {
		return nil, err
	}
	return g.Runner, nil
}

// Game returns the latest snapshot of a game.
func (s *Service) Game(_ context.Context, id string) (game.View, error) {
	r, err := s.runner(id)
	if err != nil {
		return game.View{}, err
	}
	return r.Snapshot(), nil
}

// DeleteGame stops and forgets a game.
func (s *Service) DeleteGame(_ context.Context, id string) error {
	s.mu.RLock()
	started, games := s.started, s.games
	s.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}
	if !games.Delete(id) {
		return fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return nil
}

// StartPitch begins a pitch to an investor of the game.
func (s *Service) StartPitch(ctx context.Context, gameID, investorID string) (string, error) {
	r, err := s.runner(gameID)
	if err != nil {
		return "", err
	}
	return r.StartPitch(ctx, investorID)
}

// PushTranscript replaces the live transcript of a pitch. A non-empty
// chunkID makes retries idempotent; duplicate reports whether the chunk had
// already been applied.
func (s *Service) PushTranscript(ctx context.Context, gameID, pitchID, chunkID, text string) (duplicate bool, err error) {
	r, err := s.runner(gameID)
	if err != nil {
		return false, err
	}

	key := ""
	if chunkID != "" {
		key = gameID + "/" + pitchID + "/" + chunkID
		if s.deduper.SeenAndRecord(ctx, key) {
			s.logger.Debug(ctx, "duplicate transcript chunk", logger.String("chunk", key))
			return true, nil
		}
	}

	if err := r.PushTranscript(ctx, pitchID, text); err != nil {
		if key != "" {
			s.deduper.Unrecord(ctx, key)
		}
		return false, err
	}
	return false, nil
}

// PushDelivery records a delivery analysis sample for a pitch.
func (s *Service) PushDelivery(ctx context.Context, gameID, pitchID string, a model.DeliveryAnalysis) error {
	r, err := s.runner(gameID)
	if err != nil {
		return err
	}
	return r.PushDelivery(ctx, pitchID, a)
}

// ActivatePowerUp uses the power-up of the investor being pitched.
func (s *Service) ActivatePowerUp(ctx context.Context, gameID, pitchID string) (investor.PowerUp, error) {
	r, err := s.runner(gameID)
	if err != nil {
		return investor.PowerUp{}, err
	}
	return r.ActivatePowerUp(ctx, pitchID)
}

// EndPitch scores a pitch.
func (s *Service) EndPitch(ctx context.Context, gameID, pitchID string) (game.PitchResult, error) {
	r, err := s.runner(gameID)
	if err != nil {
		return game.PitchResult{}, err
	}
	return r.EndPitch(ctx, pitchID)
}

// AbortPitch drops a pitch without scoring it.
func (s *Service) AbortPitch(ctx context.Context, gameID, pitchID string) (game.PitchResult, error) {
	r, err := s.runner(gameID)
	if err != nil {
		return game.PitchResult{}, err
	}
	return r.AbortPitch(ctx, pitchID)
}

// Subscribe streams the events of a game until cancel is called or the game
// ends.
func (s *Service) Subscribe(_ context.Context, gameID string) (<-chan game.Event, func(), error) {
	r, err := s.runner(gameID)
	if err != nil {
		return nil, nil, err
	}
	events, cancel := r.Subscribe()
	return events, cancel, nil
}

// TopN returns the best n leaderboard rows.
func (s *Service) TopN(ctx context.Context, n int) ([]repository.Entry, error) {
	s.mu.RLock()
	lb := s.leaderboard
	s.mu.RUnlock()
	if lb == nil {
		return nil, ErrNotStarted
	}
	return lb.TopN(ctx, n)
}

// Rank returns the leaderboard row of player.
func (s *Service) Rank(ctx context.Context, player string) (repository.Entry, error) {
	s.mu.RLock()
	lb := s.leaderboard
	s.mu.RUnlock()
	if lb == nil {
		return repository.Entry{}, ErrNotStarted
	}
	return lb.Rank(ctx, player)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":   s.started,
		"queueSize": s.queueSize,
		"gameTTL":   s.gameTTL.String(),
		"comboOn":   s.engine.Combo().Enabled,
	}
	if s.started {
		games := s.games.Count()
		stats["games"] = games
		stats["dedupeSize"] = s.deduper.Size()
		stats["players"] = s.leaderboard.Count(context.Background())
		metrics.UpdateGamesActive(games)
	}
	return stats
}
