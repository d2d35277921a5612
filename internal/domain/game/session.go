// Package game models one player's game: the clock, the investors waiting
// to hear a pitch, the pitch in progress and the running score.
//
// A Session is single-threaded. The owner must serialise every call, which
// the per-game runner does by funnelling all commands through one goroutine.
package game

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/okian/pitchperfect/internal/domain/attention"
	"github.com/okian/pitchperfect/internal/domain/combo"
	"github.com/okian/pitchperfect/internal/domain/investor"
	"github.com/okian/pitchperfect/internal/domain/lexicon"
	"github.com/okian/pitchperfect/internal/domain/model"
	"github.com/okian/pitchperfect/internal/domain/scoring"
	"github.com/okian/pitchperfect/internal/domain/types"
)

// RNG is the randomness source for investor spawning.
type RNG interface {
	Float64() float64
}

// Option applies a configuration option to a Session.
type Option func(*Session)

// WithConfig sets the game rules.
func WithConfig(cfg Config) Option {
	return func(s *Session) { s.cfg = cfg }
}

// WithCatalog sets the investor and power-up tables.
func WithCatalog(c *investor.Catalog) Option {
	return func(s *Session) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithIDGenerator overrides uuid-based IDs for investors and pitches.
func WithIDGenerator(gen func() string) Option {
	return func(s *Session) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// Investor is a spawned investor waiting for, or done with, a pitch.
type Investor struct {
	ID          string
	Profile     investor.Profile
	PowerUp     *investor.PowerUp
	PowerUpUsed bool
	Pitched     bool
	SpawnedAt   time.Duration
}

type pitch struct {
	id         string
	investor   *Investor
	startedAt  time.Duration
	elapsed    time.Duration
	transcript string
	spoken     []string
	tokens     []model.TimedToken
	deliveries []model.DeliveryAnalysis
	state      *attention.State
	combo      *combo.Tracker
}

// PitchResult is the outcome of one finished pitch.
type PitchResult struct {
	PitchID    string            `json:"pitch_id"`
	InvestorID string            `json:"investor_id"`
	Outcome    types.Outcome     `json:"outcome"`
	Reason     string            `json:"reason,omitempty"`
	Score      model.ScoreResult `json:"score"`
	Multiplier float64           `json:"multiplier"`
	Points     float64           `json:"points"`
	Attention  float64           `json:"attention"`
	Duration   float64           `json:"duration_seconds"`
}

// Session is one game.
type Session struct {
	id      string
	cfg     Config
	engine  *scoring.Engine
	sim     *attention.Simulator
	catalog *investor.Catalog
	rng     RNG
	newID   func() string

	elapsed    time.Duration
	sinceSpawn time.Duration
	score      float64
	over       bool
	investors  []*Investor
	current    *pitch
	history    []PitchResult
}

// NewSession creates a game. The simulator must not be shared with another
// session because it carries its own random source.
func NewSession(id string, engine *scoring.Engine, sim *attention.Simulator, rng RNG, opts ...Option) *Session {
	s := &Session{
		id:      id,
		cfg:     DefaultConfig(),
		engine:  engine,
		sim:     sim,
		catalog: investor.Default(),
		rng:     rng,
		newID:   uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ID returns the game ID.
func (s *Session) ID() string { return s.id }

// Over reports whether the game has ended.
func (s *Session) Over() bool { return s.over }

// Score returns the accumulated score.
func (s *Session) Score() float64 { return s.score }

// Elapsed returns the game clock.
func (s *Session) Elapsed() time.Duration { return s.elapsed }

// ActivePitchID returns the pitch in progress, or "".
func (s *Session) ActivePitchID() string {
	if s.current == nil {
		return ""
	}
	return s.current.id
}

// Investors returns the spawned investors in spawn order.
func (s *Session) Investors() []*Investor { return s.investors }

// History returns every finished pitch.
func (s *Session) History() []PitchResult { return s.history }

// Spawn adds one investor if there is room and returns it.
func (s *Session) Spawn() (*Investor, bool) {
	if s.over || len(s.investors) >= s.cfg.MaxInvestors {
		return nil, false
	}
	inv := &Investor{
		ID:        s.newID(),
		Profile:   s.catalog.Pick(s.rng.Float64()),
		SpawnedAt: s.elapsed,
	}
	if pu, ok := s.catalog.PickPowerUp(s.rng.Float64(), s.rng.Float64()); ok {
		inv.PowerUp = &pu
	}
	s.investors = append(s.investors, inv)
	return inv, true
}

func (s *Session) findInvestor(id string) *Investor {
	for _, inv := range s.investors {
		if inv.ID == id {
			return inv
		}
	}
	return nil
}

// StartPitch begins a pitch to investorID and returns the pitch ID.
func (s *Session) StartPitch(investorID string) (string, error) {
	if s.over {
		return "", ErrGameOver
	}
	if s.current != nil {
		return "", ErrPitchActive
	}
	inv := s.findInvestor(investorID)
	if inv == nil {
		return "", fmt.Errorf("%w: %s", ErrInvestorNotFound, investorID)
	}
	if inv.Pitched {
		return "", fmt.Errorf("%w: %s", ErrInvestorPitched, investorID)
	}

	s.current = &pitch{
		id:        s.newID(),
		investor:  inv,
		startedAt: s.elapsed,
		state:     s.sim.NewState(inv.Profile),
		combo:     combo.NewTracker(s.engine.Lexicon(), s.engine.Combo()),
	}
	return s.current.id, nil
}

// active returns the pitch pitchID if it is the one in progress.
func (s *Session) active(pitchID string) (*pitch, error) {
	if s.over {
		return nil, ErrGameOver
	}
	if s.current == nil {
		return nil, ErrNoActivePitch
	}
	if s.current.id != pitchID {
		return nil, fmt.Errorf("%w: %s", ErrStalePitch, pitchID)
	}
	return s.current, nil
}

// PushTranscript replaces the live transcript of the pitch with the latest
// full snapshot. Words past the prefix shared with the previous snapshot are
// stamped with the current pitch time; retracted words are dropped so the
// combo streak always follows the transcript as it now reads.
func (s *Session) PushTranscript(pitchID, text string) error {
	p, err := s.active(pitchID)
	if err != nil {
		return err
	}

	words := lexicon.Tokenize(text)
	keep := lexicon.CommonPrefix(p.spoken, words)
	if keep < len(p.tokens) {
		p.tokens = p.tokens[:keep]
		p.combo = combo.NewTracker(s.engine.Lexicon(), s.engine.Combo())
		for _, tok := range p.tokens {
			p.combo.Observe(tok.Text, tok.At)
		}
	}
	for _, w := range words[keep:] {
		p.tokens = append(p.tokens, model.TimedToken{Text: w, At: p.elapsed})
		p.combo.Observe(w, p.elapsed)
	}
	p.transcript = text
	p.spoken = words
	return nil
}

// PushDelivery records one delivery sample and lets its confidence damp the
// attention decay.
func (s *Session) PushDelivery(pitchID string, a model.DeliveryAnalysis) error {
	p, err := s.active(pitchID)
	if err != nil {
		return err
	}
	for _, v := range []float64{a.Clarity, a.Pace, a.Confidence, a.TonalVariation} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: delivery signal %v", scoring.ErrInvalidInput, v)
		}
	}
	p.deliveries = append(p.deliveries, a)
	p.state.ApplyDelivery(a, s.sim.Config())
	return nil
}

// ActivatePowerUp uses the power-up of the investor being pitched.
func (s *Session) ActivatePowerUp(pitchID string) (investor.PowerUp, error) {
	p, err := s.active(pitchID)
	if err != nil {
		return investor.PowerUp{}, err
	}
	inv := p.investor
	if inv.PowerUp == nil || inv.PowerUpUsed {
		return investor.PowerUp{}, ErrNoPowerUp
	}
	if _, err := p.state.ApplyModifier(inv.PowerUp.Kind.Modifier(), inv.PowerUp.Duration); err != nil {
		return investor.PowerUp{}, err
	}
	inv.PowerUpUsed = true
	return *inv.PowerUp, nil
}

// EndPitch scores the pitch in progress. When scoring rejects the input, for
// example because no time has passed yet, the pitch stays active.
func (s *Session) EndPitch(ctx context.Context, pitchID string) (PitchResult, error) {
	p, err := s.active(pitchID)
	if err != nil {
		return PitchResult{}, err
	}
	return s.finish(ctx, p, "")
}

// AbortPitch drops the pitch in progress without scoring it.
func (s *Session) AbortPitch(pitchID string) (PitchResult, error) {
	p, err := s.active(pitchID)
	if err != nil {
		return PitchResult{}, err
	}
	return s.discard(p, "aborted"), nil
}

// Tick advances the game by one attention interval and returns what
// happened.
func (s *Session) Tick(ctx context.Context) []Event {
	if s.over {
		return nil
	}
	dt := s.sim.Config().TickInterval
	s.elapsed += dt
	s.sinceSpawn += dt

	var events []Event
	for s.sinceSpawn >= s.cfg.SpawnInterval {
		s.sinceSpawn -= s.cfg.SpawnInterval
		if inv, ok := s.Spawn(); ok {
			events = append(events, s.event(EventInvestorSpawned, func(e *Event) { e.InvestorID = inv.ID }))
		}
	}

	if p := s.current; p != nil {
		events = append(events, s.tickPitch(ctx, p, dt)...)
	}

	if s.elapsed >= s.cfg.Duration {
		events = append(events, s.stop("time up")...)
	}
	return events
}

func (s *Session) tickPitch(ctx context.Context, p *pitch, dt time.Duration) []Event {
	p.elapsed += dt
	res := s.sim.Tick(p.state, p.transcript)

	events := []Event{s.event(EventAttention, func(e *Event) {
		e.PitchID = p.id
		e.Level = res.Level
		e.Combo = p.combo.Streak()
	})}
	for _, h := range res.Expired {
		events = append(events, s.event(EventPowerUpExpired, func(e *Event) {
			e.PitchID = p.id
			e.Modifier = h.Kind
		}))
	}
	if res.Warning {
		events = append(events, s.event(EventWarning, func(e *Event) {
			e.PitchID = p.id
			e.Level = res.Level
		}))
	}

	var (
		result PitchResult
		err    error
		ended  bool
	)
	switch {
	case res.Exhausted:
		result, err = s.finish(ctx, p, "lost interest")
		ended = true
	case p.elapsed >= s.cfg.PitchTimeout:
		result, err = s.finish(ctx, p, "time up")
		ended = true
	}
	if !ended {
		return events
	}
	if err != nil {
		result = s.discard(p, err.Error())
	}
	return append(events, s.event(EventPitchEnded, func(e *Event) { e.Result = &result }))
}

// Stop ends the game. An unfinished pitch is aborted.
func (s *Session) Stop() []Event {
	if s.over {
		return nil
	}
	return s.stop("stopped")
}

func (s *Session) stop(reason string) []Event {
	var events []Event
	if p := s.current; p != nil {
		result := s.discard(p, reason)
		events = append(events, s.event(EventPitchEnded, func(e *Event) { e.Result = &result }))
	}
	s.over = true
	return append(events, s.event(EventGameOver, func(e *Event) { e.Score = s.score }))
}

// finish scores p. Exhausted pitches are scored at full attention loss and
// award nothing.
func (s *Session) finish(ctx context.Context, p *pitch, reason string) (PitchResult, error) {
	in := model.PitchInput{
		Transcript:      p.transcript,
		DurationSeconds: p.elapsed.Seconds(),
		AttentionLevel:  p.state.Level,
		Delivery:        averageDelivery(p.deliveries),
		Tokens:          p.tokens,
	}
	scored, err := s.engine.Score(ctx, in)
	if err != nil {
		return PitchResult{}, err
	}

	result := PitchResult{
		PitchID:    p.id,
		InvestorID: p.investor.ID,
		Reason:     reason,
		Score:      scored,
		Multiplier: p.investor.Profile.ScoreMultiplier * p.state.ScoreMultiplier(),
		Attention:  p.state.Level,
		Duration:   p.elapsed.Seconds(),
	}
	switch {
	case p.state.Exhausted():
		result.Outcome = types.OutcomeExhausted
	case scored.Total >= s.cfg.SuccessScore:
		result.Outcome = types.OutcomeSuccess
		result.Points = scored.Total*result.Multiplier + float64(scored.Reward())
		s.score += result.Points
	default:
		result.Outcome = types.OutcomeFailure
	}

	s.close(p, result)
	return result, nil
}

func (s *Session) discard(p *pitch, reason string) PitchResult {
	result := PitchResult{
		PitchID:    p.id,
		InvestorID: p.investor.ID,
		Outcome:    types.OutcomeAborted,
		Reason:     reason,
		Attention:  p.state.Level,
		Duration:   p.elapsed.Seconds(),
	}
	s.close(p, result)
	return result
}

func (s *Session) close(p *pitch, result PitchResult) {
	p.state.End()
	p.investor.Pitched = true
	s.current = nil
	s.history = append(s.history, result)
}

func averageDelivery(samples []model.DeliveryAnalysis) *model.DeliveryAnalysis {
	if len(samples) == 0 {
		return nil
	}
	var sum model.DeliveryAnalysis
	for _, a := range samples {
		sum.Clarity += a.Clarity
		sum.Pace += a.Pace
		sum.Confidence += a.Confidence
		sum.TonalVariation += a.TonalVariation
	}
	n := float64(len(samples))
	return &model.DeliveryAnalysis{
		Clarity:        sum.Clarity / n,
		Pace:           sum.Pace / n,
		Confidence:     sum.Confidence / n,
		TonalVariation: sum.TonalVariation / n,
	}
}
