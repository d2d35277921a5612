package attention

import (
	"math"

	"github.com/okian/pitchperfect/internal/domain/investor"
	"github.com/okian/pitchperfect/internal/domain/lexicon"
)

// RNG is the randomness source for recovery rolls. *rand.Rand satisfies it.
type RNG interface {
	Float64() float64
}

// TickResult reports what one tick did.
type TickResult struct {
	Level     float64  `json:"level"`
	Delta     float64  `json:"delta"`
	Phase     Phase    `json:"phase"`
	Silent    bool     `json:"silent"`
	Recovered bool     `json:"recovered"`
	Warning   bool     `json:"warning"` // first crossing of the warning level
	Exhausted bool     `json:"exhausted"`
	Expired   []Handle `json:"expired,omitempty"`
}

// Simulator advances States one fixed tick at a time.
type Simulator struct {
	cfg Config
	lex *lexicon.Set
	rng RNG
}

// NewSimulator creates a simulator. A nil lexicon uses the built-in one.
func NewSimulator(cfg Config, lex *lexicon.Set, rng RNG) *Simulator {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Simulator{cfg: cfg, lex: lex, rng: rng}
}

// Config returns the dynamics in use.
func (sim *Simulator) Config() Config { return sim.cfg }

// NewState starts attention for a pitch to an investor with profile p.
func (sim *Simulator) NewState(p investor.Profile) *State {
	return NewState(p, sim.cfg)
}

// Tick advances s by one interval given the full live transcript so far.
// Ticks on an inactive state change nothing.
func (sim *Simulator) Tick(s *State, transcript string) TickResult {
	if !s.Active() {
		return TickResult{Level: s.Level, Phase: s.Phase, Exhausted: s.Exhausted()}
	}

	cfg := sim.cfg
	before := s.Level
	s.Elapsed += cfg.TickInterval
	res := TickResult{Expired: s.expireDue()}

	if s.Phase == PhaseGrace {
		if s.GraceElapsed < cfg.GracePeriod {
			s.GraceElapsed += cfg.TickInterval
			res.Level, res.Phase = s.Level, s.Phase
			return res
		}
		s.Phase = PhaseScoring
	}

	words := lexicon.Tokenize(transcript)
	if len(transcript) == s.lastLen || len(words) == len(s.lastWords) {
		res.Silent = true
		s.silentTicks++
		if s.silentTicks >= cfg.SilenceThreshold && !s.Frozen() {
			s.Level += cfg.SilencePenalty * float64(s.silentTicks-cfg.SilenceThreshold) / 10
		}
	} else {
		s.silentTicks = max(0, s.silentTicks-2)
		sim.adjust(s, words[lexicon.CommonPrefix(s.lastWords, words):])
	}
	s.lastLen, s.lastWords = len(transcript), words

	if sim.rng.Float64() < cfg.RecoveryChance {
		s.Level -= cfg.RecoveryAmount
		res.Recovered = true
	} else {
		s.Level += s.EffectiveIncrement()
	}
	s.Level = math.Max(0, math.Min(MaxLevel, s.Level))

	if !s.Warned && s.Level >= cfg.WarningLevel {
		s.Warned = true
		res.Warning = true
	}
	if s.Exhausted() {
		s.End()
		res.Exhausted = true
	}

	res.Level, res.Delta, res.Phase = s.Level, s.Level-before, s.Phase
	return res
}

// adjust moves the increment factor according to the newly spoken words.
// Filler takes precedence over keywords.
func (sim *Simulator) adjust(s *State, delta []string) {
	counts := sim.lex.Classify(delta)
	switch {
	case counts.FillerRatio() > sim.cfg.MaxFillerRatio:
		s.IncrementFactor = math.Min(sim.cfg.MaxIncrement, s.IncrementFactor+sim.cfg.FillerPenalty)
	case counts.Positive > 0 && counts.Positive >= sim.cfg.MinPositiveForRelief:
		s.IncrementFactor = math.Max(s.base/2, s.IncrementFactor-sim.cfg.GoodContentBonus)
	}
}
