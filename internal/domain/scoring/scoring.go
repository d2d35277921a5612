// Package scoring turns a finished pitch into a 0-10 score, a breakdown,
// advisory feedback, a combo multiplier and achievement unlocks.
package scoring

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/okian/pitchperfect/internal/domain/achievement"
	"github.com/okian/pitchperfect/internal/domain/combo"
	"github.com/okian/pitchperfect/internal/domain/lexicon"
	"github.com/okian/pitchperfect/internal/domain/model"
)

const maxScoreValue = 10

// Scorer computes a score from a pitch input.
type Scorer interface {
	// Score validates in and composes a result, honoring ctx for cancellation.
	Score(ctx context.Context, in model.PitchInput) (model.ScoreResult, error)
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLexicon sets the keyword lexicon.
func WithLexicon(lex *lexicon.Set) Option {
	return func(e *Engine) {
		if lex != nil {
			e.lex = lex
		}
	}
}

// WithPolicy sets the weights and thresholds.
func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithCombo sets the combo configuration.
func WithCombo(cfg combo.Config) Option {
	return func(e *Engine) { e.combo = cfg }
}

// WithAchievements sets achievement thresholds and rewards.
func WithAchievements(cfg achievement.Config) Option {
	return func(e *Engine) { e.achievements = cfg }
}

// Engine is the Score Composer. It is immutable after construction and safe
// for concurrent use.
type Engine struct {
	lex          *lexicon.Set
	policy       Policy
	combo        combo.Config
	achievements achievement.Config
	evaluator    *achievement.Evaluator
}

var _ Scorer = (*Engine)(nil)

// NewEngine creates an engine with the built-in lexicon and policy unless
// overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		lex:          lexicon.Default(),
		policy:       DefaultPolicy(),
		combo:        combo.DefaultConfig(),
		achievements: achievement.DefaultConfig(),
	}

	for _, opt := range opts {
		opt(e)
	}

	maxMult := 1.0
	if e.combo.Enabled {
		maxMult = e.combo.MaxMultiplier()
	}
	e.evaluator = achievement.NewEvaluator(e.achievements, maxMult)

	return e
}

// Lexicon returns the lexicon the engine scores against.
func (e *Engine) Lexicon() *lexicon.Set { return e.lex }

// Policy returns the active policy.
func (e *Engine) Policy() Policy { return e.policy }

// Combo returns the combo configuration.
func (e *Engine) Combo() combo.Config { return e.combo }

// Validate rejects malformed input before any sub-scorer runs.
func Validate(in model.PitchInput) error {
	d := in.DurationSeconds
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return fmt.Errorf("%w: %v seconds", ErrInvalidDuration, d)
	}
	if math.IsNaN(in.AttentionLevel) {
		return fmt.Errorf("%w: attention level is NaN", ErrInvalidInput)
	}
	if a := in.Delivery; a != nil {
		for _, v := range []float64{a.Clarity, a.Pace, a.Confidence, a.TonalVariation} {
			if math.IsNaN(v) {
				return fmt.Errorf("%w: delivery signal is NaN", ErrInvalidInput)
			}
		}
	}
	return nil
}

// Score composes the result for one pitch. The same input always produces
// the same result.
func (e *Engine) Score(ctx context.Context, in model.PitchInput) (model.ScoreResult, error) {
	if err := ctx.Err(); err != nil {
		return model.ScoreResult{}, fmt.Errorf("context cancelled: %w", err)
	}
	if err := Validate(in); err != nil {
		return model.ScoreResult{}, err
	}

	p := e.policy
	words := lexicon.Tokenize(in.Transcript)
	counts := e.lex.Classify(words)
	wpm := WordsPerMinute(counts.Words, in.DurationSeconds)

	s := subScores{
		content:    ContentScore(counts, len(e.lex.Categories()), p),
		delivery:   DeliveryScore(in.Delivery, p),
		engagement: EngagementScore(in.AttentionLevel, p),
		efficiency: EfficiencyScore(wpm, p),
	}

	cmb := e.trackCombo(in, words)
	multiplier := 1.0
	if e.combo.Enabled {
		multiplier = cmb.Multiplier
	} else {
		cmb.Multiplier, cmb.Level = 1, 1
	}

	w := p.Weights
	weighted := s.content*w.Content + s.delivery*w.Delivery + s.engagement*w.Engagement + s.efficiency*w.Efficiency
	total := clamp(weighted*multiplier*maxScoreValue, 0, maxScoreValue)

	res := model.ScoreResult{
		Total: round1(total),
		Breakdown: model.Breakdown{
			Content:    round1(s.content * maxScoreValue),
			Delivery:   round1(s.delivery * maxScoreValue),
			Engagement: round1(s.engagement * maxScoreValue),
			Efficiency: round1(s.efficiency * maxScoreValue),
		},
		Feedback: feedback(s, counts.Words, wpm, p),
		Combo:    cmb,
		Stats: model.Stats{
			WordCount:         counts.Words,
			KeywordCount:      counts.Positive,
			FillerCount:       counts.Filler,
			CategoriesCovered: counts.Covered(),
			WordsPerMinute:    wpm,
			DurationSeconds:   in.DurationSeconds,
			ShortInput:        counts.Words < p.MinWords,
			DeliveryDefaulted: in.Delivery == nil,
		},
	}
	res.Achievements = e.evaluator.Evaluate(res)

	return res, nil
}

func (e *Engine) trackCombo(in model.PitchInput, words []string) model.Combo {
	if len(in.Tokens) > 0 {
		return combo.Track(in.Tokens, e.lex, e.combo)
	}
	dur := time.Duration(in.DurationSeconds * float64(time.Second))
	return combo.Track(combo.Spread(words, dur), e.lex, e.combo)
}
