// Package combo detects streaks of topic keywords spoken close together and
// maps the longest streak to a score multiplier.
package combo

import (
	"fmt"
	"time"

	"github.com/okian/pitchperfect/internal/domain/lexicon"
	"github.com/okian/pitchperfect/internal/domain/model"
)

// Default combo configuration.
const (
	DefaultWindow             = 3 * time.Second
	DefaultMinKeywordsPerStep = 3
)

// DefaultSteps is the ascending multiplier table.
var DefaultSteps = []float64{1.0, 1.2, 1.5, 1.8, 2.0}

// Config tunes streak detection.
type Config struct {
	// Enabled applies the multiplier to the composed score. Streaks are
	// tracked either way.
	Enabled bool `koanf:"enabled"`

	Window             time.Duration `koanf:"window"`
	MinKeywordsPerStep int           `koanf:"min_keywords_per_step"`
	Steps              []float64     `koanf:"steps"`
}

// DefaultConfig returns the built-in configuration with combos disabled.
func DefaultConfig() Config {
	steps := make([]float64, len(DefaultSteps))
	copy(steps, DefaultSteps)
	return Config{
		Window:             DefaultWindow,
		MinKeywordsPerStep: DefaultMinKeywordsPerStep,
		Steps:              steps,
	}
}

// Validate rejects tables and windows under which no streak could score.
func (c Config) Validate() error {
	switch {
	case c.Window <= 0:
		return fmt.Errorf("%w: window must be positive, got %s", ErrInvalidConfig, c.Window)
	case c.MinKeywordsPerStep < 1:
		return fmt.Errorf("%w: min_keywords_per_step must be positive, got %d", ErrInvalidConfig, c.MinKeywordsPerStep)
	case len(c.Steps) == 0:
		return fmt.Errorf("%w: steps must not be empty", ErrInvalidConfig)
	case c.Steps[0] < 1:
		return fmt.Errorf("%w: steps must start at 1 or more", ErrInvalidConfig)
	}
	for i := 1; i < len(c.Steps); i++ {
		if c.Steps[i] < c.Steps[i-1] {
			return fmt.Errorf("%w: steps must ascend, %.2f follows %.2f", ErrInvalidConfig, c.Steps[i], c.Steps[i-1])
		}
	}
	return nil
}

// MaxMultiplier is the last step of the table, 1.0 for an empty table.
func (c Config) MaxMultiplier() float64 {
	if len(c.Steps) == 0 {
		return 1
	}
	return c.Steps[len(c.Steps)-1]
}

// Multiplier maps a peak streak to its multiplier and 1-based level.
func (c Config) Multiplier(peak int) (float64, int) {
	if len(c.Steps) == 0 {
		return 1, 1
	}
	per := c.MinKeywordsPerStep
	if per <= 0 {
		per = DefaultMinKeywordsPerStep
	}
	idx := peak / per
	if idx >= len(c.Steps) {
		idx = len(c.Steps) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return c.Steps[idx], idx + 1
}

// Tracker follows a live token stream. It is not safe for concurrent use.
type Tracker struct {
	lex     *lexicon.Set
	cfg     Config
	streak  int
	peak    int
	lastHit time.Duration
	hits    int
}

// NewTracker creates a tracker for one pitch.
func NewTracker(lex *lexicon.Set, cfg Config) *Tracker {
	return &Tracker{lex: lex, cfg: cfg}
}

// Observe feeds one normalized token spoken at offset at. It reports whether
// the token was a combo hit. Tokens that are not hits leave the streak alone.
func (t *Tracker) Observe(token string, at time.Duration) bool {
	if _, ok := t.lex.CategoryOf(token); !ok {
		return false
	}

	if t.hits > 0 && at-t.lastHit <= t.cfg.Window {
		t.streak++
	} else {
		t.streak = 1
	}
	t.hits++
	t.lastHit = at
	if t.streak > t.peak {
		t.peak = t.streak
	}
	return true
}

// Streak returns the current streak length.
func (t *Tracker) Streak() int { return t.streak }

// Result summarises the streaks seen so far.
func (t *Tracker) Result() model.Combo {
	mult, level := t.cfg.Multiplier(t.peak)
	return model.Combo{PeakStreak: t.peak, Multiplier: mult, Level: level}
}

// Track runs a fresh Tracker over a finished token sequence. Each token text
// is normalized and may expand to several words sharing one timestamp.
func Track(tokens []model.TimedToken, lex *lexicon.Set, cfg Config) model.Combo {
	t := NewTracker(lex, cfg)
	for _, tok := range tokens {
		for _, w := range lexicon.Tokenize(tok.Text) {
			t.Observe(w, tok.At)
		}
	}
	return t.Result()
}

// Spread assigns evenly spaced offsets to words spoken over duration. It is
// used when the caller has no word timings.
func Spread(words []string, duration time.Duration) []model.TimedToken {
	out := make([]model.TimedToken, len(words))
	if len(words) == 0 {
		return out
	}
	step := duration / time.Duration(len(words))
	for i, w := range words {
		out[i] = model.TimedToken{Text: w, At: step * time.Duration(i)}
	}
	return out
}
