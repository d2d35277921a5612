// Package attention simulates an investor's growing boredom during a pitch.
//
// A State belongs to exactly one pitch and is mutated only by its owner:
// Simulator.Tick, ApplyModifier, Expire and ApplyDelivery. It is not safe
// for concurrent use.
package attention

import (
	"math"
	"sort"
	"time"

	"github.com/okian/pitchperfect/internal/domain/investor"
	"github.com/okian/pitchperfect/internal/domain/model"
	"github.com/okian/pitchperfect/internal/domain/types"
)

// MaxLevel is the terminal attention-loss level.
const MaxLevel = 100

// Phase is the lifecycle stage of a State.
type Phase int

// Lifecycle stages.
const (
	PhaseInactive Phase = iota
	PhaseGrace
	PhaseScoring
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseInactive:
		return "inactive"
	case PhaseGrace:
		return "grace"
	case PhaseScoring:
		return "scoring"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Handle identifies one applied modifier.
type Handle struct {
	ID        uint64             `json:"id"`
	Kind      types.ModifierKind `json:"kind"`
	ExpiresAt time.Duration      `json:"expires_at"` // pitch-elapsed time
}

// State is the attention of one investor during one pitch.
type State struct {
	Level           float64
	IncrementFactor float64
	Warned          bool
	GraceElapsed    time.Duration
	Elapsed         time.Duration
	Phase           Phase

	base        float64
	silentTicks int
	lastLen     int
	lastWords   []string
	nextHandle  uint64
	active      map[types.ModifierKind]map[uint64]Handle
}

// NewState starts attention for a pitch to an investor with profile p. The
// state begins in its grace period.
func NewState(p investor.Profile, cfg Config) *State {
	base := cfg.BaseIncrement * p.BoredomRate
	return &State{
		IncrementFactor: base,
		Phase:           PhaseGrace,
		base:            base,
		active:          make(map[types.ModifierKind]map[uint64]Handle),
	}
}

// Active reports whether the state still reacts to ticks.
func (s *State) Active() bool {
	return s.Phase == PhaseGrace || s.Phase == PhaseScoring
}

// Exhausted reports whether attention ran out.
func (s *State) Exhausted() bool { return s.Level >= MaxLevel }

// End stops the state. Later ticks are no-ops.
func (s *State) End() {
	s.Phase = PhaseEnded
	clear(s.active)
}

// BaseIncrement is the profile-scaled starting increment.
func (s *State) BaseIncrement() float64 { return s.base }

// Frozen reports whether any freeze modifier is active.
func (s *State) Frozen() bool { return len(s.active[types.ModifierFreeze]) > 0 }

// Doubled reports whether any double modifier is active.
func (s *State) Doubled() bool { return len(s.active[types.ModifierDouble]) > 0 }

// ScoreMultiplier is the external multiplier the modifiers grant. Overlapping
// doubles do not stack.
func (s *State) ScoreMultiplier() float64 {
	if s.Doubled() {
		return 2
	}
	return 1
}

// EffectiveIncrement is the per-tick increment after modifiers.
func (s *State) EffectiveIncrement() float64 {
	if s.Frozen() {
		return 0
	}
	return s.IncrementFactor
}

// ApplyModifier applies kind for d of pitch-elapsed time. A reset takes
// effect immediately and its handle is already expired. Timed overrides are
// tracked per handle, so the effect lasts until the last handle of its kind
// expires while the underlying factor keeps evolving.
func (s *State) ApplyModifier(kind types.ModifierKind, d time.Duration) (Handle, error) {
	s.nextHandle++
	h := Handle{ID: s.nextHandle, Kind: kind, ExpiresAt: s.Elapsed}

	switch kind {
	case types.ModifierReset:
		s.Level = 0
		s.Warned = false
		return h, nil
	case types.ModifierFreeze, types.ModifierDouble:
		h.ExpiresAt = s.Elapsed + d
		set, ok := s.active[kind]
		if !ok {
			set = make(map[uint64]Handle)
			s.active[kind] = set
		}
		set[h.ID] = h
		return h, nil
	default:
		return Handle{}, ErrUnknownModifier
	}
}

// Expire ends h early. It reports whether h was still active.
func (s *State) Expire(h Handle) bool {
	set := s.active[h.Kind]
	if _, ok := set[h.ID]; !ok {
		return false
	}
	delete(set, h.ID)
	return true
}

// Modifiers lists the active handles.
func (s *State) Modifiers() []Handle {
	var out []Handle
	for _, set := range s.active {
		for _, h := range set {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *State) expireDue() []Handle {
	var expired []Handle
	for _, set := range s.active {
		for id, h := range set {
			if h.ExpiresAt <= s.Elapsed {
				delete(set, id)
				expired = append(expired, h)
			}
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].ID < expired[j].ID })
	return expired
}

// ApplyDelivery damps the increment factor by the speaker's confidence. The
// factor never drops below half the base increment.
func (s *State) ApplyDelivery(a model.DeliveryAnalysis, cfg Config) {
	if !s.Active() {
		return
	}
	conf := math.Max(0, math.Min(1, a.Confidence))
	s.IncrementFactor = math.Max(s.base/2, s.IncrementFactor*(1-conf*cfg.ConfidenceDamping))
}
