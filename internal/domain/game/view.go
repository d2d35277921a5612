package game

import (
	"github.com/okian/pitchperfect/internal/domain/attention"
	"github.com/okian/pitchperfect/internal/domain/investor"
	"github.com/okian/pitchperfect/internal/domain/types"
)

// InvestorView is the public state of one investor.
type InvestorView struct {
	ID              string            `json:"id"`
	Type            investor.Type     `json:"type"`
	ScoreMultiplier float64           `json:"score_multiplier"`
	PowerUp         types.PowerUpKind `json:"power_up,omitempty"`
	PowerUpUsed     bool              `json:"power_up_used,omitempty"`
	Pitched         bool              `json:"pitched"`
}

// PitchView is the public state of the pitch in progress.
type PitchView struct {
	ID             string             `json:"id"`
	InvestorID     string             `json:"investor_id"`
	StartedAt      float64            `json:"started_at_seconds"`
	ElapsedSeconds float64            `json:"elapsed_seconds"`
	Words          int                `json:"words"`
	Attention      float64            `json:"attention"`
	Increment      float64            `json:"increment"`
	Phase          string             `json:"phase"`
	Warned         bool               `json:"warned"`
	Frozen         bool               `json:"frozen"`
	Doubled        bool               `json:"doubled"`
	ComboStreak    int                `json:"combo_streak"`
	Modifiers      []attention.Handle `json:"modifiers,omitempty"`
}

// View is a read-only snapshot of a Session.
type View struct {
	ID               string         `json:"id"`
	ElapsedSeconds   float64        `json:"elapsed_seconds"`
	RemainingSeconds float64        `json:"remaining_seconds"`
	Score            float64        `json:"score"`
	Over             bool           `json:"over"`
	Investors        []InvestorView `json:"investors"`
	Pitch            *PitchView     `json:"pitch,omitempty"`
	History          []PitchResult  `json:"history"`
}

// Snapshot copies the session state for callers outside the owning goroutine.
func (s *Session) Snapshot() View {
	v := View{
		ID:               s.id,
		ElapsedSeconds:   s.elapsed.Seconds(),
		RemainingSeconds: max(0, (s.cfg.Duration - s.elapsed).Seconds()),
		Score:            s.score,
		Over:             s.over,
		Investors:        make([]InvestorView, 0, len(s.investors)),
		History:          append([]PitchResult(nil), s.history...),
	}
	for _, inv := range s.investors {
		iv := InvestorView{
			ID:              inv.ID,
			Type:            inv.Profile.Type,
			ScoreMultiplier: inv.Profile.ScoreMultiplier,
			PowerUpUsed:     inv.PowerUpUsed,
			Pitched:         inv.Pitched,
		}
		if inv.PowerUp != nil {
			iv.PowerUp = inv.PowerUp.Kind
		}
		v.Investors = append(v.Investors, iv)
	}
	if p := s.current; p != nil {
		v.Pitch = &PitchView{
			ID:             p.id,
			InvestorID:     p.investor.ID,
			StartedAt:      p.startedAt.Seconds(),
			ElapsedSeconds: p.elapsed.Seconds(),
			Words:          len(p.spoken),
			Attention:      p.state.Level,
			Increment:      p.state.EffectiveIncrement(),
			Phase:          p.state.Phase.String(),
			Warned:         p.state.Warned,
			Frozen:         p.state.Frozen(),
			Doubled:        p.state.Doubled(),
			ComboStreak:    p.combo.Streak(),
			Modifiers:      p.state.Modifiers(),
		}
	}
	return v
}
