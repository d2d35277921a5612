package game

import (
	"time"

	"github.com/okian/pitchperfect/internal/domain/types"
)

// EventType classifies a game event.
type EventType string

// Game events, streamed to the presentation layer.
const (
	EventInvestorSpawned EventType = "investor_spawned"
	EventPitchStarted    EventType = "pitch_started"
	EventAttention       EventType = "attention"
	EventWarning         EventType = "attention_warning"
	EventPowerUp         EventType = "power_up"
	EventPowerUpExpired  EventType = "power_up_expired"
	EventPitchEnded      EventType = "pitch_ended"
	EventGameOver        EventType = "game_over"
)

// Event is something that happened during a game. Only the fields relevant
// to its type are set.
type Event struct {
	Type       EventType          `json:"type"`
	GameID     string             `json:"game_id"`
	At         time.Duration      `json:"at"`
	InvestorID string             `json:"investor_id,omitempty"`
	PitchID    string             `json:"pitch_id,omitempty"`
	Level      float64            `json:"level,omitempty"`
	Combo      int                `json:"combo,omitempty"`
	Modifier   types.ModifierKind `json:"modifier,omitempty"`
	Score      float64            `json:"score,omitempty"`
	Result     *PitchResult       `json:"result,omitempty"`
}

func (s *Session) event(t EventType, fill func(*Event)) Event {
	e := Event{Type: t, GameID: s.id, At: s.elapsed}
	if fill != nil {
		fill(&e)
	}
	return e
}

// PitchStartedEvent describes a pitch that has just begun.
func (s *Session) PitchStartedEvent(pitchID, investorID string) Event {
	return s.event(EventPitchStarted, func(e *Event) {
		e.PitchID = pitchID
		e.InvestorID = investorID
	})
}

// PowerUpEvent describes an activated power-up.
func (s *Session) PowerUpEvent(pitchID string, kind types.PowerUpKind) Event {
	return s.event(EventPowerUp, func(e *Event) {
		e.PitchID = pitchID
		e.Modifier = kind.Modifier()
	})
}

// PitchEndedEvent wraps a finished pitch.
func (s *Session) PitchEndedEvent(result PitchResult) Event {
	return s.event(EventPitchEnded, func(e *Event) { e.Result = &result })
}
