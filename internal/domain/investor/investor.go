// Package investor defines the investor profiles a game spawns and the
// power-ups they may carry.
package investor

import (
	"fmt"
	"time"

	"github.com/okian/pitchperfect/internal/domain/types"
)

// Type names an investor profile.
type Type string

// Built-in investor types.
const (
	TypeNormal            Type = "normal"
	TypeVentureCapitalist Type = "venture_capitalist"
	TypeAngel             Type = "angel_investor"
	TypeShark             Type = "shark"
)

// DefaultPowerUpChance is the probability a spawned investor carries a power-up.
const DefaultPowerUpChance = 0.3

// Profile describes how an investor reacts to a pitch.
type Profile struct {
	Type            Type    `koanf:"type"             json:"type"`
	BoredomRate     float64 `koanf:"boredom_rate"     json:"boredom_rate"`
	ScoreMultiplier float64 `koanf:"score_multiplier" json:"score_multiplier"`
	Rarity          float64 `koanf:"rarity"           json:"rarity"`
}

// PowerUp is a one-shot effect an investor can hand to the player.
type PowerUp struct {
	Kind     types.PowerUpKind `koanf:"kind"     json:"kind"`
	Duration time.Duration     `koanf:"duration" json:"duration"`
	Rarity   float64           `koanf:"rarity"   json:"rarity"`
}

// DefaultProfiles returns the built-in profiles. The first entry is the
// fallback when a roll lands past every cumulative rarity.
func DefaultProfiles() []Profile {
	return []Profile{
		{Type: TypeNormal, BoredomRate: 1.0, ScoreMultiplier: 1.0, Rarity: 0.7},
		{Type: TypeVentureCapitalist, BoredomRate: 0.8, ScoreMultiplier: 1.5, Rarity: 0.15},
		{Type: TypeAngel, BoredomRate: 0.7, ScoreMultiplier: 2.0, Rarity: 0.1},
		{Type: TypeShark, BoredomRate: 1.3, ScoreMultiplier: 1.8, Rarity: 0.05},
	}
}

// DefaultPowerUps returns the built-in power-ups. Their rarities sum to less
// than one, so a lucky investor may still end up empty-handed.
func DefaultPowerUps() []PowerUp {
	return []PowerUp{
		{Kind: types.PowerUpTimeFreeze, Duration: 5 * time.Second, Rarity: 0.2},
		{Kind: types.PowerUpDoublePoints, Duration: 8 * time.Second, Rarity: 0.15},
		{Kind: types.PowerUpBoredomReset, Rarity: 0.25},
	}
}

// Catalog picks profiles and power-ups from random rolls in [0,1).
type Catalog struct {
	profiles      []Profile
	powerUps      []PowerUp
	powerUpChance float64
}

// NewCatalog validates and wraps the given tables.
func NewCatalog(profiles []Profile, powerUps []PowerUp, powerUpChance float64) (*Catalog, error) {
	if len(profiles) == 0 {
		return nil, fmt.Errorf("%w: no investor profiles", ErrInvalidCatalog)
	}
	for _, p := range profiles {
		if p.Type == "" || p.BoredomRate < 0 || p.ScoreMultiplier <= 0 || p.Rarity < 0 {
			return nil, fmt.Errorf("%w: bad profile %q", ErrInvalidCatalog, p.Type)
		}
	}
	for _, pu := range powerUps {
		if pu.Kind.Modifier() == "" || pu.Duration < 0 || pu.Rarity < 0 {
			return nil, fmt.Errorf("%w: bad power-up %q", ErrInvalidCatalog, pu.Kind)
		}
	}
	if powerUpChance < 0 || powerUpChance > 1 {
		return nil, fmt.Errorf("%w: power-up chance %.2f outside [0,1]", ErrInvalidCatalog, powerUpChance)
	}
	return &Catalog{profiles: profiles, powerUps: powerUps, powerUpChance: powerUpChance}, nil
}

// Default returns the catalog of built-in tables.
func Default() *Catalog {
	return &Catalog{profiles: DefaultProfiles(), powerUps: DefaultPowerUps(), powerUpChance: DefaultPowerUpChance}
}

// Pick returns the first profile whose cumulative rarity covers roll.
func (c *Catalog) Pick(roll float64) Profile {
	cum := 0.0
	for _, p := range c.profiles {
		cum += p.Rarity
		if roll <= cum {
			return p
		}
	}
	return c.profiles[0]
}

// PickPowerUp decides whether an investor carries a power-up. chanceRoll is
// compared with the carry chance, kindRoll selects the kind.
func (c *Catalog) PickPowerUp(chanceRoll, kindRoll float64) (PowerUp, bool) {
	if chanceRoll >= c.powerUpChance {
		return PowerUp{}, false
	}
	cum := 0.0
	for _, pu := range c.powerUps {
		cum += pu.Rarity
		if kindRoll <= cum {
			return pu, true
		}
	}
	return PowerUp{}, false
}

// Profile looks up a profile by type.
func (c *Catalog) Profile(t Type) (Profile, bool) {
	for _, p := range c.profiles {
		if p.Type == t {
			return p, true
		}
	}
	return Profile{}, false
}
