// Package types contains small enumerations shared across the application.
package types

// AchievementID names an achievement that a scored pitch can unlock.
type AchievementID string

// Known achievements, in evaluation order.
const (
	AchievementPerfectPitch  AchievementID = "perfect_pitch"
	AchievementComboMaster   AchievementID = "combo_master"
	AchievementSpeedDemon    AchievementID = "speed_demon"
	AchievementBusinessSavvy AchievementID = "business_savvy"
)

// Outcome is the terminal state of a pitch.
type Outcome string

// Pitch outcomes.
const (
	OutcomeSuccess   Outcome = "success"
	OutcomeFailure   Outcome = "failure"
	OutcomeExhausted Outcome = "exhausted"
	OutcomeAborted   Outcome = "aborted"
)

// PowerUpKind identifies a power-up an investor can carry.
type PowerUpKind string

// Power-up kinds.
const (
	PowerUpTimeFreeze   PowerUpKind = "time_freeze"
	PowerUpDoublePoints PowerUpKind = "double_points"
	PowerUpBoredomReset PowerUpKind = "boredom_reset"
)

// ModifierKind identifies a temporary override of the attention state.
type ModifierKind string

// Modifier kinds.
const (
	ModifierFreeze ModifierKind = "freeze"
	ModifierDouble ModifierKind = "double"
	ModifierReset  ModifierKind = "reset"
)

// Modifier returns the attention modifier a power-up applies.
func (k PowerUpKind) Modifier() ModifierKind {
	switch k {
	case PowerUpTimeFreeze:
		return ModifierFreeze
	case PowerUpDoublePoints:
		return ModifierDouble
	case PowerUpBoredomReset:
		return ModifierReset
	default:
		return ""
	}
}
