package game

import "errors"

// Sentinel kinds for session errors.
var (
	ErrGameOver         = errors.New("game over")
	ErrPitchActive      = errors.New("a pitch is already in progress")
	ErrNoActivePitch    = errors.New("no active pitch")
	ErrStalePitch       = errors.New("stale pitch")
	ErrInvestorNotFound = errors.New("investor not found")
	ErrInvestorPitched  = errors.New("investor already pitched")
	ErrNoPowerUp        = errors.New("no power-up available")
	ErrInvalidConfig    = errors.New("invalid game config")
)
