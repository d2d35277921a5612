package pitchsim

import "errors"

// Sentinel kinds for simulation errors.
var (
	ErrUnknownQuality = errors.New("unknown pitch quality")
	ErrInvalidPlan    = errors.New("invalid simulation plan")
)
