package scoring

import "errors"

// Sentinel kinds for scoring errors. ErrInvalidDuration and ErrInvalidInput
// reject a pitch before any sub-scorer runs.
var (
	ErrInvalidDuration = errors.New("invalid duration")
	ErrInvalidInput    = errors.New("invalid pitch input")
	ErrInvalidPolicy   = errors.New("invalid scoring policy")
)
