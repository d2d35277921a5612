package attention

import "errors"

// Sentinel kinds for attention errors.
var (
	ErrInvalidConfig   = errors.New("invalid attention config")
	ErrUnknownModifier = errors.New("unknown modifier")
)
