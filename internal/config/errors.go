package config

import "errors"

// Sentinel kinds for config errors. Load and Build failures wrap
// ErrLoadConfig; rejected values wrap ErrInvalidConfig.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
