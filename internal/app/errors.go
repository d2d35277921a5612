package service

import (
	"errors"

	"github.com/okian/pitchperfect/internal/adapters/repository"
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrGameNotFound = repository.ErrGameNotFound
)
