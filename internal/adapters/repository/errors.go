package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound     = errors.New("player not found")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
	ErrInvalidScore = errors.New("invalid leaderboard score")
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)
