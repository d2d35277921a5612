// Package repository keeps live games and the all-time leaderboard in memory.
package repository

import (
	"context"
	"time"
)

// Entry is a leaderboard row: a player's best finished game.
type Entry struct {
	Rank   int       `json:"rank"`
	Player string    `json:"player"`
	Score  float64   `json:"score"`
	GameID string    `json:"game_id"`
	At     time.Time `json:"at"`
}

// Leaderboard ranks players by their best game score.
type Leaderboard interface {
	// UpdateBest stores score for player if it beats the player's best.
	// It reports whether the board changed.
	UpdateBest(ctx context.Context, player string, score float64, gameID string) (bool, error)

	// Rank returns the player's row. Players with equal scores share a rank.
	// Returns ErrNotFound if the player is unknown.
	Rank(ctx context.Context, player string) (Entry, error)

	// TopN returns the best n rows, highest score first, ties by player name.
	TopN(ctx context.Context, n int) ([]Entry, error)

	Count(ctx context.Context) int
}
