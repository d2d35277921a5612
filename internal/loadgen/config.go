// Package loadgen drives concurrent games against a running pitchperfect
// server and checks that the leaderboard agrees with what the players saw.
package loadgen

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/pitchperfect/internal/pitchsim"
)

// Config holds the load run settings.
type Config struct {
	BaseURL      string           // server root, e.g. http://localhost:9080
	Games        int              // games to play
	Players      int              // distinct players sharing the games
	Workers      int              // concurrent games
	Quality      pitchsim.Quality // generated pitch quality
	Words        int              // words per pitch
	ChunkWords   int              // words per transcript snapshot
	Pace         time.Duration    // pause between snapshots
	Delivery     bool             // send one delivery sample per snapshot
	Seed         int64            // transcript seed; game i uses Seed+i
	TopN         int              // leaderboard rows to fetch
	Timeout      time.Duration    // per request
	PollInterval time.Duration    // game and rank polling
	Settle       time.Duration    // how long to wait for the leaderboard to catch up
	PlayerPrefix string           // player name prefix, random when empty
}

// DefaultConfig returns a small run against a local server.
func DefaultConfig() Config {
	return Config{
		BaseURL:      "http://localhost:9080",
		Games:        20,
		Players:      5,
		Workers:      4,
		Quality:      pitchsim.QualityAverage,
		Words:        60,
		ChunkWords:   10,
		Pace:         500 * time.Millisecond,
		Seed:         1,
		TopN:         10,
		Timeout:      5 * time.Second,
		PollInterval: 100 * time.Millisecond,
		Settle:       10 * time.Second,
	}
}

func (c *Config) normalize() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	case c.Games < 1:
		return fmt.Errorf("%w: games must be positive", ErrInvalidConfig)
	case c.Players < 1:
		return fmt.Errorf("%w: players must be positive", ErrInvalidConfig)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	case c.Words < 1 || c.ChunkWords < 1:
		return fmt.Errorf("%w: words and chunk words must be positive", ErrInvalidConfig)
	case c.TopN < 1:
		return fmt.Errorf("%w: top must be positive", ErrInvalidConfig)
	case c.Timeout <= 0 || c.PollInterval <= 0 || c.Settle <= 0:
		return fmt.Errorf("%w: timeout, poll interval and settle must be positive", ErrInvalidConfig)
	}
	if _, err := pitchsim.ParseQuality(string(c.Quality)); err != nil {
		return err
	}
	if c.PlayerPrefix == "" {
		c.PlayerPrefix = "load-" + uuid.NewString()[:8]
	}
	return nil
}

func (c *Config) player(game int) string {
	return fmt.Sprintf("%s-%03d", c.PlayerPrefix, game%c.Players)
}
