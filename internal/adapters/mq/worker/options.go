package worker

import (
	"time"

	"github.com/okian/pitchperfect/pkg/logger"
)

// Option applies a configuration option to the Runner.
type Option func(*Runner)

// WithName sets the runner name for logging.
func WithName(name string) Option {
	return func(r *Runner) {
		if name != "" {
			r.name = name
		}
	}
}

// WithLogger sets a custom logger for the runner.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTickInterval sets the wall-clock period between game ticks. Each tick
// still advances the game by one attention interval, so a shorter period
// fast-forwards the game.
func WithTickInterval(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.tickInterval = d
		}
	}
}

// WithSubscriberBuffer sets the event buffer of each subscriber.
func WithSubscriberBuffer(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.subBuffer = n
		}
	}
}
