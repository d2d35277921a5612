package dedupe

import "time"

// Option applies a configuration option to the deduper.
type Option func(*ttlDeduper)

// WithTTL sets how long IDs are remembered. Non-positive values keep the default.
func WithTTL(ttl time.Duration) Option {
	return func(d *ttlDeduper) {
		if ttl > 0 {
			d.ttl = ttl
		}
	}
}

// WithCleanupInterval sets how often expired IDs are swept. It defaults to the TTL.
func WithCleanupInterval(every time.Duration) Option {
	return func(d *ttlDeduper) {
		d.cleanup = every
	}
}
