// Package dedupe tracks chunk IDs so retried pushes are applied at most once.
package dedupe

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL is how long an ID is remembered.
const DefaultTTL = 10 * time.Minute

// Deduper records seen IDs to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord reports whether id was already seen and records it if not.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so a push that was rejected downstream can be retried.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// ttlDeduper forgets IDs after a fixed TTL.
type ttlDeduper struct {
	ttl     time.Duration
	cleanup time.Duration
	cache   *gocache.Cache
}

// NewInMemoryDeduper creates a deduper backed by an expiring in-memory cache.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &ttlDeduper{ttl: DefaultTTL}

	for _, opt := range opts {
		opt(d)
	}

	if d.cleanup <= 0 {
		d.cleanup = d.ttl
	}
	d.cache = gocache.New(d.ttl, d.cleanup)
	return d
}

// SeenAndRecord relies on Add failing for a live key, which makes the check
// and the insert one atomic step.
func (d *ttlDeduper) SeenAndRecord(_ context.Context, id string) bool {
	return d.cache.Add(id, struct{}{}, gocache.DefaultExpiration) != nil
}

func (d *ttlDeduper) Unrecord(_ context.Context, id string) {
	d.cache.Delete(id)
}

// Size counts remembered IDs, possibly including expired ones not yet swept.
func (d *ttlDeduper) Size() int64 {
	return int64(d.cache.ItemCount())
}
