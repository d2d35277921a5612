package repository

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/okian/pitchperfect/internal/adapters/mq/queue"
	"github.com/okian/pitchperfect/internal/adapters/mq/worker"
	"github.com/okian/pitchperfect/pkg/metrics"
)

// DefaultGameTTL is how long an untouched game stays registered.
const DefaultGameTTL = 15 * time.Minute

// Game is a registered live game.
type Game struct {
	ID        string
	Player    string
	Runner    *worker.Runner
	Queue     queue.Queue
	CreatedAt time.Time
}

// Games is the registry of live games. Each lookup renews the idle TTL.
type Games struct {
	ttl       time.Duration
	cleanup   time.Duration
	onEvicted func(*Game)
	cache     *gocache.Cache
}

// NewGames creates a registry that evicts games idle for longer than ttl.
func NewGames(ttl time.Duration, opts ...GamesOption) *Games {
	if ttl <= 0 {
		ttl = DefaultGameTTL
	}
	g := &Games{ttl: ttl, cleanup: ttl / 2}

	for _, opt := range opts {
		opt(g)
	}

	g.cache = gocache.New(g.ttl, g.cleanup)
	g.cache.OnEvicted(func(_ string, v any) {
		metrics.UpdateGamesActive(g.cache.ItemCount())
		if g.onEvicted != nil {
			g.onEvicted(v.(*Game))
		}
	})
	return g
}

// Put registers game.
func (g *Games) Put(game *Game) error {
	if err := g.cache.Add(game.ID, game, gocache.DefaultExpiration); err != nil {
		return fmt.Errorf("%w: %s", ErrGameExists, game.ID)
	}
	metrics.UpdateGamesActive(g.cache.ItemCount())
	return nil
}

// Get returns the game and renews its TTL.
func (g *Games) Get(id string) (*Game, error) {
	v, ok := g.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	game := v.(*Game)
	g.cache.Set(id, game, gocache.DefaultExpiration)
	return game, nil
}

// Delete unregisters the game. The eviction callback runs if it was present.
func (g *Games) Delete(id string) bool {
	if _, ok := g.cache.Get(id); !ok {
		return false
	}
	g.cache.Delete(id)
	return true
}

// Count returns the number of registered games.
func (g *Games) Count() int { return g.cache.ItemCount() }

// List returns every registered game in no particular order.
func (g *Games) List() []*Game {
	items := g.cache.Items()
	out := make([]*Game, 0, len(items))
	for _, it := range items {
		out = append(out, it.Object.(*Game))
	}
	return out
}

// Flush removes every game, running the eviction callback for each.
func (g *Games) Flush() {
	for id := range g.cache.Items() {
		g.cache.Delete(id)
	}
}
