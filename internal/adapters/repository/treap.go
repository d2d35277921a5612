package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"github.com/okian/pitchperfect/pkg/metrics"
)

// Treap ordered by score DESC, then player ASC. In-order traversal yields the
// leaderboard best to worst. Priorities are a hash of the player name, which
// keeps the tree balanced in expectation and its shape reproducible.

type record struct {
	score  float64
	gameID string
	at     time.Time
}

type node struct {
	player string
	score  float64
	prio   uint64
	left   *node
	right  *node
	size   int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// before reports whether (aScore, aID) ranks ahead of (bScore, bID).
func before(aScore float64, aID string, bScore float64, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func priority(player string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(player))
	return h.Sum64()
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, player string, score float64) *node {
	if n == nil {
		return &node{player: player, score: score, prio: priority(player), size: 1}
	}
	if before(score, player, n.score, n.player) {
		n.left = insert(n.left, player, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, player, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func remove(n *node, player string, score float64) *node {
	if n == nil {
		return nil
	}
	switch {
	case n.player == player && n.score == score:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = remove(n.right, player, score)
		} else {
			n = rotateLeft(n)
			n.left = remove(n.left, player, score)
		}
	case before(score, player, n.score, n.player):
		n.left = remove(n.left, player, score)
	default:
		n.right = remove(n.right, player, score)
	}
	fix(n)
	return n
}

// countAbove counts nodes with a score strictly greater than score.
func countAbove(n *node, score float64) int {
	count := 0
	for n != nil {
		if n.score > score {
			count += 1 + nsize(n.left)
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

func collect(n *node, limit int, out *[]*node) {
	if n == nil || len(*out) >= limit {
		return
	}
	collect(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n)
	}
	collect(n.right, limit, out)
}

// TreapStore is an in-memory Leaderboard.
type TreapStore struct {
	mu    sync.RWMutex
	root  *node
	byID  map[string]record
	clock func() time.Time
}

var _ Leaderboard = (*TreapStore)(nil)

// NewTreapStore constructs an empty leaderboard.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		byID:  make(map[string]record),
		clock: time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// UpdateBest runs in O(log n) expected time.
func (s *TreapStore) UpdateBest(_ context.Context, player string, score float64, gameID string) (bool, error) {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return false, fmt.Errorf("%w: %v", ErrInvalidScore, score)
	}

	s.mu.Lock()
	old, ok := s.byID[player]
	if ok && score <= old.score {
		s.mu.Unlock()
		return false, nil
	}
	if ok {
		s.root = remove(s.root, player, old.score)
	}
	s.byID[player] = record{score: score, gameID: gameID, at: s.clock()}
	s.root = insert(s.root, player, score)
	count := len(s.byID)
	s.mu.Unlock()

	metrics.RecordLeaderboardUpdate()
	metrics.UpdateLeaderboardSize(count)
	return true, nil
}

// Rank runs in O(log n) expected time.
func (s *TreapStore) Rank(_ context.Context, player string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[player]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, player)
	}
	return Entry{
		Rank:   1 + countAbove(s.root, rec.score),
		Player: player,
		Score:  rec.score,
		GameID: rec.gameID,
		At:     rec.at,
	}, nil
}

// TopN returns the best n rows.
func (s *TreapStore) TopN(_ context.Context, n int) ([]Entry, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]*node, 0, min(n, len(s.byID)))
	collect(s.root, n, &nodes)

	out := make([]Entry, len(nodes))
	for i, nd := range nodes {
		rec := s.byID[nd.player]
		rank := i + 1
		if i > 0 && nd.score == out[i-1].Score {
			rank = out[i-1].Rank
		}
		out[i] = Entry{Rank: rank, Player: nd.player, Score: rec.score, GameID: rec.gameID, At: rec.at}
	}
	return out, nil
}

// Count returns the number of players on the board.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
