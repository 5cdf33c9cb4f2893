package backfill

import (
	"context"
	"fmt"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// GameIndex answers which games are already stored.
type GameIndex interface {
	AllGameIDs(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, ids []string) (map[string]bool, error)
}

// KnownGames keeps a bloom filter of stored game ids so date jobs only
// hit the database for ids that may already be imported. A filter miss
// is definite; a hit is confirmed against the index.
type KnownGames struct {
	index GameIndex

	mu     sync.Mutex
	filter *bloom.BloomFilter
	loaded bool
}

// NewKnownGames sizes the filter for about ten seasons of games.
func NewKnownGames(index GameIndex) *KnownGames {
	return &KnownGames{
		index:  index,
		filter: bloom.NewWithEstimates(20000, 0.01),
	}
}

// Load seeds the filter from the index. Safe to call again.
func (k *KnownGames) Load(ctx context.Context) error {
	ids, err := k.index.AllGameIDs(ctx)
	if err != nil {
		return fmt.Errorf("loading stored game ids: %w", err)
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	for _, id := range ids {
		k.filter.AddString(id)
	}
	k.loaded = true
	return nil
}

// Add records a freshly imported game.
func (k *KnownGames) Add(id string) {
	k.mu.Lock()
	k.filter.AddString(id)
	k.mu.Unlock()
}

// Missing returns the ids not yet stored, preserving order.
func (k *KnownGames) Missing(ctx context.Context, ids []string) ([]string, error) {
	k.mu.Lock()
	loaded := k.loaded
	k.mu.Unlock()
	if !loaded {
		if err := k.Load(ctx); err != nil {
			return nil, err
		}
	}

	var maybe []string
	k.mu.Lock()
	for _, id := range ids {
		if k.filter.TestString(id) {
			maybe = append(maybe, id)
		}
	}
	k.mu.Unlock()

	stored := map[string]bool{}
	if len(maybe) > 0 {
		var err error
		stored, err = k.index.Exists(ctx, maybe)
		if err != nil {
			return nil, fmt.Errorf("checking stored games: %w", err)
		}
	}

	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if !stored[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
