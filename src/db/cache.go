package db

import (
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/google/uuid"
)

// InsightCache holds generated insight text per user and question. Keys are
// tracked per user so every entry of one user can be dropped at once when
// that user's transactions change. A nil *InsightCache caches nothing.
//
// Each user also has a generation, bumped by Invalidate. Writers read it
// before loading the data they summarise and pass it to SetIfCurrent, which
// refuses to store text computed before a later invalidation.
type InsightCache struct {
	cache *ristretto.Cache[string, string]
	ttl   time.Duration

	mu          sync.Mutex
	keys        map[uuid.UUID]map[string]struct{}
	generations map[uuid.UUID]uint64
}

func NewInsightCache(ttl time.Duration) (*InsightCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     1 << 22,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, err
	}
	return &InsightCache{
		cache: cache,
		ttl:   ttl,
		keys:  make(map[uuid.UUID]map[string]struct{}),

		generations: make(map[uuid.UUID]uint64),
	}, nil
}

func insightKey(userID uuid.UUID, question string) string {
	return userID.String() + "|" + question
}

func (c *InsightCache) Get(userID uuid.UUID, question string) (string, bool) {
	if c == nil {
		return "", false
	}
	return c.cache.Get(insightKey(userID, question))
}

func (c *InsightCache) Generation(userID uuid.UUID) uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[userID]
}

func (c *InsightCache) Set(userID uuid.UUID, question, insights string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(userID, question, insights)
}

// SetIfCurrent stores insights only if userID has not been invalidated since
// gen was read. It reports whether the entry was stored.
func (c *InsightCache) SetIfCurrent(userID uuid.UUID, question, insights string, gen uint64) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[userID] != gen {
		return false
	}
	c.setLocked(userID, question, insights)
	return true
}

// setLocked must be called with mu held so Invalidate cannot interleave
// between recording the key and writing the entry.
func (c *InsightCache) setLocked(userID uuid.UUID, question, insights string) {
	key := insightKey(userID, question)
	if c.keys[userID] == nil {
		c.keys[userID] = make(map[string]struct{})
	}
	c.keys[userID][key] = struct{}{}

	c.cache.SetWithTTL(key, insights, int64(len(insights))+1, c.ttl)
	c.cache.Wait()
}

// Invalidate drops every cached entry for userID and bumps its generation.
func (c *InsightCache) Invalidate(userID uuid.UUID) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generations[userID]++
	for key := range c.keys[userID] {
		c.cache.Del(key)
	}
	delete(c.keys, userID)
}

func (c *InsightCache) Close() {
	if c == nil {
		return
	}
	c.cache.Close()
}
