package metadata

import (
	"strconv"
	"strings"
	"sync"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/naming"
)

// CacheStats counts lookups served from the cache (including waits on an in-flight
// lookup) and lookups that had to be computed.
type CacheStats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// Cache memoizes lookups for the life of the process. Both found and not-found outcomes
// are stored. Concurrent callers for the same key share one computation.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry[V]
	hits    int64
	misses  int64
}

type cacheEntry[V any] struct {
	done  chan struct{}
	value V
	found bool
}

func NewCache[V any]() *Cache[V] {
	return &Cache[V]{entries: make(map[string]*cacheEntry[V])}
}

// Do returns the cached outcome for key or computes it with fn. fn reports whether its
// outcome may be kept; outcomes that are not kept still reach callers already waiting.
func (c *Cache[V]) Do(key string, fn func() (value V, found bool, keep bool)) (V, bool) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.hits++
		c.mu.Unlock()
		<-e.done
		return e.value, e.found
	}
	e := &cacheEntry[V]{done: make(chan struct{})}
	c.entries[key] = e
	c.misses++
	c.mu.Unlock()

	value, found, keep := fn()
	e.value, e.found = value, found
	close(e.done)

	if !keep {
		c.mu.Lock()
		if c.entries[key] == e {
			delete(c.entries, key)
		}
		c.mu.Unlock()
	}
	return value, found
}

func (c *Cache[V]) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Hits: c.hits, Misses: c.misses, Entries: len(c.entries)}
}

// CacheKey builds the lookup key: normalized title, kind and the season or year that
// disambiguates it.
func CacheKey(title string, kind naming.MediaKind, seasonOrYear int) string {
	norm := strings.Join(strings.Fields(strings.ToLower(title)), " ")
	return norm + "|" + kind.String() + "|" + strconv.Itoa(seasonOrYear)
}
