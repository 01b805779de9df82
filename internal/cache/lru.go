// Package cache provides the caches of the rendering pipeline: a generic
// LRU with TTL, a document cache invalidated by document events, and a
// render cache keyed by content hash.
package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// Stats are the counters of a cache.
type Stats struct {
	Entries   int
	Hits      int64
	Misses    int64
	Sets      int64
	Deletes   int64
	Evictions int64
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

type entry[V any] struct {
	key       string
	value     V
	createdAt time.Time
	prev      *entry[V]
	next      *entry[V]
}

// LRU is a bounded cache evicting the least recently used entry. Entries
// older than the TTL are dropped on access. It is safe for concurrent use.
type LRU[V any] struct {
	mu         sync.Mutex
	entries    map[string]*entry[V]
	maxEntries int
	ttl        time.Duration
	head       *entry[V]
	tail       *entry[V]
	onEvict    func(key string, value V)
	now        func() time.Time

	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	evictions int64
}

// NewLRU creates a cache holding up to maxEntries values for ttl. A zero
// ttl never expires entries.
func NewLRU[V any](maxEntries int, ttl time.Duration) *LRU[V] {
	c := &LRU[V]{
		entries:    make(map[string]*entry[V]),
		maxEntries: maxEntries,
		ttl:        ttl,
		head:       &entry[V]{},
		tail:       &entry[V]{},
		now:        time.Now,
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// OnEvict sets a function called, under the cache lock, for every entry
// removed by eviction or expiry.
func (c *LRU[V]) OnEvict(fn func(key string, value V)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvict = fn
}

func (c *LRU[V]) expired(e *entry[V]) bool {
	return c.ttl > 0 && c.now().Sub(e.createdAt) > c.ttl
}

// Get returns the value stored under key.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return zero, false
	}
	if c.expired(e) {
		c.drop(e)
		atomic.AddInt64(&c.misses, 1)
		return zero, false
	}
	c.moveToFront(e)
	atomic.AddInt64(&c.hits, 1)
	return e.value, true
}

// Set stores value under key, evicting the least recently used entries
// when the cache is full.
func (c *LRU[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	atomic.AddInt64(&c.sets, 1)

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.createdAt = c.now()
		c.moveToFront(e)
		return
	}
	for c.maxEntries > 0 && len(c.entries) >= c.maxEntries && c.tail.prev != c.head {
		c.drop(c.tail.prev)
	}
	e := &entry[V]{key: key, value: value, createdAt: c.now()}
	c.entries[key] = e
	c.addToFront(e)
}

// Delete removes key and reports whether it was present.
func (c *LRU[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return false
	}
	c.removeFromList(e)
	delete(c.entries, key)
	atomic.AddInt64(&c.deletes, 1)
	return true
}

// Len returns the number of entries, expired ones included.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear removes every entry and resets the counters.
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry[V])
	c.head.next = c.tail
	c.tail.prev = c.head
	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
	atomic.StoreInt64(&c.sets, 0)
	atomic.StoreInt64(&c.deletes, 0)
	atomic.StoreInt64(&c.evictions, 0)
}

// Stats returns the current counters.
func (c *LRU[V]) Stats() Stats {
	c.mu.Lock()
	n := len(c.entries)
	c.mu.Unlock()
	return Stats{
		Entries:   n,
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Sets:      atomic.LoadInt64(&c.sets),
		Deletes:   atomic.LoadInt64(&c.deletes),
		Evictions: atomic.LoadInt64(&c.evictions),
	}
}

// drop evicts e. Callers hold the lock.
func (c *LRU[V]) drop(e *entry[V]) {
	c.removeFromList(e)
	delete(c.entries, e.key)
	atomic.AddInt64(&c.evictions, 1)
	if c.onEvict != nil {
		c.onEvict(e.key, e.value)
	}
}

func (c *LRU[V]) addToFront(e *entry[V]) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *LRU[V]) removeFromList(e *entry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
}

func (c *LRU[V]) moveToFront(e *entry[V]) {
	c.removeFromList(e)
	c.addToFront(e)
}
