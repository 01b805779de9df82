package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/event"
	"github.com/conneroisu/wikicore/internal/logging"
	"github.com/conneroisu/wikicore/internal/model"
	"github.com/conneroisu/wikicore/internal/observation"
)

// Config sizes a cache.
type Config struct {
	MaxEntries int
	TTL        time.Duration
}

func (c Config) validate(name string) error {
	if c.MaxEntries <= 0 {
		return errors.NewCacheError(errors.ErrCodeCacheInit,
			fmt.Sprintf("cache %s: max entries must be positive, got %d", name, c.MaxEntries), nil)
	}
	if c.TTL < 0 {
		return errors.NewCacheError(errors.ErrCodeCacheInit,
			fmt.Sprintf("cache %s: negative ttl %s", name, c.TTL), nil)
	}
	return nil
}

// DocumentCache caches values computed from documents. A value is keyed by
// its document and extra key parts; a mapping from each document to its
// keys lets a document change drop every value derived from it at once.
type DocumentCache[V any] struct {
	name    string
	mu      sync.Mutex
	values  *LRU[V]
	mapping map[string]map[string]struct{}
	logger  logging.Logger
}

// NewDocumentCache creates a document cache. An invalid configuration is a
// cache error.
func NewDocumentCache[V any](name string, cfg Config, logger logging.Logger) (*DocumentCache[V], error) {
	if err := cfg.validate(name); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}
	c := &DocumentCache[V]{
		name:    name,
		values:  NewLRU[V](cfg.MaxEntries, cfg.TTL),
		mapping: make(map[string]map[string]struct{}),
		logger:  logger.WithComponent("cache").With("cache", name),
	}
	// runs under c.mu: every LRU call that can evict is made with it held
	c.values.OnEvict(func(key string, _ V) { c.unmap(key) })
	return c, nil
}

// Name returns the cache name.
func (c *DocumentCache[V]) Name() string { return c.name }

const keySep = "\x00"

func cacheKey(doc string, extra []string) string {
	return doc + keySep + strings.Join(extra, keySep)
}

func (c *DocumentCache[V]) unmap(key string) {
	doc, _, _ := strings.Cut(key, keySep)
	keys := c.mapping[doc]
	delete(keys, key)
	if len(keys) == 0 {
		delete(c.mapping, doc)
	}
}

// Get returns the value cached for doc and extra.
func (c *DocumentCache[V]) Get(doc *model.EntityReference, extra ...string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values.Get(cacheKey(doc.String(), extra))
}

// Set caches value for doc and extra.
func (c *DocumentCache[V]) Set(doc *model.EntityReference, value V, extra ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := doc.String()
	key := cacheKey(d, extra)
	c.values.Set(key, value)
	if c.mapping[d] == nil {
		c.mapping[d] = make(map[string]struct{})
	}
	c.mapping[d][key] = struct{}{}
}

// Remove drops every value of the document doc, given in its string form,
// and returns how many were dropped.
func (c *DocumentCache[V]) Remove(doc string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key := range c.mapping[doc] {
		if c.values.Delete(key) {
			n++
		}
	}
	delete(c.mapping, doc)
	return n
}

// Keys returns the number of cached values of doc.
func (c *DocumentCache[V]) Keys(doc *model.EntityReference) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.mapping[doc.String()])
}

// Clear empties the cache.
func (c *DocumentCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values.Clear()
	c.mapping = make(map[string]map[string]struct{})
}

// Stats returns the counters of the underlying LRU.
func (c *DocumentCache[V]) Stats() Stats { return c.values.Stats() }

// Listener returns the observation listener invalidating the cache when a
// document is updated or deleted.
func (c *DocumentCache[V]) Listener() observation.EventListener {
	return observation.ListenerFunc("cache/"+c.name+"/invalidation",
		func(ctx context.Context, e event.Event, _, _ interface{}) {
			de, ok := e.(event.DocumentEvent)
			if !ok {
				return
			}
			if n := c.Remove(de.Reference); n > 0 {
				c.logger.Debug(ctx, "invalidated document", "document", de.Reference, "action", de.Action.String(), "entries", n)
			}
		},
		event.DocumentUpdatedEvent(""),
		event.DocumentDeletedEvent(""),
	)
}
