package cache

import (
	"context"
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/conneroisu/wikicore/internal/event"
	"github.com/conneroisu/wikicore/internal/observation"
	"github.com/conneroisu/wikicore/internal/syntax"
)

// RenderCache caches rendered output by the BLAKE3 hash of the source and
// the syntaxes involved, so equal content renders once whatever document
// it comes from.
type RenderCache struct {
	values *LRU[string]
}

// NewRenderCache creates a render cache.
func NewRenderCache(cfg Config) (*RenderCache, error) {
	if err := cfg.validate("render"); err != nil {
		return nil, err
	}
	return &RenderCache{values: NewLRU[string](cfg.MaxEntries, cfg.TTL)}, nil
}

// Key hashes source together with the input and output syntaxes and any
// extra variant strings.
func Key(source string, from, to syntax.Syntax, variant ...string) string {
	h := blake3.New()
	for _, part := range append([]string{from.String(), to.String()}, variant...) {
		_, _ = h.Write([]byte(part))
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write([]byte(source))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the output cached under key.
func (c *RenderCache) Get(key string) (string, bool) { return c.values.Get(key) }

// Set caches output under key.
func (c *RenderCache) Set(key, output string) { c.values.Set(key, output) }

// GetOrRender returns the cached output for key, or calls render and
// caches its result. The boolean reports a cache hit.
func (c *RenderCache) GetOrRender(key string, render func() (string, error)) (string, bool, error) {
	if out, ok := c.values.Get(key); ok {
		return out, true, nil
	}
	out, err := render()
	if err != nil {
		return "", false, err
	}
	c.values.Set(key, out)
	return out, false, nil
}

// Stats returns the cache counters.
func (c *RenderCache) Stats() Stats { return c.values.Stats() }

// Clear drops every cached output.
func (c *RenderCache) Clear() { c.values.Clear() }

// Listener returns the observation listener clearing the cache when any
// document changes. Outputs are keyed by content, and included documents
// are not part of the key, so they cannot be invalidated one by one.
func (c *RenderCache) Listener() observation.EventListener {
	return observation.ListenerFunc("cache/render/invalidation",
		func(context.Context, event.Event, interface{}, interface{}) { c.Clear() },
		event.DocumentUpdatedEvent(""),
		event.DocumentDeletedEvent(""),
	)
}
