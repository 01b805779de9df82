package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/event"
	"github.com/conneroisu/wikicore/internal/model"
	"github.com/conneroisu/wikicore/internal/observation"
	"github.com/conneroisu/wikicore/internal/syntax"
)

func doc(page string) *model.EntityReference {
	return model.NewDocumentReference("xwiki", []string{"Main"}, page)
}

func TestNewDocumentCacheValidates(t *testing.T) {
	_, err := NewDocumentCache[string]("bad", Config{MaxEntries: 0}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCacheError(err))

	_, err = NewDocumentCache[string]("bad", Config{MaxEntries: 1, TTL: -time.Second}, nil)
	assert.True(t, errors.IsCacheError(err))
}

func TestDocumentCacheKeys(t *testing.T) {
	c, err := NewDocumentCache[string]("render", Config{MaxEntries: 10}, nil)
	require.NoError(t, err)

	c.Set(doc("A"), "html", "xhtml/1.0")
	c.Set(doc("A"), "text", "plain/1.0")
	c.Set(doc("B"), "b")

	v, ok := c.Get(doc("A"), "xhtml/1.0")
	require.True(t, ok)
	assert.Equal(t, "html", v)
	_, ok = c.Get(doc("A"))
	assert.False(t, ok)
	assert.Equal(t, 2, c.Keys(doc("A")))

	assert.Equal(t, 2, c.Remove(doc("A").String()))
	_, ok = c.Get(doc("A"), "plain/1.0")
	assert.False(t, ok)
	v, ok = c.Get(doc("B"))
	assert.True(t, ok)
	assert.Equal(t, "b", v)
	assert.Zero(t, c.Remove("xwiki:Nope.Page"))
}

func TestDocumentCacheEvictionCleansMapping(t *testing.T) {
	c, err := NewDocumentCache[int]("small", Config{MaxEntries: 1}, nil)
	require.NoError(t, err)
	c.Set(doc("A"), 1)
	c.Set(doc("B"), 2)
	assert.Zero(t, c.Keys(doc("A")))
	assert.Equal(t, 1, c.Keys(doc("B")))
	assert.Equal(t, int64(1), c.Stats().Evictions)

	c.Clear()
	assert.Zero(t, c.Keys(doc("B")))
}

func TestDocumentCacheInvalidatedByEvents(t *testing.T) {
	c, err := NewDocumentCache[string]("xdom", Config{MaxEntries: 10}, nil)
	require.NoError(t, err)
	m := observation.NewManager(nil)
	m.AddListener(c.Listener())
	assert.Contains(t, m.Listeners(), "cache/xdom/invalidation")

	ctx := context.Background()
	c.Set(doc("A"), "a")
	c.Set(doc("B"), "b")

	m.Notify(ctx, event.DocumentCreatedEvent(doc("A").String()), nil, nil)
	_, ok := c.Get(doc("A"))
	assert.True(t, ok, "creation does not invalidate")

	m.Notify(ctx, event.DocumentUpdatedEvent(doc("A").String()), nil, nil)
	_, ok = c.Get(doc("A"))
	assert.False(t, ok)

	m.Notify(ctx, event.DocumentDeletedEvent(doc("B").String()), nil, nil)
	_, ok = c.Get(doc("B"))
	assert.False(t, ok)
}

func TestRenderCache(t *testing.T) {
	c, err := NewRenderCache(Config{MaxEntries: 4})
	require.NoError(t, err)

	k := Key("**a**", syntax.XWiki21, syntax.XHTML10)
	assert.Len(t, k, 64)
	assert.Equal(t, k, Key("**a**", syntax.XWiki21, syntax.XHTML10))
	assert.NotEqual(t, k, Key("**a**", syntax.XWiki21, syntax.Plain10))
	assert.NotEqual(t, k, Key("**a**", syntax.XWiki21, syntax.XHTML10, "Main.A"))

	calls := 0
	render := func() (string, error) {
		calls++
		return "<strong>a</strong>", nil
	}
	out, hit, err := c.GetOrRender(k, render)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "<strong>a</strong>", out)

	out, hit, err = c.GetOrRender(k, render)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "<strong>a</strong>", out)
	assert.Equal(t, 1, calls)

	_, _, err = c.GetOrRender("other", func() (string, error) { return "", assert.AnError })
	assert.ErrorIs(t, err, assert.AnError)
	_, ok := c.Get("other")
	assert.False(t, ok)

	_, err = NewRenderCache(Config{})
	assert.Error(t, err)
}

func TestRenderCacheClearedByDocumentChanges(t *testing.T) {
	c, err := NewRenderCache(Config{MaxEntries: 4})
	require.NoError(t, err)
	m := observation.NewManager(nil)
	m.AddListener(c.Listener())

	c.Set("k", "out")
	m.Notify(context.Background(), event.DocumentCreatedEvent("xwiki:Main.A"), nil, nil)
	_, ok := c.Get("k")
	assert.True(t, ok)

	m.Notify(context.Background(), event.DocumentUpdatedEvent("xwiki:Main.A"), nil, nil)
	_, ok = c.Get("k")
	assert.False(t, ok)
}
