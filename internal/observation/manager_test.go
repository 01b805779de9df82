package observation

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/wikicore/internal/component"
	"github.com/conneroisu/wikicore/internal/event"
	"github.com/conneroisu/wikicore/internal/logging"
)

func newBufferedManager() (*Manager, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.LevelDebug,
		Format: "json",
		Output: buf,
	})
	return NewManager(logger), buf
}

func warnings(buf *bytes.Buffer) int {
	return strings.Count(buf.String(), `"level":"WARN"`)
}

type recorder struct {
	name   string
	events []event.Event
	got    []event.Event
}

func (r *recorder) Name() string          { return r.name }
func (r *recorder) Events() []event.Event { return r.events }

func (r *recorder) OnEvent(_ context.Context, e event.Event, _, _ interface{}) {
	r.got = append(r.got, e)
}

func TestDuplicateListenerWarnsOnce(t *testing.T) {
	m, buf := newBufferedManager()
	l := &recorder{name: "X", events: []event.Event{event.Any{}}}

	m.AddListener(l)
	assert.Equal(t, 0, warnings(buf))

	m.AddListener(l)
	assert.Equal(t, 1, warnings(buf))
	assert.Contains(t, buf.String(), `"listener":"X"`)
	assert.Equal(t, []string{"X"}, m.Listeners())
}

func TestRemoveThenAddDoesNotWarn(t *testing.T) {
	m, buf := newBufferedManager()
	l := &recorder{name: "X", events: []event.Event{event.Any{}}}

	m.AddListener(l)
	m.RemoveListener("X")
	m.AddListener(l)

	assert.Equal(t, 0, warnings(buf))
	_, ok := m.Listener("X")
	assert.True(t, ok)
}

func TestNotifyMatchesFilters(t *testing.T) {
	m, _ := newBufferedManager()
	all := &recorder{name: "all", events: []event.Event{event.DocumentUpdatedEvent("")}}
	one := &recorder{name: "one", events: []event.Event{event.DocumentUpdatedEvent("Main.A")}}
	m.AddListener(all)
	m.AddListener(one)

	ctx := context.Background()
	m.Notify(ctx, event.DocumentUpdatedEvent("Main.A"), nil, nil)
	m.Notify(ctx, event.DocumentUpdatedEvent("Main.B"), nil, nil)
	m.Notify(ctx, event.DocumentDeletedEvent("Main.A"), nil, nil)

	assert.Len(t, all.got, 2)
	assert.Len(t, one.got, 1)
}

func TestPanickingListenerIsIsolated(t *testing.T) {
	m, buf := newBufferedManager()
	m.AddListener(ListenerFunc("bad", func(context.Context, event.Event, interface{}, interface{}) {
		panic("boom")
	}, event.Any{}))
	good := &recorder{name: "good", events: []event.Event{event.Any{}}}
	m.AddListener(good)

	require.NotPanics(t, func() {
		m.Notify(context.Background(), event.DocumentCreatedEvent("A"), nil, nil)
	})
	assert.Len(t, good.got, 1)
	assert.Contains(t, buf.String(), "boom")
}

func TestWatch(t *testing.T) {
	m, _ := newBufferedManager()
	ch := m.Watch()

	m.Notify(context.Background(), event.DocumentCreatedEvent("A"), "src", nil)
	env := <-ch
	assert.Equal(t, event.DocumentCreatedEvent("A"), env.Event)
	assert.Equal(t, "src", env.Source)

	m.UnWatch(ch)
	_, open := <-ch
	assert.False(t, open)
}

func TestUnWatchDuringNotify(t *testing.T) {
	m, _ := newBufferedManager()
	ctx := context.Background()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				m.Notify(ctx, event.DocumentUpdatedEvent("Main.A"), nil, nil)
			}
		}
	}()

	assert.NotPanics(t, func() {
		for i := 0; i < 500; i++ {
			m.UnWatch(m.Watch())
		}
	})
	close(stop)
	wg.Wait()
}

func TestTrackComponents(t *testing.T) {
	m, _ := newBufferedManager()
	m.TrackComponents()

	stacking := component.NewStackingEventManager(m)
	cm := component.NewManager(component.WithEventManager(stacking))

	l := &recorder{name: "cache-invalidator", events: []event.Event{event.Any{}}}
	require.NoError(t, RegisterListener(cm, l))

	_, ok := m.Listener("cache-invalidator")
	require.True(t, ok)

	cm.Unregister(component.RoleOf[EventListener](), "cache-invalidator")
	_, ok = m.Listener("cache-invalidator")
	assert.False(t, ok)
}

func TestTrackComponentsAfterStackedBootstrap(t *testing.T) {
	m, _ := newBufferedManager()
	m.TrackComponents()

	stacking := component.NewStackingEventManager(m)
	stacking.ShouldStack(true)
	cm := component.NewManager(component.WithEventManager(stacking))
	require.NoError(t, RegisterListener(cm, &recorder{name: "late", events: []event.Event{event.Any{}}}))

	_, ok := m.Listener("late")
	assert.False(t, ok)

	stacking.ShouldStack(false)
	stacking.FlushEvents(context.Background())
	_, ok = m.Listener("late")
	assert.True(t, ok)
}
