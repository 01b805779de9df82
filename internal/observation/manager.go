// Package observation is the event bus: listeners register the events they
// care about and receive every matching event fired through Notify.
package observation

import (
	"context"
	"fmt"
	"sync"

	"github.com/conneroisu/wikicore/internal/component"
	"github.com/conneroisu/wikicore/internal/event"
	"github.com/conneroisu/wikicore/internal/logging"
)

// EventListener receives the events matching one of its filters.
type EventListener interface {
	Name() string
	Events() []event.Event
	OnEvent(ctx context.Context, e event.Event, source, data interface{})
}

// ListenerFunc builds an EventListener from a function.
func ListenerFunc(name string, fn func(ctx context.Context, e event.Event, source, data interface{}), events ...event.Event) EventListener {
	return &funcListener{name: name, events: events, fn: fn}
}

type funcListener struct {
	name   string
	events []event.Event
	fn     func(ctx context.Context, e event.Event, source, data interface{})
}

func (l *funcListener) Name() string          { return l.name }
func (l *funcListener) Events() []event.Event { return l.events }

func (l *funcListener) OnEvent(ctx context.Context, e event.Event, source, data interface{}) {
	l.fn(ctx, e, source, data)
}

// Manager dispatches events to listeners. It is safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	listeners map[string]EventListener
	order     []string
	watchers  []chan event.Envelope
	logger    logging.Logger
}

var _ event.Notifier = (*Manager)(nil)

// NewManager creates an empty observation manager.
func NewManager(logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Manager{
		listeners: make(map[string]EventListener),
		logger:    logger.WithComponent("observation"),
	}
}

// AddListener registers l. A listener already registered under the same
// name is replaced, and a warning is logged.
func (m *Manager) AddListener(l EventListener) {
	m.mu.Lock()
	_, exists := m.listeners[l.Name()]
	m.listeners[l.Name()] = l
	if !exists {
		m.order = append(m.order, l.Name())
	}
	m.mu.Unlock()

	if exists {
		m.logger.Warn(context.Background(), nil,
			"An event listener with the same name is already registered, replacing it",
			"listener", l.Name())
	}
}

// RemoveListener unregisters the listener named name.
func (m *Manager) RemoveListener(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.listeners[name]; !ok {
		return
	}
	delete(m.listeners, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i:i], m.order[i+1:]...)
			break
		}
	}
}

// Listener returns the listener registered under name.
func (m *Manager) Listener(name string) (EventListener, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.listeners[name]
	return l, ok
}

// Listeners returns the names of the registered listeners in registration
// order.
func (m *Manager) Listeners() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...)
}

// Notify delivers e to every listener with a matching filter, in
// registration order. A panicking listener is logged and skipped.
func (m *Manager) Notify(ctx context.Context, e event.Event, source, data interface{}) {
	m.mu.RLock()
	targets := make([]EventListener, 0, len(m.order))
	for _, name := range m.order {
		l := m.listeners[name]
		for _, filter := range l.Events() {
			if filter.Matches(e) {
				targets = append(targets, l)
				break
			}
		}
	}
	m.mu.RUnlock()

	for _, l := range targets {
		m.deliver(ctx, l, e, source, data)
	}

	// UnWatch closes under the write lock, so sends must hold the read lock.
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.watchers) == 0 {
		return
	}
	env := event.NewEnvelope(e, source, data)
	for _, w := range m.watchers {
		select {
		case w <- env:
		default:
			// Skip if channel is full
		}
	}
}

func (m *Manager) deliver(ctx context.Context, l EventListener, e event.Event, source, data interface{}) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error(ctx, fmt.Errorf("%v", r), "Event listener failed",
				"listener", l.Name(), "event", fmt.Sprintf("%T", e))
		}
	}()
	l.OnEvent(ctx, e, source, data)
}

// Watch returns a channel that receives every notified event.
func (m *Manager) Watch() <-chan event.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan event.Envelope, 100)
	m.watchers = append(m.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it.
func (m *Manager) UnWatch(ch <-chan event.Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, w := range m.watchers {
		if w == ch {
			close(w)
			m.watchers = append(m.watchers[:i], m.watchers[i+1:]...)
			break
		}
	}
}

// componentListenerName is the name of the listener that keeps component
// registered EventListeners in sync with the registry.
const componentListenerName = "observation.component-listeners"

// TrackComponents adds a listener that registers every EventListener
// component as soon as its descriptor is added, and removes it when the
// descriptor is removed.
func (m *Manager) TrackComponents() {
	role := component.RoleOf[EventListener]()
	m.AddListener(ListenerFunc(componentListenerName, func(ctx context.Context, e event.Event, source, _ interface{}) {
		switch ev := e.(type) {
		case component.DescriptorAddedEvent:
			cm, ok := source.(*component.Manager)
			if !ok {
				return
			}
			l, err := component.Lookup[EventListener](cm, ev.Hint)
			if err != nil {
				m.logger.Error(ctx, err, "Failed to look up event listener component", "hint", ev.Hint)
				return
			}
			m.AddListener(l)
		case component.DescriptorRemovedEvent:
			m.RemoveListener(ev.Hint)
		}
	}, component.DescriptorAddedEvent{Role: role}, component.DescriptorRemovedEvent{Role: role}))
}

// RegisterListener registers l as an EventListener component whose hint is
// its name, so that TrackComponents can remove it by name later.
func RegisterListener(cm *component.Manager, l EventListener) error {
	return component.RegisterInstance[EventListener](cm, l.Name(), l)
}
