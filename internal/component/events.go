package component

import (
	"context"
	"sync"

	"github.com/conneroisu/wikicore/internal/event"
)

// DescriptorAddedEvent is fired when a component is registered. A filter
// with an empty Role matches every registration; an empty Hint matches every
// hint of the role.
type DescriptorAddedEvent struct {
	Role Role
	Hint string
}

// Matches implements event.Event.
func (e DescriptorAddedEvent) Matches(other event.Event) bool {
	o, ok := other.(DescriptorAddedEvent)
	return ok && matchRoleHint(e.Role, e.Hint, o.Role, o.Hint)
}

// DescriptorRemovedEvent is fired when a component is unregistered.
type DescriptorRemovedEvent struct {
	Role Role
	Hint string
}

// Matches implements event.Event.
func (e DescriptorRemovedEvent) Matches(other event.Event) bool {
	o, ok := other.(DescriptorRemovedEvent)
	return ok && matchRoleHint(e.Role, e.Hint, o.Role, o.Hint)
}

func matchRoleHint(role Role, hint string, otherRole Role, otherHint string) bool {
	if role == "" {
		return true
	}
	if role != otherRole {
		return false
	}
	return hint == "" || normalizeHint(hint) == normalizeHint(otherHint)
}

// EventManager is told about registration changes. The Manager knows
// nothing about who listens.
type EventManager interface {
	NotifyRegistered(desc Descriptor, source *Manager)
	NotifyUnregistered(desc Descriptor, source *Manager)
}

// pendingEvent is a stacked notification.
type pendingEvent struct {
	event  event.Event
	source *Manager
	desc   Descriptor
}

// StackingEventManager forwards registration events to a Notifier. While
// stacking is on, or while no Notifier is set, events are queued and only
// delivered by FlushEvents. This keeps listeners from seeing a partially
// bootstrapped registry.
type StackingEventManager struct {
	mu       sync.Mutex
	notifier event.Notifier
	stack    bool
	flushing bool
	pending  []pendingEvent
}

var _ EventManager = (*StackingEventManager)(nil)

// NewStackingEventManager returns a manager that delivers to notifier.
// notifier may be nil and set later.
func NewStackingEventManager(notifier event.Notifier) *StackingEventManager {
	return &StackingEventManager{notifier: notifier}
}

// SetNotifier sets the delivery target.
func (s *StackingEventManager) SetNotifier(notifier event.Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = notifier
}

// ShouldStack turns queueing on or off. Turning it off does not flush.
func (s *StackingEventManager) ShouldStack(stack bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stack = stack
}

// Pending returns the number of queued events.
func (s *StackingEventManager) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// NotifyRegistered implements EventManager.
func (s *StackingEventManager) NotifyRegistered(desc Descriptor, source *Manager) {
	rh := desc.RoleHint()
	s.send(pendingEvent{event: DescriptorAddedEvent{Role: rh.Role, Hint: rh.Hint}, source: source, desc: desc})
}

// NotifyUnregistered implements EventManager.
func (s *StackingEventManager) NotifyUnregistered(desc Descriptor, source *Manager) {
	rh := desc.RoleHint()
	s.send(pendingEvent{event: DescriptorRemovedEvent{Role: rh.Role, Hint: rh.Hint}, source: source, desc: desc})
}

func (s *StackingEventManager) send(p pendingEvent) {
	s.mu.Lock()
	if s.stack || s.flushing || s.notifier == nil {
		s.pending = append(s.pending, p)
		s.mu.Unlock()
		return
	}
	notifier := s.notifier
	s.mu.Unlock()

	notifier.Notify(context.Background(), p.event, p.source, p.desc)
}

// FlushEvents delivers every queued event in order and empties the queue.
// Delivery happens outside the lock so that listeners may register
// components. Events sent while a flush is running are queued behind the
// ones being delivered and picked up by the same flush, so a flush that
// finds another one running returns at once.
func (s *StackingEventManager) FlushEvents(ctx context.Context) {
	s.mu.Lock()
	if s.notifier == nil || s.flushing {
		s.mu.Unlock()
		return
	}
	s.flushing = true
	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			s.flushing = false
			s.mu.Unlock()
			panic(r)
		}
	}()

	for len(s.pending) > 0 {
		pending := s.pending
		s.pending = nil
		notifier := s.notifier
		s.mu.Unlock()

		for _, p := range pending {
			notifier.Notify(ctx, p.event, p.source, p.desc)
		}
		s.mu.Lock()
	}
	s.flushing = false
	s.mu.Unlock()
}
