package component

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/logging"
)

// Resolver looks components up. Factories receive a Resolver that tracks
// the components being created so that cycles fail instead of deadlocking.
type Resolver interface {
	Lookup(role Role, hint string) (interface{}, error)
	LookupList(role Role) ([]interface{}, error)
	LookupMap(role Role) (map[string]interface{}, error)
	HasComponent(role Role, hint string) bool
}

// resolver is the Resolver handed to factories.
type resolver struct {
	manager   *Manager
	resolving map[RoleHint]bool
}

func (r *resolver) Lookup(role Role, hint string) (interface{}, error) {
	return r.manager.lookup(NewRoleHint(role, hint), r.resolving)
}

func (r *resolver) LookupList(role Role) ([]interface{}, error) {
	return r.manager.lookupList(role, r.resolving)
}

func (r *resolver) LookupMap(role Role) (map[string]interface{}, error) {
	return r.manager.lookupMap(role, r.resolving)
}

func (r *resolver) HasComponent(role Role, hint string) bool {
	return r.manager.HasComponent(role, hint)
}

type registration struct {
	descriptor  Descriptor
	instance    interface{}
	hasInstance bool
}

// Manager is a component registry. Lookups that miss locally are delegated
// to the parent manager, if any. It is safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	entries  map[RoleHint]*registration
	hints    map[Role][]string
	creating map[RoleHint]*sync.WaitGroup
	parent   *Manager
	events   EventManager
	logger   logging.Logger
}

var _ Resolver = (*Manager)(nil)

// Option configures a Manager.
type Option func(*Manager)

// WithParent delegates local misses to parent.
func WithParent(parent *Manager) Option {
	return func(m *Manager) { m.parent = parent }
}

// WithEventManager sets the collaborator notified on registration changes.
func WithEventManager(events EventManager) Option {
	return func(m *Manager) { m.events = events }
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates an empty component manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		entries:  make(map[RoleHint]*registration),
		hints:    make(map[Role][]string),
		creating: make(map[RoleHint]*sync.WaitGroup),
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.WithComponent("component-manager")
	return m
}

// Parent returns the parent manager or nil.
func (m *Manager) Parent() *Manager {
	return m.parent
}

// SetEventManager replaces the registration event collaborator.
func (m *Manager) SetEventManager(events EventManager) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = events
}

// EventManager returns the registration event collaborator, if any.
func (m *Manager) EventManager() EventManager {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.events
}

// Register adds a lazily instantiated component. An existing registration
// with the same RoleHint is unregistered first.
func (m *Manager) Register(desc Descriptor) error {
	if desc.Factory == nil {
		return errors.NewComponentError(errors.ErrCodeFactoryFailed,
			fmt.Sprintf("descriptor %s has no factory", desc.RoleHint()), nil)
	}
	return m.register(&registration{descriptor: desc})
}

// RegisterInstance adds a component with a pre-built instance.
func (m *Manager) RegisterInstance(desc Descriptor, instance interface{}) error {
	return m.register(&registration{descriptor: desc, instance: instance, hasInstance: true})
}

func (m *Manager) register(reg *registration) error {
	if reg.descriptor.Role == "" {
		return errors.NewComponentError(errors.ErrCodeFactoryFailed, "descriptor has no role", nil)
	}
	reg.descriptor.Hint = normalizeHint(reg.descriptor.Hint)
	rh := reg.descriptor.RoleHint()

	m.mu.Lock()
	old, replaced := m.removeLocked(rh)
	m.entries[rh] = reg
	m.hints[rh.Role] = append(m.hints[rh.Role], rh.Hint)
	events := m.events
	m.mu.Unlock()

	if replaced {
		m.release(rh, old, events)
	}
	m.logger.Debug(context.Background(), "Component registered",
		"role", string(rh.Role), "hint", rh.Hint)
	if events != nil {
		events.NotifyRegistered(reg.descriptor, m)
	}
	return nil
}

// Unregister removes the component registered under (role, hint). A created
// instance implementing Disposable is disposed.
func (m *Manager) Unregister(role Role, hint string) {
	rh := NewRoleHint(role, hint)

	m.mu.Lock()
	reg, ok := m.removeLocked(rh)
	events := m.events
	m.mu.Unlock()

	if ok {
		m.release(rh, reg, events)
	}
}

// removeLocked drops rh from the entries and the hint order and returns a
// copy of the removed registration. m.mu must be held for writing.
func (m *Manager) removeLocked(rh RoleHint) (*registration, bool) {
	reg, ok := m.entries[rh]
	if !ok {
		return nil, false
	}
	delete(m.entries, rh)
	hints := m.hints[rh.Role]
	for i, h := range hints {
		if h == rh.Hint {
			m.hints[rh.Role] = append(hints[:i:i], hints[i+1:]...)
			break
		}
	}
	if len(m.hints[rh.Role]) == 0 {
		delete(m.hints, rh.Role)
	}
	removed := *reg
	return &removed, true
}

// release disposes a removed registration and announces its removal.
func (m *Manager) release(rh RoleHint, reg *registration, events EventManager) {
	if d, ok := reg.instance.(Disposable); ok && reg.hasInstance {
		if err := d.Dispose(); err != nil {
			m.logger.Warn(context.Background(), err, "Failed to dispose component",
				"role", string(rh.Role), "hint", rh.Hint)
		}
	}
	if events != nil {
		events.NotifyUnregistered(reg.descriptor, m)
	}
}

// HasLocalComponent reports whether (role, hint) is registered in m itself.
func (m *Manager) HasLocalComponent(role Role, hint string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[NewRoleHint(role, hint)]
	return ok
}

// HasComponent reports whether (role, hint) is registered in m or a parent.
func (m *Manager) HasComponent(role Role, hint string) bool {
	if m.HasLocalComponent(role, hint) {
		return true
	}
	return m.parent != nil && m.parent.HasComponent(role, hint)
}

// Lookup returns the component registered under (role, hint).
func (m *Manager) Lookup(role Role, hint string) (interface{}, error) {
	return m.lookup(NewRoleHint(role, hint), make(map[RoleHint]bool))
}

// LookupList returns every component of role, local ones first, ordered by
// registration. Parent components hidden by a local hint are skipped.
func (m *Manager) LookupList(role Role) ([]interface{}, error) {
	return m.lookupList(role, make(map[RoleHint]bool))
}

// LookupMap returns every component of role keyed by hint.
func (m *Manager) LookupMap(role Role) (map[string]interface{}, error) {
	return m.lookupMap(role, make(map[RoleHint]bool))
}

func (m *Manager) lookup(rh RoleHint, resolving map[RoleHint]bool) (interface{}, error) {
	m.mu.RLock()
	reg, ok := m.entries[rh]
	m.mu.RUnlock()

	if !ok {
		if m.parent != nil {
			return m.parent.lookup(rh, resolving)
		}
		return nil, errors.NewComponentLookupError(string(rh.Role), rh.Hint, nil)
	}
	return m.instance(rh, reg, resolving)
}

// instance returns the instance of reg, creating it if needed. Singleton
// creation is coordinated so that concurrent lookups share one instance.
func (m *Manager) instance(rh RoleHint, reg *registration, resolving map[RoleHint]bool) (interface{}, error) {
	if resolving[rh] {
		return nil, errors.NewComponentError(errors.ErrCodeCircularDependency,
			fmt.Sprintf("circular dependency detected for %s", rh), nil).
			WithContext("role", string(rh.Role)).WithContext("hint", rh.Hint)
	}

	if reg.descriptor.Instantiation == PerLookup && !reg.hasInstance {
		resolving[rh] = true
		instance, err := m.create(reg.descriptor, resolving)
		delete(resolving, rh)
		return instance, err
	}

	m.mu.RLock()
	if reg.hasInstance {
		instance := reg.instance
		m.mu.RUnlock()
		return instance, nil
	}
	if wg, creating := m.creating[rh]; creating {
		m.mu.RUnlock()
		wg.Wait()
		return m.lookup(rh, resolving)
	}
	m.mu.RUnlock()

	m.mu.Lock()
	if reg.hasInstance {
		instance := reg.instance
		m.mu.Unlock()
		return instance, nil
	}
	if wg, creating := m.creating[rh]; creating {
		m.mu.Unlock()
		wg.Wait()
		return m.lookup(rh, resolving)
	}
	wg := &sync.WaitGroup{}
	wg.Add(1)
	m.creating[rh] = wg
	resolving[rh] = true
	m.mu.Unlock()

	instance, err := m.create(reg.descriptor, resolving)
	delete(resolving, rh)

	m.mu.Lock()
	delete(m.creating, rh)
	if err == nil {
		reg.instance = instance
		reg.hasInstance = true
	}
	m.mu.Unlock()
	wg.Done()

	return instance, err
}

func (m *Manager) create(desc Descriptor, resolving map[RoleHint]bool) (interface{}, error) {
	if desc.Factory == nil {
		return nil, errors.NewComponentError(errors.ErrCodeFactoryFailed,
			fmt.Sprintf("descriptor %s has no factory", desc.RoleHint()), nil)
	}
	instance, err := desc.Factory(&resolver{manager: m, resolving: resolving})
	if err != nil {
		var we *errors.WikiError
		if errors.As(err, &we) && we.Code == errors.ErrCodeCircularDependency {
			return nil, err
		}
		return nil, errors.NewComponentError(errors.ErrCodeFactoryFailed,
			fmt.Sprintf("failed to create component %s", desc.RoleHint()), err)
	}
	return instance, nil
}

func (m *Manager) lookupList(role Role, resolving map[RoleHint]bool) ([]interface{}, error) {
	hints := m.hintsFor(role)
	out := make([]interface{}, 0, len(hints))
	for _, hint := range hints {
		instance, err := m.lookup(NewRoleHint(role, hint), resolving)
		if err != nil {
			return nil, err
		}
		out = append(out, instance)
	}
	return out, nil
}

func (m *Manager) lookupMap(role Role, resolving map[RoleHint]bool) (map[string]interface{}, error) {
	hints := m.hintsFor(role)
	out := make(map[string]interface{}, len(hints))
	for _, hint := range hints {
		instance, err := m.lookup(NewRoleHint(role, hint), resolving)
		if err != nil {
			return nil, err
		}
		out[hint] = instance
	}
	return out, nil
}

// hintsFor returns the hints of role visible from m, local first.
func (m *Manager) hintsFor(role Role) []string {
	m.mu.RLock()
	hints := append([]string(nil), m.hints[role]...)
	m.mu.RUnlock()

	if m.parent == nil {
		return hints
	}
	seen := make(map[string]bool, len(hints))
	for _, h := range hints {
		seen[h] = true
	}
	for _, h := range m.parent.hintsFor(role) {
		if !seen[h] {
			hints = append(hints, h)
		}
	}
	return hints
}

// Descriptor returns the descriptor registered under (role, hint), looking
// in parents too.
func (m *Manager) Descriptor(role Role, hint string) (Descriptor, bool) {
	m.mu.RLock()
	reg, ok := m.entries[NewRoleHint(role, hint)]
	m.mu.RUnlock()
	if ok {
		return reg.descriptor, true
	}
	if m.parent != nil {
		return m.parent.Descriptor(role, hint)
	}
	return Descriptor{}, false
}

// Descriptors returns the descriptors of role visible from m.
func (m *Manager) Descriptors(role Role) []Descriptor {
	hints := m.hintsFor(role)
	out := make([]Descriptor, 0, len(hints))
	for _, hint := range hints {
		if d, ok := m.Descriptor(role, hint); ok {
			out = append(out, d)
		}
	}
	return out
}

// RoleHints returns every RoleHint visible from m, sorted by role then hint.
func (m *Manager) RoleHints() []RoleHint {
	set := make(map[RoleHint]bool)
	for cur := m; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		for rh := range cur.entries {
			set[rh] = true
		}
		cur.mu.RUnlock()
	}

	out := make([]RoleHint, 0, len(set))
	for rh := range set {
		out = append(out, rh)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].Role < out[j].Role
		}
		return out[i].Hint < out[j].Hint
	})
	return out
}

// Dispose unregisters every local component, disposing created instances.
func (m *Manager) Dispose() {
	for _, rh := range m.localRoleHints() {
		m.Unregister(rh.Role, rh.Hint)
	}
}

func (m *Manager) localRoleHints() []RoleHint {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RoleHint, 0, len(m.entries))
	for rh := range m.entries {
		out = append(out, rh)
	}
	return out
}
