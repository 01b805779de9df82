package component

// Instantiation controls how often a factory runs.
type Instantiation int

const (
	// Singleton components are created on first lookup and cached.
	Singleton Instantiation = iota
	// PerLookup components are created on every lookup.
	PerLookup
)

func (i Instantiation) String() string {
	if i == PerLookup {
		return "per-lookup"
	}
	return "singleton"
}

// Factory creates a component instance. Dependencies are looked up through
// r, which detects circular dependencies.
type Factory func(r Resolver) (interface{}, error)

// Descriptor describes one registered implementation.
type Descriptor struct {
	Role           Role
	Hint           string
	Implementation string
	Instantiation  Instantiation
	Factory        Factory
}

// RoleHint returns the normalised key of d.
func (d Descriptor) RoleHint() RoleHint {
	return NewRoleHint(d.Role, d.Hint)
}

// Disposable components are released when unregistered.
type Disposable interface {
	Dispose() error
}
