package query

import "sync"

// DefaultPropertyType is the storage type of properties nobody declared.
const DefaultPropertyType = "StringProperty"

// PropertyTypeResolver returns the storage class holding a property of an
// object class, such as "StringProperty" or "IntegerProperty". The class
// is empty for objects declared without one.
type PropertyTypeResolver interface {
	PropertyType(class, property string) string
}

// PropertyTypes is a PropertyTypeResolver backed by a table keyed by
// "Class.property". Keys without a class ("property") apply to every
// class. It is safe for concurrent use.
type PropertyTypes struct {
	mu       sync.RWMutex
	fallback string
	types    map[string]string
}

var _ PropertyTypeResolver = (*PropertyTypes)(nil)

// NewPropertyTypes returns a table answering fallback for unknown
// properties.
func NewPropertyTypes(fallback string, types map[string]string) *PropertyTypes {
	if fallback == "" {
		fallback = DefaultPropertyType
	}
	pt := &PropertyTypes{fallback: fallback, types: make(map[string]string, len(types))}
	for k, v := range types {
		pt.types[k] = v
	}
	return pt
}

// Set declares the storage type of class.property.
func (p *PropertyTypes) Set(class, property, storage string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types[key(class, property)] = storage
}

func (p *PropertyTypes) PropertyType(class, property string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if t, ok := p.types[key(class, property)]; ok {
		return t
	}
	if t, ok := p.types[property]; ok {
		return t
	}
	return p.fallback
}

func key(class, property string) string {
	if class == "" {
		return property
	}
	return class + "." + property
}
