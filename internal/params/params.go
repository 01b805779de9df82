// Package params provides the insertion-ordered string map used for block
// parameters, macro parameters and resource reference parameters.
//
// All read methods accept a nil *Map and treat it as empty.
package params

import (
	"encoding/json"
	"strings"
)

// Map is a string to string map that remembers insertion order.
type Map struct {
	keys   []string
	values map[string]string
}

// New builds a Map from alternating key/value pairs. A trailing key without
// value is ignored.
func New(kv ...string) *Map {
	m := &Map{}
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(kv[i], kv[i+1])
	}
	return m
}

// Set stores value under key. Updating an existing key keeps its position.
func (m *Map) Set(key, value string) *Map {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
	return m
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (string, bool) {
	if m == nil || m.values == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

// Value returns the value stored under key, or "".
func (m *Map) Value(key string) string {
	v, _ := m.Get(key)
	return v
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key.
func (m *Map) Delete(key string) {
	if m == nil || m.values == nil {
		return
	}
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Each calls fn for every entry in insertion order.
func (m *Map) Each(fn func(key, value string)) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		fn(k, m.values[k])
	}
}

// Clone returns a deep copy. Cloning nil returns nil.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	c := &Map{}
	m.Each(func(k, v string) { c.Set(k, v) })
	return c
}

// Equal compares entries and their order. A nil map equals an empty one.
func (m *Map) Equal(o *Map) bool {
	if m.Len() != o.Len() {
		return false
	}
	for i, k := range m.Keys() {
		if o.keys[i] != k || o.values[k] != m.values[k] {
			return false
		}
	}
	return true
}

// String formats the entries as "[[k1] = [v1], [k2] = [v2]]".
func (m *Map) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	i := 0
	m.Each(func(k, v string) {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("[" + k + "] = [" + v + "]")
		i++
	})
	sb.WriteByte(']')
	return sb.String()
}

// MarshalJSON encodes the map as a JSON object, keeping insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var sb strings.Builder
	sb.WriteByte('{')
	var err error
	i := 0
	m.Each(func(k, v string) {
		if err != nil {
			return
		}
		if i > 0 {
			sb.WriteByte(',')
		}
		var kb, vb []byte
		if kb, err = json.Marshal(k); err != nil {
			return
		}
		if vb, err = json.Marshal(v); err != nil {
			return
		}
		sb.Write(kb)
		sb.WriteByte(':')
		sb.Write(vb)
		i++
	})
	if err != nil {
		return nil, err
	}
	sb.WriteByte('}')
	return []byte(sb.String()), nil
}

// ToMap returns an unordered copy.
func (m *Map) ToMap() map[string]string {
	out := make(map[string]string, m.Len())
	m.Each(func(k, v string) { out[k] = v })
	return out
}
