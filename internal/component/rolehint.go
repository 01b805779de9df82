// Package component is the component registry: implementations keyed by
// (role, hint), created lazily by factories, with parent delegation and
// registration events.
package component

import (
	"reflect"
)

// DefaultHint is the hint used when none is given.
const DefaultHint = "default"

// Role names a capability by the fully-qualified name of its Go type, e.g.
// "github.com/conneroisu/wikicore/internal/macro.Macro". Names rather than
// reflect.Type values are compared so that two independently built
// registries agree on roles.
type Role string

// RoleOf returns the Role of type T. T is usually an interface.
func RoleOf[T any]() Role {
	return RoleFor(reflect.TypeOf((*T)(nil)).Elem())
}

// RoleFor returns the Role of t.
func RoleFor(t reflect.Type) Role {
	return Role(typeName(t))
}

func typeName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if t.Kind() == reflect.Pointer {
		return "*" + typeName(t.Elem())
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// RoleHint identifies one registered implementation.
type RoleHint struct {
	Role Role
	Hint string
}

// NewRoleHint builds a RoleHint, normalising an empty hint to DefaultHint.
func NewRoleHint(role Role, hint string) RoleHint {
	return RoleHint{Role: role, Hint: normalizeHint(hint)}
}

// Normalize returns rh with an empty hint replaced by DefaultHint.
func (rh RoleHint) Normalize() RoleHint {
	return NewRoleHint(rh.Role, rh.Hint)
}

// Equal compares role names and normalised hints.
func (rh RoleHint) Equal(o RoleHint) bool {
	return rh.Normalize() == o.Normalize()
}

func (rh RoleHint) String() string {
	return "role = [" + string(rh.Role) + "] hint = [" + normalizeHint(rh.Hint) + "]"
}

func normalizeHint(hint string) string {
	if hint == "" {
		return DefaultHint
	}
	return hint
}
