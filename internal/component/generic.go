package component

import (
	"fmt"

	"github.com/conneroisu/wikicore/internal/errors"
)

// Lookup returns the component of role T registered under hint.
func Lookup[T any](r Resolver, hint string) (T, error) {
	var zero T
	instance, err := r.Lookup(RoleOf[T](), hint)
	if err != nil {
		return zero, err
	}
	t, ok := instance.(T)
	if !ok {
		return zero, typeMismatch[T](hint, instance)
	}
	return t, nil
}

// LookupList returns every component of role T.
func LookupList[T any](r Resolver) ([]T, error) {
	instances, err := r.LookupList(RoleOf[T]())
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(instances))
	for _, instance := range instances {
		t, ok := instance.(T)
		if !ok {
			return nil, typeMismatch[T]("", instance)
		}
		out = append(out, t)
	}
	return out, nil
}

// LookupMap returns every component of role T keyed by hint.
func LookupMap[T any](r Resolver) (map[string]T, error) {
	instances, err := r.LookupMap(RoleOf[T]())
	if err != nil {
		return nil, err
	}
	out := make(map[string]T, len(instances))
	for hint, instance := range instances {
		t, ok := instance.(T)
		if !ok {
			return nil, typeMismatch[T](hint, instance)
		}
		out[hint] = t
	}
	return out, nil
}

// Register registers a factory for role T under hint.
func Register[T any](m *Manager, hint string, inst Instantiation, factory func(r Resolver) (T, error)) error {
	return m.Register(Descriptor{
		Role:          RoleOf[T](),
		Hint:          hint,
		Instantiation: inst,
		Factory: func(r Resolver) (interface{}, error) {
			return factory(r)
		},
	})
}

// RegisterInstance registers instance for role T under hint.
func RegisterInstance[T any](m *Manager, hint string, instance T) error {
	return m.RegisterInstance(Descriptor{
		Role:           RoleOf[T](),
		Hint:           hint,
		Implementation: fmt.Sprintf("%T", instance),
	}, instance)
}

func typeMismatch[T any](hint string, instance interface{}) error {
	return errors.NewComponentError(errors.ErrCodeFactoryFailed,
		fmt.Sprintf("component %s is a %T", NewRoleHint(RoleOf[T](), hint), instance), nil)
}
