package component

import (
	"fmt"
	"maps"
	"reflect"
	"sync"

	"github.com/c360/brokerboot/errors"
)

// Lookup is the read-only view of a registry used by conditions and builders
type Lookup interface {
	Get(role Role) (any, bool)
}

// Registry holds at most one component instance per role.
// Instances come either from the embedding application before startup or
// from the provisioner during startup; whichever party registers first wins.
type Registry struct {
	instances map[Role]any
	mu        sync.RWMutex
}

// NewRegistry creates a new empty component registry
func NewRegistry() *Registry {
	return &Registry{
		instances: make(map[Role]any),
	}
}

// Register stores instance under role.
// Returns an error if the role is unknown, the instance is nil, or the role
// is already occupied.
func (r *Registry) Register(role Role, instance any) error {
	if !role.Valid() {
		return errors.WrapInvalid(errors.ErrUnknownRole, "Registry", "Register", "role validation")
	}
	if instance == nil {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Registry", "Register", "instance validation")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.instances[role]; exists {
		msg := fmt.Errorf("%w: %s", errors.ErrRoleOccupied, role)
		return errors.WrapInvalid(msg, "Registry", "Register", "duplicate role check")
	}

	r.instances[role] = instance
	return nil
}

// Unregister removes the instance held under role, if any
func (r *Registry) Unregister(role Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, role)
}

// Get returns the instance registered under role
func (r *Registry) Get(role Role) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	instance, ok := r.instances[role]
	return instance, ok
}

// Has reports whether role is occupied
func (r *Registry) Has(role Role) bool {
	_, ok := r.Get(role)
	return ok
}

// Len returns the number of registered instances
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}

// Snapshot returns a copy of the registered instances
func (r *Registry) Snapshot() map[Role]any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[Role]any, len(r.instances))
	maps.Copy(result, r.instances)
	return result
}

// Resolve returns the instance under role as T.
// It fails when the role is empty or holds an incompatible type.
func Resolve[T any](l Lookup, role Role) (T, error) {
	var zero T

	instance, ok := l.Get(role)
	if !ok {
		msg := fmt.Errorf("%w: %s", errors.ErrComponentMissing, role)
		return zero, errors.WrapInvalid(msg, "Registry", "Resolve", "role lookup")
	}

	typed, ok := instance.(T)
	if !ok {
		msg := fmt.Errorf("%s holds %T, not %s", role, instance, reflect.TypeOf((*T)(nil)).Elem())
		return zero, errors.WrapInvalid(msg, "Registry", "Resolve", "type assertion")
	}

	return typed, nil
}
