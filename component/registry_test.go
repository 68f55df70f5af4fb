package component

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/c360/brokerboot/errors"
)

type namer interface {
	Name() string
}

type mockFactory struct {
	name string
}

func (m *mockFactory) Name() string { return m.name }

func TestRole_String(t *testing.T) {
	tests := []struct {
		role     Role
		expected string
	}{
		{RoleConnectionFactory, "connection-factory"},
		{RoleAdminHandle, "admin-handle"},
		{RoleTemplate, "template"},
		{Role(0), "role(0)"},
		{Role(42), "role(42)"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			assert.Equal(t, test.expected, test.role.String())
		})
	}
}

func TestRoles_Order(t *testing.T) {
	assert.Equal(t, []Role{RoleConnectionFactory, RoleAdminHandle, RoleTemplate}, Roles())
	for _, role := range Roles() {
		assert.True(t, role.Valid())
	}
	assert.False(t, Role(0).Valid())
	assert.False(t, Role(4).Valid())
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := NewRegistry()
	factory := &mockFactory{name: "external"}

	require.NoError(t, registry.Register(RoleConnectionFactory, factory))

	got, ok := registry.Get(RoleConnectionFactory)
	require.True(t, ok)
	assert.Same(t, factory, got)
	assert.True(t, registry.Has(RoleConnectionFactory))
	assert.False(t, registry.Has(RoleTemplate))
	assert.Equal(t, 1, registry.Len())
}

func TestRegistry_SingleInstancePerRole(t *testing.T) {
	registry := NewRegistry()
	first := &mockFactory{name: "first"}

	require.NoError(t, registry.Register(RoleTemplate, first))
	err := registry.Register(RoleTemplate, &mockFactory{name: "second"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrRoleOccupied))
	assert.True(t, pkgerrors.IsInvalid(err))

	got, _ := registry.Get(RoleTemplate)
	assert.Same(t, first, got, "the first registration must win")
}

func TestRegistry_RegisterValidation(t *testing.T) {
	registry := NewRegistry()

	err := registry.Register(Role(99), &mockFactory{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrUnknownRole))

	err = registry.Register(RoleAdminHandle, nil)
	require.Error(t, err)
	assert.Equal(t, 0, registry.Len())
}

func TestRegistry_Unregister(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(RoleAdminHandle, &mockFactory{}))

	registry.Unregister(RoleAdminHandle)
	assert.False(t, registry.Has(RoleAdminHandle))

	// Removing an empty role is a no-op
	registry.Unregister(RoleAdminHandle)
	require.NoError(t, registry.Register(RoleAdminHandle, &mockFactory{}))
}

func TestRegistry_SnapshotIsCopy(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(RoleTemplate, &mockFactory{}))

	snapshot := registry.Snapshot()
	delete(snapshot, RoleTemplate)

	assert.True(t, registry.Has(RoleTemplate))
}

func TestResolve(t *testing.T) {
	registry := NewRegistry()
	factory := &mockFactory{name: "f"}
	require.NoError(t, registry.Register(RoleConnectionFactory, factory))

	concrete, err := Resolve[*mockFactory](registry, RoleConnectionFactory)
	require.NoError(t, err)
	assert.Same(t, factory, concrete)

	iface, err := Resolve[namer](registry, RoleConnectionFactory)
	require.NoError(t, err)
	assert.Equal(t, "f", iface.Name())

	_, err = Resolve[fmt.Stringer](registry, RoleConnectionFactory)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fmt.Stringer")

	_, err = Resolve[*mockFactory](registry, RoleTemplate)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrComponentMissing))
}

func TestRegistry_ConcurrentReaders(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(RoleConnectionFactory, &mockFactory{}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = registry.Get(RoleConnectionFactory)
				_ = registry.Snapshot()
			}
		}()
	}
	wg.Wait()
}
