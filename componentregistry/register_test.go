package componentregistry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/brokerboot/amqpclient"
	"github.com/c360/brokerboot/capability"
	"github.com/c360/brokerboot/component"
	"github.com/c360/brokerboot/config"
	"github.com/c360/brokerboot/errors"
	"github.com/c360/brokerboot/provision"
	"github.com/c360/brokerboot/testutil"
)

func provisionWith(t *testing.T, registry *component.Registry, props config.Properties, opts ...provision.Option) (provision.Report, error) {
	t.Helper()
	p, err := NewProvisioner(opts...)
	require.NoError(t, err)
	return p.Provision(registry, props)
}

func get[T any](t *testing.T, registry *component.Registry, role component.Role) T {
	t.Helper()
	v, err := component.Resolve[T](registry, role)
	require.NoError(t, err)
	return v
}

func TestCandidates_Order(t *testing.T) {
	candidates := Candidates()
	require.Len(t, candidates, 3)

	var roles []component.Role
	for _, c := range candidates {
		roles = append(roles, c.Role)
		assert.Equal(t, "CapabilityPresent(amqp091)", c.Conditions[0].String(), "capability gate runs first")
	}
	assert.Equal(t, component.Roles(), roles)
}

func TestProvision_EmptyRegistryProvisionsAll(t *testing.T) {
	registry := component.NewRegistry()

	report, err := provisionWith(t, registry, nil)
	require.NoError(t, err)
	assert.Equal(t, component.Roles(), report.Provisioned())

	factory := get[*amqpclient.ConnectionFactory](t, registry, component.RoleConnectionFactory)
	admin := get[*amqpclient.Admin](t, registry, component.RoleAdminHandle)
	template := get[*amqpclient.Template](t, registry, component.RoleTemplate)

	assert.Equal(t, "localhost", factory.Host())
	assert.Equal(t, 5672, factory.Port())
	assert.Same(t, factory, admin.Connector())
	assert.Same(t, factory, template.Connector())
}

func TestProvision_PreSuppliedFactoryIsReused(t *testing.T) {
	registry := component.NewRegistry()
	supplied := testutil.NewMockConnector("app")
	require.NoError(t, registry.Register(component.RoleConnectionFactory, supplied))

	report, err := provisionWith(t, registry, config.Properties{config.KeyHost: "ignored"})
	require.NoError(t, err)

	outcome, ok := report.Outcome(component.RoleConnectionFactory)
	require.True(t, ok)
	assert.Equal(t, provision.StateSkipped, outcome.State)

	got, _ := registry.Get(component.RoleConnectionFactory)
	assert.Same(t, supplied, got)

	admin := get[*amqpclient.Admin](t, registry, component.RoleAdminHandle)
	template := get[*amqpclient.Template](t, registry, component.RoleTemplate)
	assert.Same(t, supplied, admin.Connector())
	assert.Same(t, supplied, template.Connector())
}

func TestProvision_DynamicFalseSkipsAdmin(t *testing.T) {
	registry := component.NewRegistry()

	report, err := provisionWith(t, registry, config.Properties{config.KeyDynamic: "false"})
	require.NoError(t, err)

	assert.Equal(t, []component.Role{component.RoleAdminHandle}, report.Skipped())
	assert.False(t, registry.Has(component.RoleAdminHandle))
	assert.True(t, registry.Has(component.RoleConnectionFactory))
	assert.True(t, registry.Has(component.RoleTemplate))

	outcome, _ := report.Outcome(component.RoleAdminHandle)
	assert.Equal(t, "ExpressionTrue(messaging.broker.dynamic, default=true)", outcome.FailedCondition)
}

func TestProvision_PreExistingTemplateUntouched(t *testing.T) {
	registry := component.NewRegistry()
	existing := amqpclient.NewTemplate(testutil.NewMockConnector("app"), amqpclient.WithRoutingKey("app"))
	require.NoError(t, registry.Register(component.RoleTemplate, existing))

	_, err := provisionWith(t, registry, nil)
	require.NoError(t, err)

	got, _ := registry.Get(component.RoleTemplate)
	assert.Same(t, existing, got)
	assert.True(t, registry.Has(component.RoleConnectionFactory))
	assert.True(t, registry.Has(component.RoleAdminHandle))
}

func TestProvision_ConfiguredConnection(t *testing.T) {
	registry := component.NewRegistry()

	_, err := provisionWith(t, registry, config.Properties{
		config.KeyHost:     "broker1",
		config.KeyPort:     "5673",
		config.KeyUsername: "u",
	})
	require.NoError(t, err)

	factory := get[*amqpclient.ConnectionFactory](t, registry, component.RoleConnectionFactory)
	assert.Equal(t, "broker1", factory.Host())
	assert.Equal(t, 5673, factory.Port())
	assert.Equal(t, "u", factory.Username())
	assert.Equal(t, amqpclient.DefaultPassword, factory.Password())
}

func TestProvision_MalformedPortFailsWithoutRegistering(t *testing.T) {
	registry := component.NewRegistry()

	_, err := provisionWith(t, registry, config.Properties{config.KeyPort: "abc"})
	require.Error(t, err)

	ce, ok := errors.AsConfigurationError(err)
	require.True(t, ok)
	assert.Equal(t, config.KeyPort, ce.Key)
	assert.Equal(t, 0, registry.Len())
}

func TestProvision_MalformedConfigFailsEvenWithPreSuppliedFactory(t *testing.T) {
	registry := component.NewRegistry()
	require.NoError(t, registry.Register(component.RoleConnectionFactory, testutil.NewMockConnector("app")))

	_, err := provisionWith(t, registry, config.Properties{config.KeyDynamic: "sometimes"})
	require.Error(t, err)

	ce, ok := errors.AsConfigurationError(err)
	require.True(t, ok)
	assert.Equal(t, config.KeyDynamic, ce.Key)
	assert.Equal(t, 1, registry.Len())
}

func TestProvision_CapabilityAbsentBypasses(t *testing.T) {
	registry := component.NewRegistry()

	report, err := provisionWith(t, registry, nil, provision.WithCapabilities(capability.NewSet()))
	require.NoError(t, err)

	assert.True(t, report.Bypassed)
	assert.ErrorIs(t, report.Reason, errors.ErrCapabilityUnavailable)
	assert.Equal(t, 0, registry.Len())
}

func TestProvision_IncompatibleFactoryRollsBack(t *testing.T) {
	registry := component.NewRegistry()
	require.NoError(t, registry.Register(component.RoleConnectionFactory, "not a connector"))

	report, err := provisionWith(t, registry, nil)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	assert.Empty(t, report.Provisioned())
	assert.Equal(t, 1, registry.Len())
	assert.False(t, registry.Has(component.RoleAdminHandle))
	assert.False(t, registry.Has(component.RoleTemplate))
}

func TestProvision_SecondPassIsNoOp(t *testing.T) {
	registry := component.NewRegistry()
	p, err := NewProvisioner()
	require.NoError(t, err)

	_, err = p.Provision(registry, nil)
	require.NoError(t, err)
	before := registry.Snapshot()

	report, err := p.Provision(registry, nil)
	require.NoError(t, err)
	assert.Empty(t, report.Provisioned())
	assert.Equal(t, component.Roles(), report.Skipped())
	assert.Equal(t, before, registry.Snapshot())
}
