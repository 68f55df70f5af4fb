// Package componentregistry declares the broker components brokerboot can
// provision and the gates that decide whether each one is created.
package componentregistry

import (
	"github.com/c360/brokerboot/amqpclient"
	"github.com/c360/brokerboot/component"
	"github.com/c360/brokerboot/condition"
	"github.com/c360/brokerboot/config"
	"github.com/c360/brokerboot/errors"
	"github.com/c360/brokerboot/provision"
)

// Candidates returns the broker components in provisioning order:
//
//   - ConnectionFactory: when the amqp091 capability is present and no
//     factory is registered.
//   - AdminHandle: additionally requires messaging.broker.dynamic (default
//     true) and no registered admin handle.
//   - Template: when no template is registered.
//
// The admin handle and template bind to whichever connection factory is
// registered when they are built, pre-supplied or provisioned.
func Candidates() []provision.Candidate {
	return []provision.Candidate{
		{
			Role: component.RoleConnectionFactory,
			Conditions: []condition.Condition{
				condition.CapabilityPresent(amqpclient.Capability),
				condition.RoleAbsent(component.RoleConnectionFactory),
			},
			Build: buildConnectionFactory,
		},
		{
			Role: component.RoleAdminHandle,
			Conditions: []condition.Condition{
				condition.CapabilityPresent(amqpclient.Capability),
				condition.ExpressionTrue(config.KeyDynamic, config.DefaultDynamic),
				condition.RoleAbsent(component.RoleAdminHandle),
			},
			Build: buildAdmin,
		},
		{
			Role: component.RoleTemplate,
			Conditions: []condition.Condition{
				condition.CapabilityPresent(amqpclient.Capability),
				condition.RoleAbsent(component.RoleTemplate),
			},
			Build: buildTemplate,
		},
	}
}

// NewProvisioner creates a provisioner for Candidates that is bypassed
// entirely when the amqp091 capability is missing.
func NewProvisioner(opts ...provision.Option) (*provision.Provisioner, error) {
	opts = append([]provision.Option{provision.WithRequiredCapabilities(amqpclient.Capability)}, opts...)
	p, err := provision.New(Candidates(), opts...)
	if err != nil {
		return nil, errors.WrapInvalid(err, "ComponentRegistry", "NewProvisioner", "provisioner construction")
	}
	return p, nil
}

func buildConnectionFactory(bc provision.BuildContext) (any, error) {
	return amqpclient.BuildConnectionFactory(bc.Config, amqpclient.WithLogger(bc.Logger))
}

func buildAdmin(bc provision.BuildContext) (any, error) {
	connector, err := component.Resolve[amqpclient.Connector](bc.Registry, component.RoleConnectionFactory)
	if err != nil {
		return nil, err
	}
	return amqpclient.NewAdmin(connector, amqpclient.WithAdminLogger(bc.Logger)), nil
}

func buildTemplate(bc provision.BuildContext) (any, error) {
	connector, err := component.Resolve[amqpclient.Connector](bc.Registry, component.RoleConnectionFactory)
	if err != nil {
		return nil, err
	}
	return amqpclient.NewTemplate(connector, amqpclient.WithTemplateLogger(bc.Logger)), nil
}
