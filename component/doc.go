// Package component defines the component registry populated at startup.
//
// The registry maps a Role (connection factory, admin handle, template) to at
// most one instance. An embedding application may register its own instances
// before provisioning runs; the provisioner only fills roles that are still
// empty, so a pre-supplied instance is never replaced.
//
// After startup the registry is treated as read-only. Downstream code
// retrieves typed instances with Resolve:
//
//	template, err := component.Resolve[*amqpclient.Template](registry, component.RoleTemplate)
//
// Provisioning passes must not run concurrently against the same registry.
// The registry's own lock only protects its map; it does not make two
// passes agree on who fills a role.
package component
