package component

import "fmt"

// Role identifies the kind of component held by the registry
type Role int

// Component roles provisioned by brokerboot
const (
	RoleConnectionFactory Role = iota + 1
	RoleAdminHandle
	RoleTemplate
)

// Roles returns all known roles in provisioning order
func Roles() []Role {
	return []Role{RoleConnectionFactory, RoleAdminHandle, RoleTemplate}
}

// String returns the string representation of Role
func (r Role) String() string {
	switch r {
	case RoleConnectionFactory:
		return "connection-factory"
	case RoleAdminHandle:
		return "admin-handle"
	case RoleTemplate:
		return "template"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r >= RoleConnectionFactory && r <= RoleTemplate
}
