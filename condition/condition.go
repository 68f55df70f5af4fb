// Package condition evaluates the gates that decide whether a component is
// provisioned.
//
// A gate is an ordered list of Conditions evaluated left to right with AND
// semantics. Evaluation stops at the first condition that does not hold, so
// later conditions may assume earlier ones passed.
package condition

import (
	"fmt"
	"strconv"

	"github.com/c360/brokerboot/capability"
	"github.com/c360/brokerboot/component"
	"github.com/c360/brokerboot/config"
)

// Environment carries the inputs conditions may consult besides the registry
type Environment struct {
	Properties   config.Properties
	Capabilities capability.Checker
}

// Condition is a side-effect-free predicate over the registry and environment
type Condition interface {
	Matches(registry component.Lookup, env Environment) bool
	String() string
}

// FirstFailing evaluates conditions in order and returns the first one that
// does not hold. The second result is false when every condition holds.
func FirstFailing(conditions []Condition, registry component.Lookup, env Environment) (Condition, bool) {
	for _, c := range conditions {
		if !c.Matches(registry, env) {
			return c, true
		}
	}
	return nil, false
}

// Evaluate reports whether every condition holds, short-circuiting on the
// first failure. An empty list holds.
func Evaluate(conditions []Condition, registry component.Lookup, env Environment) bool {
	_, failed := FirstFailing(conditions, registry, env)
	return !failed
}

type capabilityPresent struct {
	name string
}

// CapabilityPresent holds when the named optional capability is available
func CapabilityPresent(name string) Condition {
	return capabilityPresent{name: name}
}

func (c capabilityPresent) Matches(_ component.Lookup, env Environment) bool {
	if env.Capabilities == nil {
		return false
	}
	return env.Capabilities.Present(c.name)
}

func (c capabilityPresent) String() string {
	return fmt.Sprintf("CapabilityPresent(%s)", c.name)
}

type expressionTrue struct {
	key          string
	defaultValue bool
}

// ExpressionTrue holds when the boolean property key is true.
// An unset or blank key falls back to defaultValue; an unparsable value
// does not hold.
func ExpressionTrue(key string, defaultValue bool) Condition {
	return expressionTrue{key: key, defaultValue: defaultValue}
}

func (c expressionTrue) Matches(_ component.Lookup, env Environment) bool {
	raw, ok := env.Properties.Lookup(c.key)
	if !ok {
		return c.defaultValue
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return value
}

func (c expressionTrue) String() string {
	return fmt.Sprintf("ExpressionTrue(%s, default=%t)", c.key, c.defaultValue)
}

type roleAbsent struct {
	role component.Role
}

// RoleAbsent holds when nothing is registered under role
func RoleAbsent(role component.Role) Condition {
	return roleAbsent{role: role}
}

func (c roleAbsent) Matches(registry component.Lookup, _ Environment) bool {
	if registry == nil {
		return true
	}
	_, exists := registry.Get(c.role)
	return !exists
}

func (c roleAbsent) String() string {
	return fmt.Sprintf("RoleAbsent(%s)", c.role)
}
