package provision

import (
	"fmt"
	"time"

	"github.com/c360/brokerboot/component"
)

// State is the lifecycle position of a candidate within one pass
type State int

// Candidate states. Gated is transient within a pass; a candidate ends in
// Skipped or Provisioned unless the pass fails while building it.
const (
	StateUnresolved State = iota
	StateGated
	StateSkipped
	StateProvisioned
)

// String implements fmt.Stringer
func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateGated:
		return "gated"
	case StateSkipped:
		return "skipped"
	case StateProvisioned:
		return "provisioned"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible
func (s State) Terminal() bool {
	return s == StateSkipped || s == StateProvisioned
}

// Outcome records what happened to one candidate
type Outcome struct {
	Role            component.Role
	State           State
	FailedCondition string // first condition that did not hold, when Skipped
}

// Report summarises one provisioning pass
type Report struct {
	// Bypassed is set when a required capability was missing and nothing was evaluated
	Bypassed bool

	// Reason explains a bypass; it wraps errors.ErrCapabilityUnavailable
	Reason error

	// Outcomes lists candidates in evaluation order
	Outcomes []Outcome

	// RolledBack lists roles unregistered after a failed build
	RolledBack []component.Role

	Duration time.Duration
}

// Outcome returns the outcome recorded for role
func (r Report) Outcome(role component.Role) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Role == role {
			return o, true
		}
	}
	return Outcome{}, false
}

// Provisioned returns the roles provisioned by the pass, in order
func (r Report) Provisioned() []component.Role {
	return r.rolesIn(StateProvisioned)
}

// Skipped returns the roles whose gate did not hold, in order
func (r Report) Skipped() []component.Role {
	return r.rolesIn(StateSkipped)
}

func (r Report) rolesIn(state State) []component.Role {
	var roles []component.Role
	for _, o := range r.Outcomes {
		if o.State == state {
			roles = append(roles, o.Role)
		}
	}
	return roles
}
