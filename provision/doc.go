// Package provision decides, once at startup, which broker components to
// create and registers them.
//
// A Provisioner holds an ordered list of Candidates, each a role, a gate of
// conditions and a builder. Provision walks the list once:
//
//	Unresolved -> Gated -> Skipped      (some condition did not hold)
//	                    -> Provisioned  (built and registered)
//
// Later candidates see what earlier ones registered, which is how the admin
// handle and template bind to whichever connection factory ends up in the
// registry.
//
// The pass is all-or-nothing. Configuration is resolved before the first
// registration, and a failed build unregisters every role the pass had
// registered, so a failed pass leaves the registry as it found it.
package provision
