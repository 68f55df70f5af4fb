package provision

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/c360/brokerboot/capability"
	"github.com/c360/brokerboot/component"
	"github.com/c360/brokerboot/condition"
	"github.com/c360/brokerboot/config"
	"github.com/c360/brokerboot/errors"
	"github.com/c360/brokerboot/metric"
)

// BuildContext is what a candidate's builder receives
type BuildContext struct {
	Config   config.ConnectionConfig
	Registry component.Lookup
	Logger   *slog.Logger
}

// BuildFunc creates the instance for a candidate whose gate held
type BuildFunc func(bc BuildContext) (any, error)

// Candidate is a component the provisioner may create
type Candidate struct {
	Role       component.Role
	Conditions []condition.Condition
	Build      BuildFunc
}

// Provisioner runs provisioning passes over a fixed candidate list
type Provisioner struct {
	candidates   []Candidate
	capabilities capability.Checker
	required     []string
	logger       *slog.Logger
	metrics      *metric.Metrics
	mu           sync.Mutex
}

// Option is a functional option for configuring the Provisioner
type Option func(*Provisioner) error

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provisioner) error {
		if logger != nil {
			p.logger = logger
		}
		return nil
	}
}

// WithMetrics records pass metrics into registry
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(p *Provisioner) error {
		if registry != nil {
			p.metrics = registry.CoreMetrics()
		}
		return nil
	}
}

// WithCapabilities replaces the process-wide capability set
func WithCapabilities(checker capability.Checker) Option {
	return func(p *Provisioner) error {
		if checker == nil {
			return fmt.Errorf("capability checker cannot be nil")
		}
		if set, ok := checker.(*capability.Set); ok && set == nil {
			return fmt.Errorf("capability set cannot be nil")
		}
		p.capabilities = checker
		return nil
	}
}

// WithRequiredCapabilities bypasses the whole pass unless every name is present
func WithRequiredCapabilities(names ...string) Option {
	return func(p *Provisioner) error {
		p.required = append(p.required, names...)
		return nil
	}
}

// New creates a provisioner evaluating candidates in the given order
func New(candidates []Candidate, opts ...Option) (*Provisioner, error) {
	for i, c := range candidates {
		if !c.Role.Valid() {
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: candidate %d", errors.ErrUnknownRole, i),
				"Provisioner", "New", "candidate validation")
		}
		if c.Build == nil {
			return nil, errors.WrapInvalid(
				fmt.Errorf("candidate %s has no builder", c.Role),
				"Provisioner", "New", "candidate validation")
		}
	}

	p := &Provisioner{
		candidates:   append([]Candidate(nil), candidates...),
		capabilities: capability.Default(),
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, errors.WrapInvalid(err, "Provisioner", "New", "apply option")
		}
	}

	p.logger = p.logger.With("component", "provisioner")
	return p, nil
}

// Provision runs one pass against registry using props.
//
// A missing required capability bypasses the pass: the report says so and
// no error is returned. Otherwise props are resolved before anything is
// registered, so malformed configuration leaves the registry untouched.
// Each candidate is then gated and, if its gate holds, built and
// registered. A failed build unregisters everything this pass registered.
// Passes on one Provisioner are serialised.
func (p *Provisioner) Provision(registry *component.Registry, props config.Properties) (report Report, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	defer func() {
		report.Duration = time.Since(start)
		if p.metrics != nil {
			p.metrics.RecordPassDuration(report.Duration)
		}
	}()

	if registry == nil {
		err = errors.WrapInvalid(fmt.Errorf("registry cannot be nil"), "Provisioner", "Provision", "registry validation")
		p.recordFailure(err)
		return report, err
	}

	if missing, ok := p.missingCapability(); ok {
		report.Bypassed = true
		report.Reason = fmt.Errorf("%w: %s", errors.ErrCapabilityUnavailable, missing)
		p.logger.Info("Provisioning bypassed", "capability", missing)
		if p.metrics != nil {
			p.metrics.RecordBypass()
		}
		return report, nil
	}

	cfg, err := config.Resolve(props)
	if err != nil {
		if ce, ok := errors.AsConfigurationError(err); ok {
			p.logger.Error("Invalid broker configuration", "key", ce.Key, "error", ce.Err)
		}
		err = errors.WrapFatal(err, "Provisioner", "Provision", "resolve configuration")
		p.recordFailure(err)
		return report, err
	}

	env := condition.Environment{
		Properties:   props,
		Capabilities: p.capabilities,
	}

	var provisioned []component.Role
	for _, c := range p.candidates {
		outcome := Outcome{Role: c.Role, State: StateUnresolved}

		outcome.State = StateGated
		if failed, blocked := condition.FirstFailing(c.Conditions, registry, env); blocked {
			outcome.State = StateSkipped
			outcome.FailedCondition = failed.String()
			report.Outcomes = append(report.Outcomes, outcome)
			p.logger.Debug("Candidate skipped", "role", c.Role.String(), "condition", outcome.FailedCondition)
			p.recordDecision(outcome)
			continue
		}

		if err = p.build(c, cfg, registry); err != nil {
			report.Outcomes = append(report.Outcomes, outcome)
			report.RolledBack = p.rollback(registry, provisioned)
			p.recordFailure(err)
			return report, err
		}

		provisioned = append(provisioned, c.Role)
		outcome.State = StateProvisioned
		report.Outcomes = append(report.Outcomes, outcome)
		p.logger.Info("Candidate provisioned", "role", c.Role.String())
		p.recordDecision(outcome)
	}

	if p.metrics != nil {
		for _, role := range component.Roles() {
			p.metrics.RecordRegistered(role.String(), registry.Has(role))
		}
	}

	p.logger.Info("Provisioning complete",
		"provisioned", len(report.Provisioned()),
		"skipped", len(report.Skipped()),
		"registered", registry.Len())

	return report, nil
}

func (p *Provisioner) build(c Candidate, cfg config.ConnectionConfig, registry *component.Registry) error {
	instance, err := c.Build(BuildContext{
		Config:   cfg,
		Registry: registry,
		Logger:   p.logger.With("role", c.Role.String()),
	})
	if err != nil {
		return errors.Wrap(err, "Provisioner", "Provision", fmt.Sprintf("build %s", c.Role))
	}

	if err := registry.Register(c.Role, instance); err != nil {
		return errors.Wrap(err, "Provisioner", "Provision", fmt.Sprintf("register %s", c.Role))
	}

	return nil
}

// rollback unregisters roles in reverse registration order
func (p *Provisioner) rollback(registry *component.Registry, roles []component.Role) []component.Role {
	if len(roles) == 0 {
		return nil
	}

	rolledBack := make([]component.Role, 0, len(roles))
	for i := len(roles) - 1; i >= 0; i-- {
		registry.Unregister(roles[i])
		rolledBack = append(rolledBack, roles[i])
	}

	p.logger.Warn("Provisioning rolled back", "roles", len(rolledBack))
	return rolledBack
}

func (p *Provisioner) missingCapability() (string, bool) {
	for _, name := range p.required {
		if !p.capabilities.Present(name) {
			return name, true
		}
	}
	return "", false
}

func (p *Provisioner) recordDecision(o Outcome) {
	if p.metrics != nil {
		p.metrics.RecordDecision(o.Role.String(), o.State.String())
	}
}

func (p *Provisioner) recordFailure(err error) {
	if p.metrics != nil {
		p.metrics.RecordFailure(errors.Classify(err).String())
	}
}
