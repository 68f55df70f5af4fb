package health

import (
	"fmt"

	"github.com/c360/brokerboot/provision"
)

// Check names used by the CLI
const (
	CheckProvisioning = "provisioning"
	CheckBroker       = "broker"
)

// FromReport converts the result of a provisioning pass into a status with
// one sub-status per evaluated role. A bypassed pass is degraded since the
// process runs without broker components.
func FromReport(report provision.Report, err error) Status {
	if err != nil {
		return NewUnhealthy(CheckProvisioning, sanitizeErrorMessage(err.Error()))
	}

	if report.Bypassed {
		msg := "Provisioning bypassed"
		if report.Reason != nil {
			msg = fmt.Sprintf("Provisioning bypassed: %s", report.Reason)
		}
		return NewDegraded(CheckProvisioning, msg)
	}

	status := NewHealthy(CheckProvisioning, fmt.Sprintf("Provisioned %d, skipped %d",
		len(report.Provisioned()), len(report.Skipped())))

	for _, outcome := range report.Outcomes {
		msg := outcome.State.String()
		if outcome.FailedCondition != "" {
			msg = fmt.Sprintf("%s: %s", msg, outcome.FailedCondition)
		}
		status = status.WithSubStatus(NewHealthy(outcome.Role.String(), msg))
	}

	return status
}

// FromPing converts the result of a broker connectivity check
func FromPing(address string, err error) Status {
	if err != nil {
		return NewUnhealthy(CheckBroker, sanitizeErrorMessage(err.Error()))
	}
	return NewHealthy(CheckBroker, fmt.Sprintf("Connected to %s", address))
}
