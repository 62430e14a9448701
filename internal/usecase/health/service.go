// Package health aggregates component availability checks for the health
// endpoint.
package health

import "context"

// Checker probes one dependency.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

// Status is the aggregated health status.
type Status string

const (
	// Healthy means every component passed.
	Healthy Status = "ok"
	// Degraded means at least one component failed.
	Degraded Status = "degraded"
	// Unhealthy means every component failed.
	Unhealthy Status = "error"
)

// CheckResult is one component's outcome.
type CheckResult string

const (
	// CheckOK marks a passing check.
	CheckOK CheckResult = "ok"
	// CheckError marks a failing check.
	CheckError CheckResult = "error"
)

// Report aggregates component results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type component struct {
	name    string
	checker Checker
}

// Service runs registered component checks.
type Service struct {
	components []component
}

// New creates an empty health service; register components with WithCheck.
func New() *Service {
	return &Service{}
}

// WithCheck registers a named component. Nil checkers are ignored so callers
// can pass optional dependencies unconditionally.
func (s *Service) WithCheck(name string, c Checker) *Service {
	if c != nil {
		s.components = append(s.components, component{name: name, checker: c})
	}
	return s
}

// Check probes every component. All failing is Unhealthy, some failing is
// Degraded, none failing (or no components) is Healthy.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.components))
	failed := 0
	for _, c := range s.components {
		if err := c.checker.HealthCheck(ctx); err != nil {
			checks[c.name] = CheckError
			failed++
		} else {
			checks[c.name] = CheckOK
		}
	}

	status := Healthy
	switch {
	case failed == 0:
	case failed == len(s.components):
		status = Unhealthy
	default:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
