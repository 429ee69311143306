// Package report is the operator-facing output boundary. The orchestrator
// talks to a Sink instead of the terminal so its logic stays testable.
package report

import "stackctl/internal/health"

// Endpoint is one reachable service address shown after a successful start.
type Endpoint struct {
	Name        string
	URL         string
	Credentials string
}

// Sink receives everything the orchestrator wants the operator to see.
type Sink interface {
	Infof(format string, args ...any)
	Successf(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)

	// HealthReport renders the composite health report with per-check detail.
	HealthReport(report health.Report)

	// Endpoints renders the fixed-format summary of reachable endpoints and
	// default credentials.
	Endpoints(endpoints []Endpoint)

	// Logs prints a raw log dump.
	Logs(text string)

	// Busy shows a progress indicator until the returned func is called.
	Busy(message string) func()
}
