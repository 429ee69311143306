package health

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"stackctl/internal/engine"
)

// RuntimeClient is the subset of the engine client the aggregator needs.
type RuntimeClient interface {
	Ping(ctx context.Context) error
	ListContainers(ctx context.Context) ([]engine.Container, error)
}

// EndpointProber issues the application health probe.
type EndpointProber interface {
	Probe(ctx context.Context) (Status, string)
}

// Aggregator runs three independent checks and reduces them to one Report.
// A failure in one check never skips the others; it is recorded as that
// check's degraded or absent result.
type Aggregator struct {
	logger   zerolog.Logger
	runtime  RuntimeClient
	expected []string
	prober   EndpointProber
}

// NewAggregator constructs an Aggregator for the expected service set.
func NewAggregator(logger zerolog.Logger, runtime RuntimeClient, expected []string, prober EndpointProber) *Aggregator {
	return &Aggregator{
		logger:   logger,
		runtime:  runtime,
		expected: expected,
		prober:   prober,
	}
}

// Aggregate runs all checks sequentially and returns the composite report.
// Overall health is true iff every check reports ok.
func (a *Aggregator) Aggregate(ctx context.Context) Report {
	checks := []CheckResult{
		a.checkRuntime(ctx),
		a.checkServices(ctx),
		a.checkEndpoint(ctx),
	}

	report := Report{
		Checks:  checks,
		Healthy: composite(checks),
	}

	a.logger.Debug().
		Bool("healthy", report.Healthy).
		Msg("health aggregation complete")

	return report
}

func (a *Aggregator) checkRuntime(ctx context.Context) CheckResult {
	if err := a.runtime.Ping(ctx); err != nil {
		return CheckResult{
			Name:   CheckRuntime,
			Status: StatusAbsent,
			Detail: fmt.Sprintf("container runtime unreachable: %v", err),
		}
	}
	return CheckResult{
		Name:   CheckRuntime,
		Status: StatusOK,
		Detail: "container runtime reachable",
	}
}

func (a *Aggregator) checkServices(ctx context.Context) CheckResult {
	containers, err := a.runtime.ListContainers(ctx)
	if err != nil {
		return CheckResult{
			Name:   CheckServices,
			Status: StatusAbsent,
			Detail: fmt.Sprintf("cannot list stack containers: %v", err),
		}
	}

	states := make(map[string]engine.Container, len(containers))
	for _, c := range containers {
		states[c.Service] = c
	}

	var notRunning []string
	for _, service := range a.expected {
		c, ok := states[service]
		switch {
		case !ok:
			notRunning = append(notRunning, service+" (missing)")
		case !c.Running():
			notRunning = append(notRunning, fmt.Sprintf("%s (%s)", service, c.State))
		}
	}
	sort.Strings(notRunning)

	if len(notRunning) > 0 {
		return CheckResult{
			Name:   CheckServices,
			Status: StatusDegraded,
			Detail: "not running: " + strings.Join(notRunning, ", "),
		}
	}
	return CheckResult{
		Name:   CheckServices,
		Status: StatusOK,
		Detail: fmt.Sprintf("all %d services running", len(a.expected)),
	}
}

func (a *Aggregator) checkEndpoint(ctx context.Context) CheckResult {
	status, detail := a.prober.Probe(ctx)
	return CheckResult{
		Name:   CheckEndpoint,
		Status: status,
		Detail: detail,
	}
}
