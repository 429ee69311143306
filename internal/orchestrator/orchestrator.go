// Package orchestrator drives the managed stack through its operator modes.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"stackctl/internal/compose"
	"stackctl/internal/config"
	"stackctl/internal/engine"
	"stackctl/internal/health"
	"stackctl/internal/readiness"
	"stackctl/internal/report"
	"stackctl/internal/settings"
	"stackctl/internal/snapshot"
	"stackctl/internal/stack"
)

var (
	// ErrInvalidMode marks an unrecognized operator command.
	ErrInvalidMode = errors.New("invalid mode")

	// ErrStackNotReady marks an exhausted readiness budget.
	ErrStackNotReady = errors.New("stack not ready")

	// ErrMissingCredentialBundle marks unmet production preconditions.
	ErrMissingCredentialBundle = errors.New("missing credential bundle")

	// ErrControllerUnavailable marks an unreachable container runtime.
	ErrControllerUnavailable = errors.New("stack controller unavailable")
)

// The settings flag flipped between demo and production, and the wallet file
// whose presence proxies "credential bundle installed". Both come from the
// application the stack serves.
const (
	demoModeKey      = "DEMO_MODE"
	walletMarkerFile = "tnsnames.ora"
)

// Default credential hints shown in the post-start summary.
var defaultCredentials = map[string]string{
	"librechat":   "register a local account",
	"oracle-demo": "analytics_reader / AnalyticsTable123",
}

type readinessWaiter interface {
	Wait(ctx context.Context, resource, marker string, policy readiness.Policy) error
}

type healthAggregator interface {
	Aggregate(ctx context.Context) health.Report
}

// Orchestrator executes exactly one mode's action sequence per invocation.
// All external effects go through injected collaborators.
type Orchestrator struct {
	logger     zerolog.Logger
	cfg        config.Config
	descriptor compose.Descriptor
	controller stack.Controller
	engine     engine.Client
	sink       report.Sink
	poller     readinessWaiter
	aggregator healthAggregator
	prompter   Prompter
	snapshots  snapshot.Store
}

// Option customizes orchestrator collaborators.
type Option func(*Orchestrator)

// WithSink overrides the reporting sink.
func WithSink(sink report.Sink) Option {
	return func(o *Orchestrator) {
		o.sink = sink
	}
}

// WithPoller overrides the readiness poller.
func WithPoller(poller readinessWaiter) Option {
	return func(o *Orchestrator) {
		o.poller = poller
	}
}

// WithAggregator overrides the health aggregator.
func WithAggregator(aggregator healthAggregator) Option {
	return func(o *Orchestrator) {
		o.aggregator = aggregator
	}
}

// WithPrompter overrides the confirmation prompter.
func WithPrompter(prompter Prompter) Option {
	return func(o *Orchestrator) {
		o.prompter = prompter
	}
}

// WithSnapshotStore overrides snapshot persistence.
func WithSnapshotStore(store snapshot.Store) Option {
	return func(o *Orchestrator) {
		o.snapshots = store
	}
}

// New constructs an Orchestrator with default collaborators wired from the
// configuration.
func New(logger zerolog.Logger, cfg config.Config, descriptor compose.Descriptor, controller stack.Controller, engineClient engine.Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:     logger,
		cfg:        cfg,
		descriptor: descriptor,
		controller: controller,
		engine:     engineClient,
		sink:       report.NewConsole(os.Stdout, report.IsTerminal(os.Stdout)),
		poller:     readiness.New(logger, engineClient),
		prompter:   NewConsolePrompter(os.Stdin, os.Stdout),
		snapshots:  snapshot.NewFileStore(cfg.SnapshotFile, logger),
	}
	o.aggregator = health.NewAggregator(
		logger,
		engineClient,
		descriptor.ServiceNames(),
		health.NewProber(cfg.HealthURL, cfg.ProbeTimeout),
	)

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Run executes the selected mode's action sequence to completion or failure.
func (o *Orchestrator) Run(ctx context.Context, mode Mode) error {
	o.logger.Debug().Stringer("mode", mode).Msg("dispatching mode")

	switch mode {
	case ModeStartDemo:
		return o.startDemo(ctx)
	case ModeStartProduction:
		return o.startProduction(ctx)
	case ModeStop:
		return o.stop(ctx)
	case ModeShowLogs:
		return o.showLogs(ctx)
	case ModeReset:
		return o.reset(ctx)
	case ModeHealthCheck:
		return o.healthCheck(ctx)
	}
	return fmt.Errorf("%w: %d", ErrInvalidMode, int(mode))
}

func (o *Orchestrator) startDemo(ctx context.Context) error {
	// Snapshot whatever stack definition a previous run left behind. Losing
	// the snapshot is not worth failing the start over.
	if snap, err := snapshot.Take(o.cfg.ComposeFile, o.cfg.SettingsFile); err != nil {
		o.logger.Warn().Err(err).Msg("could not snapshot stack definition")
	} else if err := o.snapshots.Save(ctx, snap); err != nil {
		o.logger.Warn().Err(err).Msg("could not persist stack snapshot")
	}

	if err := o.stopIfRunning(ctx); err != nil {
		return err
	}

	if err := o.controller.Up(ctx); err != nil {
		return err
	}

	done := o.sink.Busy(fmt.Sprintf("waiting for %s to accept connections", o.cfg.DatabaseService))
	err := o.poller.Wait(ctx, o.cfg.DatabaseService, o.cfg.ReadinessMarker, readiness.Policy{
		MaxAttempts: o.cfg.PollAttempts,
		Delay:       o.cfg.PollDelay,
	})
	done()
	if err != nil {
		if errors.Is(err, readiness.ErrTimedOut) {
			o.sink.Errorf("%s never reported ready; inspect logs with 'stackctl show-logs'", o.cfg.DatabaseService)
			return fmt.Errorf("%w: %v", ErrStackNotReady, err)
		}
		return err
	}

	healthReport := o.aggregator.Aggregate(ctx)
	o.sink.HealthReport(healthReport)
	o.sink.Endpoints(o.endpoints())
	o.sink.Successf("stack %q is up", o.cfg.ProjectName)
	return nil
}

func (o *Orchestrator) startProduction(ctx context.Context) error {
	marker := filepath.Join(o.cfg.WalletDir, walletMarkerFile)
	if _, err := os.Stat(marker); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			o.sink.Errorf("credential bundle not found: %s is missing", marker)
			o.sink.Infof("install the production wallet under %s, then rerun start-production", o.cfg.WalletDir)
			return fmt.Errorf("%w: %s", ErrMissingCredentialBundle, marker)
		}
		return fmt.Errorf("check credential bundle: %w", err)
	}

	if err := settings.RewriteFlag(o.cfg.SettingsFile, demoModeKey, false); err != nil {
		return fmt.Errorf("enable production mode: %w", err)
	}

	o.sink.Successf("production mode enabled in %s", o.cfg.SettingsFile)
	o.sink.Infof("containers were not restarted; apply with 'docker compose -p %s up -d'", o.cfg.ProjectName)
	return nil
}

func (o *Orchestrator) stop(ctx context.Context) error {
	if err := o.stopIfRunning(ctx); err != nil {
		return err
	}
	o.sink.Successf("stack %q stopped", o.cfg.ProjectName)
	return nil
}

// stopIfRunning distinguishes "nothing to do" from a genuinely failed stop: a
// stack with no running containers is a normal no-op, while a stop command
// failure against a running stack propagates.
func (o *Orchestrator) stopIfRunning(ctx context.Context) error {
	containers, err := o.engine.ListContainers(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrControllerUnavailable, err)
	}

	running := 0
	for _, c := range containers {
		if c.Running() {
			running++
		}
	}
	if running == 0 {
		o.sink.Infof("no running containers for stack %q, nothing to stop", o.cfg.ProjectName)
		return nil
	}

	return o.controller.Stop(ctx)
}

func (o *Orchestrator) showLogs(ctx context.Context) error {
	logs, err := o.controller.Logs(ctx, o.cfg.LogTail)
	if err != nil {
		return err
	}
	o.sink.Logs(logs)
	return nil
}

func (o *Orchestrator) reset(ctx context.Context) error {
	question := fmt.Sprintf("This removes stack %q containers and volumes and prunes unused resources. Continue? [y/N] ", o.cfg.ProjectName)
	confirmed, err := o.prompter.Confirm(question)
	if err != nil {
		return fmt.Errorf("read confirmation: %w", err)
	}
	if !confirmed {
		o.sink.Infof("reset aborted")
		return nil
	}

	if err := o.controller.Down(ctx, true); err != nil {
		return err
	}

	summary, err := o.engine.Prune(ctx)
	if err != nil {
		return fmt.Errorf("prune unused resources: %w", err)
	}

	o.sink.Successf("reset complete: removed %d containers, %d volumes, %d networks, reclaimed %d bytes",
		summary.ContainersDeleted, summary.VolumesDeleted, summary.NetworksDeleted, summary.SpaceReclaimed)
	return nil
}

func (o *Orchestrator) healthCheck(ctx context.Context) error {
	healthReport := o.aggregator.Aggregate(ctx)
	o.sink.HealthReport(healthReport)
	if !healthReport.Healthy {
		// Reporting is the point of this mode; degraded checks are surfaced,
		// not treated as a hard error.
		o.sink.Warnf("one or more checks are not ok")
	}
	return nil
}

func (o *Orchestrator) endpoints() []report.Endpoint {
	var endpoints []report.Endpoint
	for _, name := range o.descriptor.ServiceNames() {
		service := o.descriptor.Services[name]
		for _, port := range service.PublishedPorts {
			url := "http://localhost:" + port
			if name == o.cfg.DatabaseService {
				url = "localhost:" + port
			}
			endpoints = append(endpoints, report.Endpoint{
				Name:        name,
				URL:         url,
				Credentials: defaultCredentials[name],
			})
		}
	}
	return endpoints
}
