package stack

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Controller is the command boundary to the container orchestration runtime.
// The orchestrator never inspects compose internals; it only issues these
// operations against the one named stack.
type Controller interface {
	// Up builds and starts the full stack in the background.
	Up(ctx context.Context) error

	// Stop stops the stack's containers without removing them.
	Stop(ctx context.Context) error

	// Down stops and removes the stack's containers, optionally including
	// its named volumes.
	Down(ctx context.Context, removeVolumes bool) error

	// Logs returns the last tail lines of every service's log stream.
	Logs(ctx context.Context, tail int) (string, error)
}

// runFunc executes one external command, streaming output to the given
// writers. Injected in tests.
type runFunc func(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error

// ComposeCLI drives the stack through the docker compose command line.
type ComposeCLI struct {
	logger      zerolog.Logger
	composeFile string
	project     string
	output      io.Writer
	run         runFunc
}

// Option customizes ComposeCLI behavior.
type Option func(*ComposeCLI)

// WithRunner overrides command execution.
func WithRunner(run runFunc) Option {
	return func(c *ComposeCLI) {
		c.run = run
	}
}

// WithOutput sets the writer that long-running commands stream to.
func WithOutput(w io.Writer) Option {
	return func(c *ComposeCLI) {
		c.output = w
	}
}

// NewComposeCLI constructs a controller for one compose file and project.
func NewComposeCLI(logger zerolog.Logger, composeFile, project string, opts ...Option) *ComposeCLI {
	c := &ComposeCLI{
		logger:      logger,
		composeFile: composeFile,
		project:     project,
		output:      os.Stdout,
		run:         runCommand,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func runCommand(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

func (c *ComposeCLI) args(rest ...string) []string {
	return append([]string{"compose", "-f", c.composeFile, "-p", c.project}, rest...)
}

// Up builds images as needed and starts all services detached. Build and
// pull progress streams through to the operator.
func (c *ComposeCLI) Up(ctx context.Context) error {
	c.logger.Info().Str("project", c.project).Msg("starting stack")
	if err := c.run(ctx, c.output, c.output, "docker", c.args("up", "-d", "--build")...); err != nil {
		return fmt.Errorf("compose up: %w", err)
	}
	return nil
}

// Stop stops running containers. Stopping a stack that is already stopped is
// not an error; compose treats it as a no-op.
func (c *ComposeCLI) Stop(ctx context.Context) error {
	c.logger.Info().Str("project", c.project).Msg("stopping stack")
	return c.runCaptured(ctx, "compose stop", c.args("stop")...)
}

// Down removes the stack's containers and networks, plus named volumes when
// removeVolumes is set.
func (c *ComposeCLI) Down(ctx context.Context, removeVolumes bool) error {
	rest := []string{"down", "--remove-orphans"}
	if removeVolumes {
		rest = append(rest, "--volumes")
	}
	c.logger.Info().Str("project", c.project).Bool("volumes", removeVolumes).Msg("tearing down stack")
	return c.runCaptured(ctx, "compose down", c.args(rest...)...)
}

// Logs returns the tail of all services' logs in one combined text block.
func (c *ComposeCLI) Logs(ctx context.Context, tail int) (string, error) {
	var stdout, stderr bytes.Buffer
	err := c.run(ctx, &stdout, &stderr, "docker", c.args("logs", "--tail", strconv.Itoa(tail))...)
	if err != nil {
		return "", wrapCommandError("compose logs", err, stderr.String())
	}
	return stdout.String(), nil
}

func (c *ComposeCLI) runCaptured(ctx context.Context, action string, args ...string) error {
	var combined bytes.Buffer
	if err := c.run(ctx, &combined, &combined, "docker", args...); err != nil {
		return wrapCommandError(action, err, combined.String())
	}
	c.logger.Debug().Str("action", action).Msg(strings.TrimSpace(combined.String()))
	return nil
}

func wrapCommandError(action string, err error, output string) error {
	output = strings.TrimSpace(output)
	if output == "" {
		return fmt.Errorf("%s: %w", action, err)
	}
	// Keep the error readable when compose dumps a long trace.
	const limit = 512
	if len(output) > limit {
		output = output[len(output)-limit:]
	}
	return fmt.Errorf("%s: %w: %s", action, err, output)
}
