package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"stackctl/internal/compose"
	"stackctl/internal/config"
	"stackctl/internal/engine"
	"stackctl/internal/logging"
	"stackctl/internal/orchestrator"
	"stackctl/internal/report"
	"stackctl/internal/stack"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "stackctl [mode]",
		Short: "Provision and supervise the local AI demo stack",
		Long: "stackctl brings the local demo stack (database, LLM server, API, UI,\n" +
			"document store) up and down and reports on its health.\n\n" +
			"Modes: " + strings.Join(orchestrator.ModeTokens(), ", ") + "\n" +
			"Running stackctl with no mode is equivalent to start-demo.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Bare invocation defaults to start-demo. An unrecognized token
			// lands here instead of a subcommand and is a usage error: cobra
			// prints the usage text along with it.
			token := ""
			if len(args) > 0 {
				token = args[0]
			}
			mode, err := orchestrator.ParseMode(token)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			return runMode(cmd, mode)
		},
	}

	descriptions := map[orchestrator.Mode]string{
		orchestrator.ModeStartDemo:       "Build and start the stack, wait for readiness, and report health",
		orchestrator.ModeStartProduction: "Switch the persisted settings to production mode (requires the wallet)",
		orchestrator.ModeStop:            "Stop the stack's containers (no-op when nothing is running)",
		orchestrator.ModeShowLogs:        "Print the tail of every service's logs",
		orchestrator.ModeReset:           "Remove the stack's containers and volumes and prune unused resources",
		orchestrator.ModeHealthCheck:     "Run the health checks and print the composite report",
	}

	for _, token := range orchestrator.ModeTokens() {
		mode, err := orchestrator.ParseMode(token)
		if err != nil {
			panic(err)
		}
		root.AddCommand(&cobra.Command{
			Use:   token,
			Short: descriptions[mode],
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cmd.SilenceUsage = true
				return runMode(cmd, mode)
			},
		})
	}

	return root
}

func runMode(cmd *cobra.Command, mode orchestrator.Mode) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(os.Stderr, cfg.Debug)

	descriptor, err := compose.ParseFile(ctx, cfg.ComposeFile, cfg.ProjectName)
	if err != nil {
		return err
	}

	engineClient, err := engine.NewDockerClient(cfg.DockerHost, cfg.ProjectName, 0)
	if err != nil {
		return fmt.Errorf("connect to container runtime: %w", err)
	}
	defer engineClient.Close()

	controller := stack.NewComposeCLI(logger, cfg.ComposeFile, cfg.ProjectName)
	sink := report.NewConsole(os.Stdout, report.IsTerminal(os.Stdout))

	orch := orchestrator.New(logger, cfg, descriptor, controller, engineClient,
		orchestrator.WithSink(sink))

	return orch.Run(ctx, mode)
}

func exitCode(err error) int {
	if errors.Is(err, orchestrator.ErrInvalidMode) {
		return 2
	}
	return 1
}
