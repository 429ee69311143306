package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"stackctl/internal/orchestrator"
)

func TestRootCommandHasAllModes(t *testing.T) {
	root := newRootCmd()

	registered := map[string]bool{}
	for _, cmd := range root.Commands() {
		registered[cmd.Name()] = true
	}

	for _, token := range orchestrator.ModeTokens() {
		if !registered[token] {
			t.Fatalf("mode %q is not registered as a subcommand", token)
		}
	}
}

func TestUnknownModeFails(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"destroy"})

	err := root.Execute()
	if err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if !errors.Is(err, orchestrator.ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
	if !strings.Contains(err.Error(), "destroy") {
		t.Fatalf("expected unknown token in error, got %v", err)
	}
	if got := exitCode(err); got != 2 {
		t.Fatalf("expected exit code 2 for unknown mode, got %d", got)
	}
}

func TestUnknownModePrintsUsage(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"destroy"})

	_ = root.Execute()

	output := out.String()
	if !strings.Contains(output, "Usage:") {
		t.Fatalf("expected usage text, got:\n%s", output)
	}
	for _, token := range orchestrator.ModeTokens() {
		if !strings.Contains(output, token) {
			t.Fatalf("expected mode %q in usage text, got:\n%s", token, output)
		}
	}
}

func TestExitCodes(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: %q", orchestrator.ErrInvalidMode, "destroy"), 2},
		{orchestrator.ErrStackNotReady, 1},
		{orchestrator.ErrMissingCredentialBundle, 1},
		{errors.New("compose up: exit status 1"), 1},
	}

	for _, tc := range cases {
		if got := exitCode(tc.err); got != tc.want {
			t.Fatalf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
