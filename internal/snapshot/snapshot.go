// Package snapshot records the persisted stack definition as it stood before
// a start, so an operator can see what a start replaced.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"stackctl/internal/compose"
	"stackctl/internal/settings"
)

// Snapshot captures the stack definition at one point in time.
type Snapshot struct {
	TakenAt            time.Time         `json:"taken_at"`
	ComposeFile        string            `json:"compose_file"`
	ComposeFingerprint string            `json:"compose_fingerprint"`
	Settings           map[string]string `json:"settings,omitempty"`
}

// Store defines the interface for persisting snapshots.
type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (Snapshot, bool, error)
}

// Take reads the current compose file and settings file into a Snapshot. The
// compose file is required; a missing settings file leaves Settings empty.
func Take(composePath, settingsPath string) (Snapshot, error) {
	body, err := os.ReadFile(composePath)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read compose file: %w", err)
	}

	fingerprint, err := compose.Fingerprint(body)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		TakenAt:            time.Now().UTC(),
		ComposeFile:        composePath,
		ComposeFingerprint: fingerprint,
	}

	values, err := settings.Read(settingsPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, fmt.Errorf("read settings file: %w", err)
		}
	} else {
		snap.Settings = values
	}

	return snap, nil
}
