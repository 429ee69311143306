package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestTake(t *testing.T) {
	dir := t.TempDir()
	composePath := filepath.Join(dir, "docker-compose.yml")
	settingsPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(composePath, []byte("services: {}\n"), 0o644); err != nil {
		t.Fatalf("write compose: %v", err)
	}
	if err := os.WriteFile(settingsPath, []byte("DEMO_MODE=true\n"), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	snap, err := Take(composePath, settingsPath)
	if err != nil {
		t.Fatalf("Take error: %v", err)
	}

	if snap.ComposeFingerprint == "" {
		t.Fatal("expected compose fingerprint")
	}
	if snap.Settings["DEMO_MODE"] != "true" {
		t.Fatalf("unexpected settings: %v", snap.Settings)
	}
	if snap.TakenAt.IsZero() {
		t.Fatal("expected taken_at to be set")
	}
}

func TestTakeMissingSettingsTolerated(t *testing.T) {
	dir := t.TempDir()
	composePath := filepath.Join(dir, "docker-compose.yml")
	if err := os.WriteFile(composePath, []byte("services: {}\n"), 0o644); err != nil {
		t.Fatalf("write compose: %v", err)
	}

	snap, err := Take(composePath, filepath.Join(dir, ".env"))
	if err != nil {
		t.Fatalf("Take error: %v", err)
	}
	if len(snap.Settings) != 0 {
		t.Fatalf("expected empty settings, got %v", snap.Settings)
	}
}

func TestTakeMissingComposeFails(t *testing.T) {
	dir := t.TempDir()
	if _, err := Take(filepath.Join(dir, "missing.yml"), filepath.Join(dir, ".env")); err == nil {
		t.Fatal("expected error for missing compose file")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snapshot.json")
	store := NewFileStore(path, zerolog.Nop())

	snap := Snapshot{
		ComposeFile:        "docker-compose.yml",
		ComposeFingerprint: "abc",
		Settings:           map[string]string{"DEMO_MODE": "true"},
	}
	if err := store.Save(context.Background(), snap); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded, ok, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !ok {
		t.Fatal("expected snapshot to exist")
	}
	if loaded.ComposeFingerprint != "abc" || loaded.Settings["DEMO_MODE"] != "true" {
		t.Fatalf("unexpected snapshot: %+v", loaded)
	}
}

func TestFileStoreLoadMissing(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "snapshot.json"), zerolog.Nop())

	_, ok, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if ok {
		t.Fatal("expected no snapshot")
	}
}

func TestFileStoreLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	store := NewFileStore(path, zerolog.Nop())

	_, ok, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if ok {
		t.Fatal("expected corrupt snapshot to be ignored")
	}
}
