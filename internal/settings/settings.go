// Package settings reads and rewrites the stack's persisted settings file, a
// flat key=value text file shared with the containers (typically .env).
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ReadFlag reads a boolean-like flag from the settings file. The second
// return value reports whether the key was present; a missing file counts as
// not present.
func ReadFlag(path, key string) (bool, bool, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("read settings file: %w", err)
	}

	raw, ok := values[key]
	if !ok {
		return false, false, nil
	}

	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, true, fmt.Errorf("settings key %s: %w", key, err)
	}
	return value, true, nil
}

// Read returns all key=value pairs from the settings file.
func Read(path string) (map[string]string, error) {
	return godotenv.Read(path)
}

// RewriteFlag sets key to value in the settings file, rewriting the matching
// line in place and preserving every other line (comments included) exactly.
// A missing key is appended; a missing file is created. The write is atomic.
func RewriteFlag(path, key string, value bool) error {
	var lines []string
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		lines = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	case errors.Is(err, os.ErrNotExist):
		lines = nil
	default:
		return fmt.Errorf("read settings file: %w", err)
	}

	entry := fmt.Sprintf("%s=%t", key, value)
	replaced := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), key+"=") {
			lines[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		// Drop the single empty line produced by splitting an empty file.
		if len(lines) == 1 && lines[0] == "" {
			lines = nil
		}
		lines = append(lines, entry)
	}

	return writeAtomic(path, []byte(strings.Join(lines, "\n")+"\n"))
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tempFile, err := os.CreateTemp(dir, ".settings-*")
	if err != nil {
		return err
	}

	cleanup := func() {
		_ = os.Remove(tempFile.Name())
	}

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		cleanup()
		return err
	}
	if err := tempFile.Sync(); err != nil {
		_ = tempFile.Close()
		cleanup()
		return err
	}
	if err := tempFile.Close(); err != nil {
		cleanup()
		return err
	}

	if err := os.Rename(tempFile.Name(), path); err != nil {
		cleanup()
		return err
	}

	return nil
}
