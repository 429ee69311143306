package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	return path
}

func TestReadFlag(t *testing.T) {
	path := writeFile(t, "DEMO_MODE=true\nORACLE_HOST=oracle-demo\n")

	value, found, err := ReadFlag(path, "DEMO_MODE")
	if err != nil {
		t.Fatalf("ReadFlag error: %v", err)
	}
	if !found || !value {
		t.Fatalf("expected DEMO_MODE=true, got value=%t found=%t", value, found)
	}

	_, found, err = ReadFlag(path, "MISSING")
	if err != nil {
		t.Fatalf("ReadFlag error: %v", err)
	}
	if found {
		t.Fatal("expected missing key to report not found")
	}
}

func TestReadFlagMissingFile(t *testing.T) {
	_, found, err := ReadFlag(filepath.Join(t.TempDir(), ".env"), "DEMO_MODE")
	if err != nil {
		t.Fatalf("ReadFlag error: %v", err)
	}
	if found {
		t.Fatal("expected missing file to report not found")
	}
}

func TestReadFlagInvalidValue(t *testing.T) {
	path := writeFile(t, "DEMO_MODE=maybe\n")

	_, found, err := ReadFlag(path, "DEMO_MODE")
	if err == nil {
		t.Fatal("expected error for non-boolean value")
	}
	if !found {
		t.Fatal("expected key to report found")
	}
}

func TestRewriteFlagPreservesOtherLines(t *testing.T) {
	content := "# stack settings\nORACLE_HOST=oracle-demo\nDEMO_MODE=true\n\nORACLE_PORT=1521\n"
	path := writeFile(t, content)

	if err := RewriteFlag(path, "DEMO_MODE", false); err != nil {
		t.Fatalf("RewriteFlag error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	got := string(data)
	want := "# stack settings\nORACLE_HOST=oracle-demo\nDEMO_MODE=false\n\nORACLE_PORT=1521\n"
	if got != want {
		t.Fatalf("unexpected rewrite result:\n%q\nwant:\n%q", got, want)
	}
}

func TestRewriteFlagAppendsWhenMissing(t *testing.T) {
	path := writeFile(t, "ORACLE_HOST=oracle-demo\n")

	if err := RewriteFlag(path, "DEMO_MODE", true); err != nil {
		t.Fatalf("RewriteFlag error: %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "ORACLE_HOST=oracle-demo") {
		t.Fatalf("existing line lost: %q", string(data))
	}
	if !strings.HasSuffix(string(data), "DEMO_MODE=true\n") {
		t.Fatalf("expected appended flag, got %q", string(data))
	}
}

func TestRewriteFlagCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")

	if err := RewriteFlag(path, "DEMO_MODE", false); err != nil {
		t.Fatalf("RewriteFlag error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "DEMO_MODE=false\n" {
		t.Fatalf("unexpected content: %q", string(data))
	}
}

func TestRewriteFlagIdempotent(t *testing.T) {
	path := writeFile(t, "DEMO_MODE=false\n")

	if err := RewriteFlag(path, "DEMO_MODE", false); err != nil {
		t.Fatalf("RewriteFlag error: %v", err)
	}
	if err := RewriteFlag(path, "DEMO_MODE", false); err != nil {
		t.Fatalf("RewriteFlag error: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "DEMO_MODE=false\n" {
		t.Fatalf("unexpected content after repeated rewrite: %q", string(data))
	}
}
