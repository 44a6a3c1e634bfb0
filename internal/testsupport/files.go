package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteManifest writes body to a facehugger.yaml in dir and returns its path.
func WriteManifest(t testing.TB, dir, body string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir for manifest: %v", err)
	}
	path := filepath.Join(dir, "facehugger.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write manifest %s: %v", path, err)
	}
	return path
}
