// Package testsupport holds fixture helpers shared by the package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/goliatone/go-sitetheme/pkg/layout"
)

// UpdateEnv rewrites golden files instead of comparing against them.
const UpdateEnv = "UPDATE_GOLDENS"

// MemFS returns an in-memory filesystem seeded with files, keyed by slash
// path.
func MemFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, content := range files {
		if err := afero.WriteFile(fs, filepath.FromSlash(name), []byte(content), 0o644); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}
	return fs
}

// Golden compares got with the file at path, or rewrites the file when
// UPDATE_GOLDENS is set.
func Golden(t *testing.T, path, got string) {
	t.Helper()

	if os.Getenv(UpdateEnv) != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(got), 0o644); err != nil {
			t.Fatalf("write golden: %v", err)
		}
		return
	}
	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	if diff := cmp.Diff(string(want), got); diff != "" {
		t.Fatalf("%s mismatch (-want +got):\n%s", filepath.Base(path), diff)
	}
}

// Layout parses a layout fixture from disk.
func Layout(t *testing.T, path string) layout.Layout {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read layout: %v", err)
	}
	l, err := layout.Parse(data)
	if err != nil {
		t.Fatalf("parse layout %s: %v", path, err)
	}
	return l
}
