// Package testutil provides shared test helpers used across integration
// and unit test packages.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// RepoRoot returns the absolute path to the repository root by walking
// up from the current working directory. It fails the test if the
// working directory cannot be determined.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// LoadFixture reads a file from the repository's fixtures directory and
// substitutes every `__ROOT__` placeholder with projectRoot, so path
// fields in metadata fixtures can point at a per-test directory.
func LoadFixture(t *testing.T, name string, projectRoot string) []byte {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(RepoRoot(t), "fixtures", name))
	require.NoError(t, err)
	return bytes.ReplaceAll(raw, []byte("__ROOT__"), []byte(projectRoot))
}
