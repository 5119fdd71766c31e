// Package testutils holds fixtures shared by tests that need a record
// repository on disk.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// RecordDirs are the collections a record repository is laid out in.
var RecordDirs = []string{"leads", "projects", "payments"}

// Records maps a slash-separated path inside the repository to file content,
// e.g. "leads/acme.json" to a JSON document.
type Records map[string]string

// SetupRecordRepo initializes a loam repository in a temp dir with an empty
// directory per collection, then writes records into it. It returns the
// absolute repository path and the repository.
func SetupRecordRepo(t *testing.T, records Records, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	dir, err := filepath.Abs(t.TempDir())
	require.NoError(t, err)

	repo, err := loam.Init(dir, opts...)
	require.NoError(t, err, "failed to init record repository")

	for _, name := range RecordDirs {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, name), 0o755))
	}
	WriteRecords(t, dir, records)
	return dir, repo
}

// WriteRecords writes records under dir, creating parent directories.
func WriteRecords(t *testing.T, dir string, records Records) {
	t.Helper()
	for name, content := range records {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}
