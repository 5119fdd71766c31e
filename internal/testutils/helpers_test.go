package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupRecordRepo(t *testing.T) {
	dir, repo := SetupRecordRepo(t, Records{
		"leads/acme.json":        `{"name": "Acme"}`,
		"payments/2026/jan.json": `{"amount": 10}`,
	})
	require.NotNil(t, repo)
	assert.True(t, filepath.IsAbs(dir))

	for _, name := range RecordDirs {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.True(t, info.IsDir(), name)
	}

	data, err := os.ReadFile(filepath.Join(dir, "leads", "acme.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "Acme"}`, string(data))
	assert.FileExists(t, filepath.Join(dir, "payments", "2026", "jan.json"))
}
