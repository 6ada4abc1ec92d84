package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(contents), 0o644))
}

func TestLoad_LayeredMerge(t *testing.T) {
	sysDir := t.TempDir()
	userDir := t.TempDir()
	repoDir := t.TempDir()

	writeConfig(t, sysDir, "datacopy:\n workers: 1\n format: csv\n")
	writeConfig(t, userDir, "datacopy:\n workers: 4\n")
	writeConfig(t, repoDir, "repository:\n path: /repo\n")

	t.Setenv("PYRSEAS_SYS_CONFIG", sysDir)
	t.Setenv("PYRSEAS_USER_CONFIG", userDir)

	cfg, err := Load(repoDir)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg["datacopy"]["workers"])
	assert.Equal(t, "csv", cfg["datacopy"]["format"])
	assert.Equal(t, "/repo", cfg["repository"]["path"])
}

func TestLoad_MissingDirsYieldEmptyConfig(t *testing.T) {
	t.Setenv("PYRSEAS_SYS_CONFIG", filepath.Join(t.TempDir(), "nope"))
	t.Setenv("PYRSEAS_USER_CONFIG", filepath.Join(t.TempDir(), "nope"))

	cfg, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, cfg)
}

func TestApplySet(t *testing.T) {
	cfg := Config{}
	require.NoError(t, cfg.ApplySet([]string{`datacopy.workers=8 repository.path=/tmp/x`}))

	assert.Equal(t, "8", cfg["datacopy"]["workers"])
	assert.Equal(t, "/tmp/x", cfg["repository"]["path"])
}

func TestApplySet_NoSectionGoesToEmptyString(t *testing.T) {
	cfg := Config{}
	require.NoError(t, cfg.ApplySet([]string{"standalone=yes"}))
	assert.Equal(t, "yes", cfg[""]["standalone"])
}

func TestMaxIdentLen(t *testing.T) {
	t.Setenv("PYRSEAS_MAX_IDENT_LEN", "")
	assert.Equal(t, 32, MaxIdentLen())

	t.Setenv("PYRSEAS_MAX_IDENT_LEN", "10")
	assert.Equal(t, 10, MaxIdentLen())

	t.Setenv("PYRSEAS_MAX_IDENT_LEN", "1000")
	assert.Equal(t, 63, MaxIdentLen())
}

func TestFileName(t *testing.T) {
	t.Setenv("PYRSEAS_CONFIG_FILE", "")
	assert.Equal(t, "config.yaml", FileName())

	t.Setenv("PYRSEAS_CONFIG_FILE", "custom.yaml")
	assert.Equal(t, "custom.yaml", FileName())
}
