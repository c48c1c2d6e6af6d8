package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv(EnvConfigDir, filepath.Join(tmp, "cfg"))
	t.Setenv(EnvDataDir, filepath.Join(tmp, "data"))
	t.Setenv(EnvStateDir, filepath.Join(tmp, "state"))

	assert.Equal(t, filepath.Join(tmp, "cfg"), ConfigDir())
	assert.Equal(t, filepath.Join(tmp, "data"), DataDir())
	assert.Equal(t, filepath.Join(tmp, "state"), StateDir())

	assert.Equal(t, filepath.Join(tmp, "cfg", ConfigFile), ConfigFilePath())
	assert.Equal(t, filepath.Join(tmp, "data", DatabaseFile), DatabasePath())
}

func TestTrashStagingCreated(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv(EnvDataDir, tmp)

	staging := TrashStagingPath()
	require.DirExists(t, staging)
	assert.Equal(t, filepath.Join(tmp, TrashStagingDir), staging)
}
