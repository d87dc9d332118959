package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)

	assert.Equal(t, "filesystem", cfg.Store.Type)
	assert.Equal(t, 4, cfg.Sync.Workers)
	assert.Equal(t, 3, cfg.Sync.MaxAttempts)
	assert.Equal(t, int64(10*1024*1024), cfg.Extract.MaxDocBytes)
}

func TestLoad_PartialFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir = "/var/lib/syncdex"

[store]
type = "gdrive"
folder_id = "folder-abc"

[sync]
workers = 8
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/syncdex", cfg.DataDir)
	assert.Equal(t, "gdrive", cfg.Store.Type)
	assert.Equal(t, "folder-abc", cfg.Store.FolderID)
	assert.Equal(t, 8, cfg.Sync.Workers)
	// Unset keys keep their defaults.
	assert.Equal(t, 3, cfg.Sync.MaxAttempts)
	assert.Equal(t, 30000, cfg.Extract.TimeoutMS)
}

func TestLoad_EnvOverridesAccessToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[store]\naccess_token = \"from-file\"\n"), 0600))

	t.Setenv("SYNCDEX_ACCESS_TOKEN", "from-env")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Store.AccessToken)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Store.Type = "gdrive"
	cfg.Store.FolderID = "folder-1"
	cfg.Sync.Workers = 2
	require.NoError(t, Save(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()
	assert.Equal(t, int64(500), cfg.Sync.RetryBase().Milliseconds())
	assert.Equal(t, int64(30000), cfg.Sync.RetryMax().Milliseconds())
	assert.Equal(t, int64(30000), cfg.ExtractTimeout().Milliseconds())
}
