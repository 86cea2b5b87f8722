package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "invenio.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "localhost", config.Server.Host)
	assert.True(t, config.Storage.Badger.InMemory)
	assert.Equal(t, "", config.PlacesAPI.APIKey)
	assert.Equal(t, "2s", config.PlacesAPI.PageTokenDelay)
	assert.Equal(t, 500, config.PlacesAPI.WebsiteCacheSize)
	assert.Equal(t, 5, config.Search.DetailConcurrency)
	assert.Equal(t, 3, config.Search.LocationConcurrency)
	assert.Equal(t, "3600s", config.Cache.TTL)
	assert.Equal(t, 1024, config.Cache.Capacity)
}

func TestLoadFromFiles_NoFilesReturnsDefaults(t *testing.T) {
	config, err := LoadFromFiles()
	require.NoError(t, err)
	assert.Equal(t, 8080, config.Server.Port)
}

func TestLoadFromFiles_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
[server]
port = 9090

[search]
detail_concurrency = 10

[cache]
ttl = "600s"
`)

	config, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, 10, config.Search.DetailConcurrency)
	assert.Equal(t, "600s", config.Cache.TTL)
	// Untouched sections keep their defaults.
	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, 3, config.Search.LocationConcurrency)
}

func TestLoadFromFiles_LaterFileWins(t *testing.T) {
	first := writeConfigFile(t, "[server]\nport = 9090\nhost = \"0.0.0.0\"\n")
	second := filepath.Join(t.TempDir(), "override.toml")
	require.NoError(t, os.WriteFile(second, []byte("[server]\nport = 7070\n"), 0644))

	config, err := LoadFromFiles(first, second)
	require.NoError(t, err)

	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
}

func TestLoadFromFiles_MissingFileFails(t *testing.T) {
	_, err := LoadFromFiles("/does/not/exist.toml")
	assert.Error(t, err)
}

func TestLoadFromFiles_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "[server]\nport = 9090\n")

	t.Setenv("INVENIO_SERVER_PORT", "6060")
	t.Setenv("INVENIO_CACHE_TTL", "120s")

	config, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, 6060, config.Server.Port)
	assert.Equal(t, "120s", config.Cache.TTL)
}

func TestApplyEnvOverrides_GoogleMapsKeyFallback(t *testing.T) {
	t.Setenv("GOOGLE_MAPS_API_KEY", "google-key")

	config, err := LoadFromFiles()
	require.NoError(t, err)
	assert.Equal(t, "google-key", config.PlacesAPI.APIKey)
}

func TestApplyEnvOverrides_InvenioKeyWins(t *testing.T) {
	t.Setenv("GOOGLE_MAPS_API_KEY", "google-key")
	t.Setenv("INVENIO_PLACES_API_KEY", "invenio-key")

	config, err := LoadFromFiles()
	require.NoError(t, err)
	assert.Equal(t, "invenio-key", config.PlacesAPI.APIKey)
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()

	ApplyFlagOverrides(config, 5050, "127.0.0.1")
	assert.Equal(t, 5050, config.Server.Port)
	assert.Equal(t, "127.0.0.1", config.Server.Host)

	// Zero values leave the config untouched.
	ApplyFlagOverrides(config, 0, "")
	assert.Equal(t, 5050, config.Server.Port)
	assert.Equal(t, "127.0.0.1", config.Server.Host)
}

func TestParseDurationOr(t *testing.T) {
	assert.Equal(t, 2*time.Second, ParseDurationOr("2s", time.Minute))
	assert.Equal(t, time.Hour, ParseDurationOr("3600s", time.Minute))
	assert.Equal(t, time.Minute, ParseDurationOr("", time.Minute))
	assert.Equal(t, time.Minute, ParseDurationOr("not-a-duration", time.Minute))
}
