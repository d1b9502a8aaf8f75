package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 30000, cfg.Timeout)
	assert.True(t, cfg.GetFollowRedirects())
	assert.False(t, cfg.GetDecompress())
	assert.Equal(t, 0, cfg.MaxRedirects)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.IsDefault())
}

func TestGetters_NilPointers(t *testing.T) {
	cfg := &Config{}

	assert.True(t, cfg.GetFollowRedirects())
	assert.False(t, cfg.GetDecompress())
	assert.False(t, cfg.GetNoColor())
}

func TestFindAndLoadConfig_NoFile(t *testing.T) {
	cfg, err := FindAndLoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.True(t, cfg.IsDefault())
}

func TestFindAndLoadConfig_JSON(t *testing.T) {
	dir := t.TempDir()
	content := `{
		"baseUrl": "https://sos.example.cz/api/",
		"timeout": 5000,
		"followRedirects": false,
		"headers": {"X-Client": "opensos"},
		"log": {"level": "debug"}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".opensos.json"), []byte(content), 0644))

	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://sos.example.cz/api/", cfg.BaseURL)
	assert.Equal(t, 5000, cfg.Timeout)
	assert.False(t, cfg.GetFollowRedirects())
	assert.Equal(t, "opensos", cfg.Headers["X-Client"])
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched keys keep their defaults
	assert.Equal(t, []string{"console"}, cfg.Log.Writers)
}

func TestFindAndLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	content := `baseUrl: https://sos.example.cz/api/
maxRedirects: 5
rateLimit: 2.5
decompress: true
sessionDsn: sqlite://sessions.db
log:
  level: warn
  writers: [file]
  file: opensos.log
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".opensos.yml"), []byte(content), 0644))

	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.MaxRedirects)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.True(t, cfg.GetDecompress())
	assert.Equal(t, "sqlite://sessions.db", cfg.SessionDSN)
	assert.Equal(t, []string{"file"}, cfg.Log.Writers)
	assert.Equal(t, "opensos.log", cfg.Log.File)
}

func TestFindAndLoadConfig_JSONBeforeYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".opensos.json"), []byte(`{"timeout": 100}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".opensos.yml"), []byte("timeout: 200\n"), 0644))

	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Timeout)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Headers = map[string]string{"A": "1", "B": "2"}

	override := &Config{
		Timeout:         1000,
		FollowRedirects: BoolPtr(false),
		Headers:         map[string]string{"B": "3"},
	}

	merged := base.Merge(override)

	assert.Equal(t, 1000, merged.Timeout)
	assert.False(t, merged.GetFollowRedirects())
	assert.Equal(t, map[string]string{"A": "1", "B": "3"}, merged.Headers)
	assert.Equal(t, "info", merged.Log.Level)

	// base is not mutated
	assert.Equal(t, "2", base.Headers["B"])
	assert.True(t, base.GetFollowRedirects())

	assert.Same(t, base, base.Merge(nil))
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	for _, name := range []string{"opensos.json", ".opensos.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			cfg := DefaultConfig()
			cfg.BaseURL = "https://sos.example.cz/"
			cfg.Decompress = BoolPtr(true)
			require.NoError(t, cfg.SaveConfig(path))

			loaded, err := LoadConfig(path)
			require.NoError(t, err)
			assert.Equal(t, cfg.BaseURL, loaded.BaseURL)
			assert.True(t, loaded.GetDecompress())
			assert.Equal(t, cfg.Timeout, loaded.Timeout)
		})
	}
}

func TestTimeoutDuration(t *testing.T) {
	cfg := &Config{Timeout: 1500}
	assert.Equal(t, int64(1500), cfg.TimeoutDuration().Milliseconds())
}
