package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
subdomain = "stream"
api_version = "1.1"
output = "text"
timeout = "45s"
mystery = true

[cache]
ttl = "2m"
redis_addr = "localhost:6379"
redis_prefix = "tl:"
`), 0o600))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "stream", s.Subdomain)
	assert.Equal(t, "1.1", s.APIVersion)
	assert.Equal(t, "text", s.Output)
	assert.Equal(t, 45*time.Second, s.Timeout.Duration)
	assert.Equal(t, 2*time.Minute, s.Cache.TTL.Duration)
	assert.Equal(t, "localhost:6379", s.Cache.RedisAddr)
	assert.Equal(t, "tl:", s.Cache.RedisPrefix)
}

func TestLoadSettings_MissingFile(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Settings{}, s)

	s, err = LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, Settings{}, s)
}

func TestLoadSettings_Invalid(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"syntax.toml":   "subdomain = ",
		"duration.toml": `timeout = "soon"`,
		"negative.toml": `timeout = "-1s"`,
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		_, err := LoadSettings(path)
		assert.Error(t, err, name)
	}
}

func TestSaveSettings_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	in := Settings{
		Subdomain: "api",
		Output:    "json",
		Timeout:   Duration{10 * time.Second},
		Cache:     CacheSettings{TTL: Duration{time.Minute}, Dir: "/tmp/tl"},
	}
	require.NoError(t, SaveSettings(path, in))

	out, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	assert.Error(t, SaveSettings("", in))
}

func TestDefaultSettingsPath(t *testing.T) {
	t.Setenv(EnvConfigFile, "/etc/tl.toml")
	assert.Equal(t, "/etc/tl.toml", DefaultSettingsPath())

	t.Setenv(EnvConfigFile, "")
	orig := userConfigDir
	userConfigDir = func() (string, error) { return "/home/u/.config", nil }
	t.Cleanup(func() { userConfigDir = orig })
	assert.Equal(t, "/home/u/.config/tweetlite/config.toml", DefaultSettingsPath())
}
