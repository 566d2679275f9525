package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Resolve reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvConsumerKey, EnvConsumerSecret, EnvAccessToken, EnvAccessTokenSecret,
		EnvProfile, EnvSubdomain, EnvAPIVersion, EnvBaseURL,
	} {
		t.Setenv(key, "")
	}
}

func TestResolve_EnvOnly(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t, keyring.NewArrayKeyring(nil))
	t.Setenv(EnvConsumerKey, "ck")
	t.Setenv(EnvConsumerSecret, "cs")
	t.Setenv(EnvAccessToken, "at")
	t.Setenv(EnvAccessTokenSecret, "ats")

	r, err := Resolve(Overrides{}, Settings{})
	require.NoError(t, err)
	assert.Equal(t, "env", r.Source)
	assert.Equal(t, "default", r.Profile)
	assert.Equal(t, "ck", r.API.ConsumerKey)
	assert.Equal(t, "ats", r.API.AccessTokenSecret)
	assert.Empty(t, r.API.Subdomain)
}

func TestResolve_ProfileOnly(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t, keyring.NewArrayKeyring(nil))
	stored := sampleProfile
	stored.Subdomain = "stream"
	require.NoError(t, SaveProfile("work", stored))

	r, err := Resolve(Overrides{}, Settings{})
	require.NoError(t, err)
	assert.Equal(t, "profile", r.Source)
	assert.Equal(t, "work", r.Profile)
	assert.Equal(t, "stream", r.API.Subdomain)
	assert.Equal(t, "at", r.API.AccessTokenKey)
}

func TestResolve_Precedence(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t, keyring.NewArrayKeyring(nil))
	stored := sampleProfile
	stored.Subdomain = "profile-sub"
	stored.Version = "profile-ver"
	require.NoError(t, SaveProfile("default", stored))

	settings := Settings{Subdomain: "settings-sub", APIVersion: "settings-ver", BaseURL: "http://settings", Timeout: Duration{5 * time.Second}}

	r, err := Resolve(Overrides{}, settings)
	require.NoError(t, err)
	assert.Equal(t, "settings-sub", r.API.Subdomain)
	assert.Equal(t, "settings-ver", r.API.Version)
	assert.Equal(t, "http://settings", r.BaseURL)
	assert.Equal(t, 5*time.Second, r.Timeout)

	t.Setenv(EnvSubdomain, "env-sub")
	t.Setenv(EnvBaseURL, "http://env")
	t.Setenv(EnvAccessTokenSecret, "env-secret")
	r, err = Resolve(Overrides{}, settings)
	require.NoError(t, err)
	assert.Equal(t, "env-sub", r.API.Subdomain)
	assert.Equal(t, "http://env", r.BaseURL)
	assert.Equal(t, "env-secret", r.API.AccessTokenSecret)
	assert.Equal(t, "ck", r.API.ConsumerKey)
	assert.Equal(t, "env+profile", r.Source)

	r, err = Resolve(Overrides{Subdomain: "flag-sub", Version: "flag-ver", BaseURL: "http://flag"}, settings)
	require.NoError(t, err)
	assert.Equal(t, "flag-sub", r.API.Subdomain)
	assert.Equal(t, "flag-ver", r.API.Version)
	assert.Equal(t, "http://flag", r.BaseURL)
}

func TestResolve_ProfileSelection(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t, keyring.NewArrayKeyring(nil))
	require.NoError(t, SaveProfile("a", Profile{ConsumerKey: "key-a"}))
	require.NoError(t, SaveProfile("b", Profile{ConsumerKey: "key-b"}))

	r, err := Resolve(Overrides{}, Settings{})
	require.NoError(t, err)
	assert.Equal(t, "key-b", r.API.ConsumerKey)

	t.Setenv(EnvProfile, "a")
	r, err = Resolve(Overrides{}, Settings{})
	require.NoError(t, err)
	assert.Equal(t, "key-a", r.API.ConsumerKey)

	r, err = Resolve(Overrides{Profile: "b"}, Settings{})
	require.NoError(t, err)
	assert.Equal(t, "key-b", r.API.ConsumerKey)
}

func TestResolve_NotConfigured(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t, keyring.NewArrayKeyring(nil))

	r, err := Resolve(Overrides{Subdomain: "stream"}, Settings{APIVersion: "2"})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Equal(t, "stream", r.API.Subdomain)
	assert.Equal(t, "2", r.API.Version)
	assert.Empty(t, r.API.ConsumerKey)
}

func TestResolve_BrokenKeyringFallsBackToEnv(t *testing.T) {
	clearEnv(t)
	withFailingKeyring(t, errors.New("locked"))
	t.Setenv(EnvConsumerKey, "ck")

	r, err := Resolve(Overrides{}, Settings{})
	require.NoError(t, err)
	assert.Equal(t, "ck", r.API.ConsumerKey)
	assert.Equal(t, "default", r.Profile)
}

func TestLoadEnvFile(t *testing.T) {
	// Present-but-empty variables count as exported, so unset the key the
	// file should provide.
	t.Setenv(EnvConsumerKey, "")
	require.NoError(t, os.Unsetenv(EnvConsumerKey))
	dir := t.TempDir()
	path := filepath.Join(dir, "creds.env")
	require.NoError(t, os.WriteFile(path, []byte("TWITTER_CONSUMER_KEY=from-file\nACCESS_TOKEN=file-token\n"), 0o600))

	t.Setenv(EnvAccessToken, "exported")
	require.NoError(t, LoadEnvFile(path))

	assert.Equal(t, "from-file", os.Getenv(EnvConsumerKey))
	assert.Equal(t, "exported", os.Getenv(EnvAccessToken), "exported variables win over the file")
}

func TestLoadEnvFile_Missing(t *testing.T) {
	assert.Error(t, LoadEnvFile(filepath.Join(t.TempDir(), "nope.env")))

	func(dir string) {
		wd, err := os.Getwd()
		if err != nil {
			t.Fatal(err)
		}
		if err := os.Chdir(dir); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = os.Chdir(wd) })
	}(t.TempDir())
	assert.NoError(t, LoadEnvFile(""), "absent default .env is fine")
}

func TestReadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TWITTER_CONSUMER_KEY=k\nTWITTER_CONSUMER_SECRET=s\nACCESS_TOKEN=t\nACCESS_TOKEN_SECRET=ts\nTL_SUBDOMAIN=stream\n"), 0o600))

	vars, err := ReadEnvFile(path)
	require.NoError(t, err)
	p := ProfileFromMap(vars)
	assert.Equal(t, Profile{ConsumerKey: "k", ConsumerSecret: "s", AccessToken: "t", AccessTokenSecret: "ts", Subdomain: "stream"}, p)

	_, err = ReadEnvFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestNoCache(t *testing.T) {
	for value, want := range map[string]bool{"": false, "0": false, "1": true, "TRUE": true, "yes": true} {
		t.Setenv(EnvNoCache, value)
		assert.Equal(t, want, NoCache(), value)
	}
}
