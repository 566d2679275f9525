package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tweetlite/tweetlite/internal/config"
)

const verifyCredentialsPath = "/1.1/account/verify_credentials.json"

const userJSON = `{"id":15008676,"id_str":"15008676","name":"Dan Dascalescu","screen_name":"dandv","followers_count":1200,"friends_count":300,"protected":false}`

func TestExecute_UnknownCommandSuggests(t *testing.T) {
	isolateEnv(t)

	var err error
	stderr := captureStderr(t, func() {
		err = Execute(context.Background(), []string{"whoam"})
	})
	require.Error(t, err)
	assert.Contains(t, stderr, `unknown command "whoam"`)
	assert.Contains(t, stderr, `Did you mean "whoami"?`)
	assert.Equal(t, exitUsage, ExitCode(err))
}

func TestExecute_UnknownFlagSuggests(t *testing.T) {
	isolateEnv(t)

	var err error
	stderr := captureStderr(t, func() {
		err = Execute(context.Background(), []string{"favorites", "list", "--screen-nam", "dandv"})
	})
	require.Error(t, err)
	assert.Contains(t, stderr, `Did you mean "--screen-name"?`)
	assert.Contains(t, stderr, "tl favorites list --help")
}

func TestExecute_JSONConflictsWithOutput(t *testing.T) {
	isolateEnv(t)

	var err error
	stderr := captureStderr(t, func() {
		err = Execute(context.Background(), []string{"url", "-j", "-o", "text"})
	})
	require.Error(t, err)
	assert.Contains(t, stderr, "--json conflicts with --output text")
	assert.Equal(t, exitUsage, ExitCode(err))
}

func TestExecute_InvalidOutput(t *testing.T) {
	isolateEnv(t)

	var err error
	_ = captureStderr(t, func() {
		err = Execute(context.Background(), []string{"url", "-o", "yaml"})
	})
	require.Error(t, err)
}

func TestExecute_NegativeTimeout(t *testing.T) {
	isolateEnv(t)

	var err error
	stderr := captureStderr(t, func() {
		err = Execute(context.Background(), []string{"url", "--timeout", "-1s"})
	})
	require.Error(t, err)
	assert.Contains(t, stderr, "--timeout must be >= 0")
}

func TestExecute_JQForcesJSON(t *testing.T) {
	setupTestEnv(t, newRouteHandler().On("GET", verifyCredentialsPath, jsonResponse(200, userJSON)))

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"whoami", "--jq", ".screen_name"})
		require.NoError(t, err)
	})
	assert.Equal(t, "\"dandv\"\n", output)
}

func TestExecute_JQRejectsExplicitText(t *testing.T) {
	isolateEnv(t)

	var err error
	stderr := captureStderr(t, func() {
		err = Execute(context.Background(), []string{"url", "-o", "text", "--jq", ".url"})
	})
	require.Error(t, err)
	assert.Contains(t, stderr, "--jq requires --output json or jsonl")
}

func TestExecute_OutputFromEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv(config.EnvOutput, "json")

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"url"}))
	})
	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(output), &got))
	assert.Equal(t, "https://api.twitter.com/1.1", got["url"])
}

func TestExecute_SettingsFile(t *testing.T) {
	isolateEnv(t)
	path := os.Getenv(config.EnvConfigFile)
	require.NoError(t, config.SaveSettings(path, config.Settings{
		Subdomain:  "stream",
		APIVersion: "2",
		Output:     "json",
		Timeout:    config.Duration{Duration: 5 * time.Second},
	}))

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"url"}))
	})
	assert.Contains(t, output, `"url": "https://stream.twitter.com/2"`)
	assert.Equal(t, 5*time.Second, flags.Timeout)
}

func TestExecute_TimeoutAliasWinsOverSettings(t *testing.T) {
	isolateEnv(t)
	require.NoError(t, config.SaveSettings(os.Getenv(config.EnvConfigFile), config.Settings{
		Timeout: config.Duration{Duration: 5 * time.Second},
	}))

	_ = captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"url", "--to", "9s"}))
	})
	assert.Equal(t, 9*time.Second, flags.Timeout)
}

func TestExecute_EnvFile(t *testing.T) {
	env := setupTestEnv(t, newRouteHandler().On("GET", verifyCredentialsPath, jsonResponse(200, userJSON)))
	t.Setenv(config.EnvConsumerKey, "")

	envFile := filepath.Join(t.TempDir(), "creds.env")
	require.NoError(t, os.WriteFile(envFile, []byte("TWITTER_CONSUMER_KEY="+testCreds.ConsumerKey+"\n"), 0o600))
	// godotenv never overrides exported variables, including empty ones.
	require.NoError(t, os.Unsetenv(config.EnvConsumerKey))

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"whoami", "--env-file", envFile, "-o", "json"}))
	})
	assert.Contains(t, output, `"screen_name": "dandv"`)
	assert.True(t, env.last(t).SignatureOK)
}

func TestExecute_MissingEnvFile(t *testing.T) {
	isolateEnv(t)

	var err error
	_ = captureStderr(t, func() {
		err = Execute(context.Background(), []string{"url", "--env-file", "missing.env"})
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.env")
}

func TestExecute_ResetsFlagsBetweenRuns(t *testing.T) {
	isolateEnv(t)

	_ = captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"url", "--subdomain", "upload"}))
	})
	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"url"}))
	})
	assert.Equal(t, "https://api.twitter.com/1.1\n", output)
}

func TestEnhanceUnknownError_PassThrough(t *testing.T) {
	err := errors.New("something else")
	assert.Equal(t, "something else", enhanceUnknownError(err, nil, nil))
}

func TestExtractFlag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"unknown flag: --screen-nam", "--screen-nam"},
		{"unknown shorthand flag: 'x' in -x", "-x"},
		{"nothing here", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractFlag(tt.in), tt.in)
	}
}

func TestExtractQuoted(t *testing.T) {
	assert.Equal(t, "whoam", extractQuoted(`unknown command "whoam" for "tl"`))
	assert.Equal(t, "", extractQuoted("no quotes"))
	assert.Equal(t, "", extractQuoted(`"unterminated`))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "  ", "b", "c"))
	assert.Equal(t, "", firstNonEmpty())
	assert.Equal(t, "a", firstNonEmpty(" a "))
}

func TestExecute_InvalidBaseURL(t *testing.T) {
	isolateEnv(t)

	var err error
	stderr := captureStderr(t, func() {
		err = Execute(context.Background(), []string{"url", "--base-url", "ftp://example.com"})
	})
	require.Error(t, err)
	assert.Contains(t, stderr, "must be http or https")
	assert.Equal(t, exitUsage, ExitCode(err))
}
