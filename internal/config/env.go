package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by the CLI. The credential names match the
// ones used by the twitter-lite test suite.
const (
	EnvConsumerKey       = "TWITTER_CONSUMER_KEY"
	EnvConsumerSecret    = "TWITTER_CONSUMER_SECRET"
	EnvAccessToken       = "ACCESS_TOKEN"
	EnvAccessTokenSecret = "ACCESS_TOKEN_SECRET"

	EnvProfile    = "TL_PROFILE"
	EnvSubdomain  = "TL_SUBDOMAIN"
	EnvAPIVersion = "TL_API_VERSION"
	EnvBaseURL    = "TL_BASE_URL"
	EnvOutput     = "TL_OUTPUT"
	EnvNoCache    = "TL_NO_CACHE"
)

// DefaultEnvFile is loaded from the working directory when present.
const DefaultEnvFile = ".env"

// LoadEnvFile loads path into the process environment without overriding
// variables that are already exported. An empty path means DefaultEnvFile,
// which may be absent; an explicit path must exist.
func LoadEnvFile(path string) error {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultEnvFile
	}
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read env file %q: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %q: %w", path, err)
	}
	return nil
}

// ReadEnvFile parses path without touching the process environment.
func ReadEnvFile(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %q: %w", path, err)
	}
	return vars, nil
}

// ProfileFromMap builds credentials from a map of variables using the same
// names as the environment.
func ProfileFromMap(vars map[string]string) Profile {
	return Profile{
		ConsumerKey:       strings.TrimSpace(vars[EnvConsumerKey]),
		ConsumerSecret:    strings.TrimSpace(vars[EnvConsumerSecret]),
		AccessToken:       strings.TrimSpace(vars[EnvAccessToken]),
		AccessTokenSecret: strings.TrimSpace(vars[EnvAccessTokenSecret]),
		Subdomain:         strings.TrimSpace(vars[EnvSubdomain]),
		Version:           strings.TrimSpace(vars[EnvAPIVersion]),
	}
}

// ProfileFromEnv returns the credentials exported in the environment.
func ProfileFromEnv() Profile {
	vars := map[string]string{}
	for _, key := range []string{EnvConsumerKey, EnvConsumerSecret, EnvAccessToken, EnvAccessTokenSecret} {
		vars[key] = os.Getenv(key)
	}
	return ProfileFromMap(vars)
}

// NoCache reports whether TL_NO_CACHE asks to bypass the response cache.
func NoCache() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvNoCache))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
