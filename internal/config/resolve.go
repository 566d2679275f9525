package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/tweetlite/tweetlite/internal/api"
)

// Overrides are values given on the command line. Empty fields do not
// override anything.
type Overrides struct {
	Profile   string
	Subdomain string
	Version   string
	BaseURL   string
}

// Resolved is everything needed to build an api.Client.
type Resolved struct {
	API     api.Config
	BaseURL string
	Timeout time.Duration
	Profile string
	// Source names where the credentials came from: "env", "profile" or
	// "env+profile".
	Source string
}

// Resolve merges flags, environment, settings and the keyring profile, in
// that order of precedence. It fails with ErrNotConfigured when no
// credential is available from any source.
func Resolve(o Overrides, s Settings) (Resolved, error) {
	r := Resolved{Timeout: s.Timeout.Duration}

	r.Profile = firstNonEmpty(o.Profile, os.Getenv(EnvProfile))
	if r.Profile == "" {
		if current, err := CurrentProfile(); err == nil {
			r.Profile = current
		} else {
			r.Profile = defaultProfile
		}
	}

	stored, err := LoadProfile(r.Profile)
	if err != nil && !errors.Is(err, ErrNotConfigured) {
		// An unreadable keyring must not block env-only setups.
		stored = Profile{}
	}
	env := ProfileFromEnv()

	// Endpoint selection does not need credentials, so it is filled in
	// even when ErrNotConfigured is returned.
	r.API = api.Config{
		Subdomain: firstNonEmpty(o.Subdomain, os.Getenv(EnvSubdomain), s.Subdomain, stored.Subdomain),
		Version:   firstNonEmpty(o.Version, os.Getenv(EnvAPIVersion), s.APIVersion, stored.Version),
	}
	r.BaseURL = firstNonEmpty(o.BaseURL, os.Getenv(EnvBaseURL), s.BaseURL)

	creds := mergeCredentials(env, stored)
	switch {
	case creds.Empty():
		return r, ErrNotConfigured
	case stored.Empty():
		r.Source = "env"
	case env.Empty():
		r.Source = "profile"
	default:
		r.Source = "env+profile"
	}

	r.API.ConsumerKey = creds.ConsumerKey
	r.API.ConsumerSecret = creds.ConsumerSecret
	r.API.AccessTokenKey = creds.AccessToken
	r.API.AccessTokenSecret = creds.AccessTokenSecret
	return r, nil
}

// mergeCredentials takes each field from primary, falling back to secondary.
func mergeCredentials(primary, secondary Profile) Profile {
	return Profile{
		ConsumerKey:       firstNonEmpty(primary.ConsumerKey, secondary.ConsumerKey),
		ConsumerSecret:    firstNonEmpty(primary.ConsumerSecret, secondary.ConsumerSecret),
		AccessToken:       firstNonEmpty(primary.AccessToken, secondary.AccessToken),
		AccessTokenSecret: firstNonEmpty(primary.AccessTokenSecret, secondary.AccessTokenSecret),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
