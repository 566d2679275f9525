// Package update looks up the latest tl release on GitHub.
package update

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	DefaultReleasesURL = "https://api.github.com/repos/tweetlite/tweetlite/releases/latest"
	CheckTimeout       = 3 * time.Second
)

// ReleasesURL is the latest-release endpoint. Tests point it at httptest.
var ReleasesURL = DefaultReleasesURL

// Release is the subset of the GitHub release payload we read.
type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Notice describes an available upgrade.
type Notice struct {
	Current string
	Latest  string
	URL     string
}

// Check returns a Notice when a release newer than current exists. Any
// failure, a dev build or an unparsable version yields nil.
func Check(ctx context.Context, current string) *Notice {
	if current == "" || current == "dev" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ReleasesURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil
	}
	if !Newer(rel.TagName, current) {
		return nil
	}
	return &Notice{
		Current: strings.TrimPrefix(current, "v"),
		Latest:  strings.TrimPrefix(rel.TagName, "v"),
		URL:     rel.HTMLURL,
	}
}

// Newer reports whether latest is a higher semantic version than current.
func Newer(latest, current string) bool {
	l, c := canonical(latest), canonical(current)
	if l == "" || c == "" {
		return false
	}
	return semver.Compare(l, c) > 0
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.Canonical(v)
}
