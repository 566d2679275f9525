// Package urlparse extracts users and tweets from twitter.com and x.com links.
package urlparse

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ParsedURL is the user or tweet a link points at.
type ParsedURL struct {
	Host       string
	ScreenName string // empty for /i/web/status and user_id intents
	UserID     string
	TweetID    string // empty for profile links
}

var hosts = map[string]bool{
	"twitter.com":        true,
	"www.twitter.com":    true,
	"mobile.twitter.com": true,
	"x.com":              true,
	"www.x.com":          true,
}

// reserved are first path segments that are not screen names.
var reserved = map[string]bool{
	"home": true, "explore": true, "search": true, "settings": true,
	"notifications": true, "messages": true, "hashtag": true, "share": true,
}

var (
	profilePattern   = regexp.MustCompile(`^/@?([A-Za-z0-9_]{1,15})/?$`)
	statusPattern    = regexp.MustCompile(`^/([A-Za-z0-9_]{1,15})/status(?:es)?/(\d+)(?:/.*)?$`)
	webStatusPattern = regexp.MustCompile(`^/i/web/status/(\d+)/?$`)
	intentPattern    = regexp.MustCompile(`^/intent/(?:user|follow)/?$`)
)

// IsLink reports whether s looks like a link rather than a bare screen name
// or id.
func IsLink(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return true
	}
	host, _, _ := strings.Cut(s, "/")
	return hosts[host] && strings.Contains(s, "/")
}

// Parse accepts profile links (https://twitter.com/dandv), status links
// (https://x.com/dandv/status/973775515453722624) and intent links
// (https://twitter.com/intent/user?user_id=15008676). A missing scheme is
// read as https.
func Parse(rawURL string) (*ParsedURL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("URL cannot be empty")
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL scheme %q: expected http or https", parsed.Scheme)
	}
	host := strings.ToLower(parsed.Hostname())
	if !hosts[host] {
		return nil, fmt.Errorf("unsupported host %q: expected twitter.com or x.com", host)
	}

	out := &ParsedURL{Host: host}
	path := parsed.Path

	if m := statusPattern.FindStringSubmatch(path); m != nil && !reserved[strings.ToLower(m[1])] {
		out.ScreenName = m[1]
		out.TweetID = m[2]
		return out, nil
	}
	if m := webStatusPattern.FindStringSubmatch(path); m != nil {
		out.TweetID = m[1]
		return out, nil
	}
	if intentPattern.MatchString(path) {
		q := parsed.Query()
		out.ScreenName = q.Get("screen_name")
		out.UserID = q.Get("user_id")
		if out.ScreenName == "" && out.UserID == "" {
			return nil, fmt.Errorf("intent URL needs screen_name or user_id")
		}
		return out, nil
	}
	if m := profilePattern.FindStringSubmatch(path); m != nil && !reserved[strings.ToLower(m[1])] {
		out.ScreenName = m[1]
		return out, nil
	}
	return nil, fmt.Errorf("unrecognized link %q: expected a profile, status or intent URL", rawURL)
}

// IsStatus returns true if the link points at a tweet.
func (p *ParsedURL) IsStatus() bool {
	return p.TweetID != ""
}
