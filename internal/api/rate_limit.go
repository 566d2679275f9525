package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RateLimitInfo is the window Twitter reports for the endpoint just called.
// The three x-rate-limit-* headers always arrive together; reset is epoch
// seconds.
type RateLimitInfo struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// Meta returns a JSON-ready map for CLI output metadata.
func (r *RateLimitInfo) Meta() map[string]any {
	if r == nil {
		return nil
	}
	return map[string]any{
		"limit":     r.Limit,
		"remaining": r.Remaining,
		"reset_at":  r.Reset.UTC().Format(time.RFC3339),
	}
}

// Exhausted reports whether the window has no calls left.
func (r *RateLimitInfo) Exhausted() bool {
	return r != nil && r.Remaining <= 0
}

// LastRateLimit returns a copy of the most recent window seen by the client,
// or nil.
func (c *Client) LastRateLimit() *RateLimitInfo {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()
	if c.lastRate == nil {
		return nil
	}
	cp := *c.lastRate
	return &cp
}

func (c *Client) recordRateLimit(info *RateLimitInfo) {
	if info == nil {
		return
	}
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()
	c.lastRate = info
}

// parseRateLimitInfo returns nil unless all three headers are present and
// numeric. Endpoints without a window (and error pages from proxies) send none.
func parseRateLimitInfo(h http.Header) *RateLimitInfo {
	limit, okLimit := headerInt(h, "x-rate-limit-limit")
	remaining, okRemaining := headerInt(h, "x-rate-limit-remaining")
	reset, okReset := headerInt(h, "x-rate-limit-reset")
	if !okLimit || !okRemaining || !okReset {
		return nil
	}
	return &RateLimitInfo{
		Limit:     int(limit),
		Remaining: int(remaining),
		Reset:     time.Unix(reset, 0).UTC(),
	}
}

func headerInt(h http.Header, key string) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(h.Get(key)), 10, 64)
	return v, err == nil
}
