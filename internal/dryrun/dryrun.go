// Package dryrun previews mutating requests without sending them.
package dryrun

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/tweetlite/tweetlite/internal/api"
)

type contextKey string

const dryRunKey contextKey = "dry_run_enabled"

// WithDryRun returns a context with dry-run mode enabled/disabled.
func WithDryRun(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, dryRunKey, enabled)
}

// IsEnabled returns true if dry-run mode is enabled.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(dryRunKey).(bool); ok {
		return v
	}
	return false
}

// Preview is what a mutating command would send.
type Preview struct {
	Operation   string               `json:"operation"`
	Request     *api.PreparedRequest `json:"request"`
	Description string               `json:"description,omitempty"`
	Warnings    []string             `json:"warnings,omitempty"`
}

// New builds a preview and adds the warnings that apply to req.
func New(operation string, req *api.PreparedRequest) *Preview {
	p := &Preview{Operation: operation, Request: req}
	if req != nil && req.ContentType == "application/json" {
		p.Warnings = append(p.Warnings, "the JSON body is not covered by the OAuth signature")
	}
	return p
}

// Write outputs the preview to the writer
func (p *Preview) Write(w io.Writer) {
	_, _ = fmt.Fprintf(w, "[DRY-RUN] Would %s\n", p.Operation)
	if p.Description != "" {
		_, _ = fmt.Fprintf(w, "%s\n", p.Description)
	}
	if r := p.Request; r != nil {
		_, _ = fmt.Fprintf(w, "  %s %s\n", r.Method, r.URL)
		if r.ContentType != "" {
			_, _ = fmt.Fprintf(w, "  Content-Type: %s\n", r.ContentType)
		}
		if len(r.Signed) > 0 {
			_, _ = fmt.Fprintf(w, "  Signed params: %s\n", formatSigned(r.Signed))
		}
		if r.Body != "" {
			_, _ = fmt.Fprintf(w, "  Body: %s\n", r.Body)
		}
	}

	if len(p.Warnings) > 0 {
		_, _ = fmt.Fprintln(w, "Warnings:")
		for _, warning := range p.Warnings {
			_, _ = fmt.Fprintf(w, "  ! %s\n", warning)
		}
	}
	_, _ = fmt.Fprintln(w, "No request sent (dry-run mode)")
}

func formatSigned(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strings.Join(values[k], ","))
	}
	return strings.Join(parts, " ")
}
