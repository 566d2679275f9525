// Package debug carries the --debug switch through contexts and configures
// the process logger.
package debug

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey struct{}

// WithDebug returns a context with debug mode enabled or disabled.
func WithDebug(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, contextKey{}, enabled)
}

// IsEnabled reports whether debug mode is enabled in ctx.
func IsEnabled(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, _ := ctx.Value(contextKey{}).(bool)
	return v
}

// SetupLogger installs a text handler on stderr.
func SetupLogger(debugEnabled bool) {
	SetupLoggerTo(os.Stderr, debugEnabled)
}

// SetupLoggerTo installs a text handler writing to w at Debug level when
// enabled, Warn otherwise. Attributes whose key names a credential are
// masked.
func SetupLoggerTo(w io.Writer, debugEnabled bool) {
	level := slog.LevelWarn
	if debugEnabled {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redactAttr,
	})
	slog.SetDefault(slog.New(handler))
}

var sensitiveKeys = []string{"authorization", "secret", "token", "password", "oauth_signature"}

func redactAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindString {
		return a
	}
	key := strings.ToLower(a.Key)
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			return slog.String(a.Key, Redact(a.Value.String()))
		}
	}
	return a
}

// Redact masks a credential for display, keeping the last four characters
// of values long enough that the tail does not give the secret away.
func Redact(value string) string {
	switch n := len(value); {
	case n == 0:
		return ""
	case n <= 8:
		return strings.Repeat("*", n)
	default:
		return strings.Repeat("*", 8) + value[n-4:]
	}
}
