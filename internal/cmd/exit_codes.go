package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/pflag"

	"github.com/tweetlite/tweetlite/internal/api"
	"github.com/tweetlite/tweetlite/internal/config"
)

const (
	exitOK          = 0
	exitGeneric     = 1
	exitUsage       = 2
	exitAuth        = 3
	exitNotFound    = 4
	exitRateLimited = 6
	exitServer      = 7
	exitNetwork     = 8
)

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}
	var handled *handledError
	if errors.As(err, &handled) {
		if handled.exitCode != 0 {
			return handled.exitCode
		}
		err = handled.err
	}

	if env, ok := api.AsEnvelope(err); ok {
		return exitCodeForEnvelope(env)
	}
	var te *api.TransportError
	if errors.As(err, &te) {
		return exitCodeForTransport(te)
	}
	if errors.Is(err, config.ErrNotConfigured) {
		return exitAuth
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return exitNetwork
	}
	if isUsageError(err) {
		return exitUsage
	}
	return exitGeneric
}

func exitCodeForEnvelope(env *api.ErrorEnvelope) int {
	switch env.Class() {
	case api.ClassAuthentication:
		return exitAuth
	case api.ClassRateLimit:
		return exitRateLimited
	case api.ClassNotFound:
		return exitNotFound
	default:
		return exitGeneric
	}
}

func exitCodeForTransport(te *api.TransportError) int {
	switch {
	case te.Kind == api.KindNetwork:
		return exitNetwork
	case te.Kind == api.KindEncode:
		return exitUsage
	case te.StatusCode >= 500:
		return exitServer
	default:
		return exitGeneric
	}
}

func isUsageError(err error) bool {
	msg := strings.ToLower(err.Error())
	indicators := []string{
		"unknown command",
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"requires at least",
		"requires exactly",
		"accepts",
		"invalid argument",
		"invalid parameter",
		"must be",
		"must contain",
		"must not",
		"is required",
		"conflicts with",
	}
	for _, indicator := range indicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}
