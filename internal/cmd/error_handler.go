package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tweetlite/tweetlite/internal/api"
	"github.com/tweetlite/tweetlite/internal/config"
)

// HandleError processes an error and returns a user-friendly message with suggestions
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder
	var te *api.TransportError

	if env, ok := api.AsEnvelope(err); ok {
		for _, item := range env.Errors {
			fmt.Fprintf(&msg, "error %d: %s\n", item.Code, item.Message)
		}
		msg.WriteString(suggestionsForEnvelope(env))
		return msg.String()
	}

	switch {
	case errors.Is(err, config.ErrNotConfigured):
		msg.WriteString("No credentials configured.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Run: tl auth login\n")
		msg.WriteString("  - Or export TWITTER_CONSUMER_KEY, TWITTER_CONSUMER_SECRET, ACCESS_TOKEN and ACCESS_TOKEN_SECRET\n")
		msg.WriteString("  - Or put them in a .env file and pass --env-file\n")

	case errors.As(err, &te) && te.Kind == api.KindNetwork:
		fmt.Fprintf(&msg, "Request failed: %v\n\n", te.Err)
		msg.WriteString("Suggestions:\n")
		if te.Timeout() {
			msg.WriteString("  - The request timed out; raise --timeout\n")
		}
		msg.WriteString("  - Check your network connection\n")
		msg.WriteString("  - Check --subdomain and --base-url: tl url\n")

	case errors.As(err, &te) && te.Kind == api.KindDecode:
		fmt.Fprintf(&msg, "Unexpected response (HTTP %d) from %s: %v\n\n", te.StatusCode, te.URL, te.Err)
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - The endpoint may not exist for this API version\n")
		msg.WriteString("  - Use --debug to see the request\n")

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
	}

	return msg.String()
}

func suggestionsForEnvelope(env *api.ErrorEnvelope) string {
	var s strings.Builder
	switch env.Class() {
	case api.ClassAuthentication:
		s.WriteString("\nSuggestions:\n")
		s.WriteString("  - Check the four OAuth values: tl auth status\n")
		s.WriteString("  - Regenerate the access token if it was revoked\n")
		s.WriteString("  - Make sure the system clock is correct\n")
	case api.ClassRateLimit:
		s.WriteString("\nSuggestions:\n")
		s.WriteString("  - Wait for the rate-limit window to reset\n")
		s.WriteString("  - Use --cache for repeated reads\n")
	case api.ClassNotFound:
		s.WriteString("\nSuggestions:\n")
		s.WriteString("  - Check the user id or screen name\n")
	}
	return s.String()
}
