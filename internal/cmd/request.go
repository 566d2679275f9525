package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tweetlite/tweetlite/internal/api"
	"github.com/tweetlite/tweetlite/internal/iocontext"
	"github.com/tweetlite/tweetlite/internal/outfmt"
	"github.com/tweetlite/tweetlite/internal/validation"
)

func newGetCmd() *cobra.Command {
	var params []string
	var showRate bool

	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Make a signed GET request",
		Long: `Make a signed GET request against the versioned API root.

The path is relative to https://{subdomain}.twitter.com/{version}; ".json" is
appended when missing. Parameters are signed and sent in the query string.
Values are sent as given. A key given twice is sent as one comma-joined list.`,
		Example: `  # The authenticating user
  tl get account/verify_credentials

  # Two liked tweets of a given user
  tl get favorites/list -p screen_name=dandv -p count=2

  # List parameters
  tl get users/lookup -p user_id=15008676 -p user_id=973775515453722624

  # Filter with jq
  tl get favorites/list --jq '.[].id_str'`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			p, err := parseKeyValues(params)
			if err != nil {
				return err
			}
			client, err := getClient()
			if err != nil {
				return err
			}
			// Cached results carry no rate-limit headers.
			store, closeStore, err := responseCache(flags.Cache && !showRate)
			if err != nil {
				return err
			}
			defer closeStore()

			result, err := cachedGet(cmd.Context(), client, store, args[0], p)
			if err != nil {
				return err
			}
			if showRate {
				printRateLimit(cmd, result.RateLimit)
			}
			return writeResult(cmd, result)
		}),
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Query parameter as key=value (repeatable)")
	cmd.Flags().BoolVarP(&showRate, "rate-limit", "r", false, "Print the rate-limit headers to stderr (bypasses --cache)")
	flagAlias(cmd.Flags(), "param", "field")
	return cmd
}

func newPostCmd() *cobra.Command {
	var fields []string
	var jsonBody string
	var inputFile string

	cmd := &cobra.Command{
		Use:   "post <path>",
		Short: "Make a signed POST request",
		Long: `Make a signed POST request.

Without a body, -f fields are sent form-encoded and are covered by the
signature. With -d or -i the body is sent as JSON, is not signed, and -f
fields move to the query string.`,
		Example: `  # Follow a user
  tl post friendships/create -f screen_name=dandv

  # JSON body
  tl post direct_messages/events/new -d '{"event":{"type":"message_create","message_create":{"target":{"recipient_id":"1"},"message_data":{"text":"hi"}}}}'

  # Body from stdin
  cat event.json | tl post direct_messages/events/new -i -

  # Show what would be sent
  tl post friendships/destroy -f user_id=15008676 --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if jsonBody != "" && inputFile != "" {
				return fmt.Errorf("--data conflicts with --input; set only one of them")
			}
			p, err := parseKeyValues(fields)
			if err != nil {
				return err
			}
			body, err := readJSONBody(cmd, jsonBody, inputFile)
			if err != nil {
				return err
			}
			var payload any
			if body != nil {
				payload = body
			}
			if done, err := previewRequest(cmd, "POST "+args[0], args[0], payload, p); done {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			result, err := client.Post(cmd.Context(), args[0], payload, p)
			if err != nil {
				return err
			}
			return writeResult(cmd, result)
		}),
	}

	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "Parameter as key=value (repeatable)")
	cmd.Flags().StringVarP(&jsonBody, "data", "d", "", "JSON request body")
	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Read the JSON body from a file (- for stdin)")
	flagAlias(cmd.Flags(), "data", "body")
	return cmd
}

// readJSONBody returns the -d/-i body as raw JSON, or nil when neither is set.
func readJSONBody(cmd *cobra.Command, inline, file string) (json.RawMessage, error) {
	var data []byte
	switch {
	case inline != "":
		data = []byte(inline)
	case file == "-":
		text, err := iocontext.From(cmd.Context()).ReadArg("-")
		if err != nil {
			return nil, fmt.Errorf("failed to read body from stdin: %w", err)
		}
		data = []byte(text)
	case file != "":
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read --input %q: %w", file, err)
		}
		data = raw
	default:
		return nil, nil
	}
	if err := validation.ValidateJSONPayload(data); err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("request body must be valid JSON")
	}
	return json.RawMessage(data), nil
}

// writeResult prints a payload or, for a rejection, the envelope on stdout
// and returns an already-handled error carrying the mapped exit code.
func writeResult(cmd *cobra.Command, result *api.Result) error {
	f := newFormatter(cmd)
	if result.Errors != nil {
		if err := f.Envelope(result.Errors); err != nil {
			return err
		}
		return &handledError{err: result.Errors, exitCode: ExitCode(result.Errors)}
	}
	if result.Value == nil {
		printIfNotQuiet(cmd, "HTTP %d (empty body)\n", result.StatusCode)
		return nil
	}
	return f.Document(result.Value)
}

func printRateLimit(cmd *cobra.Command, info *api.RateLimitInfo) {
	meta := info.Meta()
	if meta == nil {
		return
	}
	_ = outfmt.WriteJSONMaybeCompact(iocontext.From(cmd.Context()).ErrOut, map[string]any{"rate_limit": meta}, true)
}
