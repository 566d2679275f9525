package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tweetlite/tweetlite/internal/api"
	"github.com/tweetlite/tweetlite/internal/config"
	"github.com/tweetlite/tweetlite/internal/debug"
	"github.com/tweetlite/tweetlite/internal/dryrun"
	"github.com/tweetlite/tweetlite/internal/iocontext"
	"github.com/tweetlite/tweetlite/internal/outfmt"
	"github.com/tweetlite/tweetlite/internal/validation"
)

// rootFlags holds global CLI flags
type rootFlags struct {
	Output     string
	JSON       bool
	JQ         string
	Compact    bool
	Debug      bool
	Quiet      bool
	Timeout    time.Duration
	Profile    string
	Subdomain  string
	APIVersion string
	BaseURL    string
	EnvFile    string
	Cache      bool
	DryRun     bool
}

// flags holds the global command flags. It is package-level state that is
// reset at the start of every Execute() call; reading it outside a
// command's RunE sees the previous run.
var flags rootFlags

// settings is the config.toml loaded by PersistentPreRunE.
var settings config.Settings

// Execute runs the root command
func Execute(ctx context.Context, args []string) error {
	flags = rootFlags{Timeout: api.DefaultTimeout}
	settings = config.Settings{}

	root := &cobra.Command{
		Use:   "tl",
		Short: "Minimal Twitter REST client with OAuth 1.0a signing",
		Long: strings.TrimSpace(`
tl signs requests with a single-user OAuth 1.0a credential set and calls the
Twitter v1.1 REST API.

Credentials come from TWITTER_CONSUMER_KEY, TWITTER_CONSUMER_SECRET,
ACCESS_TOKEN and ACCESS_TOKEN_SECRET (a .env file in the working directory is
read too) or from a profile saved with 'tl auth login'.`),
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true, // enhanceUnknownError suggests instead
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupRun(cmd)
		},
	}

	root.SetContext(ctx)
	root.SetArgs(args)

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.Output, "output", "o", "", "Output format: text|json|jsonl (env TL_OUTPUT)")
	pf.BoolVarP(&flags.JSON, "json", "j", false, "Shorthand for --output json")
	pf.StringVar(&flags.JQ, "jq", "", "jq expression applied to JSON output")
	pf.BoolVar(&flags.Compact, "compact-json", false, "Compact JSON output (no indentation)")
	pf.BoolVar(&flags.Debug, "debug", false, "Log requests to stderr")
	pf.BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress non-essential output")
	pf.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "HTTP request timeout (e.g. 10s, 1m)")
	pf.StringVar(&flags.Profile, "profile", "", "Credentials profile (env TL_PROFILE)")
	pf.StringVar(&flags.Subdomain, "subdomain", "", "API subdomain, e.g. api or stream (env TL_SUBDOMAIN)")
	pf.StringVar(&flags.APIVersion, "api-version", "", "API version segment (env TL_API_VERSION)")
	pf.StringVar(&flags.BaseURL, "base-url", "", "Override scheme and host, e.g. a proxy (env TL_BASE_URL)")
	pf.StringVar(&flags.EnvFile, "env-file", "", "Load variables from this .env file instead of ./.env")
	pf.BoolVar(&flags.Cache, "cache", false, "Serve GET requests from the response cache")
	pf.BoolVar(&flags.DryRun, "dry-run", false, "Print the POST a command would send without sending it")

	flagAlias(pf, "compact-json", "cj")
	flagAlias(pf, "api-version", "av")
	flagAlias(pf, "profile", "pf")
	flagAlias(pf, "timeout", "to")

	root.AddCommand(newGetCmd())
	root.AddCommand(newPostCmd())
	root.AddCommand(newWhoamiCmd())
	root.AddCommand(newFavoritesCmd())
	root.AddCommand(newFollowCmd())
	root.AddCommand(newUnfollowCmd())
	root.AddCommand(newDMCmd())
	root.AddCommand(newUsersCmd())
	root.AddCommand(newAuthCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newVersionCmd())
	root.AddCommand(newURLCmd())

	targetCmd, err := root.ExecuteC()
	if err != nil {
		if !errors.Is(err, errAlreadyHandled) {
			_, _ = fmt.Fprintln(root.ErrOrStderr(), enhanceUnknownError(err, root, targetCmd))
		}
		return err
	}
	return nil
}

// setupRun loads the environment and settings and stores output, debug and
// stream choices in the command context.
func setupRun(cmd *cobra.Command) error {
	ctx := cmd.Context()

	debug.SetupLogger(flags.Debug)
	ctx = debug.WithDebug(ctx, flags.Debug)

	if err := config.LoadEnvFile(flags.EnvFile); err != nil {
		return err
	}
	s, err := config.LoadSettings(config.DefaultSettingsPath())
	if err != nil {
		return err
	}
	settings = s

	if base := firstNonEmpty(flags.BaseURL, os.Getenv(config.EnvBaseURL), settings.BaseURL); base != "" {
		if err := validation.ValidateBaseURL(base); err != nil {
			return err
		}
	}

	if flags.Timeout < 0 {
		return fmt.Errorf("--timeout must be >= 0")
	}
	if !flagOrAliasChanged(cmd, "timeout") && settings.Timeout.Duration > 0 {
		flags.Timeout = settings.Timeout.Duration
	}

	output := flags.Output
	if !cmd.Flags().Changed("output") {
		output = firstNonEmpty(os.Getenv(config.EnvOutput), settings.Output)
	}
	if flags.JSON {
		if cmd.Flags().Changed("output") && flags.Output != "json" {
			return fmt.Errorf("--json conflicts with --output %s", flags.Output)
		}
		output = "json"
	}
	mode, err := outfmt.Parse(output)
	if err != nil {
		return err
	}
	if flags.JQ != "" && mode == outfmt.Text {
		if cmd.Flags().Changed("output") {
			return fmt.Errorf("--jq requires --output json or jsonl")
		}
		mode = outfmt.JSON
	}
	ctx = dryrun.WithDryRun(ctx, flags.DryRun)
	ctx = outfmt.WithMode(ctx, mode)
	ctx = outfmt.WithCompact(ctx, flags.Compact)
	if flags.JQ != "" {
		ctx = outfmt.WithQuery(ctx, flags.JQ)
	}

	streams := iocontext.Std()
	if flags.Quiet {
		streams = streams.Muted(mode == outfmt.Text)
	}
	ctx = iocontext.With(ctx, streams)
	cmd.SetOut(streams.Out)
	cmd.SetErr(streams.ErrOut)

	cmd.SetContext(ctx)
	return nil
}

// enhanceUnknownError adds "did you mean?" suggestions to unknown command/flag errors.
// targetCmd is the command Cobra resolved before the error (may be root itself).
func enhanceUnknownError(err error, root *cobra.Command, targetCmd *cobra.Command) string {
	msg := err.Error()

	if strings.Contains(msg, "unknown command") {
		if unknown := extractQuoted(msg); unknown != "" {
			parent := root
			if targetCmd != nil {
				parent = targetCmd
			}
			var names []string
			for _, c := range parent.Commands() {
				if c.IsAvailableCommand() {
					names = append(names, c.Name())
					names = append(names, c.Aliases...)
				}
			}
			if suggestion := suggestCommand(unknown, names); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?", msg, suggestion)
			}
		}
	}

	if strings.Contains(msg, "unknown flag") || strings.Contains(msg, "unknown shorthand flag") {
		if unknown := extractFlag(msg); unknown != "" {
			var names []string
			collect := func(fs *pflag.FlagSet) {
				fs.VisitAll(func(f *pflag.Flag) {
					if !f.Hidden {
						names = append(names, "--"+f.Name)
					}
				})
			}
			helpCmd := "tl --help"
			if targetCmd != nil {
				collect(targetCmd.Flags())
				collect(targetCmd.InheritedFlags())
				helpCmd = targetCmd.CommandPath() + " --help"
			}
			if suggestion := suggestFlag(unknown, names); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?\nRun %q to see supported flags.", msg, suggestion, helpCmd)
			}
			return fmt.Sprintf("%s\n\nRun %q to see supported flags.", msg, helpCmd)
		}
	}

	return msg
}

// extractQuoted extracts the first double-quoted substring from s.
func extractQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// extractFlag extracts a flag name (e.g., "--foo") from an error message.
func extractFlag(s string) string {
	idx := strings.Index(s, "--")
	if idx < 0 {
		idx = strings.LastIndex(s, " -")
		if idx < 0 {
			return ""
		}
		idx++
	}
	rest := s[idx:]
	if end := strings.IndexByte(rest, ' '); end >= 0 {
		rest = rest[:end]
	}
	rest = strings.TrimRight(rest, ".,;:!?\"'")
	if len(rest) < 2 {
		return ""
	}
	return rest
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
