package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tweetlite/tweetlite/internal/api"
	"github.com/tweetlite/tweetlite/internal/config"
	"github.com/tweetlite/tweetlite/internal/debug"
)

// newAuthCmd returns the auth command with subcommands
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage credential profiles",
		Long:  "Store OAuth 1.0a credential sets in the OS keyring and switch between them.",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthListCmd())
	cmd.AddCommand(newAuthUseCmd())
	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var (
		profile string
		creds   config.Profile
		envFile string
		verify  bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save credentials to the keyring",
		Long: strings.TrimSpace(`
Save a consumer key/secret and access token/secret as a named profile. The
saved profile becomes the current one.

Values missing from the flags are taken from --env-file, then from the
environment (TWITTER_CONSUMER_KEY, TWITTER_CONSUMER_SECRET, ACCESS_TOKEN,
ACCESS_TOKEN_SECRET).`),
		Example: strings.TrimSpace(`
  # From a .env file
  tl auth login --env-file .env

  # Explicit values under a named profile, checked against the API
  tl auth login --profile bot --consumer-key KEY --consumer-secret SECRET \
    --access-token TOKEN --access-token-secret TOKEN_SECRET --verify
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			fallback := config.ProfileFromEnv()
			if envFile != "" {
				vars, err := config.ReadEnvFile(envFile)
				if err != nil {
					return err
				}
				fromFile := config.ProfileFromMap(vars)
				fallback = mergeProfile(fromFile, fallback)
				if !cmd.Flags().Changed("profile") {
					if name := strings.TrimSpace(vars[config.EnvProfile]); name != "" {
						profile = name
					}
				}
			}
			creds = mergeProfile(creds, fallback)

			var missing []string
			for _, f := range []struct{ flag, value string }{
				{"--consumer-key", creds.ConsumerKey},
				{"--consumer-secret", creds.ConsumerSecret},
				{"--access-token", creds.AccessToken},
				{"--access-token-secret", creds.AccessTokenSecret},
			} {
				if f.value == "" {
					missing = append(missing, f.flag)
				}
			}
			if len(missing) > 0 {
				return fmt.Errorf("%s is required", strings.Join(missing, ", "))
			}

			if verify {
				r := config.Resolved{API: api.Config{
					Subdomain:         creds.Subdomain,
					Version:           creds.Version,
					ConsumerKey:       creds.ConsumerKey,
					ConsumerSecret:    creds.ConsumerSecret,
					AccessTokenKey:    creds.AccessToken,
					AccessTokenSecret: creds.AccessTokenSecret,
				}, BaseURL: firstNonEmpty(flags.BaseURL, os.Getenv(config.EnvBaseURL), settings.BaseURL)}
				user, err := newClientFactory().newClient(r).VerifyCredentials(cmd.Context())
				if err != nil {
					return err
				}
				creds.ScreenName = user.ScreenName
			}

			if err := config.SaveProfile(profile, creds); err != nil {
				return err
			}
			printIfNotQuiet(cmd, "Saved profile %q\n", profile)
			if creds.ScreenName != "" {
				printIfNotQuiet(cmd, "  Authenticated as @%s\n", creds.ScreenName)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&profile, "profile", "default", "Profile name")
	cmd.Flags().StringVar(&creds.ConsumerKey, "consumer-key", "", "Consumer (API) key")
	cmd.Flags().StringVar(&creds.ConsumerSecret, "consumer-secret", "", "Consumer (API) secret")
	cmd.Flags().StringVar(&creds.AccessToken, "access-token", "", "Access token")
	cmd.Flags().StringVar(&creds.AccessTokenSecret, "access-token-secret", "", "Access token secret")
	cmd.Flags().StringVar(&creds.Subdomain, "subdomain", "", "Default API subdomain for this profile")
	cmd.Flags().StringVar(&creds.Version, "api-version", "", "Default API version for this profile")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Read TWITTER_*/ACCESS_* values from a .env file")
	cmd.Flags().BoolVar(&verify, "verify", false, "Check the credentials with account/verify_credentials before saving")
	flagAlias(cmd.Flags(), "consumer-key", "ck")
	flagAlias(cmd.Flags(), "consumer-secret", "cs")
	flagAlias(cmd.Flags(), "access-token", "at")
	flagAlias(cmd.Flags(), "access-token-secret", "ats")
	return cmd
}

// mergeProfile fills the empty fields of primary from secondary.
func mergeProfile(primary, secondary config.Profile) config.Profile {
	return config.Profile{
		ConsumerKey:       firstNonEmpty(primary.ConsumerKey, secondary.ConsumerKey),
		ConsumerSecret:    firstNonEmpty(primary.ConsumerSecret, secondary.ConsumerSecret),
		AccessToken:       firstNonEmpty(primary.AccessToken, secondary.AccessToken),
		AccessTokenSecret: firstNonEmpty(primary.AccessTokenSecret, secondary.AccessTokenSecret),
		Subdomain:         firstNonEmpty(primary.Subdomain, secondary.Subdomain),
		Version:           firstNonEmpty(primary.Version, secondary.Version),
		ScreenName:        firstNonEmpty(primary.ScreenName, secondary.ScreenName),
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout [profile]",
		Short: "Remove a saved profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := flags.Profile
			if len(args) == 1 {
				name = args[0]
			}
			if name == "" {
				current, err := config.CurrentProfile()
				if err != nil {
					return err
				}
				name = current
			}
			if err := config.DeleteProfile(name); err != nil {
				return err
			}
			printIfNotQuiet(cmd, "Removed profile %q\n", name)
			return nil
		}),
	}
}

// authStatus is the JSON shape of `tl auth status`.
type authStatus struct {
	Profile           string `json:"profile"`
	Source            string `json:"source"`
	URL               string `json:"url"`
	ConsumerKey       string `json:"consumer_key"`
	ConsumerSecret    string `json:"consumer_secret"`
	AccessToken       string `json:"access_token"`
	AccessTokenSecret string `json:"access_token_secret"`
	ScreenName        string `json:"screen_name,omitempty"`
}

func newAuthStatusCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which credentials would be used",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, resolved, err := newClientFactory().client()
			if err != nil {
				return err
			}
			cfg := resolved.API
			status := authStatus{
				Profile:           resolved.Profile,
				Source:            resolved.Source,
				URL:               client.URL(),
				ConsumerKey:       debug.Redact(cfg.ConsumerKey),
				ConsumerSecret:    debug.Redact(cfg.ConsumerSecret),
				AccessToken:       debug.Redact(cfg.AccessTokenKey),
				AccessTokenSecret: debug.Redact(cfg.AccessTokenSecret),
			}
			if check {
				user, err := client.VerifyCredentials(cmd.Context())
				if err != nil {
					return err
				}
				status.ScreenName = user.ScreenName
			}

			if isJSON(cmd) {
				return printJSON(cmd, status)
			}
			f := newFormatter(cmd)
			f.Row("Profile:", status.Profile)
			f.Row("Source:", status.Source)
			f.Row("URL:", status.URL)
			f.Row("Consumer key:", status.ConsumerKey)
			f.Row("Consumer secret:", status.ConsumerSecret)
			f.Row("Access token:", status.AccessToken)
			f.Row("Access token secret:", status.AccessTokenSecret)
			if status.ScreenName != "" {
				f.Row("Authenticated as:", "@"+status.ScreenName)
			}
			return f.EndTable()
		}),
	}

	cmd.Flags().BoolVar(&check, "check", false, "Also call account/verify_credentials")
	return cmd
}

func newAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved profiles",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profiles, err := config.ListProfiles()
			if err != nil {
				return err
			}
			current, err := config.CurrentProfile()
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"current": current, "profiles": profiles})
			}

			f := newFormatter(cmd)
			if len(profiles) == 0 {
				f.Empty("No saved profiles (run 'tl auth login')")
				return nil
			}
			for _, name := range profiles {
				marker := " "
				if name == current {
					marker = "*"
				}
				f.Row(marker, name)
			}
			return f.EndTable()
		}),
	}
}

func newAuthUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <profile>",
		Short: "Switch the current profile",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if err := config.SetCurrentProfile(args[0]); err != nil {
				return err
			}
			printIfNotQuiet(cmd, "Now using profile %q\n", args[0])
			return nil
		}),
	}
}
