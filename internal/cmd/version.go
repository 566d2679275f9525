package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/tweetlite/tweetlite/internal/update"
)

// version is set at build time via ldflags
var version = "dev"

func newVersionCmd() *cobra.Command {
	var noCheck bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if isJSON(cmd) {
				if err := printJSON(cmd, map[string]string{"version": version, "go": runtime.Version()}); err != nil {
					return err
				}
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "tl version %s (%s)\n", version, runtime.Version())
			}
			if noCheck {
				return nil
			}

			if n := update.Check(cmd.Context(), version); n != nil {
				errOut := cmd.ErrOrStderr()
				_, _ = fmt.Fprintf(errOut, "\nUpdate available: %s -> %s\n", n.Current, n.Latest)
				_, _ = fmt.Fprintf(errOut, "Download: %s\n", n.URL)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&noCheck, "no-update-check", false, "Skip the GitHub release check")
	return cmd
}
