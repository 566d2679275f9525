package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "url [path]",
		Short: "Print the API root, or the full URL of a path",
		Long: `Print the versioned API root derived from the subdomain and version, e.g.
https://api.twitter.com/1.1. With a path, print the endpoint it maps to.
No credentials are needed.`,
		Example: `  tl url
  tl url --subdomain stream
  tl url account/verify_credentials`,
		Args: cobra.MaximumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := newClientFactory().offlineClient()
			if err != nil {
				return err
			}

			out := client.URL()
			if len(args) == 1 {
				endpoint, err := client.Endpoint(args[0], nil)
				if err != nil {
					return err
				}
				out = endpoint
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]string{"url": out})
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		}),
	}
}
