package cmd

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "whoami",
		Aliases: []string{"me"},
		Short:   "Show the authenticating user",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			user, err := client.VerifyCredentials(cmd.Context())
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, user)
			}

			f := newFormatter(cmd)
			f.StartTable([]string{"ID", "SCREEN_NAME", "NAME", "FOLLOWERS", "FRIENDS"})
			f.Row(user.IDString(), "@"+user.ScreenName, user.Name, strconv.Itoa(user.FollowersCount), strconv.Itoa(user.FriendsCount))
			return f.EndTable()
		}),
	}
}
