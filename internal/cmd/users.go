package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tweetlite/tweetlite/internal/api"
	"github.com/tweetlite/tweetlite/internal/validation"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "User lookups",
	}
	cmd.AddCommand(newUsersLookupCmd())
	return cmd
}

func newUsersLookupCmd() *cobra.Command {
	var userIDs []string
	var screenNames []string

	cmd := &cobra.Command{
		Use:   "lookup [screen_name|profile_url...]",
		Short: "Fetch users by id or screen name",
		Long: fmt.Sprintf(`Fetch users by id or screen name.

Duplicates are dropped and the rest is sent in batches of %d. Names that match
nobody are skipped; the command only fails when nothing matched.`, api.MaxLookupBatch),
		Example: `  tl users lookup dandv nodejs_lite
  tl users lookup --user-id 15008676,973775515453722624 -o jsonl`,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			lookup := api.UserLookup{
				UserIDs:     append([]string(nil), userIDs...),
				ScreenNames: append([]string(nil), screenNames...),
			}
			for _, arg := range args {
				target, err := parseUserArg(arg)
				if err != nil {
					return err
				}
				if target.UserID != "" {
					lookup.UserIDs = append(lookup.UserIDs, target.UserID)
				} else {
					lookup.ScreenNames = append(lookup.ScreenNames, target.ScreenName)
				}
			}
			if len(lookup.UserIDs) == 0 && len(lookup.ScreenNames) == 0 {
				return fmt.Errorf("at least one screen name or --user-id is required")
			}
			for _, id := range lookup.UserIDs {
				if err := validation.ValidateUserID(id); err != nil {
					return err
				}
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			users, err := client.LookupUsers(cmd.Context(), lookup)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, users)
			}

			f := newFormatter(cmd)
			f.StartTable([]string{"ID", "SCREEN_NAME", "NAME", "FOLLOWERS", "PROTECTED"})
			for _, u := range users {
				f.Row(u.IDString(), "@"+u.ScreenName, u.Name, strconv.Itoa(u.FollowersCount), strconv.FormatBool(u.Protected))
			}
			return f.EndTable()
		}),
	}

	cmd.Flags().StringSliceVar(&userIDs, "user-id", nil, "User ids (comma-separated or repeated)")
	cmd.Flags().StringSliceVar(&screenNames, "screen-name", nil, "Screen names (comma-separated or repeated)")
	flagAlias(cmd.Flags(), "user-id", "uid")
	flagAlias(cmd.Flags(), "screen-name", "sn")
	return cmd
}
