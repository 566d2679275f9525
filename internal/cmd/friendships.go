package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tweetlite/tweetlite/internal/api"
	"github.com/tweetlite/tweetlite/internal/urlparse"
	"github.com/tweetlite/tweetlite/internal/validation"
)

func newFollowCmd() *cobra.Command {
	return newFriendshipCmd("follow", "Follow a user", "Followed", api.FollowPath,
		func(c *api.Client) func(context.Context, api.FriendshipTarget) (*api.User, error) {
			return c.FollowUser
		})
}

func newUnfollowCmd() *cobra.Command {
	return newFriendshipCmd("unfollow", "Unfollow a user", "Unfollowed", api.UnfollowPath,
		func(c *api.Client) func(context.Context, api.FriendshipTarget) (*api.User, error) {
			return c.UnfollowUser
		})
}

// newFriendshipCmd builds follow and unfollow, which differ only in the
// endpoint they call.
func newFriendshipCmd(use, short, verb, path string, call func(*api.Client) func(context.Context, api.FriendshipTarget) (*api.User, error)) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   use + " [screen_name|profile_url]",
		Short: short,
		Example: fmt.Sprintf(`  tl %[1]s dandv
  tl %[1]s https://twitter.com/dandv
  tl %[1]s --user-id 15008676 --dry-run`, use),
		Args: cobra.MaximumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && userID == "" {
				return fmt.Errorf("a screen name argument or --user-id is required")
			}
			if len(args) == 1 && userID != "" {
				return fmt.Errorf("--user-id conflicts with a screen name argument")
			}
			target := api.FriendshipTarget{UserID: userID}
			if len(args) == 1 {
				parsed, err := parseUserArg(args[0])
				if err != nil {
					return err
				}
				target = parsed
			}
			if target.UserID != "" {
				if err := validation.ValidateUserID(target.UserID); err != nil {
					return err
				}
			}
			if done, err := previewRequest(cmd, use+" "+describeTarget(target), path, nil, target.Params()); done {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			user, err := call(client)(cmd.Context(), target)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, user)
			}
			printIfNotQuiet(cmd, "%s @%s (%s)\n", verb, user.ScreenName, user.IDString())
			return nil
		}),
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "Target user id instead of a screen name")
	flagAlias(cmd.Flags(), "user-id", "uid")
	return cmd
}

// parseUserArg reads a screen name or a profile, status or intent link.
func parseUserArg(arg string) (api.FriendshipTarget, error) {
	if !urlparse.IsLink(arg) {
		if err := validation.ValidateScreenName(arg); err != nil {
			return api.FriendshipTarget{}, err
		}
		return api.FriendshipTarget{ScreenName: strings.TrimPrefix(strings.TrimSpace(arg), "@")}, nil
	}
	link, err := urlparse.Parse(arg)
	if err != nil {
		return api.FriendshipTarget{}, err
	}
	if link.ScreenName == "" && link.UserID == "" {
		return api.FriendshipTarget{}, fmt.Errorf("link %q does not name a user", arg)
	}
	return api.FriendshipTarget{ScreenName: link.ScreenName, UserID: link.UserID}, nil
}

func describeTarget(t api.FriendshipTarget) string {
	if t.ScreenName != "" {
		return "@" + strings.TrimPrefix(t.ScreenName, "@")
	}
	return "user " + t.UserID
}
