package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tweetlite/tweetlite/internal/api"
)

func newFavoritesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav", "likes"},
		Short:   "Liked tweets",
	}
	cmd.AddCommand(newFavoritesListCmd())
	return cmd
}

func newFavoritesListCmd() *cobra.Command {
	var (
		count      int
		screenName string
		userID     string
		sinceID    string
		maxID      string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tweets liked by you or another user",
		Example: `  tl favorites list --count 2
  tl favorites list --screen-name dandv -o json --jq '.[].id_str'`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if count < 0 || count > 200 {
				return fmt.Errorf("--count must be between 1 and 200")
			}
			params := api.Params{}
			if count > 0 {
				params["count"] = count
			}
			if screenName != "" {
				params["screen_name"] = strings.TrimPrefix(screenName, "@")
			}
			if userID != "" {
				params["user_id"] = userID
			}
			if sinceID != "" {
				params["since_id"] = sinceID
			}
			if maxID != "" {
				params["max_id"] = maxID
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			tweets, err := client.FavoritesList(cmd.Context(), params)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, tweets)
			}

			f := newFormatter(cmd)
			if len(tweets) == 0 {
				f.Empty("No liked tweets found")
				return nil
			}
			f.StartTable([]string{"ID", "AUTHOR", "CREATED", "LIKES", "TEXT"})
			for _, t := range tweets {
				author := ""
				if t.User != nil {
					author = "@" + t.User.ScreenName
				}
				f.Row(t.IDString(), author, formatCreated(t.CreatedAtTime()), strconv.Itoa(t.FavoriteCount), oneLine(t.Body(), 60))
			}
			return f.EndTable()
		}),
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "Number of tweets (1-200)")
	cmd.Flags().StringVar(&screenName, "screen-name", "", "List likes of this screen name")
	cmd.Flags().StringVar(&userID, "user-id", "", "List likes of this user id")
	cmd.Flags().StringVar(&sinceID, "since-id", "", "Only tweets newer than this id")
	cmd.Flags().StringVar(&maxID, "max-id", "", "Only tweets up to this id")
	flagAlias(cmd.Flags(), "screen-name", "sn")
	flagAlias(cmd.Flags(), "user-id", "uid")
	return cmd
}

func formatCreated(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}

// oneLine flattens whitespace and truncates to limit runes.
func oneLine(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
