package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tweetlite/tweetlite/internal/api"
	"github.com/tweetlite/tweetlite/internal/iocontext"
	"github.com/tweetlite/tweetlite/internal/validation"
)

func newDMCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dm",
		Aliases: []string{"direct-messages"},
		Short:   "Direct messages",
	}
	cmd.AddCommand(newDMSendCmd())
	return cmd
}

func newDMSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <recipient_id> <text>",
		Short: "Send a direct message",
		Long: `Send a direct message through the events API.

The recipient must be a numeric user id. Pass "-" as text to read it from stdin.`,
		Example: `  tl dm send 15008676 "hello"
  echo "hello" | tl dm send 15008676 -
  tl dm send 15008676 "hello" --dry-run`,
		Args: cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			text, err := iocontext.From(cmd.Context()).ReadArg(args[1])
			if err != nil {
				return fmt.Errorf("failed to read message text: %w", err)
			}
			if err := validation.ValidateUserID(args[0]); err != nil {
				return err
			}
			if err := validation.ValidateMessageText(text); err != nil {
				return err
			}
			body, err := api.DirectMessageBody(args[0], text)
			if err != nil {
				return err
			}
			if done, err := previewRequest(cmd, "send a direct message to "+args[0], api.DirectMessagePath, body, nil); done {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			event, err := client.SendDirectMessage(cmd.Context(), args[0], text)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, event)
			}
			printIfNotQuiet(cmd, "Sent message %s to %s\n", event.ID, event.MessageCreate.Target.RecipientID)
			return nil
		}),
	}
}
