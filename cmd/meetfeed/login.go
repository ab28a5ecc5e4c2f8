package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meetfeed/meetfeed-client/internal/app"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with the configured Telegram init data",
	RunE:  runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	return withClient(cmd, func(_ context.Context, client *app.Client) error {
		sess := client.Session()
		if jsonOut {
			return printJSON(map[string]any{
				"user_id":      sess.UserID,
				"display_name": sess.DisplayName,
				"has_token":    sess.AccessToken != "",
			})
		}
		fmt.Printf("Logged in as %s (id %s)\n", orDash(sess.DisplayName), orDash(sess.UserID))
		return nil
	})
}
