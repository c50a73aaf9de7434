package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jtools/internal/catalog"
)

func newTestCommand(ctx *commandContext) *cobra.Command {
	var flags connectionFlags

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the Jellyfin connection and list users",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := ctx.connect(cmd, flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Connected to %s\n", r.conn.ServerURL)
			if len(r.users) == 0 {
				fmt.Fprintln(out, "No users found")
				return nil
			}
			fmt.Fprintln(out, renderUsers(r.users))
			return nil
		},
	}

	flags.bind(cmd)
	return cmd
}

func renderUsers(users []catalog.User) string {
	rows := make([][]string, 0, len(users))
	for _, user := range users {
		lastActive := catalog.Deref(user.LastActivityDate)
		if lastActive == "" {
			lastActive = "never"
		}
		rows = append(rows, []string{user.ID, user.Name, yesNo(user.HasPassword), lastActive})
	}
	return renderTable([]string{"ID", "Name", "Password", "Last Active"}, rows, nil)
}
