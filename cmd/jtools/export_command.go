package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"jtools/internal/config"
	"jtools/internal/favorites"
	"jtools/internal/textutil"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var flags connectionFlags
	var output string
	var saveConfig bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export favorite movies and people to a snapshot file",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := ctx.connect(cmd, flags)
			if err != nil {
				return err
			}
			userID, err := r.userID()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Using user %s (%s)\n", r.userName(userID), userID)

			if saveConfig {
				if err := ctx.rememberConnection(cmd, flags); err != nil {
					return err
				}
			}

			result, err := r.run(cmd.Context(), func(runCtx context.Context) (string, error) {
				return r.state.StartExport(runCtx, r.catalog, userID)
			}, nil)
			if err != nil {
				return err
			}
			snapshot, _ := result.(favorites.Snapshot)

			target := strings.TrimSpace(output)
			if target == "" {
				target = defaultExportName(r.userName(userID), time.Now())
			}
			if err := favorites.WriteFile(target, snapshot); err != nil {
				return err
			}

			fmt.Fprintf(out, "Exported %d movies and %d people\n", len(snapshot.FavoriteMovies), len(snapshot.FavoritePeople))
			fmt.Fprintf(out, "Snapshot written to %s\n", target)
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Snapshot file to write (default jellyfin-favorites-<user>-<timestamp>.json)")
	cmd.Flags().BoolVar(&saveConfig, "save-config", false, "Save the connection when remember_connection is enabled")
	return cmd
}

func defaultExportName(user string, now time.Time) string {
	return fmt.Sprintf("jellyfin-favorites-%s-%s.json", textutil.FileToken(user), now.Format("20060102-150405"))
}

// rememberConnection persists the configured connection with the flag
// overrides applied, unless the user has turned remember_connection off.
// Environment fallbacks are not saved.
func (c *commandContext) rememberConnection(cmd *cobra.Command, flags connectionFlags) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.UI.RememberConnection {
		fmt.Fprintln(cmd.ErrOrStderr(), "remember_connection is disabled; connection not saved")
		return nil
	}
	conn, err := c.storedConnection(flags)
	if err != nil {
		return err
	}
	cfg.Connection = conn
	if err := config.Save(c.configPath, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved connection to %s\n", c.configPath)
	return nil
}
