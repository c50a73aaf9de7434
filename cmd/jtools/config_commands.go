package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"jtools/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the stored configuration",
	}

	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigSaveCommand(ctx))
	configCmd.AddCommand(newConfigDeleteCommand(ctx))
	configCmd.AddCommand(newConfigPathCommand(ctx))

	return configCmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if !ctx.configExists {
				fmt.Fprintln(out, "Config file does not exist; defaults are shown")
			}
			if cfg.MigratedFrom != "" {
				fmt.Fprintf(out, "Migrated from %s\n", cfg.MigratedFrom)
			}
			conn := cfg.Connection.Effective()
			fmt.Fprintln(out, renderSettings([][2]string{
				{"Server URL", orNotSet(conn.ServerURL)},
				{"API token", conn.MaskedToken()},
				{"User id", orNotSet(conn.UserID)},
				{"Timeout", conn.Timeout().String()},
				{"Device id", orNotSet(cfg.DeviceID)},
				{"Remember connection", yesNo(cfg.UI.RememberConnection)},
				{"Realtime logs", yesNo(cfg.UI.EnableRealtimeLogs)},
				{"Detailed logs", yesNo(cfg.UI.ShowDetailedLogs)},
				{"UI scale", strconv.FormatFloat(cfg.UI.Scale, 'f', -1, 64)},
				{"Item delay", millis(cfg.Import.ItemDelayMS).String()},
				{"Mutation delay", millis(cfg.Import.MutationDelayMS).String()},
				{"Requests per second", strconv.FormatFloat(cfg.Import.RequestsPerSecond, 'f', -1, 64)},
				{"Circuit breaker", yesNo(cfg.Import.CircuitBreaker)},
				{"Log level", cfg.Logging.Level},
				{"Log format", cfg.Logging.Format},
				{"Log directory", orNotSet(cfg.Logging.Dir)},
			}))
			return nil
		},
	}
}

func newConfigSaveCommand(ctx *commandContext) *cobra.Command {
	var flags connectionFlags

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Validate and store connection settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if flags.token == "" && !cfg.Connection.Configured() {
				token, err := readSecret(cmd, "API token: ")
				if err != nil {
					return err
				}
				flags.token = token
			}
			conn, err := ctx.storedConnection(flags)
			if err != nil {
				return err
			}
			if err := conn.WithDefaults().Validate(); err != nil {
				return err
			}
			cfg.Connection = conn
			if err := config.Save(ctx.configPath, cfg); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Saved configuration to %s\n", ctx.configPath)
			fmt.Fprintf(out, "Server: %s  Token: %s\n", conn.WithDefaults().ServerURL, conn.MaskedToken())
			return nil
		},
	}

	flags.bind(cmd)
	return cmd
}

func newConfigDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "delete",
		Short:       "Delete the stored configuration and legacy files",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ctx.targetConfigPath()
			if err != nil {
				return err
			}
			removed, err := config.Delete(path)
			out := cmd.OutOrStdout()
			for _, file := range removed {
				fmt.Fprintf(out, "Removed %s\n", file)
			}
			if err != nil {
				return err
			}
			if len(removed) == 0 {
				fmt.Fprintln(out, "No configuration files found")
			}
			return nil
		},
	}
}

func newConfigPathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureConfig(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ctx.configPath)
			return nil
		},
	}
}
