package cli

import (
	"errors"
	"strings"

	"resdb-tools/internal/config"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit ~/.resdb/config.json",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (file + env + flags)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Path()
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg := *app.cfg
			cfg.PostgresURL = redact(cfg.PostgresURL)
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"path":    path,
					"config":  cfg,
					"enabled": cfg.IsEnabled(),
				},
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set-user <user-id>",
		Short: "Set currentUser in config.json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user := strings.TrimSpace(args[0])
			if user == "" {
				return writeErr(cmd, errors.New("user id is empty"))
			}
			// Save the file contents, not the env/flag overlay.
			cfg, err := config.LoadFile()
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg.CurrentUser = user
			if err := config.Save(cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"currentUser": user}})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "enable <on|off>",
		Short: `Switch the "Show record" button on or off`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var on bool
			switch strings.ToLower(strings.TrimSpace(args[0])) {
			case "on", "true", "1":
				on = true
			case "off", "false", "0":
			default:
				return writeErr(cmd, errors.New("expected on or off"))
			}
			cfg, err := config.LoadFile()
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg.Enabled = &on
			if err := config.Save(cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"enabled": on}})
		},
	})
	return cmd
}

func redact(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	return dsn[:scheme+3] + "***" + dsn[at:]
}
