package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"resdb-tools/internal/config"
	"resdb-tools/internal/format"
	"resdb-tools/internal/logging"
	"resdb-tools/internal/record"
	"resdb-tools/internal/store"
	"resdb-tools/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	User       string
	Owner      string
	Backend    string
	Dir        string
	PrettyJSON bool
	Format     string

	cfg *config.Config
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "resdb",
		Short:        "Inventory record browser and editor",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Browse your inventory (select an entry, press i to edit its record)
  resdb

  # Browse someone else's inventory (read-only)
  resdb --owner U-bob

  # Scriptable commands
  resdb records ls --path 'Inventory\Games'
  resdb records set resrec:///U-alice/R-01J... --name "Games Old"

  # Direct record lookup (shortcut for: resdb records get <locator>)
  resdb resrec:///U-alice/R-01J...
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive browser.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		if err := app.loadConfig(); err != nil {
			return writeErr(c, err)
		}
		// The browser owns the terminal, so it logs to a file.
		out := "stderr"
		if c == cmd {
			out = app.cfg.Log.Path
		}
		return logging.Init(logging.Config{
			Level:      app.cfg.Log.Level,
			Format:     app.cfg.Log.Format,
			OutputPath: out,
		})
	}
	cmd.PersistentPostRunE = func(c *cobra.Command, args []string) error {
		_ = logging.Sync()
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.User, "user", "", "Acting user id (overrides currentUser in config.json / RESDB_USER)")
	cmd.PersistentFlags().StringVar(&app.Owner, "owner", "", "Inventory owner to browse (default: the acting user)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", "", "Record store backend (sqlite|postgres|http)")
	cmd.PersistentFlags().StringVar(&app.Dir, "dir", "", "Data dir for the sqlite backend")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("RESDB_FORMAT", "json"), "Output format (json|text)")

	cmd.AddCommand(newRecordsCmd(app))
	cmd.AddCommand(newSeedCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// loadConfig reads config.json + env, then applies command-line flags on top.
func (app *App) loadConfig() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(app.User); v != "" {
		cfg.CurrentUser = v
	}
	if v := strings.TrimSpace(app.Backend); v != "" {
		cfg.Backend = v
	}
	if v := strings.TrimSpace(app.Dir); v != "" {
		cfg.DataDir = v
	}
	app.cfg = cfg
	return nil
}

func (app *App) user() string { return app.cfg.CurrentUser }

func (app *App) owner() string {
	if v := strings.TrimSpace(app.Owner); v != "" {
		return v
	}
	return app.user()
}

func (app *App) profile() record.Profile {
	p := record.DefaultProfile()
	if app.cfg.WebBaseURL != "" {
		p.WebBaseURL = app.cfg.WebBaseURL
	}
	return p
}

func (app *App) assets() store.Assets {
	return store.Assets{BaseURL: app.cfg.AssetsBaseURL}
}

func openBackend(ctx context.Context, app *App) (store.Backend, error) {
	return store.Open(ctx, store.Options{
		Backend:     app.cfg.Backend,
		Dir:         app.cfg.DataDir,
		PostgresURL: app.cfg.PostgresURL,
		RemoteURL:   app.cfg.RemoteURL,
		User:        app.user(),
	})
}

func runTUI(cmd *cobra.Command, app *App) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	backend, err := openBackend(ctx, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer backend.Close()

	cfg := app.cfg
	return tui.Run(ctx, tui.Options{
		Owner:   app.owner(),
		User:    app.user(),
		Gateway: store.Gateway{Backend: backend, Assets: app.assets()},
		Profile: app.profile(),
		Enabled: cfg.IsEnabled,
		Logger:  logging.L(),
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
