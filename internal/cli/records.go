package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"resdb-tools/internal/editor"
	"resdb-tools/internal/format"
	"resdb-tools/internal/perm"
	"resdb-tools/internal/record"
	"resdb-tools/internal/store"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

func newRecordsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "records",
		Aliases: []string{"record", "rec"},
		Short:   "Read and edit inventory records",
	}
	cmd.AddCommand(newRecordsGetCmd(app))
	cmd.AddCommand(newRecordsListCmd(app))
	cmd.AddCommand(newRecordsCreateCmd(app))
	cmd.AddCommand(newRecordsSetCmd(app))
	cmd.AddCommand(newRecordsURLCmd(app))
	cmd.AddCommand(newRecordsShowCmd(app))
	cmd.AddCommand(newRecordsRmCmd(app))
	return cmd
}

// withBackend opens the configured store for the duration of fn.
func withBackend(cmd *cobra.Command, app *App, fn func(ctx context.Context, b store.Backend) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	b, err := openBackend(ctx, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer b.Close()
	if err := fn(ctx, b); err != nil {
		return writeErr(cmd, err)
	}
	return nil
}

func errUnauthorized(user string, id record.Identity) error {
	return &store.FailureInfo{
		Code:    store.CodeUnauthorized,
		Message: "Unauthorized",
		Err:     fmt.Errorf("user %s does not own %s", user, id),
	}
}

func newRecordsGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <locator>",
		Short: "Fetch one record (resrec:///owner/id or owner/id)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := record.ParseLocator(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withBackend(cmd, app, func(ctx context.Context, b store.Backend) error {
				rec, err := b.Fetch(ctx, id)
				if err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": rec})
			})
		},
	}
}

func newRecordsListCmd(app *App) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List one inventory directory",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, app, func(ctx context.Context, b store.Backend) error {
				recs, err := b.List(ctx, app.owner(), path)
				if err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": recs})
			})
		},
	}
	cmd.Flags().StringVar(&path, "path", "Inventory", `Directory path (backslash-separated, e.g. 'Inventory\Games')`)
	return cmd
}

func newRecordsCreateCmd(app *App) *cobra.Command {
	var (
		kind, name, path, asset, thumb string
		tags                           []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a record in the acting user's inventory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec := record.Record{
				OwnerID:      app.user(),
				Kind:         record.ParseKind(kind),
				Name:         name,
				Path:         path,
				AssetURI:     strings.TrimSpace(asset),
				ThumbnailURI: strings.TrimSpace(thumb),
				Tags:         tags,
			}
			return withBackend(cmd, app, func(ctx context.Context, b store.Backend) error {
				created, err := b.Create(ctx, rec)
				if err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": created})
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "object", "Record kind (directory|link|object|world)")
	cmd.Flags().StringVar(&name, "name", "", "Record name")
	cmd.Flags().StringVar(&path, "path", "Inventory", "Parent directory path")
	cmd.Flags().StringVar(&asset, "asset", "", "Asset locator")
	cmd.Flags().StringVar(&thumb, "thumbnail", "", "Thumbnail locator")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newRecordsSetCmd(app *App) *cobra.Command {
	var name, thumb, asset string
	cmd := &cobra.Command{
		Use:   "set <locator>",
		Short: "Edit a record's name, thumbnail or asset (same rules as the editor popup)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := record.ParseLocator(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !cmd.Flags().Changed("name") && !cmd.Flags().Changed("thumbnail") && !cmd.Flags().Changed("asset") {
				return writeErr(cmd, errors.New("nothing to set (use --name, --thumbnail or --asset)"))
			}
			if !perm.CanEditRecord(app.user(), id) {
				return writeErr(cmd, errUnauthorized(app.user(), id))
			}
			return withBackend(cmd, app, func(ctx context.Context, b store.Backend) error {
				rec, err := b.Fetch(ctx, id)
				if err != nil {
					return err
				}
				d := editor.Draft{Name: rec.Name}
				if cmd.Flags().Changed("name") {
					d.Name = name
				}
				hints := []string{}
				if cmd.Flags().Changed("thumbnail") || cmd.Flags().Changed("asset") {
					if rec.Kind != record.KindObject {
						return fmt.Errorf("--thumbnail and --asset only apply to object records (this is a %s)", rec.Kind)
					}
					d.Thumbnail = strings.TrimSpace(thumb)
					d.NewAsset = asset
					if _, ok := record.ParseAbsoluteURI(asset); asset != "" && !ok {
						hints = append(hints, "--asset ignored: not an absolute URI")
					}
				}
				editor.ApplyDraft(&rec, d)
				if err := b.Persist(ctx, rec); err != nil {
					return err
				}
				saved, err := b.Fetch(ctx, id)
				if err != nil {
					return err
				}
				out := map[string]any{"data": saved}
				if len(hints) > 0 {
					out["_hints"] = hints
				}
				return writeOut(cmd, app, out)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&thumb, "thumbnail", "", "New thumbnail locator (objects only)")
	cmd.Flags().StringVar(&asset, "asset", "", "New asset locator; must be an absolute URI (objects only)")
	return cmd
}

func newRecordsURLCmd(app *App) *cobra.Command {
	var action string
	var copyOut bool
	cmd := &cobra.Command{
		Use:   "url <locator>",
		Short: "Print the copy-URL strings offered for a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := record.ParseLocator(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withBackend(cmd, app, func(ctx context.Context, b store.Backend) error {
				rec, err := b.Fetch(ctx, id)
				if err != nil {
					return err
				}
				available := record.AvailableCopyActions(rec)

				if strings.TrimSpace(action) == "" {
					out := make([]map[string]string, 0, len(available))
					for _, a := range available {
						s, err := editor.ComputeCopyURL(rec, a, app.profile(), app.assets())
						if err != nil {
							return err
						}
						out = append(out, map[string]string{"action": a.String(), "url": s})
					}
					return writeOut(cmd, app, map[string]any{"data": out})
				}

				a, err := record.ParseCopyAction(action)
				if err != nil {
					return err
				}
				if !slices.Contains(available, a) {
					return fmt.Errorf("%w: %s on a %s record", editor.ErrActionNotAvailable, a, rec.Kind)
				}
				s, err := editor.ComputeCopyURL(rec, a, app.profile(), app.assets())
				if err != nil {
					return err
				}
				copied := false
				if copyOut {
					if err := clipboard.WriteAll(s); err != nil {
						return fmt.Errorf("clipboard: %w", err)
					}
					copied = true
				}
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"action": a.String(), "url": s, "copied": copied}})
			})
		},
	}
	cmd.Flags().StringVar(&action, "action", "", "record|asset|web|web-asset (default: all available)")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "Also copy the URL to the system clipboard")
	return cmd
}

func newRecordsShowCmd(app *App) *cobra.Command {
	var raw bool
	var style string
	cmd := &cobra.Command{
		Use:   "show <locator>",
		Short: "Render a record as a markdown card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := record.ParseLocator(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withBackend(cmd, app, func(ctx context.Context, b store.Backend) error {
				rec, err := b.Fetch(ctx, id)
				if err != nil {
					return err
				}
				md := format.RecordCard(rec, app.profile())
				if raw {
					_, err := fmt.Fprint(cmd.OutOrStdout(), md)
					return err
				}
				out, err := glamour.Render(md, style)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), out)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the markdown source")
	cmd.Flags().StringVar(&style, "style", "dark", "Glamour style (dark|light|notty|ascii)")
	return cmd
}

func newRecordsRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <locator>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := record.ParseLocator(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !perm.CanEditRecord(app.user(), id) {
				return writeErr(cmd, errUnauthorized(app.user(), id))
			}
			return withBackend(cmd, app, func(ctx context.Context, b store.Backend) error {
				if err := b.Delete(ctx, id); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": id.String()}})
			})
		},
	}
}
