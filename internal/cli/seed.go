package cli

import (
	"context"
	"fmt"

	"resdb-tools/internal/record"
	"resdb-tools/internal/store"

	"github.com/spf13/cobra"
)

func newSeedCmd(app *App) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the acting user's inventory with demo records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, app, func(ctx context.Context, b store.Backend) error {
				existing, err := b.List(ctx, app.user(), "Inventory")
				if err != nil {
					return err
				}
				if len(existing) > 0 && !force {
					return fmt.Errorf("inventory of %s is not empty (use --force to seed anyway)", app.user())
				}
				created, err := seedInventory(ctx, b, app.user(), app.profile())
				if err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": created})
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Seed even if the inventory already has records")
	return cmd
}

// seedInventory creates a small tree covering every record kind.
func seedInventory(ctx context.Context, b store.Backend, owner string, p record.Profile) ([]record.Record, error) {
	var out []record.Record
	add := func(rec record.Record) (record.Record, error) {
		rec.OwnerID = owner
		created, err := b.Create(ctx, rec)
		if err != nil {
			return created, fmt.Errorf("seed %q: %w", rec.Name, err)
		}
		out = append(out, created)
		return created, nil
	}

	games, err := add(record.Record{Kind: record.KindDirectory, Name: "Games", Path: "Inventory"})
	if err != nil {
		return nil, err
	}
	if _, err := add(record.Record{Kind: record.KindDirectory, Name: "Tools", Path: "Inventory"}); err != nil {
		return nil, err
	}
	if _, err := add(record.Record{
		Kind:         record.KindObject,
		Name:         "Cards",
		Path:         games.ChildPath(),
		AssetURI:     "resdb:///9f2c1a7e.brson",
		ThumbnailURI: "resdb:///9f2c1a7e.webp",
	}); err != nil {
		return nil, err
	}
	if _, err := add(record.Record{
		Kind:         record.KindObject,
		Name:         "Party Hub",
		Path:         games.ChildPath(),
		AssetURI:     "resdb:///4b81d0c3.brson",
		ThumbnailURI: "resdb:///4b81d0c3.webp",
		Tags:         []string{record.TagWorldOrb},
	}); err != nil {
		return nil, err
	}
	if _, err := add(record.Record{
		Kind:     record.KindWorld,
		Name:     "Sandbox",
		Path:     "Inventory",
		AssetURI: "resdb:///e07a55d2.7zbson",
	}); err != nil {
		return nil, err
	}
	hat, err := add(record.Record{
		Kind:         record.KindObject,
		Name:         "Hat",
		Path:         "Inventory",
		AssetURI:     "resdb:///c3d9e4f1.brson",
		ThumbnailURI: "resdb:///c3d9e4f1.webp",
	})
	if err != nil {
		return nil, err
	}
	if _, err := add(record.Record{
		Kind:     record.KindLink,
		Name:     "Hat (link)",
		Path:     "Inventory",
		AssetURI: hat.URL(p).String(),
	}); err != nil {
		return nil, err
	}
	return out, nil
}
