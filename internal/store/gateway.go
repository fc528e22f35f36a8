package store

import (
	"context"
	"errors"
	"fmt"

	"resdb-tools/internal/record"
)

// Gateway adapts a Backend to what the record editor and the inventory loader need.
type Gateway struct {
	Backend Backend
	Assets  Assets
}

func (g Gateway) Fetch(ctx context.Context, id record.Identity) (record.Record, error) {
	return g.Backend.Fetch(ctx, id)
}

func (g Gateway) Persist(ctx context.Context, rec record.Record) (bool, error) {
	if err := g.Backend.Persist(ctx, rec); err != nil {
		return false, err
	}
	return true, nil
}

func (g Gateway) RawAssetURL(assetURI string) (string, error) {
	return g.Assets.RawAssetURL(assetURI)
}

func (g Gateway) List(ctx context.Context, ownerID, path string) ([]record.Record, error) {
	return g.Backend.List(ctx, ownerID, path)
}

type Options struct {
	Backend     string
	Dir         string
	PostgresURL string
	RemoteURL   string
	User        string
}

// Open returns the backend selected by opts.Backend.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Backend {
	case "", "sqlite":
		return OpenSQLite(ctx, opts.Dir)
	case "postgres":
		if opts.PostgresURL == "" {
			return nil, errors.New("postgres backend needs postgresUrl (or RESDB_POSTGRES_URL)")
		}
		return OpenPostgres(ctx, opts.PostgresURL)
	case "http":
		if opts.RemoteURL == "" {
			return nil, errors.New("http backend needs remoteUrl (or RESDB_REMOTE_URL)")
		}
		return NewClient(ClientConfig{BaseURL: opts.RemoteURL, User: opts.User}), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s (expected sqlite|postgres|http)", opts.Backend)
	}
}
