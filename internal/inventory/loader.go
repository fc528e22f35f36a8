package inventory

import (
	"context"
	"fmt"

	"resdb-tools/internal/record"
)

// Lister returns the records stored directly under path for owner.
type Lister interface {
	List(ctx context.Context, ownerID, path string) ([]record.Record, error)
}

// Fetcher resolves a single record; used to follow Link entries.
type Fetcher interface {
	Fetch(ctx context.Context, id record.Identity) (record.Record, error)
}

// ListRequest captures everything needed to load a level, so the I/O can run
// off the world-update thread without reading the Directory.
type ListRequest struct {
	OwnerID string
	Path    string
	// Link is set when the level is a Link entry; its target is listed instead.
	Link string
}

// Request snapshots d. Call on the world-update thread.
func (d *Directory) Request() ListRequest {
	req := ListRequest{OwnerID: d.ownerID, Path: d.ListPath()}
	if d.entry != nil && d.entry.Kind == record.KindLink {
		req.Link = d.entry.AssetURI
	}
	return req
}

type Loader struct {
	Lister  Lister
	Fetcher Fetcher
}

// List performs the I/O for req. Safe to call from any goroutine.
func (l Loader) List(ctx context.Context, req ListRequest) ([]record.Record, error) {
	owner, path := req.OwnerID, req.Path
	if req.Link != "" && l.Fetcher != nil {
		id, err := record.ParseLocator(req.Link)
		if err != nil {
			return nil, fmt.Errorf("link target: %w", err)
		}
		target, err := l.Fetcher.Fetch(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("link target %s: %w", id, err)
		}
		owner, path = target.OwnerID, target.ChildPath()
	}
	recs, err := l.Lister.List(ctx, owner, path)
	if err != nil {
		return nil, fmt.Errorf("list %s %q: %w", owner, path, err)
	}
	return recs, nil
}
