package inventory

import (
	"context"
	"errors"
	"testing"

	"resdb-tools/internal/record"
)

type mapLister map[string][]record.Record

func (m mapLister) List(ctx context.Context, ownerID, path string) ([]record.Record, error) {
	return m[ownerID+"|"+path], nil
}

type mapFetcher map[record.Identity]record.Record

func (m mapFetcher) Fetch(ctx context.Context, id record.Identity) (record.Record, error) {
	r, ok := m[id]
	if !ok {
		return record.Record{}, errors.New("missing")
	}
	return r, nil
}

func TestLoader_ListsDirectoryAndFollowsLinks(t *testing.T) {
	shared := record.Record{OwnerID: "U-b", RecordID: "R-shared", Kind: record.KindDirectory, Name: "Shared", Path: "Inventory"}
	lister := mapLister{
		"U-a|Inventory": {
			{OwnerID: "U-a", RecordID: "R-games", Kind: record.KindDirectory, Name: "Games", Path: "Inventory"},
			{OwnerID: "U-a", RecordID: "R-link", Kind: record.KindLink, Name: "From Bob", Path: "Inventory", AssetURI: "resrec:///U-b/R-shared"},
		},
		`U-a|Inventory\Games`:  {{OwnerID: "U-a", RecordID: "R-chess", Kind: record.KindObject, Name: "Chess", Path: `Inventory\Games`}},
		`U-b|Inventory\Shared`: {{OwnerID: "U-b", RecordID: "R-cup", Kind: record.KindObject, Name: "Cup", Path: `Inventory\Shared`}},
	}
	l := Loader{Lister: lister, Fetcher: mapFetcher{shared.Identity(): shared}}
	ctx := context.Background()

	root := NewRoot("U-a")
	recs, err := l.List(ctx, root.Request())
	if err != nil {
		t.Fatalf("list root: %v", err)
	}
	root.Populate(recs)
	if len(root.Subdirectories()) != 2 {
		t.Fatalf("expected 2 subdirectories, got %d", len(root.Subdirectories()))
	}

	games := root.Subdirectories()[0]
	recs, err = l.List(ctx, games.Request())
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(recs) != 1 || recs[0].Name != "Chess" {
		t.Fatalf("unexpected games listing %+v", recs)
	}

	link := root.Subdirectories()[1]
	recs, err = l.List(ctx, link.Request())
	if err != nil {
		t.Fatalf("list link: %v", err)
	}
	if len(recs) != 1 || recs[0].Name != "Cup" {
		t.Fatalf("expected link to list its target, got %+v", recs)
	}
}

func TestLoader_BrokenLink(t *testing.T) {
	root := NewRoot("U-a")
	root.Populate([]record.Record{{OwnerID: "U-a", RecordID: "R-l", Kind: record.KindLink, Name: "Broken", AssetURI: "not a locator"}})
	l := Loader{Lister: mapLister{}, Fetcher: mapFetcher{}}
	if _, err := l.List(context.Background(), root.Subdirectories()[0].Request()); err == nil {
		t.Fatalf("expected error for unparsable link target")
	}
}
