package inventory

import (
	"slices"

	"resdb-tools/internal/record"
)

// DefaultRootName is the top-level inventory folder.
const DefaultRootName = "Inventory"

// Directory is the in-memory listing of one inventory level.
//
// A Directory is owned by the browser that displays it. Everything except the
// loaders must only touch it from the world-update thread.
type Directory struct {
	ownerID string
	name    string
	// entry is the record that defines this directory (nil for the root).
	entry  *record.Record
	parent *Directory
	// rootPath is the listing path of a root directory.
	rootPath string

	subdirectories []*Directory
	records        []record.Record
	loaded         bool
}

func NewRoot(ownerID string) *Directory {
	return &Directory{ownerID: ownerID, name: DefaultRootName, rootPath: DefaultRootName}
}

// NewChild creates a subdirectory entry for rec below d. It does not attach it;
// use Populate or AddSubdirectory.
func (d *Directory) NewChild(rec record.Record) *Directory {
	r := rec.Clone()
	return &Directory{ownerID: rec.OwnerID, name: rec.Name, entry: &r, parent: d}
}

func (d *Directory) OwnerID() string { return d.ownerID }

func (d *Directory) Name() string { return d.name }

// SetName changes the displayed name only.
func (d *Directory) SetName(name string) { d.name = name }

// EntryRecord returns a copy of the defining record, or nil for a root.
func (d *Directory) EntryRecord() *record.Record {
	if d.entry == nil {
		return nil
	}
	r := d.entry.Clone()
	return &r
}

// ReplaceEntry swaps in a newer snapshot of the defining record (same identity).
func (d *Directory) ReplaceEntry(rec record.Record) {
	r := rec.Clone()
	d.entry = &r
}

func (d *Directory) Parent() *Directory { return d.parent }

func (d *Directory) IsRoot() bool { return d.parent == nil }

// ListPath is the record path whose children make up this level.
func (d *Directory) ListPath() string {
	if d.entry == nil {
		return d.rootPath
	}
	return d.entry.ChildPath()
}

// Breadcrumb returns the displayed names from the root down to d.
func (d *Directory) Breadcrumb() []string {
	var out []string
	for cur := d; cur != nil; cur = cur.parent {
		out = append(out, cur.name)
	}
	slices.Reverse(out)
	return out
}

func (d *Directory) Loaded() bool { return d.loaded }

// Subdirectories returns the live slice; callers must not retain it across updates.
func (d *Directory) Subdirectories() []*Directory { return d.subdirectories }

// Records returns the live leaf slice; callers must not retain it across updates.
func (d *Directory) Records() []record.Record { return d.records }

// Populate replaces the level's contents. Directory and Link records become
// subdirectories; every other kind is a leaf record.
func (d *Directory) Populate(recs []record.Record) {
	d.subdirectories = d.subdirectories[:0]
	d.records = d.records[:0]
	for _, rec := range recs {
		switch rec.Kind {
		case record.KindDirectory, record.KindLink:
			d.subdirectories = append(d.subdirectories, d.NewChild(rec))
		default:
			d.records = append(d.records, rec.Clone())
		}
	}
	d.loaded = true
}

func (d *Directory) AddSubdirectory(sub *Directory) {
	sub.parent = d
	d.subdirectories = append(d.subdirectories, sub)
}

// AddRecord appends a leaf entry without inspecting its kind. Hosts use this
// when an entry is shown before its kind is known.
func (d *Directory) AddRecord(rec record.Record) {
	d.records = append(d.records, rec.Clone())
}

// FindSubdirectory returns the subdirectory defined by the record with id.
func (d *Directory) FindSubdirectory(id record.Identity) *Directory {
	for _, sub := range d.subdirectories {
		if sub.entry != nil && sub.entry.Identity() == id {
			return sub
		}
	}
	return nil
}

// RemoveRecords drops every leaf record matching pred and returns how many were removed.
func (d *Directory) RemoveRecords(pred func(record.Record) bool) int {
	before := len(d.records)
	d.records = slices.DeleteFunc(d.records, pred)
	return before - len(d.records)
}

// RemoveSubdirectory drops the subdirectory defined by id.
func (d *Directory) RemoveSubdirectory(id record.Identity) bool {
	before := len(d.subdirectories)
	d.subdirectories = slices.DeleteFunc(d.subdirectories, func(sub *Directory) bool {
		return sub.entry != nil && sub.entry.Identity() == id
	})
	return len(d.subdirectories) != before
}

// Invalidate forces the next Load to fetch the level again.
func (d *Directory) Invalidate() { d.loaded = false }

// Reset drops the cached contents, including every nested level, and marks d
// as not loaded.
func (d *Directory) Reset() {
	d.subdirectories = nil
	d.records = nil
	d.loaded = false
}
