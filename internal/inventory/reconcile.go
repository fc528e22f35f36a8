package inventory

import (
	"resdb-tools/internal/record"
)

// RenderMode selects the transition used when a level is regenerated.
type RenderMode int

const (
	SlideNone RenderMode = iota
	SlideLeft
	SlideRight
)

// Browser is the part of the inventory browser that reconciliation drives.
type Browser interface {
	CurrentDirectory() *Directory
	RegenerateLevel(dir *Directory, mode RenderMode)
}

// Outcome reports what Reconcile did, for metrics and logs.
type Outcome int

const (
	// Skipped: the record kind never appears as a sub-listing.
	Skipped Outcome = iota
	// NoListing: the browser is not showing a directory.
	NoListing
	// Miss: no subdirectory in the current listing has the record's identity.
	Miss
	Reconciled
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case NoListing:
		return "no_listing"
	case Miss:
		return "miss"
	case Reconciled:
		return "reconciled"
	default:
		return "unknown"
	}
}

// Reconcile patches the browser's current listing after updated was committed,
// then regenerates that level without a slide transition.
//
// Must run on the world-update thread.
func Reconcile(b Browser, updated record.Record) Outcome {
	switch updated.Kind {
	case record.KindDirectory, record.KindLink:
	default:
		return Skipped
	}
	if b == nil {
		return NoListing
	}
	dir := b.CurrentDirectory()
	if dir == nil {
		return NoListing
	}

	sub := dir.FindSubdirectory(updated.Identity())
	if sub == nil {
		return Miss
	}
	movedFrom := sub.ListPath()
	sub.SetName(updated.Name)
	sub.ReplaceEntry(updated)
	if updated.Kind == record.KindDirectory && sub.ListPath() != movedFrom {
		// Cached children still carry the old path; reload them on next open.
		sub.Reset()
	}

	// A directory must never also show up as a leaf record.
	dir.RemoveRecords(updated.IsSameRecord)

	b.RegenerateLevel(dir, SlideNone)
	return Reconciled
}
