package editor

import (
	"resdb-tools/internal/record"
)

// State is the controller's lifecycle phase.
type State int

const (
	StateLoading State = iota
	StateError
	StateEditing
	StateSaving
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateEditing:
		return "editing"
	case StateSaving:
		return "saving"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ViewKind selects which of the three popup layouts a View describes.
type ViewKind int

const (
	ViewLoading ViewKind = iota
	ViewError
	ViewEditor
)

// View is a snapshot of what the popup should show. Renderers must treat it as
// read-only; edits flow back through the Controller.
type View struct {
	Kind  ViewKind
	Title string
	// Message is the localized error text for ViewError.
	Message string

	Record record.Record
	Name   string
	// Thumbnail is the pending thumbnail if one was dropped, else the record's.
	Thumbnail string
	NewAsset  string
	// ObjectFields is true when the thumbnail and new-asset fields are shown.
	ObjectFields  bool
	NewAssetValid bool
	CopyActions   []record.CopyAction
}
