package editor

import (
	"context"

	"resdb-tools/internal/record"

	"go.uber.org/zap"
)

// Gateway is the record store as seen by an edit session.
type Gateway interface {
	Fetch(ctx context.Context, id record.Identity) (record.Record, error)
	// Persist replaces the stored copy of rec. saved=false with a nil error
	// means the store declined the write.
	Persist(ctx context.Context, rec record.Record) (saved bool, err error)
	// RawAssetURL translates an asset locator into a plain https URL.
	RawAssetURL(assetURI string) (string, error)
}

// Failure is implemented by gateway errors that carry a user-facing message.
type Failure interface {
	error
	FailureMessage() string
}

// Scheduler hops work onto the single world-update thread.
type Scheduler interface {
	RunSynchronously(fn func())
}

// Renderer draws the popup contents for the current state. It is only called
// on the world-update thread.
type Renderer interface {
	Render(v View)
}

// Container is the popup's visual root.
type Container interface {
	// Live is false once the popup or its owning view has been destroyed.
	Live() bool
	// Close releases the popup (closing a hosting overlay if there is one).
	Close()
}

// Clipboard receives the strings produced by the copy actions.
type Clipboard interface {
	SetText(s string) error
}

// HeldItems resolves the texture reference attached to whatever the user is
// holding through source.
type HeldItems interface {
	HeldTexture(source string) (uri string, ok bool)
}

// Deps are the collaborators a Controller needs. Gateway and Scheduler are
// required; the rest may be nil.
type Deps struct {
	Gateway   Gateway
	Scheduler Scheduler
	Renderer  Renderer
	Container Container
	Clipboard Clipboard
	HeldItems HeldItems
	Profile   record.Profile
	Logger    *zap.Logger
}
