// Package trigger attaches the "Show record" action to inventory selections
// and launches record edit popups from it.
package trigger

import (
	"context"

	"resdb-tools/internal/editor"
	"resdb-tools/internal/inventory"
	"resdb-tools/internal/locale"
	"resdb-tools/internal/logging"
	"resdb-tools/internal/metrics"
	"resdb-tools/internal/record"

	"go.uber.org/zap"
)

// ShowRecordButtonTag marks the action button so a later selection can find
// and replace it.
const ShowRecordButtonTag = "ResdbTools.ShowRecordButton"

const showRecordIcon = "✎"

// Overlay and panel geometry for the popup.
var (
	OverlaySize = Size{Width: 0.4, Height: 0.6}
	PanelWidth  = 500
	PanelHeight = 400
)

// Size is a fraction of the host's viewport.
type Size struct {
	Width, Height float64
}

// Button is one entry in a selection row.
type Button struct {
	Tag   string
	Label string
	Icon  string
	// VisibleTo restricts who sees the button. Display only; not a permission check.
	VisibleTo string
	OnPress   func()
}

type ButtonRow interface {
	RemoveTagged(tag string)
	AddButton(b Button)
}

// Item is a selected inventory entry.
type Item interface {
	// LeafRecord is the entry's own record, or nil when it is a directory.
	LeafRecord() *record.Record
	// Directory is the listing the entry opens, or nil for leaves.
	Directory() *inventory.Directory
	Buttons() ButtonRow
}

// Popup is the visual root an edit session renders into.
type Popup interface {
	editor.Renderer
	editor.Container
}

// Attacher is implemented by popups that route input to their controller.
type Attacher interface {
	Attach(ctl *editor.Controller)
}

type OverlayOpener interface {
	OpenOverlay(title string, size Size) Popup
}

// Host is the inventory browser the surface is attached to.
type Host interface {
	inventory.Browser
	// CanInteract is false when user is looking at someone else's inventory.
	CanInteract(user string) bool
	LocalUser() string
	// Live is false once the browser has been torn down.
	Live() bool
	// Overlay returns nil when no modal overlay is available.
	Overlay() OverlayOpener
	OpenPanel(title string, width, height int) Popup
}

// Surface wires selection events to record edit popups.
type Surface struct {
	Host Host
	// Enabled is consulted on every selection; nil means always on.
	Enabled func() bool

	Gateway   editor.Gateway
	Scheduler editor.Scheduler
	Clipboard editor.Clipboard
	HeldItems editor.HeldItems
	Profile   record.Profile
	Logger    *zap.Logger

	// Context bounds the fetch and persist calls of launched popups.
	Context context.Context
}

func (s *Surface) log() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return logging.L()
}

func (s *Surface) enabled() bool {
	return s.Enabled == nil || s.Enabled()
}

// ResolveRecord picks the record an item stands for: its own leaf record,
// else the defining record of the directory it opens.
func ResolveRecord(item Item) (record.Record, bool) {
	if item == nil {
		return record.Record{}, false
	}
	if rec := item.LeafRecord(); rec != nil {
		return rec.Clone(), true
	}
	if dir := item.Directory(); dir != nil {
		if rec := dir.EntryRecord(); rec != nil {
			return *rec, true
		}
	}
	return record.Record{}, false
}

// OnItemSelected puts a single "Show record" button on the selected item's
// button row. It reports whether a button was added.
func (s *Surface) OnItemSelected(item Item, user string) bool {
	if !s.enabled() || s.Host == nil || !s.Host.CanInteract(user) {
		return false
	}
	rec, ok := ResolveRecord(item)
	if !ok {
		return false
	}
	row := item.Buttons()
	if row == nil {
		return false
	}
	row.RemoveTagged(ShowRecordButtonTag)
	row.AddButton(Button{
		Tag:       ShowRecordButtonTag,
		Label:     locale.T(locale.InventoryShowRecord),
		Icon:      showRecordIcon,
		VisibleTo: user,
		OnPress: func() {
			s.ShowRecord(rec, s.Host)
		},
	})
	return true
}

// ShowRecord opens the edit popup for rec. browser (may be nil) is the
// listing reconciled after a successful save.
func (s *Surface) ShowRecord(rec record.Record, browser inventory.Browser) *editor.Controller {
	title := locale.EditorTitle(rec.Kind)

	var popup Popup
	if s.Host != nil {
		if ov := s.Host.Overlay(); ov != nil {
			popup = ov.OpenOverlay(title, OverlaySize)
		} else {
			popup = s.Host.OpenPanel(title, PanelWidth, PanelHeight)
		}
	}

	deps := editor.Deps{
		Gateway:   s.Gateway,
		Scheduler: s.Scheduler,
		Clipboard: s.Clipboard,
		HeldItems: s.HeldItems,
		Profile:   s.Profile,
		Logger:    s.log(),
	}
	if popup != nil {
		deps.Renderer = popup
		deps.Container = popup
	}

	ctl := editor.New(deps, rec.Identity(), title)
	if a, ok := popup.(Attacher); ok {
		a.Attach(ctl)
	}
	// Commit listeners already run on the world-update thread.
	ctl.OnCommit(func(updated record.Record) {
		s.reconcile(browser, updated)
	})

	ctx := s.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctl.Start(ctx)
	return ctl
}

func (s *Surface) reconcile(browser inventory.Browser, updated record.Record) {
	if browser == nil || !browserLive(browser) {
		metrics.Reconcile(inventory.NoListing.String())
		return
	}
	outcome := inventory.Reconcile(browser, updated)
	metrics.Reconcile(outcome.String())
	if outcome == inventory.Miss {
		s.log().Debug("reconcile miss", zap.String("record", updated.Identity().String()))
	}
}

func browserLive(b inventory.Browser) bool {
	if l, ok := b.(interface{ Live() bool }); ok {
		return l.Live()
	}
	return true
}
