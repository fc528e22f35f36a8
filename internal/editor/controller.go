package editor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"resdb-tools/internal/locale"
	"resdb-tools/internal/logging"
	"resdb-tools/internal/metrics"
	"resdb-tools/internal/record"

	"go.uber.org/zap"
)

const (
	unknownFetchError = "Unknown"
	saveFailedMessage = "Failed"
)

var (
	ErrNotEditing         = errors.New("record editor is not editing")
	ErrActionNotAvailable = errors.New("copy action not available for this record")
	ErrNoClipboard        = errors.New("no clipboard available")
)

// Controller drives one record edit popup: fetch, edit, save or cancel.
//
// Every exported method, and every Renderer/Container call it makes, runs on
// the world-update thread. Gateway calls run on their own goroutines and hop
// back through Scheduler.RunSynchronously before touching any state.
type Controller struct {
	deps  Deps
	log   *zap.Logger
	id    record.Identity
	title string

	state   State
	rec     *record.Record
	draft   Draft
	message string

	onCommit []func(record.Record)
}

// New creates a controller in the Loading state. title is the popup title
// (usually locale.EditorTitle of the selected record's kind).
func New(deps Deps, id record.Identity, title string) *Controller {
	log := deps.Logger
	if log == nil {
		log = logging.L()
	}
	return &Controller{
		deps:  deps,
		log:   log.With(zap.String("record", id.String())),
		id:    id,
		title: title,
		state: StateLoading,
	}
}

func (c *Controller) State() State { return c.state }

func (c *Controller) Identity() record.Identity { return c.id }

// OnCommit registers fn to receive the updated record after a successful save.
func (c *Controller) OnCommit(fn func(record.Record)) {
	c.onCommit = append(c.onCommit, fn)
}

// Start renders the loading view and fetches the record.
func (c *Controller) Start(ctx context.Context) {
	if c.state != StateLoading {
		return
	}
	c.render()
	id := c.id
	go func() {
		rec, err := c.deps.Gateway.Fetch(ctx, id)
		metrics.RecordFetch(err)
		c.deps.Scheduler.RunSynchronously(func() { c.fetched(rec, err) })
	}()
}

func (c *Controller) fetched(rec record.Record, err error) {
	if !c.live() {
		c.discard("fetch")
		return
	}
	if err != nil {
		c.log.Debug("record fetch failed", zap.Error(err))
		c.fail(fetchMessage(err))
		return
	}
	r := rec.Clone()
	c.rec = &r
	c.draft = Draft{Name: r.Name}
	c.state = StateEditing
	c.render()
}

func fetchMessage(err error) string {
	var f Failure
	if errors.As(err, &f) {
		if msg := strings.TrimSpace(f.FailureMessage()); msg != "" {
			return msg
		}
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return unknownFetchError
}

func (c *Controller) fail(msg string) {
	c.state = StateError
	c.message = msg
	c.render()
}

// SetName updates the draft name.
func (c *Controller) SetName(name string) {
	if c.state != StateEditing {
		return
	}
	c.draft.Name = name
}

// SetNewAsset updates the new-asset text and reports whether it is a valid
// absolute URI (the field's colour cue).
func (c *Controller) SetNewAsset(text string) bool {
	if c.state != StateEditing || !c.objectFields() {
		return false
	}
	c.draft.NewAsset = text
	_, ok := record.ParseAbsoluteURI(text)
	c.render()
	return ok
}

// DropThumbnail sets the thumbnail to the texture held through source.
func (c *Controller) DropThumbnail(source string) bool {
	if c.state != StateEditing || !c.objectFields() || c.deps.HeldItems == nil {
		return false
	}
	uri, ok := c.deps.HeldItems.HeldTexture(source)
	if !ok || strings.TrimSpace(uri) == "" {
		return false
	}
	c.draft.Thumbnail = uri
	c.render()
	return true
}

// CopyURL computes the string for action and writes it to the clipboard.
func (c *Controller) CopyURL(action record.CopyAction) (string, error) {
	if c.state != StateEditing || c.rec == nil {
		return "", ErrNotEditing
	}
	if !slices.Contains(record.AvailableCopyActions(*c.rec), action) {
		return "", fmt.Errorf("%w: %s", ErrActionNotAvailable, action)
	}
	s, err := ComputeCopyURL(*c.rec, action, c.deps.Profile, c.deps.Gateway)
	if err != nil {
		return "", err
	}
	if c.deps.Clipboard == nil {
		return s, ErrNoClipboard
	}
	if err := c.deps.Clipboard.SetText(s); err != nil {
		return s, fmt.Errorf("clipboard: %w", err)
	}
	return s, nil
}

// AssetTranslator converts asset locators into raw web URLs.
type AssetTranslator interface {
	RawAssetURL(assetURI string) (string, error)
}

// ComputeCopyURL returns the string a "copy URL" action copies for rec.
func ComputeCopyURL(rec record.Record, action record.CopyAction, p record.Profile, t AssetTranslator) (string, error) {
	switch action {
	case record.CopyRecord:
		return rec.URL(p).String(), nil
	case record.CopyAsset:
		return rec.AssetURI, nil
	case record.CopyWeb:
		return rec.WebURL(p).String(), nil
	case record.CopyWebAsset:
		if t == nil {
			return "", errors.New("no asset translator configured")
		}
		return t.RawAssetURL(rec.AssetURI)
	default:
		return "", fmt.Errorf("unknown copy action %d", int(action))
	}
}

// Save applies the draft and persists the record. It reports false when the
// session was not in Editing (e.g. a second press while already saving).
func (c *Controller) Save(ctx context.Context) bool {
	if c.state != StateEditing || c.rec == nil {
		return false
	}
	// Leave Editing before the persist call so a double press cannot issue two writes.
	c.state = StateSaving
	ApplyDraft(c.rec, c.draft)
	snapshot := c.rec.Clone()
	c.render()

	go func() {
		saved, err := c.deps.Gateway.Persist(ctx, snapshot)
		if err == nil && !saved {
			err = errors.New("record not saved")
		}
		metrics.RecordPersist(err)
		c.deps.Scheduler.RunSynchronously(func() { c.persisted(snapshot, err) })
	}()
	return true
}

func (c *Controller) persisted(rec record.Record, err error) {
	if err != nil {
		c.log.Warn("record save failed", zap.Error(err))
		if !c.live() {
			c.discard("persist")
			return
		}
		// The in-memory record keeps the edits; no retry is offered.
		c.fail(saveFailedMessage)
		return
	}

	// The write landed, so listeners hear about it even if the popup is gone.
	for _, fn := range c.onCommit {
		fn(rec.Clone())
	}
	if !c.live() {
		c.discard("persist")
		return
	}
	c.Close()
}

// Cancel discards the draft and closes the popup without a network call.
func (c *Controller) Cancel() {
	if c.state != StateEditing {
		return
	}
	c.Close()
}

// Close releases the popup. It is safe in any state; pending results are
// dropped when they arrive.
func (c *Controller) Close() {
	if c.state == StateClosed {
		return
	}
	c.state = StateClosed
	if c.deps.Container != nil && c.deps.Container.Live() {
		c.deps.Container.Close()
	}
}

func (c *Controller) live() bool {
	if c.state == StateClosed {
		return false
	}
	return c.deps.Container == nil || c.deps.Container.Live()
}

func (c *Controller) discard(op string) {
	metrics.StaleResult()
	c.log.Debug("discarding result for closed popup", zap.String("op", op))
}

func (c *Controller) objectFields() bool {
	return c.rec != nil && c.rec.Kind == record.KindObject
}

// View returns what the popup should currently show.
func (c *Controller) View() View {
	v := View{Title: c.title}
	switch c.state {
	case StateLoading, StateSaving, StateClosed:
		v.Kind = ViewLoading
		v.Message = locale.T(locale.RecordEditorLoading)
	case StateError:
		v.Kind = ViewError
		v.Message = locale.ErrorMessage(c.message)
	case StateEditing:
		v.Kind = ViewEditor
	}
	if c.rec == nil {
		return v
	}
	v.Record = c.rec.Clone()
	if v.Kind != ViewEditor {
		return v
	}
	v.Name = c.draft.Name
	v.CopyActions = record.AvailableCopyActions(*c.rec)
	if c.objectFields() {
		v.ObjectFields = true
		v.Thumbnail = c.rec.ThumbnailURI
		if c.draft.Thumbnail != "" {
			v.Thumbnail = c.draft.Thumbnail
		}
		v.NewAsset = c.draft.NewAsset
		_, v.NewAssetValid = record.ParseAbsoluteURI(c.draft.NewAsset)
	}
	return v
}

func (c *Controller) render() {
	if c.deps.Renderer == nil || !c.live() {
		return
	}
	c.deps.Renderer.Render(c.View())
}
