package editor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"resdb-tools/internal/record"
)

// queueScheduler stands in for the world-update thread: queued functions only
// run when the test calls step. Work must not schedule more work.
type queueScheduler struct {
	ch      chan func()
	running atomic.Bool
	nested  atomic.Int32
}

func newQueueScheduler() *queueScheduler { return &queueScheduler{ch: make(chan func(), 16)} }

func (s *queueScheduler) RunSynchronously(fn func()) {
	if s.running.Load() {
		s.nested.Add(1)
	}
	s.ch <- fn
}

func (s *queueScheduler) step(t *testing.T) {
	t.Helper()
	select {
	case fn := <-s.ch:
		s.running.Store(true)
		fn()
		s.running.Store(false)
		if n := s.nested.Load(); n > 0 {
			t.Fatalf("%d function(s) scheduled from inside scheduled work", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for scheduled work")
	}
}

func (s *queueScheduler) idle(t *testing.T) {
	t.Helper()
	select {
	case <-s.ch:
		t.Fatalf("unexpected scheduled work")
	case <-time.After(50 * time.Millisecond):
	}
}

type fakeGateway struct {
	mu        sync.Mutex
	rec       record.Record
	fetchErr  error
	saveErr   error
	declined  bool
	release   chan struct{}
	persisted []record.Record
}

func (g *fakeGateway) Fetch(ctx context.Context, id record.Identity) (record.Record, error) {
	if g.release != nil {
		<-g.release
	}
	if g.fetchErr != nil {
		return record.Record{}, g.fetchErr
	}
	return g.rec, nil
}

func (g *fakeGateway) Persist(ctx context.Context, rec record.Record) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.persisted = append(g.persisted, rec)
	if g.saveErr != nil {
		return false, g.saveErr
	}
	return !g.declined, nil
}

func (g *fakeGateway) RawAssetURL(assetURI string) (string, error) {
	return "https://assets.example/" + strings.TrimPrefix(assetURI, "resdb:///"), nil
}

func (g *fakeGateway) persistCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.persisted)
}

type recordingRenderer struct{ views []View }

func (r *recordingRenderer) Render(v View) { r.views = append(r.views, v) }

func (r *recordingRenderer) last() View { return r.views[len(r.views)-1] }

type fakeContainer struct {
	live   bool
	closed int
}

func (c *fakeContainer) Live() bool { return c.live }

func (c *fakeContainer) Close() {
	c.closed++
	c.live = false
}

type fakeClipboard struct{ text string }

func (c *fakeClipboard) SetText(s string) error {
	c.text = s
	return nil
}

type fakeHeld map[string]string

func (h fakeHeld) HeldTexture(source string) (string, bool) {
	uri, ok := h[source]
	return uri, ok
}

type failure struct{ msg string }

func (f failure) Error() string          { return "fetch: " + f.msg }
func (f failure) FailureMessage() string { return f.msg }

type harness struct {
	c     *Controller
	gw    *fakeGateway
	sched *queueScheduler
	r     *recordingRenderer
	box   *fakeContainer
	clip  *fakeClipboard
}

func newHarness(rec record.Record) *harness {
	h := &harness{
		gw:    &fakeGateway{rec: rec},
		sched: newQueueScheduler(),
		r:     &recordingRenderer{},
		box:   &fakeContainer{live: true},
		clip:  &fakeClipboard{},
	}
	h.c = New(Deps{
		Gateway:   h.gw,
		Scheduler: h.sched,
		Renderer:  h.r,
		Container: h.box,
		Clipboard: h.clip,
		HeldItems: fakeHeld{"hand": "resdb:///thumb.webp"},
		Profile:   record.DefaultProfile(),
	}, rec.Identity(), "Edit")
	return h
}

func (h *harness) open(t *testing.T) {
	t.Helper()
	h.c.Start(context.Background())
	h.sched.step(t)
	if h.c.State() != StateEditing {
		t.Fatalf("expected editing, got %s", h.c.State())
	}
}

func dirRecord(name string) record.Record {
	return record.Record{OwnerID: "U-a", RecordID: "R-dir", Kind: record.KindDirectory, Name: name, Path: "Inventory"}
}

func objectRecord() record.Record {
	return record.Record{OwnerID: "U-a", RecordID: "R-obj", Kind: record.KindObject, Name: "Hat", Path: "Inventory", AssetURI: "resdb:///old.brson", ThumbnailURI: "resdb:///old.webp"}
}

func TestController_FetchSuccessRendersEditor(t *testing.T) {
	h := newHarness(dirRecord("Games"))
	h.c.Start(context.Background())

	if h.r.last().Kind != ViewLoading {
		t.Fatalf("expected loading view first, got %v", h.r.last().Kind)
	}
	h.sched.step(t)

	v := h.r.last()
	if v.Kind != ViewEditor || v.Name != "Games" {
		t.Fatalf("unexpected editor view %+v", v)
	}
	if v.ObjectFields {
		t.Fatalf("directory must not show object fields")
	}
	if len(v.CopyActions) != 1 || v.CopyActions[0] != record.CopyRecord {
		t.Fatalf("unexpected copy actions %v", v.CopyActions)
	}
}

func TestController_FetchFailureShowsMessage(t *testing.T) {
	h := newHarness(dirRecord("Games"))
	h.gw.fetchErr = failure{msg: "Unauthorized"}
	h.c.Start(context.Background())
	h.sched.step(t)

	if h.c.State() != StateError {
		t.Fatalf("expected error state, got %s", h.c.State())
	}
	if v := h.r.last(); v.Kind != ViewError || !strings.Contains(v.Message, "Unauthorized") {
		t.Fatalf("expected error view mentioning Unauthorized, got %+v", v)
	}

	// Error is a dead end until the popup is dismissed.
	h.c.Cancel()
	if h.c.State() != StateError {
		t.Fatalf("cancel must not leave the error state")
	}
	h.c.Close()
	if h.c.State() != StateClosed || h.box.closed != 1 {
		t.Fatalf("expected dismissal to close the popup")
	}
}

func TestController_FetchFailureWithoutMessage(t *testing.T) {
	h := newHarness(dirRecord("Games"))
	h.gw.fetchErr = failure{msg: ""}
	h.c.Start(context.Background())
	h.sched.step(t)
	if !strings.Contains(h.r.last().Message, "fetch:") {
		t.Fatalf("expected fallback to error text, got %q", h.r.last().Message)
	}

	h2 := newHarness(dirRecord("Games"))
	h2.gw.fetchErr = errors.New("")
	h2.c.Start(context.Background())
	h2.sched.step(t)
	if !strings.Contains(h2.r.last().Message, unknownFetchError) {
		t.Fatalf("expected generic placeholder, got %q", h2.r.last().Message)
	}
}

func TestController_NonObjectNeverShowsObjectFields(t *testing.T) {
	for _, k := range []record.Kind{record.KindDirectory, record.KindLink, record.KindWorld} {
		rec := dirRecord("x")
		rec.Kind = k
		h := newHarness(rec)
		h.open(t)
		if h.c.SetNewAsset("https://example.com") {
			t.Fatalf("%s: new asset accepted on non-object", k)
		}
		if h.c.DropThumbnail("hand") {
			t.Fatalf("%s: thumbnail accepted on non-object", k)
		}
		for _, v := range h.r.views {
			if v.ObjectFields {
				t.Fatalf("%s: object fields rendered", k)
			}
		}
	}
}

func TestController_SaveDirectoryReplacesSeparators(t *testing.T) {
	h := newHarness(dirRecord("Games"))
	h.open(t)

	var committed []record.Record
	h.c.OnCommit(func(r record.Record) { committed = append(committed, r) })

	h.c.SetName("Games/Old")
	if !h.c.Save(context.Background()) {
		t.Fatalf("expected save to start")
	}
	if h.c.State() != StateSaving || h.r.last().Kind != ViewLoading {
		t.Fatalf("expected saving with loading view, got %s", h.c.State())
	}
	h.sched.step(t)

	if got := h.gw.persisted[0].Name; got != "Games Old" {
		t.Fatalf("persisted name = %q, want %q", got, "Games Old")
	}
	if len(committed) != 1 || committed[0].Name != "Games Old" {
		t.Fatalf("unexpected commits %+v", committed)
	}
	if h.c.State() != StateClosed || h.box.closed != 1 {
		t.Fatalf("expected popup closed after commit")
	}
}

func TestController_SaveKeepsSeparatorsForNonDirectories(t *testing.T) {
	for _, k := range []record.Kind{record.KindLink, record.KindObject} {
		rec := objectRecord()
		rec.Kind = k
		h := newHarness(rec)
		h.open(t)
		h.c.SetName("My Stuff/v2")
		h.c.Save(context.Background())
		h.sched.step(t)
		if got := h.gw.persisted[0].Name; got != "My Stuff/v2" {
			t.Fatalf("%s: persisted name = %q", k, got)
		}
	}
}

func TestController_DoubleSaveIssuesOnePersist(t *testing.T) {
	h := newHarness(dirRecord("Games"))
	h.open(t)

	if !h.c.Save(context.Background()) {
		t.Fatalf("first save should start")
	}
	if h.c.Save(context.Background()) {
		t.Fatalf("second save must be ignored while saving")
	}
	h.sched.step(t)
	h.sched.idle(t)
	if n := h.gw.persistCount(); n != 1 {
		t.Fatalf("expected 1 persist call, got %d", n)
	}
}

func TestController_InvalidNewAssetIgnored(t *testing.T) {
	h := newHarness(objectRecord())
	h.open(t)

	if h.c.SetNewAsset("not a url") {
		t.Fatalf("expected invalid cue for %q", "not a url")
	}
	if h.r.last().NewAssetValid {
		t.Fatalf("view should show invalid cue")
	}
	h.c.Save(context.Background())
	h.sched.step(t)

	if got := h.gw.persisted[0].AssetURI; got != "resdb:///old.brson" {
		t.Fatalf("asset changed to %q", got)
	}
	if h.c.State() != StateClosed {
		t.Fatalf("expected clean close, got %s", h.c.State())
	}
}

func TestController_ValidNewAssetAndThumbnailApplied(t *testing.T) {
	h := newHarness(objectRecord())
	h.open(t)

	if !h.c.SetNewAsset("resdb:///new.brson") {
		t.Fatalf("expected valid cue")
	}
	if !h.c.DropThumbnail("hand") {
		t.Fatalf("expected thumbnail drop to succeed")
	}
	if h.c.DropThumbnail("other-hand") {
		t.Fatalf("empty hand should not change the thumbnail")
	}
	if got := h.r.last().Thumbnail; got != "resdb:///thumb.webp" {
		t.Fatalf("view thumbnail = %q", got)
	}
	h.c.Save(context.Background())
	h.sched.step(t)

	got := h.gw.persisted[0]
	if got.AssetURI != "resdb:///new.brson" || got.ThumbnailURI != "resdb:///thumb.webp" {
		t.Fatalf("unexpected persisted record %+v", got)
	}
}

func TestController_SaveFailureShowsGenericError(t *testing.T) {
	h := newHarness(dirRecord("Games"))
	h.gw.saveErr = errors.New("boom")
	h.open(t)

	committed := 0
	h.c.OnCommit(func(record.Record) { committed++ })
	h.c.SetName("Renamed")
	h.c.Save(context.Background())
	h.sched.step(t)

	if h.c.State() != StateError {
		t.Fatalf("expected error state, got %s", h.c.State())
	}
	if v := h.r.last(); v.Kind != ViewError || !strings.Contains(v.Message, saveFailedMessage) {
		t.Fatalf("unexpected view %+v", v)
	}
	if committed != 0 {
		t.Fatalf("failed save must not commit")
	}
	if v := h.r.last(); v.Record.Name != "Renamed" {
		t.Fatalf("edits should not be rolled back, got %q", v.Record.Name)
	}
}

func TestController_DeclinedSaveIsFailure(t *testing.T) {
	h := newHarness(dirRecord("Games"))
	h.gw.declined = true
	h.open(t)
	h.c.Save(context.Background())
	h.sched.step(t)
	if h.c.State() != StateError {
		t.Fatalf("expected error state for declined save, got %s", h.c.State())
	}
}

func TestController_CancelClosesWithoutNetwork(t *testing.T) {
	h := newHarness(dirRecord("Games"))
	h.open(t)
	h.c.SetName("ignored")
	h.c.Cancel()

	if h.c.State() != StateClosed || h.box.closed != 1 {
		t.Fatalf("expected closed popup")
	}
	h.sched.idle(t)
	if h.gw.persistCount() != 0 {
		t.Fatalf("cancel must not persist")
	}
}

func TestController_CancelWhileFetchPendingDiscardsResult(t *testing.T) {
	h := newHarness(dirRecord("Games"))
	h.gw.release = make(chan struct{})
	h.c.Start(context.Background())
	rendered := len(h.r.views)

	// The popup is dismissed (e.g. its view was destroyed) before the fetch lands.
	h.c.Close()
	close(h.gw.release)
	h.sched.step(t)

	if len(h.r.views) != rendered {
		t.Fatalf("expected no render after close, got %d new views", len(h.r.views)-rendered)
	}
	if h.c.State() != StateClosed || h.box.closed != 1 {
		t.Fatalf("expected single close, state=%s closed=%d", h.c.State(), h.box.closed)
	}
}

func TestController_DestroyedContainerDiscardsFetch(t *testing.T) {
	h := newHarness(dirRecord("Games"))
	h.gw.release = make(chan struct{})
	h.c.Start(context.Background())
	h.box.live = false
	close(h.gw.release)
	h.sched.step(t)
	if h.c.State() != StateLoading {
		t.Fatalf("stale fetch must not advance state, got %s", h.c.State())
	}
	if len(h.r.views) != 1 {
		t.Fatalf("stale fetch must not render")
	}
}

func TestController_CopyURL(t *testing.T) {
	h := newHarness(objectRecord())
	h.open(t)

	got, err := h.c.CopyURL(record.CopyRecord)
	if err != nil || got != "resrec:///U-a/R-obj" || h.clip.text != got {
		t.Fatalf("copy record: %q %v (clipboard %q)", got, err, h.clip.text)
	}
	got, err = h.c.CopyURL(record.CopyWebAsset)
	if err != nil || got != "https://assets.example/old.brson" {
		t.Fatalf("copy web asset: %q %v", got, err)
	}
	if _, err := h.c.CopyURL(record.CopyWeb); !errors.Is(err, ErrActionNotAvailable) {
		t.Fatalf("web copy should be unavailable for a non-orb object: %v", err)
	}
}

func TestApplyDraft_Rules(t *testing.T) {
	rec := dirRecord("Games")
	ApplyDraft(&rec, Draft{Name: "My Stuff/v2"})
	if rec.Name != "My Stuff v2" {
		t.Fatalf("got %q", rec.Name)
	}

	link := record.Record{Kind: record.KindLink, AssetURI: "resrec:///U-a/R-1"}
	ApplyDraft(&link, Draft{Name: "My Stuff/v2", NewAsset: "  "})
	if link.Name != "My Stuff/v2" || link.AssetURI != "resrec:///U-a/R-1" {
		t.Fatalf("unexpected link %+v", link)
	}
}
