package tui

import (
	"context"
	"strings"

	"resdb-tools/internal/editor"
	"resdb-tools/internal/inventory"
	"resdb-tools/internal/logging"
	"resdb-tools/internal/perm"
	"resdb-tools/internal/record"
	"resdb-tools/internal/trigger"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"
)

// Gateway is the record store as the TUI needs it.
type Gateway interface {
	editor.Gateway
	List(ctx context.Context, ownerID, path string) ([]record.Record, error)
}

type Options struct {
	// Owner is the inventory being browsed.
	Owner string
	// User is the acting local user.
	User    string
	Gateway Gateway
	Profile record.Profile
	// Enabled gates the "Show record" button; nil means always on.
	Enabled   func() bool
	Clipboard editor.Clipboard
	Logger    *zap.Logger
}

// heldSource names the local user's grab as a texture source.
const heldSource = "grab"

// overlayMinWidth is the narrowest screen that still gets a modal overlay;
// anything smaller falls back to a fixed-size panel.
const overlayMinWidth = 90

type listLoadedMsg struct {
	dir  *inventory.Directory
	recs []record.Record
	err  error
	mode inventory.RenderMode
}

type model struct {
	ctx     context.Context
	opts    Options
	log     *zap.Logger
	keys    keyMap
	loader  inventory.Loader
	surface *trigger.Surface

	root    *inventory.Directory
	current *inventory.Directory
	rows    []*row
	cursor  int
	loading bool

	popup   *popup
	held    string
	preview bool
	cards   *cardRenderer

	flash    string
	flashErr bool

	width  int
	height int
	closed bool
}

func newModel(ctx context.Context, opts Options, sched editor.Scheduler) *model {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.User == "" {
		opts.User = opts.Owner
	}
	if opts.Owner == "" {
		opts.Owner = opts.User
	}
	log := opts.Logger
	if log == nil {
		log = logging.L()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = newSystemClipboard()
	}
	m := &model{
		ctx:    ctx,
		opts:   opts,
		log:    log.Named("tui"),
		keys:   defaultKeyMap(),
		loader: inventory.Loader{Lister: opts.Gateway, Fetcher: opts.Gateway},
		root:   inventory.NewRoot(opts.Owner),
		cards:  newCardRenderer(opts.Profile),
	}
	m.current = m.root
	m.surface = &trigger.Surface{
		Host:      m,
		Enabled:   opts.Enabled,
		Gateway:   opts.Gateway,
		Scheduler: sched,
		Clipboard: opts.Clipboard,
		HeldItems: m,
		Profile:   opts.Profile,
		Logger:    log,
		Context:   ctx,
	}
	return m
}

func (m *model) Init() tea.Cmd {
	m.loading = true
	return m.loadCmd(m.root, inventory.SlideNone)
}

// --- trigger.Host ---

func (m *model) CurrentDirectory() *inventory.Directory { return m.current }

// RegenerateLevel rebuilds the rows for dir and makes it the current level.
// SlideNone keeps the cursor where it was.
func (m *model) RegenerateLevel(dir *inventory.Directory, mode inventory.RenderMode) {
	if dir == nil {
		return
	}
	m.current = dir
	m.rows = m.rows[:0]
	for _, sub := range dir.Subdirectories() {
		m.rows = append(m.rows, &row{dir: sub})
	}
	for _, rec := range dir.Records() {
		r := rec
		m.rows = append(m.rows, &row{leaf: &r})
	}
	if mode != inventory.SlideNone {
		m.cursor = 0
	}
	m.clampCursor()
	m.selectCurrent()
}

func (m *model) CanInteract(user string) bool { return perm.CanEditInventory(user, m.opts.Owner) }

func (m *model) LocalUser() string { return m.opts.User }

func (m *model) Live() bool { return !m.closed }

func (m *model) Overlay() trigger.OverlayOpener {
	if m.width < overlayMinWidth {
		return nil
	}
	return m
}

func (m *model) OpenOverlay(title string, size trigger.Size) trigger.Popup {
	p := newPopup(title)
	p.widthFrac, p.heightFrac = size.Width, size.Height
	m.popup = p
	return p
}

func (m *model) OpenPanel(title string, width, height int) trigger.Popup {
	p := newPopup(title)
	p.cellsW, p.cellsH = width/cellWidthPx, height/cellHeightPx
	m.popup = p
	return p
}

// HeldTexture implements editor.HeldItems for the local user's grab.
func (m *model) HeldTexture(source string) (string, bool) {
	if source != heldSource || m.held == "" {
		return "", false
	}
	return m.held, true
}

// --- rows ---

type row struct {
	leaf    *record.Record
	dir     *inventory.Directory
	buttons buttonRow
}

func (r *row) LeafRecord() *record.Record       { return r.leaf }
func (r *row) Directory() *inventory.Directory { return r.dir }
func (r *row) Buttons() trigger.ButtonRow      { return &r.buttons }

func (r *row) name() string {
	if r.dir != nil {
		return r.dir.Name()
	}
	if r.leaf != nil {
		return r.leaf.Name
	}
	return ""
}

func (r *row) kind() record.Kind {
	if r.leaf != nil {
		return r.leaf.Kind
	}
	if r.dir != nil {
		if e := r.dir.EntryRecord(); e != nil {
			return e.Kind
		}
	}
	return record.KindDirectory
}

type buttonRow struct {
	buttons []trigger.Button
}

func (b *buttonRow) RemoveTagged(tag string) {
	out := b.buttons[:0]
	for _, btn := range b.buttons {
		if btn.Tag != tag {
			out = append(out, btn)
		}
	}
	b.buttons = out
}

func (b *buttonRow) AddButton(btn trigger.Button) {
	b.buttons = append(b.buttons, btn)
}

func (b *buttonRow) visibleTo(user string) []trigger.Button {
	var out []trigger.Button
	for _, btn := range b.buttons {
		if btn.VisibleTo == "" || btn.VisibleTo == user {
			out = append(out, btn)
		}
	}
	return out
}

func (m *model) selected() *row {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor]
}

func (m *model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// selectCurrent fires the selection trigger for the row under the cursor.
func (m *model) selectCurrent() {
	if r := m.selected(); r != nil {
		m.surface.OnItemSelected(r, m.opts.User)
	}
}

func (m *model) pressShowRecord() bool {
	r := m.selected()
	if r == nil {
		return false
	}
	for _, btn := range r.buttons.visibleTo(m.opts.User) {
		if btn.Tag == trigger.ShowRecordButtonTag && btn.OnPress != nil {
			btn.OnPress()
			return true
		}
	}
	return false
}

// --- loading ---

func (m *model) loadCmd(dir *inventory.Directory, mode inventory.RenderMode) tea.Cmd {
	req := dir.Request()
	ctx, loader := m.ctx, m.loader
	return func() tea.Msg {
		recs, err := loader.List(ctx, req)
		return listLoadedMsg{dir: dir, recs: recs, err: err, mode: mode}
	}
}

func (m *model) open(dir *inventory.Directory) tea.Cmd {
	if dir.Loaded() {
		m.RegenerateLevel(dir, inventory.SlideLeft)
		return nil
	}
	m.loading = true
	return m.loadCmd(dir, inventory.SlideLeft)
}

func (m *model) showFlash(msg string, isErr bool) {
	m.flash = msg
	m.flashErr = isErr
}

// --- update ---

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runSyncMsg:
		msg.fn()
		m.dropClosedPopup()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case listLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.log.Warn("listing failed", zap.String("path", msg.dir.ListPath()), zap.Error(msg.err))
			m.showFlash("Could not load "+msg.dir.Name()+": "+msg.err.Error(), true)
			return m, nil
		}
		msg.dir.Populate(msg.recs)
		m.RegenerateLevel(msg.dir, msg.mode)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		if m.popup != nil {
			cmd := m.popup.update(m, msg)
			m.dropClosedPopup()
			return m, cmd
		}
		return m.updateBrowser(msg)
	}
	return m, nil
}

func (m *model) dropClosedPopup() {
	if m.popup != nil && !m.popup.Live() {
		m.popup = nil
	}
}

func (m *model) quit() (tea.Model, tea.Cmd) {
	m.closed = true
	return m, tea.Quit
}

func (m *model) updateBrowser(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.flash = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.selectCurrent()
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			m.selectCurrent()
		}

	case key.Matches(msg, m.keys.Show):
		if !m.pressShowRecord() {
			m.showFlash("No record action here", true)
		}

	case key.Matches(msg, m.keys.Open):
		r := m.selected()
		if r == nil {
			return m, nil
		}
		if r.dir != nil {
			return m, m.open(r.dir)
		}
		if msg.String() == "enter" {
			m.pressShowRecord()
		}

	case key.Matches(msg, m.keys.Back):
		if parent := m.current.Parent(); parent != nil {
			m.RegenerateLevel(parent, inventory.SlideRight)
		}

	case key.Matches(msg, m.keys.Refresh):
		m.current.Invalidate()
		m.loading = true
		return m, m.loadCmd(m.current, inventory.SlideNone)

	case key.Matches(msg, m.keys.Grab):
		m.grab()

	case key.Matches(msg, m.keys.Release):
		if m.held != "" {
			m.held = ""
			m.showFlash("Released", false)
		}

	case key.Matches(msg, m.keys.Preview):
		m.preview = !m.preview
	}
	return m, nil
}

func (m *model) grab() {
	r := m.selected()
	if r == nil || r.leaf == nil || r.leaf.Kind != record.KindObject || strings.TrimSpace(r.leaf.ThumbnailURI) == "" {
		m.showFlash("Nothing to grab", true)
		return
	}
	m.held = r.leaf.ThumbnailURI
	m.showFlash("Holding "+r.leaf.Name, false)
}

// --- view ---

func (m *model) View() string {
	if m.popup != nil {
		return placeCentered(m.width, m.height, m.popup.draw(m.width, m.height, m.keys))
	}

	width := m.width
	if width <= 0 {
		width = 80
	}
	listW := width
	var side string
	if m.preview && width >= 80 {
		listW = width / 2
		side = m.previewPane(width - listW - 2)
	}

	lines := []string{m.header(listW), ""}
	lines = append(lines, m.listLines(listW)...)
	body := joinLines(lines...)
	if side != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, lipgloss.NewStyle().Width(listW).Render(body), "  ", side)
	}
	return joinLines(body, "", m.footer(width))
}

func (m *model) header(width int) string {
	crumb := strings.Join(m.current.Breadcrumb(), " › ")
	if m.opts.Owner != m.opts.User {
		crumb += "  (" + m.opts.Owner + ", read-only)"
	}
	if m.held != "" {
		crumb += "  ✋"
	}
	return ansi.Truncate(styleChrome().Bold(true).Render(crumb), width, "…")
}

func (m *model) listLines(width int) []string {
	if len(m.rows) == 0 {
		if m.loading {
			return []string{styleMuted().Render("Loading…")}
		}
		return []string{styleMuted().Render("(empty)")}
	}
	var out []string
	nDirs := len(m.current.Subdirectories())
	for i, r := range m.rows {
		if i == 0 && nDirs > 0 {
			out = append(out, styleMuted().Render("Folders"))
		}
		if i == nDirs {
			if nDirs > 0 {
				out = append(out, "")
			}
			out = append(out, styleMuted().Render("Records"))
		}
		out = append(out, m.rowLine(i, r, width))
	}
	return out
}

func rowIcon(k record.Kind) string {
	switch k {
	case record.KindDirectory:
		return "▸"
	case record.KindLink:
		return "↗"
	case record.KindWorld:
		return "◎"
	default:
		return "·"
	}
}

func (m *model) rowLine(i int, r *row, width int) string {
	text := rowIcon(r.kind()) + " " + r.name()
	if r.leaf != nil {
		text += "  " + styleMuted().Render(string(r.leaf.Kind))
	}
	if i != m.cursor {
		return ansi.Truncate("  "+text, width, "…")
	}
	line := styleSelected().Render("> " + text)
	for _, btn := range r.buttons.visibleTo(m.opts.User) {
		line += " " + lipgloss.NewStyle().Foreground(colorAccent).Render("["+btn.Icon+" "+btn.Label+"]")
	}
	return ansi.Truncate(line, width, "…")
}

func (m *model) previewPane(width int) string {
	r := m.selected()
	if r == nil {
		return ""
	}
	rec, ok := trigger.ResolveRecord(r)
	if !ok {
		return styleMuted().Render("No record")
	}
	return m.cards.card(rec, width)
}

func (m *model) footer(width int) string {
	if m.flash != "" {
		if m.flashErr {
			return ansi.Truncate(styleError().Render(m.flash), width, "…")
		}
		return ansi.Truncate(m.flash, width, "…")
	}
	k := m.keys
	return ansi.Truncate(styleMuted().Render(helpLine(k.Up, k.Down, k.Open, k.Back, k.Show, k.Grab, k.Preview, k.Refresh, k.Quit)), width, "…")
}
