package tui

import (
	"errors"

	"resdb-tools/internal/editor"
	"resdb-tools/internal/locale"
	"resdb-tools/internal/record"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type popupFocus int

const (
	focusName popupFocus = iota
	focusAsset
	focusButtons
)

// popup is the record editor's visual root: a modal overlay sized as a
// fraction of the screen, or a fixed-size panel.
type popup struct {
	title string

	widthFrac, heightFrac float64
	cellsW, cellsH        int

	ctl    *editor.Controller
	view   editor.View
	seeded bool
	closed bool

	name   textinput.Model
	asset  textinput.Model
	focus  popupFocus
	button int
	status string
}

func newPopup(title string) *popup {
	name := textinput.New()
	name.Prompt = ""
	name.CharLimit = 200
	name.Width = 40

	asset := textinput.New()
	asset.Prompt = ""
	asset.Placeholder = "resdb:///… or https://…"
	asset.CharLimit = 2048
	asset.Width = 40

	return &popup{title: title, name: name, asset: asset}
}

func (p *popup) Render(v editor.View) {
	p.view = v
	if v.Kind == editor.ViewEditor && !p.seeded {
		p.seeded = true
		p.name.SetValue(v.Name)
		p.asset.SetValue(v.NewAsset)
		p.setFocus(focusName)
	}
}

func (p *popup) Live() bool { return !p.closed }

func (p *popup) Close() { p.closed = true }

func (p *popup) Attach(ctl *editor.Controller) { p.ctl = ctl }

func (p *popup) setFocus(f popupFocus) {
	if f == focusAsset && !p.view.ObjectFields {
		f = focusButtons
	}
	p.focus = f
	p.name.Blur()
	p.asset.Blur()
	switch f {
	case focusName:
		p.name.Focus()
	case focusAsset:
		p.asset.Focus()
	}
}

// buttonLabels is the popup's bottom row: one entry per copy action, then
// Save and Cancel.
func (p *popup) buttonLabels() []string {
	out := make([]string, 0, len(p.view.CopyActions)+2)
	for _, a := range p.view.CopyActions {
		out = append(out, locale.CopyURL(a))
	}
	return append(out, locale.T(locale.Save), locale.T(locale.Cancel))
}

func (p *popup) update(m *model, msg tea.KeyMsg) tea.Cmd {
	if p.ctl == nil {
		if key.Matches(msg, m.keys.Cancel) {
			p.Close()
		}
		return nil
	}
	if p.view.Kind != editor.ViewEditor {
		// Loading and Error have no transitions of their own; esc dismisses.
		if key.Matches(msg, m.keys.Cancel) {
			p.ctl.Close()
		}
		return nil
	}

	p.status = ""
	switch {
	case key.Matches(msg, m.keys.Save):
		p.ctl.Save(m.ctx)
		return nil

	case key.Matches(msg, m.keys.Cancel):
		p.ctl.Cancel()
		return nil

	case key.Matches(msg, m.keys.Drop):
		if !p.ctl.DropThumbnail(heldSource) {
			p.status = "Not holding a texture"
		}
		return nil

	case key.Matches(msg, m.keys.Focus):
		next := p.focus + 1
		if msg.String() == "shift+tab" {
			next = p.focus - 1
			if next == focusAsset && !p.view.ObjectFields {
				next = focusName
			}
		}
		if next < focusName {
			next = focusButtons
		}
		if next > focusButtons {
			next = focusName
		}
		p.setFocus(next)
		return nil
	}

	if p.focus == focusButtons {
		labels := p.buttonLabels()
		switch {
		case key.Matches(msg, m.keys.Left):
			if p.button > 0 {
				p.button--
			}
		case key.Matches(msg, m.keys.Right):
			if p.button < len(labels)-1 {
				p.button++
			}
		case key.Matches(msg, m.keys.Press):
			p.press(m)
		}
		return nil
	}

	if key.Matches(msg, m.keys.Press) {
		p.setFocus(p.focus + 1)
		return nil
	}

	var cmd tea.Cmd
	switch p.focus {
	case focusName:
		p.name, cmd = p.name.Update(msg)
		p.ctl.SetName(p.name.Value())
	case focusAsset:
		p.asset, cmd = p.asset.Update(msg)
		p.ctl.SetNewAsset(p.asset.Value())
	}
	return cmd
}

func (p *popup) press(m *model) {
	nCopy := len(p.view.CopyActions)
	switch {
	case p.button < nCopy:
		p.copy(p.view.CopyActions[p.button])
	case p.button == nCopy:
		p.ctl.Save(m.ctx)
	default:
		p.ctl.Cancel()
	}
}

func (p *popup) copy(a record.CopyAction) {
	s, err := p.ctl.CopyURL(a)
	switch {
	case errors.Is(err, editor.ErrNoClipboard):
		p.status = s
	case err != nil:
		p.status = "Copy failed: " + err.Error()
	default:
		p.status = "Copied " + s
	}
}

func (p *popup) size(screenW, screenH int) (int, int) {
	w, h := p.cellsW, p.cellsH
	if p.widthFrac > 0 {
		w = int(p.widthFrac * float64(screenW))
		h = int(p.heightFrac * float64(screenH))
	}
	if screenW > 0 && w > screenW {
		w = screenW
	}
	if screenH > 0 && h > screenH {
		h = screenH
	}
	if w < modalMinWidth {
		w = modalMinWidth
	}
	return w, h
}

func (p *popup) draw(screenW, screenH int, keys keyMap) string {
	w, h := p.size(screenW, screenH)
	bodyW := modalBodyWidth(w)

	var body string
	switch p.view.Kind {
	case editor.ViewLoading:
		body = styleMuted().Render(p.view.Message)
	case editor.ViewError:
		body = joinLines(
			styleError().Render(p.view.Message),
			"",
			styleMuted().Render(helpLine(keys.Cancel)),
		)
	default:
		body = p.editorBody(bodyW, keys)
	}

	// Header, padding and border take six rows.
	if h > 6 {
		body = lipgloss.NewStyle().Height(h - 6).Render(body)
	}
	return renderModalBox(w, p.title, body)
}

func (p *popup) editorBody(width int, keys keyMap) string {
	label := lipgloss.NewStyle().Bold(true)
	field := lipgloss.NewStyle().Background(colorInputBg).Width(width)

	p.name.Width = width - 1
	lines := []string{
		label.Render(locale.T(locale.RecordEditorName)),
		field.Render(p.name.View()),
	}

	if p.view.ObjectFields {
		thumb := p.view.Thumbnail
		if thumb == "" {
			thumb = styleMuted().Render("(none)")
		}
		lines = append(lines,
			"",
			label.Render(locale.T(locale.RecordEditorThumbnail)),
			field.Render(thumb),
			styleMuted().Render(helpLine(keys.Drop)),
		)

		p.asset.Width = width - 1
		if p.asset.Value() != "" {
			cue := colorInvalid
			if p.view.NewAssetValid {
				cue = colorValid
			}
			p.asset.TextStyle = lipgloss.NewStyle().Foreground(cue)
		} else {
			p.asset.TextStyle = lipgloss.NewStyle()
		}
		lines = append(lines,
			"",
			label.Render(locale.T(locale.RecordEditorAsset)),
			field.Render(p.asset.View()),
		)
	}

	active := -1
	if p.focus == focusButtons {
		active = p.button
	}
	lines = append(lines, "", lipgloss.NewStyle().Width(width).Render(renderButtons(p.buttonLabels(), active)))
	if p.status != "" {
		lines = append(lines, "", p.status)
	}
	lines = append(lines, "", styleMuted().Width(width).Render(helpLine(keys.Focus, keys.Press, keys.Save, keys.Cancel)))
	return joinLines(lines...)
}
