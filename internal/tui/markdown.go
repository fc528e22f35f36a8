package tui

import (
	"strings"

	"resdb-tools/internal/format"
	"resdb-tools/internal/record"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// cardRenderer turns record cards into styled preview text. It is owned by one
// model and only touched from the update loop, so it needs no locking.
type cardRenderer struct {
	profile record.Profile
	style   string

	// One glamour renderer per wrap width.
	byWidth map[int]*glamour.TermRenderer

	// The preview redraws on every keystroke; most redraws show the same card.
	lastWidth int
	lastMD    string
	lastOut   string
}

// newCardRenderer fixes the glamour style up front. WithAutoStyle can block on
// a terminal background query; the theme setup has already answered it.
func newCardRenderer(p record.Profile) *cardRenderer {
	style := "light"
	if lipgloss.HasDarkBackground() {
		style = "dark"
	}
	return &cardRenderer{profile: p, style: style, byWidth: map[int]*glamour.TermRenderer{}}
}

func (c *cardRenderer) card(rec record.Record, width int) string {
	md := strings.TrimSpace(format.RecordCard(rec, c.profile))
	if md == "" {
		return ""
	}
	width = max(width, 10)
	if width == c.lastWidth && md == c.lastMD {
		return c.lastOut
	}

	r := c.byWidth[width]
	if r == nil {
		var err error
		r, err = glamour.NewTermRenderer(glamour.WithStandardStyle(c.style), glamour.WithWordWrap(width))
		if err != nil {
			return md
		}
		c.byWidth[width] = r
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	c.lastWidth, c.lastMD, c.lastOut = width, md, strings.TrimRight(out, "\n")
	return c.lastOut
}
