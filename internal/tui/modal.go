package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	modalMinWidth = 36
	// Approximate terminal cell size, used to map pixel panel sizes to cells.
	cellWidthPx  = 8
	cellHeightPx = 16
)

func modalBodyWidth(boxWidth int) int {
	w := boxWidth - 4
	if w < 10 {
		w = 10
	}
	return w
}

// renderModalBox draws a titled box of the given outer width.
//
// No borders inside: some terminals show background artifacts when nesting
// bordered components inside a box with a background color.
func renderModalBox(width int, title string, body string) string {
	if width < modalMinWidth {
		width = modalMinWidth
	}
	bodyW := modalBodyWidth(width)

	header := lipgloss.NewStyle().
		Width(width-2).
		Padding(0, 1).
		Bold(true).
		Foreground(colorModalHeaderFg).
		Background(colorModalHeaderBg).
		Render(title)

	content := lipgloss.NewStyle().
		Width(bodyW).
		Foreground(colorModalSurfaceFg).
		Background(colorModalSurfaceBg).
		Render(body)

	inner := lipgloss.NewStyle().
		Padding(1, 1).
		Background(colorModalSurfaceBg).
		Render(content)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, inner))
}

func renderButtons(labels []string, active int) string {
	base := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	sel := base.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)

	sep := lipgloss.NewStyle().Background(colorControlBg).Render(" ")
	parts := make([]string, 0, len(labels)*2)
	for i, l := range labels {
		if i > 0 {
			parts = append(parts, sep)
		}
		if i == active {
			parts = append(parts, sel.Render(l))
		} else {
			parts = append(parts, base.Render(l))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// placeCentered puts box in the middle of a width x height screen.
func placeCentered(width, height int, box string) string {
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "))
}

func joinLines(lines ...string) string {
	return strings.Join(lines, "\n")
}
