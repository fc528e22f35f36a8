package tui

import (
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/muesli/termenv"
)

// systemClipboard writes to the OS clipboard, falling back to an OSC52 escape
// (works over SSH in most modern terminals) when no clipboard tool exists.
type systemClipboard struct {
	out *termenv.Output
}

func newSystemClipboard() *systemClipboard {
	return &systemClipboard{out: termenv.NewOutput(os.Stdout)}
}

func (c *systemClipboard) SetText(s string) error {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if !clipboard.Unsupported {
		if err := clipboard.WriteAll(s); err == nil {
			return nil
		}
	}
	c.out.Copy(s)
	return nil
}
