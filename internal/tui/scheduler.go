package tui

import tea "github.com/charmbracelet/bubbletea"

// runSyncMsg carries work that must run on the update loop, which is the
// TUI's world-update thread.
type runSyncMsg struct{ fn func() }

// programScheduler posts work onto the Bubble Tea update loop. send is set
// once the program exists.
//
// Program.Send blocks until the loop receives the message, and the loop may be
// the caller, so the send happens on its own goroutine.
type programScheduler struct {
	send func(tea.Msg)
}

func (s *programScheduler) RunSynchronously(fn func()) {
	if s.send == nil || fn == nil {
		return
	}
	go s.send(runSyncMsg{fn: fn})
}
