package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive inventory browser and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()

	p, _ := newProgram(ctx, opts, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// newProgram wires the browser model to a program whose update loop is the
// world-update thread.
func newProgram(ctx context.Context, opts Options, popts ...tea.ProgramOption) (*tea.Program, *model) {
	if ctx == nil {
		ctx = context.Background()
	}
	sched := &programScheduler{}
	m := newModel(ctx, opts, sched)
	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithContext(ctx)}, popts...)...)
	sched.send = p.Send
	return p, m
}
