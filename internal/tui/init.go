package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the TUI
func Run(opts Options) error {
	m, err := New(opts)
	if err != nil {
		return err
	}

	// Mouse is disabled by default in bubbletea
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
