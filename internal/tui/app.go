package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive client and blocks until the user quits.
func Run(deps Deps) error {
	applyColorProfilePreference()
	m := newAppModel(deps)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
