package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"modelbench/internal"
)

// Config holds terminal UI options
type Config struct {
	AltScreen bool
}

// Run drives actions from the terminal until the user quits. Surface calls
// on page reach the screen only while the program runs.
func Run(config Config, page *Page, actions Actions, logger *internal.Logger) error {
	if page == nil || actions == nil {
		return fmt.Errorf("page and actions are required")
	}

	var opts []tea.ProgramOption
	if config.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(NewModel(actions, logger), opts...)

	page.Attach(program)
	defer page.Attach(nil)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}
