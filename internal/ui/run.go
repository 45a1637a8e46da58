package ui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// Run drives the progress view on out until events is closed. Keyboard
// input is not read.
func Run(out io.Writer, title string, files []string, phases int, events <-chan Event) error {
	p := tea.NewProgram(NewProgressModel(title, files, phases, events), tea.WithOutput(out), tea.WithInput(nil))
	_, err := p.Run()
	return err
}
