package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the interactive interface until the user quits or ctx ends.
func Run(ctx context.Context, actions Actions, filename string, notifyFor time.Duration) error {
	p := tea.NewProgram(
		New(ctx, actions, filename, notifyFor),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
