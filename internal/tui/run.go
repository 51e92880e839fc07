package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the browser full-screen and blocks until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, model Model, bridge *Bridge, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(model, opts...)
	bridge.Attach(p)
	defer bridge.Attach(nil)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("browser: %w", err)
	}
	return nil
}
