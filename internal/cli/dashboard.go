package cli

import (
	"fmt"
	"time"

	"timecard/internal"
	"timecard/internal/tracker"

	tea "github.com/charmbracelet/bubbletea"
)

func runDashboard(tr *tracker.Tracker) error {
	m, err := internal.NewModel(tr)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			select {
			case <-ticker.C:
				p.Send(internal.MsgTick{})
			case <-done:
				return
			}
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running dashboard: %w", err)
	}
	return nil
}
