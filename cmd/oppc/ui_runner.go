package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"opp/internal/driver"
	"opp/internal/ui"
)

type checkOutcome struct {
	results []*driver.FileResult
	err     error
}

// runCheckWithUI analyses files while a progress view runs on stderr.
func runCheckWithUI(ctx context.Context, title string, files []string, opts driver.Options) ([]*driver.FileResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		opts.Progress = events
		res, err := driver.AnalyzeFiles(ctx, files, opts)
		outcomeCh <- checkOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// UI мог завершиться раньше: дочитываем события, чтобы driver не встал
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
