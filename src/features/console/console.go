// Package console provides the interactive full-screen session, the
// successor of the original two-level text menu: configure paths and
// template, preview a destination, run the pipeline and answer breaker
// decisions without leaving the terminal.
package console

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"cratekeeper/src/features/config"
	"cratekeeper/src/features/organizing"
	"cratekeeper/src/features/session"
)

// Options carries everything the console needs. BuildService receives
// the console's decider so breaker pauses surface in the UI.
type Options struct {
	Config       *config.Manager
	ConfigPath   string
	Log          *session.Log
	BuildService func(decider organizing.Decider) *organizing.Service
}

// Run starts the console and blocks until the operator leaves.
func Run(opts Options) error {
	decider := &uiDecider{replies: make(chan organizing.Decision, 1)}
	service := opts.BuildService(decider)

	model := newModel(opts.Config, opts.ConfigPath, opts.Log, service, decider)
	program := tea.NewProgram(model, tea.WithAltScreen())
	decider.program = program
	service.OnProgress(func(done, total int, name string) {
		program.Send(progressMsg{done: done, total: total, name: name})
	})

	_, err := program.Run()
	return err
}

// uiDecider bridges breaker consults from worker goroutines into the
// UI loop and waits for the operator's keypress.
type uiDecider struct {
	program *tea.Program
	replies chan organizing.Decision
}

func (d *uiDecider) Decide(ctx context.Context, failures int, errs []session.ErrorRecord) (organizing.Decision, error) {
	d.program.Send(pausedMsg{failures: failures, errs: errs})
	select {
	case decision := <-d.replies:
		return decision, nil
	case <-ctx.Done():
		return organizing.DecisionAbort, ctx.Err()
	}
}
