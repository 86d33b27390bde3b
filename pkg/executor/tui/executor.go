// Package tui is a terminal simulator for experiment variants. It plays both
// host and renderer: the in-process scene stands in for the headset, taps are
// cast from a fixed viewer, and the participant's overlay is drawn with
// lipgloss.
//
// The package is split into:
// - executor.go: program lifecycle
// - model.go: model state and command handling
// - update.go: Bubble Tea Update and key handling
// - view.go: rendering
// - keys.go: key bindings and help
// - styles.go: colors and styles
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrhq/vanish/pkg/config"
	"github.com/entrhq/vanish/pkg/experiment"
	"github.com/entrhq/vanish/pkg/logging"
)

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the file logger used by the simulator and its dispatcher.
func WithLogger(l *logging.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// WithToastDuration overrides the configured toast duration.
func WithToastDuration(d time.Duration) Option {
	return func(e *Executor) { e.toastDuration = d }
}

// WithSessionOptions passes options through to the experiment session.
func WithSessionOptions(opts ...experiment.Option) Option {
	return func(e *Executor) { e.sessionOpts = append(e.sessionOpts, opts...) }
}

// Executor runs one variant in the terminal until the user quits.
type Executor struct {
	variant       *experiment.Variant
	logger        *logging.Logger
	toastDuration time.Duration
	showHelp      bool
	sessionOpts   []experiment.Option
}

// NewExecutor creates a simulator for variant. Toast duration and help
// visibility come from the ui config section unless overridden.
func NewExecutor(variant *experiment.Variant, opts ...Option) *Executor {
	ui := config.GetUI()
	e := &Executor{
		variant:       variant,
		toastDuration: ui.Toast(),
		showHelp:      ui.ShowHelp,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.MustLogger("tui")
	}
	return e
}

// Run starts the TUI and blocks until the user exits or ctx is done.
func (e *Executor) Run(ctx context.Context) error {
	m, err := newModel(e.variant, settings{
		toastDuration: e.toastDuration,
		showHelp:      e.showHelp,
		logger:        e.logger,
		sessionOpts:   e.sessionOpts,
		copy:          clipboard.WriteAll,
	})
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer m.close()

	e.logger.Infof("simulator started with variant %s", e.variant.Name)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to run TUI program: %w", err)
	}
	return nil
}
