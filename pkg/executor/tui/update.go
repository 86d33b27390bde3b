package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrhq/vanish/pkg/experiment"
	"github.com/entrhq/vanish/pkg/types"
)

// Init sets the window title; the session has already started.
func (m *model) Init() tea.Cmd {
	return tea.SetWindowTitle("vanish: " + m.session().Variant().Name)
}

// Update handles all state updates for the simulator.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case toastExpiredMsg:
		if msg.seq == m.toast.seq {
			m.toast.message = ""
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.logger.Warnf("copy tally: %v", msg.err)
			m.record("copy failed: " + msg.err.Error())
		} else {
			m.record("tally copied to clipboard")
		}
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	var in *types.Input

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil

	case key.Matches(msg, m.keys.FailNext):
		armed := !m.anchorer.Armed()
		m.anchorer.FailNext(armed)
		m.record(fmt.Sprintf("fail next anchor: %t", armed))
		return nil

	case key.Matches(msg, m.keys.Copy):
		return m.copyTally()

	case key.Matches(msg, m.keys.Place):
		in = types.NewSelectInput(m.placement)

	case key.Matches(msg, m.keys.Tap):
		in = m.tapObject(int(msg.String()[0] - '1'))

	case key.Matches(msg, m.keys.Next):
		in = types.NewButtonInput(types.InputTypeNext)

	case key.Matches(msg, m.keys.Yes):
		in = types.NewButtonInput(types.InputTypeYes)

	case key.Matches(msg, m.keys.No):
		in = types.NewButtonInput(types.InputTypeNo)
	}

	if in == nil {
		return nil
	}
	return m.send(in)
}

// send hands an input to the dispatcher and schedules the toast expiry if
// the input produced one.
func (m *model) send(in *types.Input) tea.Cmd {
	before := m.session().Tally().Snapshot()
	if err := m.dispatcher.Handle(context.Background(), in); err != nil {
		m.logger.Errorf("simulator input %s: %v", in.Type, err)
		m.status = err.Error()
		m.statusErr = true
	}
	if in.IsTap() {
		m.lastHit = experiment.Increased(before, m.session().Tally().Snapshot())
		if m.lastHit == "" {
			m.record("tap registered nothing")
		}
	}

	if !m.toastArm {
		return nil
	}
	m.toastArm = false
	seq := m.toast.seq
	return tea.Tick(m.toastFor, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

func (m *model) copyTally() tea.Cmd {
	text := m.session().Tally().String()
	copyFn := m.copy
	return func() tea.Msg {
		if copyFn == nil {
			return copiedMsg{err: fmt.Errorf("no clipboard available")}
		}
		return copiedMsg{err: copyFn(text)}
	}
}
