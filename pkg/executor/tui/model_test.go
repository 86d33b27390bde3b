package tui

import (
	"errors"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrhq/vanish/pkg/experiment"
	"github.com/entrhq/vanish/pkg/logging"
	"github.com/entrhq/vanish/pkg/variant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, name string) (*model, *string) {
	t.Helper()

	logger := logging.NewWriterLogger("test", io.Discard)
	reg, err := variant.Builtin(logger)
	require.NoError(t, err)
	v, err := reg.Get(name)
	require.NoError(t, err)

	copied := new(string)
	m, err := newModel(v, settings{
		toastDuration: time.Second,
		logger:        logger,
		copy: func(s string) error {
			*copied = s
			return nil
		},
	})
	require.NoError(t, err)
	t.Cleanup(m.close)
	return m, copied
}

func press(m *model, keys string) tea.Cmd {
	var cmd tea.Cmd
	for _, r := range keys {
		_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return cmd
}

func TestNewModelRequiresVariant(t *testing.T) {
	_, err := newModel(nil, settings{})
	require.Error(t, err)
}

func TestModelStartsAwaitingAnchor(t *testing.T) {
	m, _ := newTestModel(t, "transparency-probe")

	assert.NotEmpty(t, m.sessionID)
	assert.Equal(t, "Tap a surface to place the objects", m.status)
	assert.Equal(t, experiment.PhaseAwaitingAnchor, m.session().Phase())
	assert.Contains(t, m.View(), "Nothing placed")
}

func TestPlaceShowsStageAndSchedulesToast(t *testing.T) {
	m, _ := newTestModel(t, "transparency-probe")

	cmd := press(m, "p")
	require.NotNil(t, cmd, "stage prompt should schedule its expiry")

	assert.Equal(t, experiment.PhaseAnchorPlaced, m.session().Phase())
	assert.Equal(t, 2, m.scene.Len())
	assert.Equal(t, "Verify that you can see Cube 2 but not Cube 1", m.toast.message)
	assert.True(t, m.controls[experiment.ControlYes])
	assert.False(t, m.controls[experiment.ControlNext])

	view := m.View()
	assert.Contains(t, view, "Cube 1")
	assert.Contains(t, view, "stage 1/3 opaque")

	_, _ = m.Update(toastExpiredMsg{seq: m.toast.seq - 1})
	assert.NotEmpty(t, m.toast.message, "a stale expiry leaves the newer toast")
	_, _ = m.Update(toastExpiredMsg{seq: m.toast.seq})
	assert.Empty(t, m.toast.message)
}

func TestTapGoesThroughTransparentWall(t *testing.T) {
	m, _ := newTestModel(t, "transparency-probe")
	press(m, "p")

	// cube-1 sits behind the wall, so aiming at it hits the wall first.
	press(m, "1")
	assert.Equal(t, "cube-2", m.lastHit)
	assert.Equal(t, 1, m.session().Tally().Count("cube-2"))

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 1, m.session().Stage())

	press(m, "1")
	assert.Equal(t, "cube-1", m.lastHit)
	assert.Equal(t, 1, m.session().Tally().Count("cube-1"))
}

func TestTapTogglesLabel(t *testing.T) {
	m, _ := newTestModel(t, "base-case")
	press(m, "p")
	assert.NotContains(t, m.View(), "[Cube 1]")

	// Aiming at the transparent cube lands on Cube 1 in the same space.
	press(m, "1")
	assert.Equal(t, "cube-1", m.lastHit)
	obj, ok := m.scene.Object("cube-1")
	require.True(t, ok)
	assert.True(t, obj.LabelVisible)
	assert.Contains(t, m.View(), "[Cube 1]")

	press(m, "2")
	obj, _ = m.scene.Object("cube-1")
	assert.False(t, obj.LabelVisible)
	assert.Equal(t, 2, m.session().Tally().Count("cube-1"))
	assert.Equal(t, 0, m.session().Tally().Count("cube-t"))
}

func TestTapUnknownObjectIsIgnored(t *testing.T) {
	m, _ := newTestModel(t, "transparency-probe")
	press(m, "p")

	assert.Nil(t, press(m, "9"))
	assert.Contains(t, m.activity[len(m.activity)-1], "no object 9")
}

func TestFailNextAnchor(t *testing.T) {
	m, _ := newTestModel(t, "transparency-probe")

	press(m, "f")
	assert.True(t, m.anchorer.Armed())
	assert.Contains(t, m.View(), "next anchor fails")

	press(m, "p")
	assert.Equal(t, experiment.PhaseAwaitingAnchor, m.session().Phase())
	assert.Equal(t, "Could not create anchor: tracking lost", m.status)

	press(m, "p")
	assert.Equal(t, experiment.PhaseAnchorPlaced, m.session().Phase())
}

func TestYesResetsAndNoRecords(t *testing.T) {
	m, _ := newTestModel(t, "transparency-probe")
	press(m, "p")

	press(m, "n")
	assert.Len(t, m.session().Responses(), 1)
	assert.Equal(t, experiment.PhaseAnchorPlaced, m.session().Phase())

	press(m, "y")
	assert.Len(t, m.session().Responses(), 2)
	assert.Equal(t, experiment.PhaseAwaitingAnchor, m.session().Phase())
	assert.Zero(t, m.scene.Len())
	assert.False(t, m.controls[experiment.ControlYes])
}

func TestCopyTally(t *testing.T) {
	m, copied := newTestModel(t, "transparency-probe")
	press(m, "p")
	press(m, "1")

	cmd := press(m, "c")
	require.NotNil(t, cmd)
	msg := cmd()
	_, _ = m.Update(msg)

	assert.Equal(t, "Click counts\nCube 1: 0\nCube 2: 1", *copied)
	assert.Equal(t, "tally copied to clipboard", m.activity[len(m.activity)-1])

	_, _ = m.Update(copiedMsg{err: errors.New("no display")})
	assert.Equal(t, "copy failed: no display", m.activity[len(m.activity)-1])
}

func TestHelpToggleAndQuit(t *testing.T) {
	m, _ := newTestModel(t, "same-space")

	before := m.help.ShowAll
	press(m, "?")
	assert.NotEqual(t, before, m.help.ShowAll)

	cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestWindowSize(t *testing.T) {
	m, _ := newTestModel(t, "same-space")

	_, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Equal(t, 100, m.width)
	assert.Equal(t, 100, m.help.Width)
}
