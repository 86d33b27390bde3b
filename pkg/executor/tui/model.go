package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/entrhq/vanish/pkg/experiment"
	"github.com/entrhq/vanish/pkg/host"
	"github.com/entrhq/vanish/pkg/logging"
	"github.com/entrhq/vanish/pkg/scene"
	"github.com/entrhq/vanish/pkg/types"
)

// maxActivity is how many recent events the activity panel keeps.
const maxActivity = 6

type settings struct {
	toastDuration time.Duration
	showHelp      bool
	logger        *logging.Logger
	sessionOpts   []experiment.Option
	copy          func(string) error
}

// model represents the state of the simulator.
type model struct {
	dispatcher *host.Dispatcher
	scene      *scene.Scene
	anchorer   *scene.Anchorer
	logger     *logging.Logger

	// Viewer is where taps are cast from; placements land at placement.
	viewer    experiment.Vec3
	placement experiment.Pose

	keys keyMap
	help help.Model
	copy func(string) error

	// Overlay state, fed by display commands
	sessionID string
	status    string
	statusErr bool
	controls  map[experiment.Control]bool
	tally     []experiment.TallyEntry
	toast     toastNotification
	toastFor  time.Duration
	toastArm  bool

	lastHit  string
	activity []string

	width  int
	height int
}

// toastNotification is a temporary prompt shown over the view
type toastNotification struct {
	message   string
	showUntil time.Time
	seq       int
}

// toastExpiredMsg clears the toast with the same sequence number
type toastExpiredMsg struct{ seq int }

// copiedMsg reports the result of copying the tally
type copiedMsg struct{ err error }

func newModel(variant *experiment.Variant, s settings) (*model, error) {
	if variant == nil {
		return nil, errors.New("variant is required")
	}
	h := help.New()
	h.ShowAll = s.showHelp

	m := &model{
		scene:     scene.New(),
		anchorer:  scene.NewAnchorer(),
		logger:    s.logger,
		placement: experiment.Pose{Position: experiment.Vec3{Y: -0.5, Z: -1}, Orientation: experiment.IdentityQuat()},
		keys:      defaultKeyMap(),
		help:      h,
		copy:      s.copy,
		controls:  map[experiment.Control]bool{},
		toastFor:  s.toastDuration,
	}

	d, err := host.NewDispatcher(variant, m.apply,
		host.WithRenderer(m.scene),
		host.WithAnchorer(m.anchorer),
		host.WithLogger(s.logger),
		host.WithSessionOptions(s.sessionOpts...),
	)
	if err != nil {
		return nil, err
	}
	m.dispatcher = d
	d.Start()
	return m, nil
}

func (m *model) close() {
	m.dispatcher.Close()
}

func (m *model) session() *experiment.Session {
	return m.dispatcher.Session()
}

// apply is the dispatcher's emitter. Scene commands never arrive here since
// the scene is the renderer.
func (m *model) apply(cmd *types.Command) {
	switch cmd.Type {
	case types.CommandTypeSessionCreated:
		m.sessionID = cmd.SessionID
	case types.CommandTypeShowStatus:
		m.status = cmd.Message
		m.statusErr = cmd.IsError
		m.record(cmd.Message)
	case types.CommandTypeShowToast:
		m.toast = toastNotification{
			message:   cmd.Message,
			showUntil: time.Now().Add(m.toastFor),
			seq:       m.toast.seq + 1,
		}
		m.toastArm = true
	case types.CommandTypeShowTally:
		m.tally = cmd.Tally
	case types.CommandTypeSetControl:
		m.controls[cmd.Control] = cmd.Shown()
	}
}

func (m *model) record(event string) {
	m.activity = append(m.activity, event)
	if len(m.activity) > maxActivity {
		m.activity = m.activity[len(m.activity)-maxActivity:]
	}
}

// tapObject taps the n-th placed object (zero based) along the ray from the
// viewer through its centre. Anything nearer on that ray is hit first.
func (m *model) tapObject(n int) *types.Input {
	objs := m.scene.Objects()
	if n < 0 || n >= len(objs) {
		m.record(fmt.Sprintf("no object %d", n+1))
		return nil
	}
	target := objs[n]
	candidates := m.scene.Raycast(scene.Toward(m.viewer, target.Position))
	m.record(fmt.Sprintf("tap toward %s: %s", target.Label, strings.Join(candidates, ", ")))
	return types.NewTapInput(candidates...)
}
