// Package host connects an experiment session to whatever drives it: a
// WebSocket client, the terminal simulator or a scripted scenario. The
// Dispatcher is the single loop that owns the session.
package host

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/entrhq/vanish/pkg/experiment"
	"github.com/entrhq/vanish/pkg/logging"
	"github.com/entrhq/vanish/pkg/scene"
	"github.com/entrhq/vanish/pkg/types"
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithAnchorer completes placements in-process instead of asking the host.
func WithAnchorer(a experiment.Anchorer) Option {
	return func(d *Dispatcher) { d.anchorer = a }
}

// WithLogger sets the dispatcher's logger.
func WithLogger(l *logging.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithRenderer replaces the command bridge as the session's renderer. The
// surface still goes through the bridge.
func WithRenderer(r experiment.Renderer) Option {
	return func(d *Dispatcher) { d.renderer = r }
}

// WithPicker mirrors every scene change into sc and resolves taps that carry
// a ray instead of ranked candidates against it.
func WithPicker(sc *scene.Scene) Option {
	return func(d *Dispatcher) { d.picker = sc }
}

// WithSessionOptions passes options through to the session.
func WithSessionOptions(opts ...experiment.Option) Option {
	return func(d *Dispatcher) { d.sessionOpts = append(d.sessionOpts, opts...) }
}

// Dispatcher owns one session and applies host inputs to it in order. It is
// not safe for concurrent use; each connection gets its own.
type Dispatcher struct {
	session     *experiment.Session
	emit        EventEmitter
	anchorer    experiment.Anchorer
	renderer    experiment.Renderer
	picker      *scene.Scene
	logger      *logging.Logger
	sessionOpts []experiment.Option
	started     bool
}

// NewDispatcher creates a dispatcher running variant and sending display
// commands to emit.
func NewDispatcher(variant *experiment.Variant, emit EventEmitter, opts ...Option) (*Dispatcher, error) {
	if emit == nil {
		return nil, errors.New("event emitter is required")
	}
	d := &Dispatcher{emit: emit}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logging.MustLogger("host")
	}

	bridge := NewBridge(emit)
	renderer := experiment.Renderer(bridge)
	if d.renderer != nil {
		renderer = d.renderer
	}
	if d.picker != nil {
		renderer = Tee{renderer, d.picker}
	}

	session, err := experiment.NewSession(variant, renderer, bridge, d.sessionOpts...)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	d.session = session
	return d, nil
}

// Session returns the session this dispatcher drives.
func (d *Dispatcher) Session() *experiment.Session { return d.session }

// Start announces the session and shows the empty tally.
func (d *Dispatcher) Start() {
	if d.started {
		return
	}
	d.started = true
	activeSessions.Inc()
	d.logger.Infof("session %s started with variant %s", d.session.ID(), d.session.Variant().Name)
	d.emit(types.NewSessionCreatedCommand(d.session.ID()))
	d.emit(types.NewStatusCommand("Tap a surface to place the objects"))
	d.emit(types.NewTallyCommand(d.session.Tally().Snapshot()))
}

// Close ends the session.
func (d *Dispatcher) Close() {
	if !d.started {
		return
	}
	d.started = false
	activeSessions.Dec()
	d.logger.Infof("session %s closed: %d responses, tally %v",
		d.session.ID(), len(d.session.Responses()), d.session.Tally().Snapshot())
}

// Handle applies one input. Session-level failures are logged and surfaced to
// the host; the returned error is reserved for inputs that cannot be
// interpreted at all.
func (d *Dispatcher) Handle(ctx context.Context, in *types.Input) error {
	if in == nil {
		return errors.New("nil input")
	}
	if err := in.Validate(); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	inputsTotal.WithLabelValues(string(in.Type)).Inc()

	variant := d.session.Variant().Name
	var err error

	switch in.Type {
	case types.InputTypeSelect:
		err = d.selectPlacement(ctx, in.PoseOrZero())

	case types.InputTypeAnchorCreated:
		err = d.session.AnchorCreated(experiment.Anchor{ID: in.AnchorID, Pose: in.PoseOrZero()})
		if err == nil {
			d.logger.Infof("anchor %s placed for session %s", in.AnchorID, d.session.ID())
		}

	case types.InputTypeAnchorFailed:
		reason := in.Reason
		if reason == "" {
			reason = "unknown reason"
		}
		err = d.session.AnchorFailed(errors.New(reason))

	case types.InputTypeTap:
		var hit string
		hit, err = d.session.Tap(d.candidates(in))
		switch {
		case err == nil:
			tapsTotal.WithLabelValues(variant, "hit").Inc()
			d.logger.Debugf("tap registered on %s (%d clicks)", hit, d.session.Tally().Count(hit))
		case errors.Is(err, experiment.ErrNoIntersection):
			tapsTotal.WithLabelValues(variant, "miss").Inc()
		default:
			tapsTotal.WithLabelValues(variant, "rejected").Inc()
		}

	case types.InputTypeNext:
		before := d.session.Phase()
		err = d.session.Advance()
		if err == nil {
			dest := strconv.Itoa(d.session.Stage())
			if before == experiment.PhaseAnchorPlaced && d.session.Phase() == experiment.PhaseTerminal {
				dest = "complete"
			}
			stageTransitionsTotal.WithLabelValues(variant, dest).Inc()
		}

	case types.InputTypeYes, types.InputTypeNo:
		answer := experiment.Answer(in.Type)
		err = d.session.Respond(answer)
		if err == nil {
			responsesTotal.WithLabelValues(variant, string(answer)).Inc()
		}
	}

	d.report(in, err)
	return nil
}

// candidates returns the tap's ranked hits, picking along its ray when the
// host sent one and this dispatcher has a scene to pick against.
func (d *Dispatcher) candidates(in *types.Input) []string {
	if len(in.Candidates) > 0 || in.Ray == nil {
		return in.Candidates
	}
	if d.picker == nil {
		d.logger.Debugf("session %s: tap ray ignored, picking is off", d.session.ID())
		return nil
	}
	r := scene.Ray{Origin: in.Ray.Origin, Direction: in.Ray.Direction.Normalize()}
	return d.picker.Raycast(r)
}

// selectPlacement either completes the anchor with the in-process anchorer or
// asks the host to create one.
func (d *Dispatcher) selectPlacement(ctx context.Context, pose experiment.Pose) error {
	if d.anchorer != nil {
		return d.session.Place(ctx, d.anchorer, pose)
	}
	if err := d.session.SelectPlacement(pose); err != nil {
		return err
	}
	d.emit(types.NewRequestAnchorCommand(pose))
	return nil
}

// report applies the error policy: nothing a participant does is fatal.
func (d *Dispatcher) report(in *types.Input, err error) {
	if err == nil {
		return
	}
	id := d.session.ID()
	switch {
	case errors.Is(err, experiment.ErrNoIntersection):
		d.logger.Debugf("session %s: tap hit nothing selectable", id)
	case errors.Is(err, experiment.ErrAnchorCreationFailed):
		anchorFailuresTotal.Inc()
		d.logger.Errorf("session %s: %v", id, err)
	case errors.Is(err, experiment.ErrInvalidTransition),
		errors.Is(err, experiment.ErrAnchorExists),
		errors.Is(err, experiment.ErrAnchorPending):
		d.logger.Warnf("session %s: ignored %s: %v", id, in.Type, err)
	default:
		d.logger.Errorf("session %s: %s failed: %v", id, in.Type, err)
		d.emit(types.NewErrorStatusCommand(err.Error()))
	}
}
