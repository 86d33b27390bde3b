package experiment

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// Phase is the coarse state of a session.
type Phase int

const (
	// PhaseAwaitingAnchor accepts a placement; nothing is in the scene.
	PhaseAwaitingAnchor Phase = iota
	// PhaseAnchorPlaced has objects in the scene at Stage().
	PhaseAnchorPlaced
	// PhaseTerminal has advanced past the last stage. Objects stay in the
	// scene and taps still count; only Reset leaves this phase.
	PhaseTerminal
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingAnchor:
		return "awaiting_anchor"
	case PhaseAnchorPlaced:
		return "anchor_placed"
	case PhaseTerminal:
		return "terminal"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(s string) (Phase, error) {
	for _, p := range []Phase{PhaseAwaitingAnchor, PhaseAnchorPlaced, PhaseTerminal} {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

// TrackedObject is an object placed relative to the anchor.
type TrackedObject struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Role     Role     `json:"role"`
	Position Vec3     `json:"position"`
	Size     Vec3     `json:"size"`
	Material Material `json:"material"`
	Color    uint32   `json:"color"`

	// Orientation is the anchor's rotation. The box is aligned to it.
	Orientation Quat `json:"orientation"`

	ClickCount int `json:"click_count"`

	// LabelVisible is whether the object's floating label is shown. Labels
	// start hidden.
	LabelVisible bool `json:"label_visible"`
}

// Answer is a participant's response to a stage prompt.
type Answer string

const (
	AnswerYes Answer = "yes" // AnswerYes means the probe looked invisible.
	AnswerNo  Answer = "no"  // AnswerNo means it did not.
)

// Response is one recorded answer.
type Response struct {
	Stage     int       `json:"stage"`
	StageName string    `json:"stage_name"`
	Answer    Answer    `json:"answer"`
	At        time.Time `json:"at"`
}

// Option configures a Session.
type Option func(*Session)

// WithID sets the session id instead of generating one.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithRand sets the random source used to recolor tapped objects.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.rng = r }
}

// WithClock sets the time source for recorded responses.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session is the experiment state for one AR activation.
type Session struct {
	id       string
	variant  *Variant
	renderer Renderer
	surface  Surface
	rng      *rand.Rand
	now      func() time.Time

	phase     Phase
	stage     int
	pending   bool
	anchor    *Anchor
	objects   []*TrackedObject
	tally     *ClickTally
	responses []Response
}

// NewSession creates a session awaiting its first placement. Every object of
// the variant is registered in the tally up front so the click display lists
// them before anything is placed.
func NewSession(variant *Variant, renderer Renderer, surface Surface, opts ...Option) (*Session, error) {
	if variant == nil {
		return nil, errors.New("variant is required")
	}
	if variant.StageCount() == 0 {
		return nil, fmt.Errorf("variant %s has no stages", variant.Name)
	}
	if renderer == nil || surface == nil {
		return nil, errors.New("renderer and surface are required")
	}

	s := &Session{
		id:       uuid.New().String(),
		variant:  variant,
		renderer: renderer,
		surface:  surface,
		now:      time.Now,
		tally:    NewClickTally(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		seed := uint64(s.now().UnixNano())
		s.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	for _, o := range variant.Objects {
		s.tally.Track(o.ID, o.Label)
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Variant returns the variant the session runs.
func (s *Session) Variant() *Variant { return s.variant }

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Stage returns the current stage index. It is zero while awaiting an anchor.
func (s *Session) Stage() int { return s.stage }

// Pending reports whether an anchor request is in flight.
func (s *Session) Pending() bool { return s.pending }

// Anchor returns the current anchor, if any.
func (s *Session) Anchor() (Anchor, bool) {
	if s.anchor == nil {
		return Anchor{}, false
	}
	return *s.anchor, true
}

// Tally returns the session's click tally.
func (s *Session) Tally() *ClickTally { return s.tally }

// Objects returns copies of the tracked objects in placement order.
func (s *Session) Objects() []TrackedObject {
	out := make([]TrackedObject, len(s.objects))
	for i, o := range s.objects {
		out[i] = *o
	}
	return out
}

// Object returns a copy of the tracked object with the given id.
func (s *Session) Object(id string) (TrackedObject, bool) {
	if o := s.lookup(id); o != nil {
		return *o, true
	}
	return TrackedObject{}, false
}

// Responses returns a copy of the recorded answers.
func (s *Session) Responses() []Response {
	out := make([]Response, len(s.responses))
	copy(out, s.responses)
	return out
}

// SelectPlacement starts an anchor request at pose. The host then creates the
// anchor and reports the outcome with AnchorCreated or AnchorFailed. Selecting
// again once placed, or while a request is in flight, changes nothing.
func (s *Session) SelectPlacement(pose Pose) error {
	if s.phase != PhaseAwaitingAnchor {
		s.surface.ShowStatus("Anchor already exists")
		return ErrAnchorExists
	}
	if s.pending {
		return ErrAnchorPending
	}
	s.pending = true
	return nil
}

// AnchorCreated completes the in-flight request: the variant's objects are
// placed at stage 0.
func (s *Session) AnchorCreated(anchor Anchor) error {
	if !s.pending {
		return fmt.Errorf("%w: anchor %q created without a pending request", ErrInvalidTransition, anchor.ID)
	}
	s.pending = false
	s.anchor = &anchor
	s.stage = 0

	s.objects = make([]*TrackedObject, 0, len(s.variant.Objects))
	for _, spec := range s.variant.Objects {
		m, err := s.variant.MaterialFor(0, spec.Role)
		if err != nil {
			return err
		}
		obj := &TrackedObject{
			ID:          spec.ID,
			Label:       spec.Label,
			Role:        spec.Role,
			Position:    anchor.Pose.Transform(spec.Offset),
			Orientation: anchor.Pose.Orientation,
			Size:        spec.Extent(),
			Material:    m,
			Color:       spec.Color,
		}
		s.objects = append(s.objects, obj)
		s.tally.Track(obj.ID, obj.Label)
		s.renderer.PlaceObject(*obj)
	}

	s.phase = PhaseAnchorPlaced
	s.presentStage()
	s.surface.ShowTally(s.tally.Snapshot())
	return nil
}

// AnchorFailed completes the in-flight request with a failure. The session
// stays awaiting an anchor and the failure is shown; there is no retry.
func (s *Session) AnchorFailed(cause error) error {
	if !s.pending {
		return fmt.Errorf("%w: anchor failure without a pending request", ErrInvalidTransition)
	}
	s.pending = false
	err := &AnchorError{Cause: cause}
	msg := "Could not create anchor"
	if cause != nil {
		msg += ": " + cause.Error()
	}
	s.surface.ShowStatus(msg)
	return err
}

// Place runs a whole placement with an in-process anchorer.
func (s *Session) Place(ctx context.Context, anchorer Anchorer, pose Pose) error {
	if err := s.SelectPlacement(pose); err != nil {
		return err
	}
	anchor, err := anchorer.CreateAnchor(ctx, pose)
	if err != nil {
		return s.AnchorFailed(err)
	}
	return s.AnchorCreated(anchor)
}

// Advance moves to the next stage and applies its materials. Advancing past
// the last stage ends the sequence and hides the Next control.
func (s *Session) Advance() error {
	if s.phase != PhaseAnchorPlaced {
		return fmt.Errorf("%w: advance while %s", ErrInvalidTransition, s.phase)
	}

	next := s.stage + 1
	if next >= s.variant.StageCount() {
		s.phase = PhaseTerminal
		s.surface.SetControlVisible(ControlNext, false)
		s.surface.ShowStatus("Sequence complete")
		return nil
	}

	for _, obj := range s.objects {
		m, err := s.variant.MaterialFor(next, obj.Role)
		if err != nil {
			return err
		}
		obj.Material = m
		s.renderer.ApplyMaterial(obj.ID, m)
	}
	s.stage = next
	s.presentStage()
	return nil
}

// Reset removes the placed objects and returns to awaiting a new placement.
// The tally and recorded responses are kept.
func (s *Session) Reset() error {
	if s.phase == PhaseAwaitingAnchor {
		return fmt.Errorf("%w: reset while %s", ErrInvalidTransition, s.phase)
	}
	for _, obj := range s.objects {
		s.renderer.RemoveObject(obj.ID)
	}
	s.objects = nil
	s.anchor = nil
	s.stage = 0
	s.phase = PhaseAwaitingAnchor
	for _, c := range AllControls {
		s.surface.SetControlVisible(c, false)
	}
	s.surface.ShowTally(s.tally.Snapshot())
	return nil
}

// Respond records the participant's answer for the current stage. A Yes
// confirms the probe looked invisible and resets the placement for the next
// cycle; a No only records.
func (s *Session) Respond(answer Answer) error {
	if s.phase == PhaseAwaitingAnchor {
		return fmt.Errorf("%w: %s answer while %s", ErrInvalidTransition, answer, s.phase)
	}
	if answer != AnswerYes && answer != AnswerNo {
		return fmt.Errorf("unknown answer %q", answer)
	}

	spec, _ := s.variant.Stage(s.stage)
	s.responses = append(s.responses, Response{
		Stage:     s.stage,
		StageName: spec.Name,
		Answer:    answer,
		At:        s.now(),
	})

	if answer == AnswerYes {
		return s.Reset()
	}
	s.surface.ShowStatus(fmt.Sprintf("Recorded %q for stage %s", answer, spec.Name))
	return nil
}

// Tap resolves a tap against the renderer's ranked candidates. The first
// candidate that is tracked and selectable receives the click; hidden and fully
// transparent objects are skipped even when they were hit first.
func (s *Session) Tap(candidates []string) (string, error) {
	if s.phase == PhaseAwaitingAnchor {
		return "", fmt.Errorf("%w: tap while %s", ErrInvalidTransition, s.phase)
	}
	for _, id := range candidates {
		obj := s.lookup(id)
		if obj == nil || !obj.Material.Selectable() {
			continue
		}
		obj.ClickCount++
		s.tally.Record(obj.ID)
		s.applyFeedback(obj)
		s.surface.ShowTally(s.tally.Snapshot())
		return obj.ID, nil
	}
	return "", ErrNoIntersection
}

func (s *Session) applyFeedback(obj *TrackedObject) {
	switch s.variant.Feedback() {
	case TapFeedbackRecolor:
		obj.Color = uint32(s.rng.IntN(0x1000000))
		s.renderer.SetColor(obj.ID, obj.Color)
	case TapFeedbackToggleLabel:
		obj.LabelVisible = !obj.LabelVisible
		s.renderer.SetLabelVisible(obj.ID, obj.LabelVisible)
	}
}

func (s *Session) lookup(id string) *TrackedObject {
	for _, o := range s.objects {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// presentStage shows the current stage's prompt and buttons.
func (s *Session) presentStage() {
	spec, err := s.variant.Stage(s.stage)
	if err != nil {
		return
	}
	if spec.Prompt != "" {
		s.surface.ShowToast(spec.Prompt)
	}
	for _, c := range AllControls {
		s.surface.SetControlVisible(c, spec.Shows(c))
	}
}
