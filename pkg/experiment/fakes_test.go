package experiment

import (
	"context"
	"errors"
)

type fakeRenderer struct {
	placed    []TrackedObject
	removed   []string
	materials map[string]Material
	colors    map[string]uint32
	labels    map[string]bool
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{
		materials: make(map[string]Material),
		colors:    make(map[string]uint32),
		labels:    make(map[string]bool),
	}
}

func (r *fakeRenderer) PlaceObject(obj TrackedObject) {
	r.placed = append(r.placed, obj)
	r.materials[obj.ID] = obj.Material
}
func (r *fakeRenderer) RemoveObject(id string)              { r.removed = append(r.removed, id) }
func (r *fakeRenderer) ApplyMaterial(id string, m Material) { r.materials[id] = m }
func (r *fakeRenderer) SetColor(id string, color uint32)    { r.colors[id] = color }
func (r *fakeRenderer) SetLabelVisible(id string, v bool)   { r.labels[id] = v }

type fakeSurface struct {
	statuses []string
	toasts   []string
	tallies  [][]TallyEntry
	controls map[Control]bool
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{controls: make(map[Control]bool)}
}

func (s *fakeSurface) ShowStatus(message string)          { s.statuses = append(s.statuses, message) }
func (s *fakeSurface) ShowToast(message string)           { s.toasts = append(s.toasts, message) }
func (s *fakeSurface) ShowTally(entries []TallyEntry)     { s.tallies = append(s.tallies, entries) }
func (s *fakeSurface) SetControlVisible(c Control, v bool) { s.controls[c] = v }

func (s *fakeSurface) lastTally() []TallyEntry {
	if len(s.tallies) == 0 {
		return nil
	}
	return s.tallies[len(s.tallies)-1]
}

var errTrackingLost = errors.New("tracking lost")

func okAnchorer(id string) Anchorer {
	return AnchorerFunc(func(_ context.Context, pose Pose) (Anchor, error) {
		return Anchor{ID: id, Pose: pose}, nil
	})
}

func failingAnchorer() Anchorer {
	return AnchorerFunc(func(context.Context, Pose) (Anchor, error) {
		return Anchor{}, errTrackingLost
	})
}

// probeVariant is the translucent wall sequence: 0.75 -> 0 (still "visible") -> hidden.
func probeVariant() *Variant {
	return &Variant{
		Name:        "probe",
		TapFeedback: TapFeedbackRecolor,
		Objects: []ObjectSpec{
			{ID: "cube-1", Label: "Cube 1", Role: RoleReference, Color: 0xff0000},
			{ID: "cube-2", Label: "Cube 2", Role: RoleProbe, Offset: Vec3{Z: 0.5}, Size: Vec3{0.8, 0.8, 0.02}, Color: 0x0000ff},
		},
		Stages: []StageSpec{
			{
				Name:      "translucent",
				Prompt:    "Verify that you can see Cube 2 but not Cube 1",
				Materials: map[Role]Material{RoleProbe: {Opacity: 0.75, Visible: true}},
				Controls:  []Control{ControlYes, ControlNo},
			},
			{
				Name:      "transparent",
				Prompt:    "Try to click on Cube 1, then press next",
				Materials: map[Role]Material{RoleProbe: {Opacity: 0, Visible: true}},
				Controls:  []Control{ControlNext},
			},
			{
				Name:      "hidden",
				Materials: map[Role]Material{RoleProbe: {Opacity: 0, Visible: false}},
				Controls:  []Control{ControlNext},
			},
		},
	}
}

// baseCaseVariant puts a fully transparent cube in the same place as the
// reference cube. Taps toggle the label of whichever cube takes the click.
func baseCaseVariant() *Variant {
	return &Variant{
		Name:        "base-case",
		TapFeedback: TapFeedbackToggleLabel,
		Objects: []ObjectSpec{
			{ID: "cube-t", Label: "Cube T", Role: RoleProbe, Size: Vec3{0.1, 0.1, 0.1}},
			{ID: "cube-1", Label: "Cube 1", Role: RoleReference, Size: Vec3{0.1, 0.1, 0.1}, Color: 0xaa0000},
		},
		Stages: []StageSpec{
			{Name: "base-case", Materials: map[Role]Material{RoleProbe: {Opacity: 0, Visible: true}}},
		},
	}
}
