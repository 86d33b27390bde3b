package experiment

import (
	"fmt"
	"slices"
)

// Role groups objects whose material follows the same stage sequence.
type Role string

const (
	// RoleReference marks objects the participant tries to see or click.
	RoleReference Role = "reference"
	// RoleProbe marks objects whose transparency is being varied.
	RoleProbe Role = "probe"
)

// Control names a UI button exposed by the host.
type Control string

const (
	ControlYes  Control = "yes"  // ControlYes confirms the stage outcome and resets the placement.
	ControlNo   Control = "no"   // ControlNo records a negative answer.
	ControlNext Control = "next" // ControlNext advances to the following stage.
)

// AllControls lists every control in display order.
var AllControls = []Control{ControlYes, ControlNo, ControlNext}

// TapFeedback is what a registered tap does to the object beyond counting it.
type TapFeedback string

const (
	TapFeedbackNone        TapFeedback = "none"         // TapFeedbackNone only counts the click.
	TapFeedbackRecolor     TapFeedback = "recolor"      // TapFeedbackRecolor gives the object a random color.
	TapFeedbackToggleLabel TapFeedback = "toggle_label" // TapFeedbackToggleLabel shows or hides the object's label.
)

// defaultExtent is the edge length of objects declared without a size.
const defaultExtent = 0.2

// Material is the renderer-facing state of an object at a given stage.
type Material struct {
	Opacity float64 `yaml:"opacity" json:"opacity" validate:"gte=0,lte=1"`
	Visible bool    `yaml:"visible" json:"visible"`
}

// Opaque returns the default material: fully opaque and visible.
func Opaque() Material { return Material{Opacity: 1, Visible: true} }

// Selectable reports whether a tap may register on an object with this
// material. An object that is hidden or fully transparent is never selectable,
// whatever the renderer's intersection test says.
func (m Material) Selectable() bool {
	return m.Visible && m.Opacity > 0
}

// ObjectSpec declares one object of a variant, relative to the anchor.
type ObjectSpec struct {
	ID     string `yaml:"id" json:"id" validate:"required,slug"`
	Label  string `yaml:"label" json:"label" validate:"required"`
	Role   Role   `yaml:"role" json:"role" validate:"required"`
	Offset Vec3   `yaml:"offset" json:"offset"`
	Size   Vec3   `yaml:"size,omitempty" json:"size,omitempty"`
	Color  uint32 `yaml:"color" json:"color" validate:"lte=16777215"`
}

// Extent returns the object's box size, defaulting to a 20cm cube.
func (o ObjectSpec) Extent() Vec3 {
	if o.Size.IsZero() {
		return Vec3{defaultExtent, defaultExtent, defaultExtent}
	}
	return o.Size
}

// StageSpec is one step of the scripted transparency sequence.
type StageSpec struct {
	Name      string            `yaml:"name" json:"name" validate:"required"`
	Prompt    string            `yaml:"prompt,omitempty" json:"prompt,omitempty"`
	Materials map[Role]Material `yaml:"materials,omitempty" json:"materials,omitempty" validate:"dive"`
	Controls  []Control         `yaml:"controls,omitempty" json:"controls,omitempty" validate:"dive,oneof=yes no next"`
}

// Shows reports whether the stage exposes the given control.
func (s StageSpec) Shows(c Control) bool {
	return slices.Contains(s.Controls, c)
}

// Variant is a complete experiment definition: what gets placed at the anchor
// and how each role's material changes from stage to stage.
type Variant struct {
	Name         string       `yaml:"name" json:"name" validate:"required,slug"`
	Description  string       `yaml:"description,omitempty" json:"description,omitempty"`
	TapFeedback  TapFeedback  `yaml:"tap_feedback,omitempty" json:"tap_feedback,omitempty" validate:"omitempty,oneof=none recolor toggle_label"`
	Objects      []ObjectSpec `yaml:"objects" json:"objects" validate:"required,min=1,dive"`
	Stages       []StageSpec  `yaml:"stages" json:"stages" validate:"required,min=1,dive"`
}

// Feedback returns the variant's tap feedback, none when unset.
func (v *Variant) Feedback() TapFeedback {
	if v.TapFeedback == "" {
		return TapFeedbackNone
	}
	return v.TapFeedback
}

// StageCount returns the number of stages in the sequence.
func (v *Variant) StageCount() int {
	return len(v.Stages)
}

// Stage returns the definition of the given stage.
func (v *Variant) Stage(stage int) (StageSpec, error) {
	if stage < 0 || stage >= len(v.Stages) {
		return StageSpec{}, fmt.Errorf("%w: %d (variant %s has %d stages)", ErrStageOutOfRange, stage, v.Name, len(v.Stages))
	}
	return v.Stages[stage], nil
}

// MaterialFor returns the material an object of the given role has at stage.
// Roles a stage does not mention stay opaque and visible.
func (v *Variant) MaterialFor(stage int, role Role) (Material, error) {
	spec, err := v.Stage(stage)
	if err != nil {
		return Material{}, err
	}
	if m, ok := spec.Materials[role]; ok {
		return m, nil
	}
	return Opaque(), nil
}

// Roles returns the distinct roles of the variant's objects in declaration order.
func (v *Variant) Roles() []Role {
	var roles []Role
	for _, o := range v.Objects {
		if !slices.Contains(roles, o.Role) {
			roles = append(roles, o.Role)
		}
	}
	return roles
}

// Lint reports stages whose materials are ambiguous for the experiment. An
// object with visible=true and opacity=0 cannot be clicked, which authors
// often do not expect; such stages are flagged so the intent can be made
// explicit with visible=false.
func (v *Variant) Lint() []string {
	var warnings []string
	for i, st := range v.Stages {
		for _, role := range v.Roles() {
			m, _ := v.MaterialFor(i, role)
			if m.Visible && m.Opacity == 0 {
				warnings = append(warnings, fmt.Sprintf(
					"stage %d (%s): role %q is visible with opacity 0 and will not accept taps", i, st.Name, role))
			}
		}
		for role := range st.Materials {
			if !slices.Contains(v.Roles(), role) {
				warnings = append(warnings, fmt.Sprintf("stage %d (%s): material for unused role %q", i, st.Name, role))
			}
		}
	}
	return warnings
}
