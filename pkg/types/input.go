package types

import (
	"errors"
	"fmt"

	"github.com/entrhq/vanish/pkg/experiment"
	"github.com/entrhq/vanish/pkg/scene"
)

// ErrUnknownInput is returned for inputs whose type is missing or not recognised.
var ErrUnknownInput = errors.New("unknown input type")

// InputType defines the type of input a host forwards to the session.
type InputType string

const (
	InputTypeSelect        InputType = "select"         // InputTypeSelect is a tap-to-place at the reticle pose.
	InputTypeAnchorCreated InputType = "anchor_created" // InputTypeAnchorCreated reports a successful anchor request.
	InputTypeAnchorFailed  InputType = "anchor_failed"  // InputTypeAnchorFailed reports a rejected anchor request.
	InputTypeTap           InputType = "tap"            // InputTypeTap is a screen tap with the renderer's ranked hits.
	InputTypeNext          InputType = "next"           // InputTypeNext is the Next button.
	InputTypeYes           InputType = "yes"            // InputTypeYes is the Yes button.
	InputTypeNo            InputType = "no"             // InputTypeNo is the No button.
)

// Input represents one event delivered by the host.
type Input struct {
	// Metadata holds optional additional information about the input.
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// Pose is the placement pose for select and the anchor pose for anchor_created.
	Pose *experiment.Pose `json:"pose,omitempty"`

	// AnchorID identifies the anchor for anchor_created.
	AnchorID string `json:"anchor_id,omitempty"`

	// Reason explains an anchor_failed.
	Reason string `json:"reason,omitempty"`

	// Candidates are object ids hit by the tap ray, nearest first.
	Candidates []string `json:"candidates,omitempty"`

	// Ray is the tap ray, for hosts that leave picking to the server.
	// Candidates win when both are sent.
	Ray *scene.Ray `json:"ray,omitempty"`

	// Type indicates the kind of input.
	Type InputType `json:"type"`
}

// NewSelectInput creates a select input at pose.
func NewSelectInput(pose experiment.Pose) *Input {
	return &Input{Type: InputTypeSelect, Pose: &pose}
}

// NewAnchorCreatedInput creates an anchor_created input.
func NewAnchorCreatedInput(anchorID string, pose experiment.Pose) *Input {
	return &Input{Type: InputTypeAnchorCreated, AnchorID: anchorID, Pose: &pose}
}

// NewAnchorFailedInput creates an anchor_failed input.
func NewAnchorFailedInput(reason string) *Input {
	return &Input{Type: InputTypeAnchorFailed, Reason: reason}
}

// NewTapInput creates a tap input with ranked candidates.
func NewTapInput(candidates ...string) *Input {
	return &Input{Type: InputTypeTap, Candidates: candidates}
}

// NewRayTapInput creates a tap input carrying only its ray.
func NewRayTapInput(r scene.Ray) *Input {
	return &Input{Type: InputTypeTap, Ray: &r}
}

// NewButtonInput creates a next, yes or no input.
func NewButtonInput(t InputType) *Input {
	return &Input{Type: t}
}

// WithMetadata adds metadata to the input and returns the input for chaining.
func (i *Input) WithMetadata(key string, value interface{}) *Input {
	if i.Metadata == nil {
		i.Metadata = make(map[string]interface{})
	}
	i.Metadata[key] = value
	return i
}

// IsButton returns true for next, yes and no.
func (i *Input) IsButton() bool {
	return i.Type == InputTypeNext || i.Type == InputTypeYes || i.Type == InputTypeNo
}

// IsAnchorResult returns true for anchor_created and anchor_failed.
func (i *Input) IsAnchorResult() bool {
	return i.Type == InputTypeAnchorCreated || i.Type == InputTypeAnchorFailed
}

// PoseOrZero returns the input's pose, or the zero pose if none was sent.
func (i *Input) PoseOrZero() experiment.Pose {
	if i.Pose == nil {
		return experiment.Pose{}
	}
	return *i.Pose
}

// Validate checks that the fields required by Type are present.
func (i *Input) Validate() error {
	switch i.Type {
	case InputTypeSelect, InputTypeTap, InputTypeNext, InputTypeYes, InputTypeNo, InputTypeAnchorFailed:
		return nil
	case InputTypeAnchorCreated:
		if i.AnchorID == "" {
			return fmt.Errorf("anchor_created requires anchor_id")
		}
		return nil
	case "":
		return fmt.Errorf("%w: type is required", ErrUnknownInput)
	default:
		return fmt.Errorf("%w %q", ErrUnknownInput, i.Type)
	}
}

// IsTap returns true if the input is a screen tap.
func (i *Input) IsTap() bool {
	return i.Type == InputTypeTap
}
