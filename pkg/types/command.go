package types

import "github.com/entrhq/vanish/pkg/experiment"

// CommandType defines the type of display command sent to a host.
type CommandType string

const (
	CommandTypeSessionCreated CommandType = "session_created"   // CommandTypeSessionCreated announces the session id to a newly connected host.
	CommandTypePlaceObject    CommandType = "place_object"      // CommandTypePlaceObject adds an object to the scene.
	CommandTypeRemoveObject   CommandType = "remove_object"     // CommandTypeRemoveObject removes an object from the scene.
	CommandTypeApplyMaterial  CommandType = "apply_material"    // CommandTypeApplyMaterial sets an object's opacity and visibility.
	CommandTypeSetColor       CommandType = "set_color"         // CommandTypeSetColor changes an object's color.
	CommandTypeSetLabel       CommandType = "set_label_visible" // CommandTypeSetLabel shows or hides an object's label.
	CommandTypeRequestAnchor  CommandType = "request_anchor"    // CommandTypeRequestAnchor asks the host to create an anchor at a pose.
	CommandTypeShowStatus     CommandType = "show_status"       // CommandTypeShowStatus updates the status line.
	CommandTypeShowToast      CommandType = "show_toast"        // CommandTypeShowToast shows the toast banner.
	CommandTypeShowTally      CommandType = "show_tally"        // CommandTypeShowTally replaces the click-count panel.
	CommandTypeSetControl     CommandType = "set_control"       // CommandTypeSetControl shows or hides a Yes/No/Next button.
)

// Command is a single instruction from the experiment session to its host.
// Only the fields relevant to Type are populated.
type Command struct {
	// Type indicates the kind of command.
	Type CommandType `json:"type"`

	// SessionID is set on session_created.
	SessionID string `json:"session_id,omitempty"`

	// ObjectID names the target object for scene commands.
	ObjectID string `json:"object_id,omitempty"`

	// Object carries the full object for place_object.
	Object *experiment.TrackedObject `json:"object,omitempty"`

	// Material is the new material for apply_material.
	Material *experiment.Material `json:"material,omitempty"`

	// Color is the new color for set_color, as 0xRRGGBB. Black is a valid
	// color, so it is only omitted for other command types.
	Color *uint32 `json:"color,omitempty"`

	// Pose is where request_anchor wants the anchor.
	Pose *experiment.Pose `json:"pose,omitempty"`

	// Message holds status and toast text.
	Message string `json:"message,omitempty"`

	// IsError marks a status message that reports a failure.
	IsError bool `json:"is_error,omitempty"`

	// Tally is the full click-count snapshot for show_tally.
	Tally []experiment.TallyEntry `json:"tally,omitempty"`

	// Control names the button for set_control.
	Control experiment.Control `json:"control,omitempty"`

	// Visible is the new visibility for set_control and set_label_visible.
	// It is always sent for those, false included.
	Visible *bool `json:"visible,omitempty"`
}

// NewSessionCreatedCommand creates a session announcement.
func NewSessionCreatedCommand(sessionID string) *Command {
	return &Command{Type: CommandTypeSessionCreated, SessionID: sessionID}
}

// NewPlaceObjectCommand creates a place_object command.
func NewPlaceObjectCommand(obj experiment.TrackedObject) *Command {
	return &Command{Type: CommandTypePlaceObject, ObjectID: obj.ID, Object: &obj}
}

// NewRemoveObjectCommand creates a remove_object command.
func NewRemoveObjectCommand(id string) *Command {
	return &Command{Type: CommandTypeRemoveObject, ObjectID: id}
}

// NewApplyMaterialCommand creates an apply_material command.
func NewApplyMaterialCommand(id string, m experiment.Material) *Command {
	return &Command{Type: CommandTypeApplyMaterial, ObjectID: id, Material: &m}
}

// NewSetColorCommand creates a set_color command.
func NewSetColorCommand(id string, color uint32) *Command {
	return &Command{Type: CommandTypeSetColor, ObjectID: id, Color: &color}
}

// NewSetLabelCommand creates a set_label_visible command.
func NewSetLabelCommand(id string, visible bool) *Command {
	return &Command{Type: CommandTypeSetLabel, ObjectID: id, Visible: &visible}
}

// NewRequestAnchorCommand creates a request_anchor command.
func NewRequestAnchorCommand(pose experiment.Pose) *Command {
	return &Command{Type: CommandTypeRequestAnchor, Pose: &pose}
}

// NewStatusCommand creates a show_status command.
func NewStatusCommand(message string) *Command {
	return &Command{Type: CommandTypeShowStatus, Message: message}
}

// NewErrorStatusCommand creates a show_status command flagged as an error.
func NewErrorStatusCommand(message string) *Command {
	return &Command{Type: CommandTypeShowStatus, Message: message, IsError: true}
}

// NewToastCommand creates a show_toast command.
func NewToastCommand(message string) *Command {
	return &Command{Type: CommandTypeShowToast, Message: message}
}

// NewTallyCommand creates a show_tally command.
func NewTallyCommand(entries []experiment.TallyEntry) *Command {
	return &Command{Type: CommandTypeShowTally, Tally: entries}
}

// NewSetControlCommand creates a set_control command.
func NewSetControlCommand(c experiment.Control, visible bool) *Command {
	return &Command{Type: CommandTypeSetControl, Control: c, Visible: &visible}
}

// Shown reports the command's visibility flag, false when it carries none.
func (c *Command) Shown() bool {
	return c.Visible != nil && *c.Visible
}

// IsSceneCommand returns true if the command targets the 3D scene.
func (c *Command) IsSceneCommand() bool {
	switch c.Type {
	case CommandTypePlaceObject, CommandTypeRemoveObject, CommandTypeApplyMaterial, CommandTypeSetColor, CommandTypeSetLabel:
		return true
	}
	return false
}

// IsSurfaceCommand returns true if the command targets the 2D overlay.
func (c *Command) IsSurfaceCommand() bool {
	switch c.Type {
	case CommandTypeShowStatus, CommandTypeShowToast, CommandTypeShowTally, CommandTypeSetControl:
		return true
	}
	return false
}
