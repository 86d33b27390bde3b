package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/entrhq/vanish/pkg/experiment"
)

func TestCommandCategories(t *testing.T) {
	scene := []*Command{
		NewPlaceObjectCommand(experiment.TrackedObject{ID: "a"}),
		NewRemoveObjectCommand("a"),
		NewApplyMaterialCommand("a", experiment.Opaque()),
		NewSetColorCommand("a", 0xff0000),
		NewSetLabelCommand("a", true),
	}
	for _, c := range scene {
		if !c.IsSceneCommand() || c.IsSurfaceCommand() {
			t.Errorf("%s should be a scene command only", c.Type)
		}
	}

	surface := []*Command{
		NewStatusCommand("hi"),
		NewToastCommand("hi"),
		NewTallyCommand(nil),
		NewSetControlCommand(experiment.ControlNext, true),
	}
	for _, c := range surface {
		if !c.IsSurfaceCommand() || c.IsSceneCommand() {
			t.Errorf("%s should be a surface command only", c.Type)
		}
	}

	for _, c := range []*Command{NewSessionCreatedCommand("s"), NewRequestAnchorCommand(experiment.Pose{})} {
		if c.IsSceneCommand() || c.IsSurfaceCommand() {
			t.Errorf("%s should be neither scene nor surface", c.Type)
		}
	}
}

func TestCommandJSON(t *testing.T) {
	data, err := json.Marshal(NewApplyMaterialCommand("cube-2", experiment.Material{Opacity: 0, Visible: false}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(data)
	for _, want := range []string{`"type":"apply_material"`, `"object_id":"cube-2"`, `"material":{"opacity":0,"visible":false}`} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %s in %s", want, got)
		}
	}
	if strings.Contains(got, "tally") {
		t.Errorf("unexpected empty field in %s", got)
	}
}

func TestCommandJSONKeepsZeroPayloads(t *testing.T) {
	tests := []struct {
		cmd  *Command
		want string
	}{
		{NewSetColorCommand("cube-1", 0), `"color":0`},
		{NewSetControlCommand(experiment.ControlNext, false), `"visible":false`},
		{NewSetLabelCommand("cube-1", false), `"visible":false`},
	}
	for _, tt := range tests {
		data, err := json.Marshal(tt.cmd)
		if err != nil {
			t.Fatalf("marshal %s: %v", tt.cmd.Type, err)
		}
		if !strings.Contains(string(data), tt.want) {
			t.Errorf("%s: expected %s in %s", tt.cmd.Type, tt.want, data)
		}
	}

	data, _ := json.Marshal(NewStatusCommand("hi"))
	for _, field := range []string{"color", "visible"} {
		if strings.Contains(string(data), field) {
			t.Errorf("show_status should not carry %s: %s", field, data)
		}
	}
}

func TestCommandShown(t *testing.T) {
	if !NewSetControlCommand(experiment.ControlYes, true).Shown() {
		t.Error("set_control true should be shown")
	}
	if NewSetLabelCommand("a", false).Shown() {
		t.Error("set_label_visible false should not be shown")
	}
	if NewStatusCommand("hi").Shown() {
		t.Error("commands without a visibility flag are not shown")
	}
}
