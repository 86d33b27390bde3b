package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/entrhq/vanish/pkg/experiment"
)

func TestInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   *Input
		wantErr bool
	}{
		{"select", NewSelectInput(experiment.Pose{}), false},
		{"tap without candidates", NewTapInput(), false},
		{"next", NewButtonInput(InputTypeNext), false},
		{"anchor created", NewAnchorCreatedInput("a1", experiment.Pose{}), false},
		{"anchor created without id", &Input{Type: InputTypeAnchorCreated}, true},
		{"anchor failed", NewAnchorFailedInput("denied"), false},
		{"missing type", &Input{}, true},
		{"unknown type", &Input{Type: "swipe"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInputValidateUnknown(t *testing.T) {
	err := (&Input{Type: "swipe"}).Validate()
	if !errors.Is(err, ErrUnknownInput) {
		t.Errorf("expected ErrUnknownInput, got %v", err)
	}
}

func TestInputPredicates(t *testing.T) {
	if !NewButtonInput(InputTypeYes).IsButton() {
		t.Error("yes should be a button")
	}
	if NewTapInput("a").IsButton() {
		t.Error("tap should not be a button")
	}
	if !NewAnchorFailedInput("x").IsAnchorResult() {
		t.Error("anchor_failed should be an anchor result")
	}
}

func TestInputDecodeFromHost(t *testing.T) {
	raw := `{"type":"tap","candidates":["cube-2","cube-1"]}`
	var in Input
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if in.Type != InputTypeTap || len(in.Candidates) != 2 || in.Candidates[0] != "cube-2" {
		t.Errorf("unexpected input: %+v", in)
	}

	raw = `{"type":"select","pose":{"position":{"x":0.1,"y":-1,"z":-2}}}`
	in = Input{}
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := in.PoseOrZero().Position; got != (experiment.Vec3{X: 0.1, Y: -1, Z: -2}) {
		t.Errorf("unexpected pose position: %+v", got)
	}
}

func TestInputWithMetadata(t *testing.T) {
	in := NewTapInput("a").WithMetadata("client_x", 120)
	if in.Metadata["client_x"] != 120 {
		t.Errorf("metadata not set: %+v", in.Metadata)
	}
}
