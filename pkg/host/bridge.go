package host

import (
	"github.com/entrhq/vanish/pkg/experiment"
	"github.com/entrhq/vanish/pkg/types"
)

// EventEmitter is a function type for emitting display commands
type EventEmitter func(cmd *types.Command)

// Bridge turns the session's renderer and surface calls into commands for a
// remote host.
type Bridge struct {
	emit EventEmitter
}

// NewBridge creates a bridge that forwards every call to emit.
func NewBridge(emit EventEmitter) *Bridge {
	return &Bridge{emit: emit}
}

func (b *Bridge) PlaceObject(obj experiment.TrackedObject) {
	b.emit(types.NewPlaceObjectCommand(obj))
}

func (b *Bridge) RemoveObject(id string) {
	b.emit(types.NewRemoveObjectCommand(id))
}

func (b *Bridge) ApplyMaterial(id string, m experiment.Material) {
	b.emit(types.NewApplyMaterialCommand(id, m))
}

func (b *Bridge) SetColor(id string, color uint32) {
	b.emit(types.NewSetColorCommand(id, color))
}

func (b *Bridge) SetLabelVisible(id string, visible bool) {
	b.emit(types.NewSetLabelCommand(id, visible))
}

func (b *Bridge) ShowStatus(message string) {
	b.emit(types.NewStatusCommand(message))
}

func (b *Bridge) ShowToast(message string) {
	b.emit(types.NewToastCommand(message))
}

func (b *Bridge) ShowTally(entries []experiment.TallyEntry) {
	b.emit(types.NewTallyCommand(entries))
}

func (b *Bridge) SetControlVisible(c experiment.Control, visible bool) {
	b.emit(types.NewSetControlCommand(c, visible))
}

// Tee fans renderer calls out to several renderers. The dispatcher uses it to
// mirror a remote scene into the in-process one it picks against.
type Tee []experiment.Renderer

func (t Tee) PlaceObject(obj experiment.TrackedObject) {
	for _, r := range t {
		r.PlaceObject(obj)
	}
}

func (t Tee) RemoveObject(id string) {
	for _, r := range t {
		r.RemoveObject(id)
	}
}

func (t Tee) ApplyMaterial(id string, m experiment.Material) {
	for _, r := range t {
		r.ApplyMaterial(id, m)
	}
}

func (t Tee) SetColor(id string, color uint32) {
	for _, r := range t {
		r.SetColor(id, color)
	}
}

func (t Tee) SetLabelVisible(id string, visible bool) {
	for _, r := range t {
		r.SetLabelVisible(id, visible)
	}
}
