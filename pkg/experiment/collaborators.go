package experiment

import "context"

// Renderer applies scene changes decided by the session. Implementations own
// geometry and intersection; the session only ever hands them plain values.
type Renderer interface {
	PlaceObject(obj TrackedObject)
	RemoveObject(id string)
	ApplyMaterial(id string, m Material)
	SetColor(id string, color uint32)
	SetLabelVisible(id string, visible bool)
}

// Surface is the 2D overlay: status line, toast banner, click counts and the
// Yes/No/Next buttons.
type Surface interface {
	ShowStatus(message string)
	ShowToast(message string)
	ShowTally(entries []TallyEntry)
	SetControlVisible(c Control, visible bool)
}

// Anchorer creates anchors for hosts that can do so in-process. Remote hosts
// create anchors themselves and report back with AnchorCreated/AnchorFailed.
type Anchorer interface {
	CreateAnchor(ctx context.Context, pose Pose) (Anchor, error)
}

// AnchorerFunc adapts a function to the Anchorer interface.
type AnchorerFunc func(ctx context.Context, pose Pose) (Anchor, error)

// CreateAnchor calls f.
func (f AnchorerFunc) CreateAnchor(ctx context.Context, pose Pose) (Anchor, error) {
	return f(ctx, pose)
}
