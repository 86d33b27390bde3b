package scene

import (
	"context"
	"math"
	"testing"

	"github.com/entrhq/vanish/pkg/experiment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cube(id string, z float64) experiment.TrackedObject {
	return experiment.TrackedObject{
		ID:       id,
		Label:    id,
		Position: experiment.Vec3{Z: z},
		Size:     experiment.Vec3{X: 0.2, Y: 0.2, Z: 0.2},
		Material: experiment.Opaque(),
	}
}

func TestRaycastRanksByDistance(t *testing.T) {
	s := New()
	s.PlaceObject(cube("far", -2))
	s.PlaceObject(cube("near", -1))
	s.PlaceObject(experiment.TrackedObject{ID: "aside", Position: experiment.Vec3{X: 3, Z: -1}, Size: experiment.Vec3{X: 0.2, Y: 0.2, Z: 0.2}})

	hits := s.Raycast(Ray{Direction: experiment.Vec3{Z: -1}})
	assert.Equal(t, []string{"near", "far"}, hits)
}

func TestRaycastIgnoresMaterial(t *testing.T) {
	s := New()
	s.PlaceObject(cube("probe", -1))
	s.ApplyMaterial("probe", experiment.Material{Opacity: 0, Visible: false})

	assert.Equal(t, []string{"probe"}, s.Raycast(Ray{Direction: experiment.Vec3{Z: -1}}))
}

func TestRaycastMisses(t *testing.T) {
	s := New()
	s.PlaceObject(cube("a", -1))

	tests := []struct {
		name string
		ray  Ray
	}{
		{"pointing away", Ray{Direction: experiment.Vec3{Z: 1}}},
		{"parallel outside slab", Ray{Origin: experiment.Vec3{Y: 1}, Direction: experiment.Vec3{Z: -1}}},
		{"diagonal past the box", Ray{Direction: experiment.Vec3{X: 1, Z: -1}.Normalize()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, s.Raycast(tt.ray))
		})
	}
}

func TestRaycastFromInside(t *testing.T) {
	s := New()
	s.PlaceObject(cube("around", 0))
	assert.Equal(t, []string{"around"}, s.Raycast(Ray{Direction: experiment.Vec3{X: 1}}))
}

func TestToward(t *testing.T) {
	s := New()
	s.PlaceObject(cube("near", -1))
	s.PlaceObject(cube("far", -2))

	// Aiming at the far cube still passes through the near one first.
	r := Toward(experiment.Vec3{}, experiment.Vec3{Z: -2})
	assert.Equal(t, []string{"near", "far"}, s.Raycast(r))
}

func TestSceneMutations(t *testing.T) {
	s := New()
	s.PlaceObject(cube("a", -1))
	s.PlaceObject(cube("b", -2))
	s.SetColor("a", 0x123456)
	s.ApplyMaterial("b", experiment.Material{Opacity: 0.5, Visible: true})

	a, ok := s.Object("a")
	require.True(t, ok)
	assert.Equal(t, uint32(0x123456), a.Color)

	objs := s.Objects()
	require.Len(t, objs, 2)
	assert.Equal(t, "a", objs[0].ID)
	assert.Equal(t, 0.5, objs[1].Material.Opacity)

	s.RemoveObject("a")
	assert.Equal(t, 1, s.Len())
	_, ok = s.Object("a")
	assert.False(t, ok)

	// Updates to unknown ids are ignored.
	s.SetColor("ghost", 1)
	s.ApplyMaterial("ghost", experiment.Opaque())
	assert.Equal(t, 1, s.Len())
}

func TestAnchorerFailNext(t *testing.T) {
	a := NewAnchorer()
	ctx := context.Background()
	pose := experiment.Pose{Position: experiment.Vec3{Y: -1}}

	anchor, err := a.CreateAnchor(ctx, pose)
	require.NoError(t, err)
	assert.NotEmpty(t, anchor.ID)
	assert.Equal(t, pose, anchor.Pose)

	a.FailNext(true)
	assert.True(t, a.Armed())
	_, err = a.CreateAnchor(ctx, pose)
	assert.ErrorIs(t, err, ErrTrackingLost)
	assert.False(t, a.Armed())

	_, err = a.CreateAnchor(ctx, pose)
	assert.NoError(t, err)
	assert.Equal(t, 2, a.Created())
}

func TestAnchorerHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewAnchorer().CreateAnchor(ctx, experiment.Pose{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRaycastFollowsAnchorRotation(t *testing.T) {
	// A thin 0.8m wall facing the viewer, then the same wall on an anchor
	// turned 90 degrees about Y so it runs along the view direction.
	wall := experiment.TrackedObject{
		ID:       "wall",
		Position: experiment.Vec3{Z: -1},
		Size:     experiment.Vec3{X: 0.8, Y: 0.8, Z: 0.02},
	}
	offAxis := Ray{Origin: experiment.Vec3{X: 0.3}, Direction: experiment.Vec3{Z: -1}}
	center := Ray{Direction: experiment.Vec3{Z: -1}}

	s := New()
	s.PlaceObject(wall)
	assert.Equal(t, []string{"wall"}, s.Raycast(offAxis))

	turned := wall
	turned.Orientation = experiment.Quat{Y: math.Sin(math.Pi / 4), W: math.Cos(math.Pi / 4)}
	s.PlaceObject(turned)
	assert.Empty(t, s.Raycast(offAxis))
	assert.Equal(t, []string{"wall"}, s.Raycast(center))

	d, ok := intersect(center, &turned)
	require.True(t, ok)
	assert.InDelta(t, 0.6, d, 1e-9)
}

func TestSetLabelVisible(t *testing.T) {
	s := New()
	s.PlaceObject(cube("a", -1))
	s.SetLabelVisible("a", true)
	s.SetLabelVisible("ghost", true)

	a, _ := s.Object("a")
	assert.True(t, a.LabelVisible)
	assert.Equal(t, 1, s.Len())
}
