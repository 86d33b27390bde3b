package experiment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialFor(t *testing.T) {
	v := probeVariant()

	tests := []struct {
		stage int
		role  Role
		want  Material
	}{
		{0, RoleProbe, Material{Opacity: 0.75, Visible: true}},
		{1, RoleProbe, Material{Opacity: 0, Visible: true}},
		{2, RoleProbe, Material{Opacity: 0, Visible: false}},
		{0, RoleReference, Opaque()},
		{2, RoleReference, Opaque()},
	}
	for _, tt := range tests {
		got, err := v.MaterialFor(tt.stage, tt.role)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "stage %d role %s", tt.stage, tt.role)

		again, _ := v.MaterialFor(tt.stage, tt.role)
		assert.Equal(t, got, again)
	}

	_, err := v.MaterialFor(3, RoleProbe)
	assert.ErrorIs(t, err, ErrStageOutOfRange)
	_, err = v.MaterialFor(-1, RoleProbe)
	assert.ErrorIs(t, err, ErrStageOutOfRange)
}

func TestMaterialSelectable(t *testing.T) {
	assert.True(t, Opaque().Selectable())
	assert.True(t, Material{Opacity: 0.01, Visible: true}.Selectable())
	assert.False(t, Material{Opacity: 0, Visible: true}.Selectable())
	assert.False(t, Material{Opacity: 1, Visible: false}.Selectable())
}

func TestVariantLint(t *testing.T) {
	v := probeVariant()
	warnings := v.Lint()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "stage 1 (transparent)")

	v.Stages[0].Materials["ghost"] = Opaque()
	assert.Len(t, v.Lint(), 2)
}

func TestVariantRoles(t *testing.T) {
	assert.Equal(t, []Role{RoleReference, RoleProbe}, probeVariant().Roles())
}

func TestPoseTransform(t *testing.T) {
	// 90 degrees about Y maps +Z onto +X.
	s := math.Sqrt(0.5)
	p := Pose{Position: Vec3{1, 2, 3}, Orientation: Quat{Y: s, W: s}}
	got := p.Transform(Vec3{Z: 1})

	assert.InDelta(t, 2.0, got.X, 1e-9)
	assert.InDelta(t, 2.0, got.Y, 1e-9)
	assert.InDelta(t, 3.0, got.Z, 1e-9)

	// Zero quaternion behaves as identity.
	assert.Equal(t, Vec3{1, 2, 3.5}, Pose{Position: Vec3{1, 2, 3}}.Transform(Vec3{Z: 0.5}))
}

func TestVec3(t *testing.T) {
	v := Vec3{3, 4, 0}
	assert.Equal(t, 5.0, v.Length())
	assert.InDelta(t, 1.0, v.Normalize().Length(), 1e-12)
	assert.Equal(t, Vec3{}, Vec3{}.Normalize())
	assert.Equal(t, Vec3{0, 0, 1}, Vec3{1, 0, 0}.Cross(Vec3{0, 1, 0}))
}

func TestVariantFeedback(t *testing.T) {
	v := &Variant{}
	assert.Equal(t, TapFeedbackNone, v.Feedback())
	v.TapFeedback = TapFeedbackToggleLabel
	assert.Equal(t, TapFeedbackToggleLabel, v.Feedback())
}

func TestQuatConjugateUndoesRotation(t *testing.T) {
	q := Quat{Y: math.Sin(math.Pi / 8), W: math.Cos(math.Pi / 8)}
	v := Vec3{0.3, -0.2, 1}
	back := q.Conjugate().Rotate(q.Rotate(v))
	assert.InDelta(t, v.X, back.X, 1e-9)
	assert.InDelta(t, v.Y, back.Y, 1e-9)
	assert.InDelta(t, v.Z, back.Z, 1e-9)
}
