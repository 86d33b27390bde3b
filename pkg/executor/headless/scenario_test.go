package headless

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenarioAppliesDefaults(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: minimal
steps:
  - action: select
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"*"}, s.Variants)
	assert.Equal(t, "normal", s.Logging.Verbosity)
	assert.True(t, s.Artifacts.Enabled)
	assert.Equal(t, ".vanish/artifacts", s.Artifacts.OutputDir)
	assert.Equal(t, -1.0, s.Placement.Position.Z)
	assert.Equal(t, 1.0, s.Placement.Orientation.W)
}

func TestParseScenarioFull(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: full
variants: ["transparency-*"]
seed: 7
viewer: {x: 0, y: 0, z: 0}
steps:
  - action: select
    fail_anchor: true
  - action: tap
    ray: {origin: {x: 0, y: 0, z: 0}, direction: {x: 0, y: 0, z: -1}}
    expect: {hit: none}
  - action: tap
    candidates: [cube-2, cube-1]
    expect: {hit: cube-2, stage: 0}
expect:
  phase: anchor_placed
  tally: {cube-2: 1}
artifacts: {enabled: false}
logging: {verbosity: quiet}
`))
	require.NoError(t, err)

	assert.Equal(t, int64(7), s.Seed)
	require.Len(t, s.Steps, 3)
	assert.True(t, s.Steps[0].FailAnchor)
	require.NotNil(t, s.Steps[1].Ray)
	assert.Equal(t, -1.0, s.Steps[1].Ray.Direction.Z)
	assert.Equal(t, []string{"cube-2", "cube-1"}, s.Steps[2].Candidates)
	require.NotNil(t, s.Steps[2].Expect.Stage)
	assert.Equal(t, 0, *s.Steps[2].Expect.Stage)
	assert.Equal(t, map[string]int{"cube-2": 1}, s.Expect.Tally)
	assert.False(t, s.Artifacts.Enabled)
}

func TestParseScenarioRejectsUnknownFields(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
stepz: []
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse scenario YAML")
}

func TestScenarioValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "steps: [{action: select}]",
			wantErr: "scenario name is required",
		},
		{
			name:    "no steps",
			yaml:    "name: x",
			wantErr: "at least one step is required",
		},
		{
			name:    "unknown action",
			yaml:    "name: x\nsteps: [{action: swipe}]",
			wantErr: `unknown action "swipe"`,
		},
		{
			name:    "tap without target",
			yaml:    "name: x\nsteps: [{action: tap}]",
			wantErr: "exactly one of target, ray or candidates",
		},
		{
			name:    "tap with two targets",
			yaml:    "name: x\nsteps: [{action: tap, target: cube-1, candidates: [cube-1]}]",
			wantErr: "exactly one of target, ray or candidates",
		},
		{
			name:    "zero ray",
			yaml:    "name: x\nsteps: [{action: tap, ray: {origin: {x: 0}, direction: {x: 0}}}]",
			wantErr: "direction must be non-zero",
		},
		{
			name:    "target on next",
			yaml:    "name: x\nsteps: [{action: next, target: cube-1}]",
			wantErr: "next does not take a tap target",
		},
		{
			name:    "fail_anchor on tap",
			yaml:    "name: x\nsteps: [{action: tap, target: cube-1, fail_anchor: true}]",
			wantErr: "fail_anchor only applies to select",
		},
		{
			name:    "hit on select",
			yaml:    "name: x\nsteps: [{action: select, expect: {hit: cube-1}}]",
			wantErr: "expect.hit only applies to tap",
		},
		{
			name:    "bad phase",
			yaml:    "name: x\nsteps: [{action: select}]\nexpect: {phase: floating}",
			wantErr: `unknown phase "floating"`,
		},
		{
			name:    "negative stage",
			yaml:    "name: x\nsteps: [{action: next, expect: {stage: -1}}]",
			wantErr: "stage cannot be negative",
		},
		{
			name:    "bad verbosity",
			yaml:    "name: x\nsteps: [{action: select}]\nlogging: {verbosity: loud}",
			wantErr: "invalid logging verbosity: loud",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: from-file\nsteps: [{action: select}]\n"), 0600))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", s.Name)

	_, err = LoadScenario(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}
