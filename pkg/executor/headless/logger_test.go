package headless

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"quiet", LogLevelQuiet},
		{"normal", LogLevelNormal},
		{"verbose", LogLevelVerbose},
		{"debug", LogLevelDebug},
		{"", LogLevelNormal},
		{"loud", LogLevelNormal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.in), tt.in)
	}
}

func TestLoggerQuietHidesProgress(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, LogLevelQuiet)

	l.Header("scenario")
	l.Section("variant")
	l.Infof("info")
	l.Verbosef("detail")
	l.StepResult(StepResult{Index: 1, Action: ActionSelect})
	assert.Empty(t, buf.String())

	l.Errorf("boom %d", 1)
	l.Warningf("careful")
	assert.Contains(t, buf.String(), "Error: boom 1")
	assert.Contains(t, buf.String(), "Warning: careful")
}

func TestLoggerStepResult(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, LogLevelNormal)

	l.StepResult(StepResult{Index: 2, Action: ActionTap, Hit: "cube-1"})
	l.StepResult(StepResult{Index: 3, Action: ActionTap})
	assert.Contains(t, buf.String(), "[2] tap → cube-1")
	assert.Contains(t, buf.String(), "[3] tap (miss)")

	buf.Reset()
	quiet := NewLoggerTo(&buf, LogLevelQuiet)
	quiet.StepResult(StepResult{Index: 4, Action: ActionNext, Failures: []string{"stage: want 1, got 0"}})
	assert.Contains(t, buf.String(), "✗ [4] next")
	assert.Contains(t, buf.String(), "stage: want 1, got 0")
}

func TestLoggerVerboseStepShowsState(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, LogLevelDebug)

	l.StepResult(StepResult{Index: 1, Action: ActionTap, Hit: "cube-2", Candidates: []string{"cube-2", "cube-1"}, Phase: "anchor_placed", Status: "hi"})
	out := buf.String()
	assert.Contains(t, out, "anchor_placed stage 0")
	assert.Contains(t, out, "status: hi")
	assert.Contains(t, out, "candidates: cube-2, cube-1")
}

func TestLoggerSummary(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, LogLevelVerbose)

	l.Summary(sampleSummary())
	out := buf.String()
	assert.Contains(t, out, "SCENARIO SUMMARY")
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, "transparency-probe")
	assert.Contains(t, out, "Cube 2: 1")
	assert.Contains(t, out, "Taps: 2 (1 registered)")
	assert.Contains(t, out, "Failed checks: 2")
	assert.Contains(t, out, "scenario expectations failed")
}
