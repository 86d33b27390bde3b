package headless

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrhq/vanish/pkg/experiment"
)

// ArtifactWriter handles writing run artifacts
type ArtifactWriter struct {
	outputDir string
}

// NewArtifactWriter creates a new artifact writer
func NewArtifactWriter(outputDir string) *ArtifactWriter {
	return &ArtifactWriter{
		outputDir: outputDir,
	}
}

// WriteAll writes execution.json, summary.md and metrics.json.
func (w *ArtifactWriter) WriteAll(summary *ExecutionSummary) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := w.WriteExecutionJSON(summary); err != nil {
		return fmt.Errorf("failed to write execution JSON: %w", err)
	}
	if err := w.WriteSummaryMarkdown(summary); err != nil {
		return fmt.Errorf("failed to write summary markdown: %w", err)
	}
	if err := w.WriteMetricsJSON(summary); err != nil {
		return fmt.Errorf("failed to write metrics JSON: %w", err)
	}
	return nil
}

func (w *ArtifactWriter) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(w.outputDir, name), data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// WriteExecutionJSON writes the full summary, every step included.
func (w *ArtifactWriter) WriteExecutionJSON(summary *ExecutionSummary) error {
	return w.writeJSON("execution.json", summary)
}

// WriteMetricsJSON writes the aggregate counts only.
func (w *ArtifactWriter) WriteMetricsJSON(summary *ExecutionSummary) error {
	return w.writeJSON("metrics.json", summary.Metrics)
}

// WriteSummaryMarkdown writes a human-readable summary with one click table
// per variant.
func (w *ArtifactWriter) WriteSummaryMarkdown(summary *ExecutionSummary) error {
	var md strings.Builder

	md.WriteString("# vanish Scenario Summary\n\n")
	fmt.Fprintf(&md, "**Scenario:** %s\n\n", summary.Scenario)
	fmt.Fprintf(&md, "**Status:** %s\n\n", summary.Status)
	fmt.Fprintf(&md, "**Started:** %s\n\n", summary.StartTime.Format(time.RFC3339))
	fmt.Fprintf(&md, "**Duration:** %s\n\n", summary.Duration)

	md.WriteString("## Result\n\n")
	if summary.Error != "" {
		fmt.Fprintf(&md, "❌ **Error:** %s\n\n", summary.Error)
	} else {
		md.WriteString("✅ **Success**\n\n")
	}

	for _, run := range summary.Runs {
		mark := "✅"
		if run.Status != statusSuccess {
			mark = "❌"
		}
		fmt.Fprintf(&md, "## %s %s\n\n", mark, run.Variant)
		fmt.Fprintf(&md, "Final phase `%s`, stage %d, %d responses.\n\n", run.FinalPhase, run.FinalStage, len(run.Responses))

		md.WriteString("| Object | Clicks |\n|---|---|\n")
		for _, e := range run.Tally {
			fmt.Fprintf(&md, "| %s | %d |\n", e.Label, e.Count)
		}
		md.WriteString("\n")

		for _, st := range run.Steps {
			for _, f := range st.Failures {
				fmt.Fprintf(&md, "- step %d (%s): %s\n", st.Index, st.Action, f)
			}
		}
		for _, f := range run.Failures {
			fmt.Fprintf(&md, "- final: %s\n", f)
		}
		if run.failed() {
			md.WriteString("\n")
		}
	}

	md.WriteString("## Metrics\n\n")
	fmt.Fprintf(&md, "- **Variants:** %d\n", summary.Metrics.Variants)
	fmt.Fprintf(&md, "- **Steps:** %d\n", summary.Metrics.Steps)
	fmt.Fprintf(&md, "- **Taps:** %d (%d registered)\n", summary.Metrics.Taps, summary.Metrics.TapsRegistered)
	fmt.Fprintf(&md, "- **Responses:** %d\n", summary.Metrics.Responses)
	fmt.Fprintf(&md, "- **Failures:** %d\n", summary.Metrics.Failures)

	if err := os.WriteFile(filepath.Join(w.outputDir, "summary.md"), []byte(md.String()), 0600); err != nil {
		return fmt.Errorf("failed to write summary markdown: %w", err)
	}
	return nil
}

// ExecutionSummary is the complete record of one scenario run
type ExecutionSummary struct {
	Scenario  string           `json:"scenario"`
	Status    string           `json:"status"`
	Error     string           `json:"error,omitempty"`
	StartTime time.Time        `json:"start_time"`
	EndTime   time.Time        `json:"end_time"`
	Duration  time.Duration    `json:"duration"`
	Runs      []VariantRun     `json:"runs"`
	Metrics   ExecutionMetrics `json:"metrics"`
}

// VariantRun is the record of one variant's session.
type VariantRun struct {
	Variant    string                  `json:"variant"`
	SessionID  string                  `json:"session_id"`
	Status     string                  `json:"status"`
	Steps      []StepResult            `json:"steps"`
	FinalPhase string                  `json:"final_phase"`
	FinalStage int                     `json:"final_stage"`
	Tally      []experiment.TallyEntry `json:"tally"`
	Responses  []experiment.Response   `json:"responses"`
	Failures   []string                `json:"failures,omitempty"`
}

func (r VariantRun) failed() bool {
	if len(r.Failures) > 0 {
		return true
	}
	for _, st := range r.Steps {
		if len(st.Failures) > 0 {
			return true
		}
	}
	return false
}

// StepResult records the state after one step.
type StepResult struct {
	Index      int      `json:"index"`
	Action     Action   `json:"action"`
	Candidates []string `json:"candidates,omitempty"`
	Hit        string   `json:"hit,omitempty"`
	Phase      string   `json:"phase"`
	Stage      int      `json:"stage"`
	Status     string   `json:"status,omitempty"`
	Failures   []string `json:"failures,omitempty"`
}

// ExecutionMetrics contains aggregate counts across runs
type ExecutionMetrics struct {
	Variants       int `json:"variants"`
	Steps          int `json:"steps"`
	Taps           int `json:"taps"`
	TapsRegistered int `json:"taps_registered"`
	Responses      int `json:"responses"`
	Failures       int `json:"failures"`
}

func collectMetrics(runs []VariantRun) ExecutionMetrics {
	var m ExecutionMetrics
	m.Variants = len(runs)
	for _, r := range runs {
		m.Steps += len(r.Steps)
		m.Responses += len(r.Responses)
		m.Failures += len(r.Failures)
		for _, st := range r.Steps {
			m.Failures += len(st.Failures)
			if st.Action == ActionTap {
				m.Taps++
				if st.Hit != "" {
					m.TapsRegistered++
				}
			}
		}
	}
	return m
}
