package headless

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/entrhq/vanish/pkg/experiment"
	"github.com/entrhq/vanish/pkg/host"
	"github.com/entrhq/vanish/pkg/logging"
	"github.com/entrhq/vanish/pkg/scene"
	"github.com/entrhq/vanish/pkg/security/workspace"
	"github.com/entrhq/vanish/pkg/types"
	"github.com/entrhq/vanish/pkg/variant"
)

const (
	statusSuccess = "success"
	statusFailed  = "failed"
	statusNoMatch = "no_match"
)

// ErrExpectationsFailed is returned by Run when any check did not hold.
var ErrExpectationsFailed = errors.New("scenario expectations failed")

// Executor runs one scenario against a variant registry.
type Executor struct {
	scenario       *Scenario
	registry       *variant.Registry
	console        *Logger
	logger         *logging.Logger
	artifactWriter *ArtifactWriter
	guard          *workspace.Guard
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor) error

// WithAllowedDir lets artifacts be written under dir even when it is outside
// the workspace.
func WithAllowedDir(dir string) ExecutorOption {
	return func(e *Executor) error { return e.guard.Allow(dir) }
}

// NewExecutor creates an executor. Relative artifact paths are taken from
// workspaceDir, and the artifact directory must stay inside it.
func NewExecutor(s *Scenario, registry *variant.Registry, workspaceDir string, opts ...ExecutorOption) (*Executor, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if registry == nil {
		return nil, errors.New("variant registry is required")
	}
	guard, err := workspace.NewGuard(workspaceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace guard: %w", err)
	}

	e := &Executor{
		scenario: s,
		registry: registry,
		console:  NewLogger(parseLogLevel(s.Logging.Verbosity)),
		logger:   logging.MustLogger("headless"),
		guard:    guard,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	if s.Artifacts.Enabled {
		dir, err := guard.Resolve(s.Artifacts.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("artifact directory: %w", err)
		}
		e.artifactWriter = NewArtifactWriter(dir)
	}
	return e, nil
}

// SetConsole replaces the console logger.
func (e *Executor) SetConsole(l *Logger) { e.console = l }

// SetLogger replaces the file logger.
func (e *Executor) SetLogger(l *logging.Logger) { e.logger = l }

// Run plays the scenario against every matching variant, writes artifacts if
// enabled and returns the summary. The error is ErrExpectationsFailed when a
// check failed and something else when the run could not happen at all.
func (e *Executor) Run(ctx context.Context) (*ExecutionSummary, error) {
	summary := &ExecutionSummary{
		Scenario:  e.scenario.Name,
		Status:    "running",
		StartTime: time.Now(),
	}
	e.console.Header("vanish scenario: " + e.scenario.Name)
	e.logger.Infof("starting scenario %s", e.scenario.Name)

	variants, err := e.resolveVariants()
	if err != nil {
		return e.finish(summary, err)
	}
	if len(variants) == 0 {
		summary.Status = statusNoMatch
		return e.finish(summary, fmt.Errorf("no variant matches %v", e.scenario.Variants))
	}
	e.console.Infof("%d variant(s), %d step(s) each", len(variants), len(e.scenario.Steps))

	for _, v := range variants {
		if err := ctx.Err(); err != nil {
			return e.finish(summary, err)
		}
		run, err := e.runVariant(ctx, v)
		if err != nil {
			return e.finish(summary, fmt.Errorf("variant %s: %w", v.Name, err))
		}
		summary.Runs = append(summary.Runs, run)
	}

	summary.Metrics = collectMetrics(summary.Runs)
	if summary.Metrics.Failures > 0 {
		return e.finish(summary, ErrExpectationsFailed)
	}
	return e.finish(summary, nil)
}

// resolveVariants expands the scenario's patterns, keeping first-match order
// and dropping duplicates.
func (e *Executor) resolveVariants() ([]*experiment.Variant, error) {
	var out []*experiment.Variant
	seen := map[string]bool{}
	for _, pattern := range e.scenario.Variants {
		matched, err := e.registry.Match(pattern)
		if err != nil {
			return nil, err
		}
		for _, v := range matched {
			if !seen[v.Name] {
				seen[v.Name] = true
				out = append(out, v)
			}
		}
	}
	return out, nil
}

// surfaceState keeps what the overlay would currently show.
type surfaceState struct {
	status   string
	toast    string
	controls map[experiment.Control]bool
}

func (s *surfaceState) apply(cmd *types.Command) {
	if !cmd.IsSurfaceCommand() {
		return
	}
	switch cmd.Type {
	case types.CommandTypeShowStatus:
		s.status = cmd.Message
	case types.CommandTypeShowToast:
		s.toast = cmd.Message
	case types.CommandTypeSetControl:
		s.controls[cmd.Control] = cmd.Shown()
	}
}

func (e *Executor) runVariant(ctx context.Context, v *experiment.Variant) (VariantRun, error) {
	e.console.Section(v.Name)

	sc := scene.New()
	anchorer := scene.NewAnchorer()
	surface := &surfaceState{controls: map[experiment.Control]bool{}}

	opts := []host.Option{
		host.WithRenderer(sc),
		host.WithAnchorer(anchorer),
		host.WithLogger(e.logger),
	}
	if e.scenario.Seed != 0 {
		seed := uint64(e.scenario.Seed)
		opts = append(opts, host.WithSessionOptions(experiment.WithRand(rand.New(rand.NewPCG(seed, seed)))))
	}
	d, err := host.NewDispatcher(v, surface.apply, opts...)
	if err != nil {
		return VariantRun{}, err
	}
	d.Start()
	defer d.Close()
	session := d.Session()

	run := VariantRun{Variant: v.Name, SessionID: session.ID()}
	for i, st := range e.scenario.Steps {
		res := StepResult{Index: i + 1, Action: st.Action}

		in, err := e.buildInput(st, sc)
		if err != nil {
			res.Failures = append(res.Failures, err.Error())
		} else {
			if st.Action == ActionSelect {
				anchorer.FailNext(st.FailAnchor)
			}
			before := session.Tally().Snapshot()
			if err := d.Handle(ctx, in); err != nil {
				return run, err
			}
			if st.Action == ActionTap {
				res.Candidates = in.Candidates
				res.Hit = experiment.Increased(before, session.Tally().Snapshot())
			}
		}

		res.Phase = session.Phase().String()
		res.Stage = session.Stage()
		res.Status = surface.status
		if st.Expect != nil {
			res.Failures = append(res.Failures, check(st.Expect, session, surface, &res)...)
		}
		e.console.StepResult(res)
		run.Steps = append(run.Steps, res)
	}

	if e.scenario.Expect != nil {
		run.Failures = check(e.scenario.Expect, session, surface, nil)
		for _, f := range run.Failures {
			e.console.Errorf("%s: %s", v.Name, f)
		}
	}

	run.FinalPhase = session.Phase().String()
	run.FinalStage = session.Stage()
	run.Tally = session.Tally().Snapshot()
	run.Responses = session.Responses()
	run.Status = statusSuccess
	if run.failed() {
		run.Status = statusFailed
	} else {
		e.console.Successf("%s passed", v.Name)
	}
	e.logger.Infof("variant %s finished: %s", v.Name, run.Status)
	return run, nil
}

// buildInput converts a step to the input a host would send.
func (e *Executor) buildInput(st Step, sc *scene.Scene) (*types.Input, error) {
	switch st.Action {
	case ActionSelect:
		pose := e.scenario.Placement
		if st.Pose != nil {
			pose = *st.Pose
		}
		return types.NewSelectInput(pose), nil
	case ActionTap:
		switch {
		case len(st.Candidates) > 0:
			return types.NewTapInput(st.Candidates...), nil
		case st.Ray != nil:
			r := scene.Ray{Origin: st.Ray.Origin, Direction: st.Ray.Direction.Normalize()}
			return types.NewTapInput(sc.Raycast(r)...), nil
		default:
			obj, ok := sc.Object(st.Target)
			if !ok {
				// Nothing to aim at: the tap lands on empty space.
				return types.NewTapInput(), nil
			}
			return types.NewTapInput(sc.Raycast(scene.Toward(e.scenario.Viewer, obj.Position))...), nil
		}
	default:
		return types.NewButtonInput(types.InputType(st.Action)), nil
	}
}

// check compares session state against an expectation and returns one
// message per mismatch.
func check(exp *Expectation, s *experiment.Session, surface *surfaceState, step *StepResult) []string {
	var failures []string
	if exp.Phase != "" && s.Phase().String() != exp.Phase {
		failures = append(failures, fmt.Sprintf("phase: want %s, got %s", exp.Phase, s.Phase()))
	}
	if exp.Stage != nil && s.Stage() != *exp.Stage {
		failures = append(failures, fmt.Sprintf("stage: want %d, got %d", *exp.Stage, s.Stage()))
	}
	if exp.Objects != nil && len(s.Objects()) != *exp.Objects {
		failures = append(failures, fmt.Sprintf("objects: want %d, got %d", *exp.Objects, len(s.Objects())))
	}
	if exp.Responses != nil && len(s.Responses()) != *exp.Responses {
		failures = append(failures, fmt.Sprintf("responses: want %d, got %d", *exp.Responses, len(s.Responses())))
	}

	ids := make([]string, 0, len(exp.Tally))
	for id := range exp.Tally {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if got := s.Tally().Count(id); got != exp.Tally[id] {
			failures = append(failures, fmt.Sprintf("tally %s: want %d, got %d", id, exp.Tally[id], got))
		}
	}

	if exp.Labels != nil {
		var shown []string
		for _, o := range s.Objects() {
			if o.LabelVisible {
				shown = append(shown, o.ID)
			}
		}
		want := slices.Sorted(slices.Values(exp.Labels))
		slices.Sort(shown)
		if !slices.Equal(shown, want) {
			failures = append(failures, fmt.Sprintf("labels: want [%s], got [%s]", strings.Join(want, ", "), strings.Join(shown, ", ")))
		}
	}

	if exp.Status != "" && !strings.Contains(surface.status, exp.Status) {
		failures = append(failures, fmt.Sprintf("status: want %q in %q", exp.Status, surface.status))
	}
	if exp.Hit != "" && step != nil {
		got := step.Hit
		if got == "" {
			got = "none"
		}
		if got != exp.Hit {
			failures = append(failures, fmt.Sprintf("hit: want %s, got %s", exp.Hit, got))
		}
	}
	return failures
}

func (e *Executor) finish(summary *ExecutionSummary, runErr error) (*ExecutionSummary, error) {
	summary.EndTime = time.Now()
	summary.Duration = summary.EndTime.Sub(summary.StartTime)
	if summary.Metrics.Variants == 0 {
		summary.Metrics = collectMetrics(summary.Runs)
	}

	switch {
	case runErr == nil:
		summary.Status = statusSuccess
	case summary.Status != statusNoMatch:
		summary.Status = statusFailed
	}
	if runErr != nil {
		summary.Error = runErr.Error()
		e.logger.Errorf("scenario %s: %v", e.scenario.Name, runErr)
	}

	if e.artifactWriter != nil {
		if err := e.artifactWriter.WriteAll(summary); err != nil {
			e.console.Warningf("failed to write artifacts: %v", err)
		} else {
			e.console.Verbosef("artifacts written to %s", e.artifactWriter.outputDir)
		}
	}
	e.console.Summary(summary)
	return summary, runErr
}
