package headless

import (
	"bytes"
	"fmt"
	"os"

	"github.com/entrhq/vanish/pkg/experiment"
	"github.com/entrhq/vanish/pkg/scene"
	"gopkg.in/yaml.v3"
)

// Action names a scenario step.
type Action string

const (
	ActionSelect Action = "select" // ActionSelect places the objects at Pose.
	ActionTap    Action = "tap"    // ActionTap taps along a ray or with explicit candidates.
	ActionNext   Action = "next"   // ActionNext presses Next.
	ActionYes    Action = "yes"    // ActionYes presses Yes.
	ActionNo     Action = "no"     // ActionNo presses No.
)

// Scenario is a scripted run over one or more variants.
type Scenario struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Variants are glob patterns matched against registered variant names.
	Variants []string `yaml:"variants" json:"variants"`

	// Seed fixes the recolor sequence so color expectations are stable.
	Seed int64 `yaml:"seed,omitempty" json:"seed,omitempty"`

	// Viewer is the eye position that target taps are cast from.
	Viewer experiment.Vec3 `yaml:"viewer" json:"viewer"`

	// Placement is the default pose for select steps.
	Placement experiment.Pose `yaml:"placement" json:"placement"`

	Steps  []Step       `yaml:"steps" json:"steps"`
	Expect *Expectation `yaml:"expect,omitempty" json:"expect,omitempty"`

	Artifacts ArtifactConfig `yaml:"artifacts" json:"artifacts"`
	Logging   LoggingConfig  `yaml:"logging" json:"logging"`
}

// Step is one scripted input.
type Step struct {
	Action Action `yaml:"action" json:"action"`

	// Pose overrides the scenario placement for select.
	Pose *experiment.Pose `yaml:"pose,omitempty" json:"pose,omitempty"`
	// FailAnchor makes the anchor request of a select step fail.
	FailAnchor bool `yaml:"fail_anchor,omitempty" json:"fail_anchor,omitempty"`

	// A tap uses exactly one of Target, Ray or Candidates. Target casts a
	// ray from the viewer through the named object's centre.
	Target     string     `yaml:"target,omitempty" json:"target,omitempty"`
	Ray        *scene.Ray `yaml:"ray,omitempty" json:"ray,omitempty"`
	Candidates []string   `yaml:"candidates,omitempty" json:"candidates,omitempty"`

	Expect *Expectation `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// Expectation lists checks against session state. Unset fields are not
// checked.
type Expectation struct {
	Phase     string         `yaml:"phase,omitempty" json:"phase,omitempty"`
	Stage     *int           `yaml:"stage,omitempty" json:"stage,omitempty"`
	Tally     map[string]int `yaml:"tally,omitempty" json:"tally,omitempty"`
	Objects   *int           `yaml:"objects,omitempty" json:"objects,omitempty"`
	Responses *int           `yaml:"responses,omitempty" json:"responses,omitempty"`
	// Hit is the object a tap step should register on; "none" expects a miss.
	Hit string `yaml:"hit,omitempty" json:"hit,omitempty"`
	// Status must be contained in the last status message.
	Status string `yaml:"status,omitempty" json:"status,omitempty"`
	// Labels lists the objects whose labels should be showing; an empty
	// list expects every label hidden.
	Labels []string `yaml:"labels,omitempty" json:"labels,omitempty"`
}

// LoggingConfig defines console output
type LoggingConfig struct {
	// Verbosity controls logging level: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`
}

// ArtifactConfig defines artifact generation
type ArtifactConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	OutputDir string `yaml:"output_dir" json:"output_dir"`
}

// DefaultScenario returns the settings applied before a scenario file is
// decoded: artifacts on, normal verbosity, objects placed one metre ahead
// and slightly below the viewer.
func DefaultScenario() *Scenario {
	return &Scenario{
		Variants:  []string{"*"},
		Placement: experiment.Pose{Position: experiment.Vec3{Y: -0.5, Z: -1}, Orientation: experiment.IdentityQuat()},
		Artifacts: ArtifactConfig{Enabled: true, OutputDir: ".vanish/artifacts"},
		Logging:   LoggingConfig{Verbosity: "normal"},
	}
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes a scenario on top of DefaultScenario and validates it.
func ParseScenario(data []byte) (*Scenario, error) {
	s := DefaultScenario()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return s, nil
}

// Validate validates the scenario
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if len(s.Variants) == 0 {
		return fmt.Errorf("at least one variant pattern is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}

	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	if s.Expect != nil {
		if err := s.Expect.validate(); err != nil {
			return fmt.Errorf("expect: %w", err)
		}
	}

	if s.Logging.Verbosity == "" {
		s.Logging.Verbosity = "normal"
	}
	validLevels := map[string]bool{
		"quiet":   true,
		"normal":  true,
		"verbose": true,
		"debug":   true,
	}
	if !validLevels[s.Logging.Verbosity] {
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", s.Logging.Verbosity)
	}
	return nil
}

func (st Step) validate() error {
	switch st.Action {
	case ActionSelect, ActionNext, ActionYes, ActionNo:
		if st.Target != "" || st.Ray != nil || len(st.Candidates) > 0 {
			return fmt.Errorf("%s does not take a tap target", st.Action)
		}
	case ActionTap:
		set := 0
		if st.Target != "" {
			set++
		}
		if st.Ray != nil {
			set++
		}
		if len(st.Candidates) > 0 {
			set++
		}
		if set != 1 {
			return fmt.Errorf("tap needs exactly one of target, ray or candidates")
		}
		if st.Ray != nil && st.Ray.Direction.IsZero() {
			return fmt.Errorf("tap ray direction must be non-zero")
		}
	case "":
		return fmt.Errorf("action is required")
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
	if st.FailAnchor && st.Action != ActionSelect {
		return fmt.Errorf("fail_anchor only applies to select")
	}
	if st.Expect != nil {
		if st.Expect.Hit != "" && st.Action != ActionTap {
			return fmt.Errorf("expect.hit only applies to tap")
		}
		return st.Expect.validate()
	}
	return nil
}

func (e *Expectation) validate() error {
	if e.Phase != "" {
		if _, err := experiment.ParsePhase(e.Phase); err != nil {
			return err
		}
	}
	if e.Stage != nil && *e.Stage < 0 {
		return fmt.Errorf("stage cannot be negative")
	}
	return nil
}
