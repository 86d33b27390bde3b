package config

import (
	"fmt"
	"sync"

	"github.com/entrhq/vanish/pkg/logging"
)

const (
	// SectionIDExperiment is the identifier for the experiment settings section
	SectionIDExperiment = "experiment"

	defaultVariantName = "transparency-probe"
	defaultLogLevel    = "info"
)

// ExperimentSection holds what a session runs by default.
type ExperimentSection struct {
	DefaultVariant string `json:"default_variant"`
	VariantsDir    string `json:"variants_dir"`
	// Seed fixes the recolor sequence; 0 picks a random seed per session.
	Seed     int64  `json:"seed"`
	LogLevel string `json:"log_level"`
	mu       sync.RWMutex
}

// NewExperimentSection creates the section with defaults.
func NewExperimentSection() *ExperimentSection {
	return &ExperimentSection{
		DefaultVariant: defaultVariantName,
		LogLevel:       defaultLogLevel,
	}
}

func (s *ExperimentSection) ID() string    { return SectionIDExperiment }
func (s *ExperimentSection) Title() string { return "Experiment" }
func (s *ExperimentSection) Description() string {
	return "Default variant, extra variant directory, recolor seed and log level."
}

// Data returns the current configuration data.
func (s *ExperimentSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"default_variant": s.DefaultVariant,
		"variants_dir":    s.VariantsDir,
		"seed":            s.Seed,
		"log_level":       s.LogLevel,
	}
}

// SetData updates the section from stored data. Unknown keys are ignored.
func (s *ExperimentSection) SetData(data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		var err error
		switch key {
		case "default_variant":
			s.DefaultVariant, err = asString(key, value)
		case "variants_dir":
			s.VariantsDir, err = asString(key, value)
		case "seed":
			s.Seed, err = asInt(key, value)
		case "log_level":
			s.LogLevel, err = asString(key, value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the current configuration.
func (s *ExperimentSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.DefaultVariant == "" {
		return fmt.Errorf("default_variant must not be empty")
	}
	if _, err := logging.ParseLevel(s.LogLevel); err != nil {
		return err
	}
	return nil
}

// Reset restores defaults.
func (s *ExperimentSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DefaultVariant = defaultVariantName
	s.VariantsDir = ""
	s.Seed = 0
	s.LogLevel = defaultLogLevel
}

// Snapshot returns the fields without the lock.
func (s *ExperimentSection) Snapshot() (variant, dir string, seed int64, level string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.DefaultVariant, s.VariantsDir, s.Seed, s.LogLevel
}
