package config

import (
	"fmt"
	"sync"
	"time"
)

const (
	// SectionIDUI is the identifier for the UI settings section
	SectionIDUI = "ui"

	defaultToastDuration = 3 * time.Second
	defaultShowHelp      = true
)

// UISection configures the terminal simulator.
type UISection struct {
	// ToastDuration is how long a stage prompt stays on screen.
	ToastDuration time.Duration `json:"toast_duration"`
	ShowHelp      bool          `json:"show_help"`
	mu            sync.RWMutex
}

// NewUISection creates a new UI section with default settings.
func NewUISection() *UISection {
	return &UISection{
		ToastDuration: defaultToastDuration,
		ShowHelp:      defaultShowHelp,
	}
}

// ID returns the section identifier.
func (s *UISection) ID() string {
	return SectionIDUI
}

// Title returns the section title.
func (s *UISection) Title() string {
	return "UI Settings"
}

// Description returns the section description.
func (s *UISection) Description() string {
	return "Configure the terminal simulator: toast duration and key help."
}

// Data returns the current configuration data.
func (s *UISection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]any{
		"toast_duration": s.ToastDuration.String(),
		"show_help":      s.ShowHelp,
	}
}

// SetData updates the configuration from the provided data.
func (s *UISection) SetData(data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		var err error
		switch key {
		case "toast_duration":
			s.ToastDuration, err = asDuration(key, value)
		case "show_help":
			s.ShowHelp, err = asBool(key, value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the current configuration.
func (s *UISection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.ToastDuration < 500*time.Millisecond || s.ToastDuration > 30*time.Second {
		return fmt.Errorf("toast_duration must be between 500ms and 30s, got %v", s.ToastDuration)
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *UISection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ToastDuration = defaultToastDuration
	s.ShowHelp = defaultShowHelp
}

// Toast returns the configured toast duration.
func (s *UISection) Toast() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ToastDuration
}
