package config

import (
	"sync"
)

var (
	// globalManager is the singleton configuration manager instance
	globalManager *Manager
	globalMu      sync.Mutex
)

// NewDefaultManager creates a manager with the vanish sections registered,
// loaded from the file at configPath and overridden by the environment.
func NewDefaultManager(configPath string) (*Manager, error) {
	store, err := NewFileStore(configPath)
	if err != nil {
		return nil, err
	}

	manager := NewManager(store)
	for _, s := range []Section{NewExperimentSection(), NewServerSection(), NewUISection()} {
		if err := manager.RegisterSection(s); err != nil {
			return nil, err
		}
	}
	if err := manager.LoadAll(); err != nil {
		return nil, err
	}

	e, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	if err := e.Apply(manager); err != nil {
		return nil, err
	}
	return manager, nil
}

// Initialize creates the global configuration manager.
// This should be called once at application startup.
func Initialize(configPath string) error {
	manager, err := NewDefaultManager(configPath)
	if err != nil {
		return err
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	globalManager = manager
	return nil
}

// Global returns the global configuration manager.
// Panics if Initialize has not been called.
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		panic("config not initialized: call config.Initialize first")
	}
	return globalManager
}

// IsInitialized returns true if the global configuration has been initialized.
func IsInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalManager != nil
}

func sectionAs[T Section](m *Manager, id string) (T, bool) {
	var zero T
	if m == nil {
		return zero, false
	}
	section, ok := m.GetSection(id)
	if !ok {
		return zero, false
	}
	typed, ok := section.(T)
	return typed, ok
}

// GetExperiment returns the experiment section, or defaults when config is
// not initialized.
func GetExperiment() *ExperimentSection {
	if !IsInitialized() {
		return NewExperimentSection()
	}
	if s, ok := sectionAs[*ExperimentSection](Global(), SectionIDExperiment); ok {
		return s
	}
	return NewExperimentSection()
}

// GetServer returns the server section, or defaults when config is not
// initialized.
func GetServer() *ServerSection {
	if !IsInitialized() {
		return NewServerSection()
	}
	if s, ok := sectionAs[*ServerSection](Global(), SectionIDServer); ok {
		return s
	}
	return NewServerSection()
}

// GetUI returns the UI section, or defaults when config is not initialized.
func GetUI() *UISection {
	if !IsInitialized() {
		return NewUISection()
	}
	if s, ok := sectionAs[*UISection](Global(), SectionIDUI); ok {
		return s
	}
	return NewUISection()
}
