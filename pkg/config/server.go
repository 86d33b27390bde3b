package config

import (
	"fmt"
	"sync"
	"time"
)

const (
	// SectionIDServer is the identifier for the server settings section
	SectionIDServer = "server"

	defaultAddr         = ":8080"
	defaultReadLimit    = 64 * 1024
	defaultWriteTimeout = 10 * time.Second
)

// ServerSection configures the WebSocket host.
type ServerSection struct {
	Addr string `json:"addr"`
	// ReadLimit caps a single inbound WebSocket message in bytes.
	ReadLimit    int64         `json:"read_limit"`
	WriteTimeout time.Duration `json:"write_timeout"`
	// AllowedOrigins restricts WebSocket upgrades; empty allows any origin.
	AllowedOrigins []string `json:"allowed_origins"`
	mu             sync.RWMutex
}

// NewServerSection creates the section with defaults.
func NewServerSection() *ServerSection {
	return &ServerSection{
		Addr:         defaultAddr,
		ReadLimit:    defaultReadLimit,
		WriteTimeout: defaultWriteTimeout,
	}
}

func (s *ServerSection) ID() string    { return SectionIDServer }
func (s *ServerSection) Title() string { return "Server" }
func (s *ServerSection) Description() string {
	return "Listen address and WebSocket limits for vanish serve."
}

// Data returns the current configuration data.
func (s *ServerSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"addr":            s.Addr,
		"read_limit":      s.ReadLimit,
		"write_timeout":   s.WriteTimeout.String(),
		"allowed_origins": append([]string(nil), s.AllowedOrigins...),
	}
}

// SetData updates the section from stored data. Unknown keys are ignored.
func (s *ServerSection) SetData(data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		var err error
		switch key {
		case "addr":
			s.Addr, err = asString(key, value)
		case "read_limit":
			s.ReadLimit, err = asInt(key, value)
		case "write_timeout":
			s.WriteTimeout, err = asDuration(key, value)
		case "allowed_origins":
			if value == nil {
				s.AllowedOrigins = nil
				continue
			}
			s.AllowedOrigins, err = asStrings(key, value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the current configuration.
func (s *ServerSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if s.ReadLimit < 512 {
		return fmt.Errorf("read_limit must be at least 512 bytes, got %d", s.ReadLimit)
	}
	if s.WriteTimeout < 100*time.Millisecond || s.WriteTimeout > time.Minute {
		return fmt.Errorf("write_timeout must be between 100ms and 1m, got %v", s.WriteTimeout)
	}
	return nil
}

// Reset restores defaults.
func (s *ServerSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Addr = defaultAddr
	s.ReadLimit = defaultReadLimit
	s.WriteTimeout = defaultWriteTimeout
	s.AllowedOrigins = nil
}

// Snapshot returns the fields without the lock.
func (s *ServerSection) Snapshot() (addr string, readLimit int64, writeTimeout time.Duration, origins []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Addr, s.ReadLimit, s.WriteTimeout, append([]string(nil), s.AllowedOrigins...)
}
