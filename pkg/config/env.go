package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Env holds the VANISH_* overrides. Unset variables leave the file value.
type Env struct {
	Addr         string        `env:"VANISH_ADDR"`
	Variant      string        `env:"VANISH_VARIANT"`
	VariantsDir  string        `env:"VANISH_VARIANTS_DIR"`
	Seed         int64         `env:"VANISH_SEED"`
	LogLevel     string        `env:"VANISH_LOG_LEVEL"`
	WriteTimeout time.Duration `env:"VANISH_WRITE_TIMEOUT"`
	Origins      []string      `env:"VANISH_ALLOWED_ORIGINS" envSeparator:","`
}

// LoadEnv reads the VANISH_* variables.
func LoadEnv() (Env, error) {
	var e Env
	err := ParseEnv(&e)
	return e, err
}

// Apply writes the set overrides into the manager's sections.
func (e Env) Apply(m *Manager) error {
	if s, ok := sectionAs[*ExperimentSection](m, SectionIDExperiment); ok {
		data := map[string]any{}
		if e.Variant != "" {
			data["default_variant"] = e.Variant
		}
		if e.VariantsDir != "" {
			data["variants_dir"] = e.VariantsDir
		}
		if e.Seed != 0 {
			data["seed"] = e.Seed
		}
		if e.LogLevel != "" {
			data["log_level"] = e.LogLevel
		}
		if err := s.SetData(data); err != nil {
			return err
		}
	}
	if s, ok := sectionAs[*ServerSection](m, SectionIDServer); ok {
		data := map[string]any{}
		if e.Addr != "" {
			data["addr"] = e.Addr
		}
		if e.WriteTimeout != 0 {
			data["write_timeout"] = e.WriteTimeout.String()
		}
		if len(e.Origins) > 0 {
			data["allowed_origins"] = e.Origins
		}
		if err := s.SetData(data); err != nil {
			return err
		}
	}
	return nil
}
