package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvWrapsErrors(t *testing.T) {
	t.Setenv("VANISH_SEED", "not-a-number")
	_, err := LoadEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.SetSection(SectionIDServer, map[string]interface{}{"addr": ":9000"}))
	require.NoError(t, store.SetSection(SectionIDExperiment, map[string]interface{}{"default_variant": "same-space"}))
	require.NoError(t, store.Save())

	t.Setenv("VANISH_ADDR", ":7777")
	t.Setenv("VANISH_SEED", "7")
	t.Setenv("VANISH_WRITE_TIMEOUT", "2s")
	t.Setenv("VANISH_ALLOWED_ORIGINS", "https://a.test,https://b.test")

	m, err := NewDefaultManager(path)
	require.NoError(t, err)

	server, ok := sectionAs[*ServerSection](m, SectionIDServer)
	require.True(t, ok)
	assert.Equal(t, ":7777", server.Addr)
	assert.Equal(t, 2*time.Second, server.WriteTimeout)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, server.AllowedOrigins)

	exp, ok := sectionAs[*ExperimentSection](m, SectionIDExperiment)
	require.True(t, ok)
	assert.Equal(t, "same-space", exp.DefaultVariant, "unset variables keep the file value")
	assert.Equal(t, int64(7), exp.Seed)
}
