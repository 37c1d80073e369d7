package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Demiurge", cfg.World.Name)
	assert.Equal(t, 100, cfg.World.Population)
	assert.Equal(t, 8080, cfg.API.Port)

	d, err := cfg.TickInterval()
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
world:
  name: Eldermoor
  population: 250
loop:
  tick_interval: 250ms
  speed: 4
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Eldermoor", cfg.World.Name)
	assert.Equal(t, 250, cfg.World.Population)
	assert.Equal(t, 4.0, cfg.Loop.Speed)
	// Untouched keys keep their defaults.
	assert.Equal(t, "data/demiurge.db", cfg.Database.Path)

	d, err := cfg.TickInterval()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)
}

func TestAdminKeyEnvOverride(t *testing.T) {
	path := writeConfig(t, `
api:
  admin_key: from-file
`)
	t.Setenv("DEMIURGE_ADMIN_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.API.AdminKey)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"negative population", "world:\n  population: -1\n"},
		{"bad port", "api:\n  port: 99999\n"},
		{"bad interval", "loop:\n  tick_interval: soon\n"},
		{"zero interval", "loop:\n  tick_interval: 0s\n"},
		{"negative speed", "loop:\n  speed: -2\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
