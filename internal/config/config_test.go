package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileAppliesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.False(t, cfg.App.Installed)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "mock", cfg.Store.Source)
	assert.Equal(t, "reference", cfg.Filter.Policy)
	assert.Equal(t, "IN", cfg.Store.PhoneRegion)
	assert.Equal(t, 12*time.Hour, cfg.JWT.TTL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "server:\n  port: 9000\ndatabase:\n  url: postgres://file\napp:\n  installed: true\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("SERVER_PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.App.Installed)
	assert.Equal(t, "postgres://env", cfg.Database.DSN)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Store.Source)
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := &Config{}
	cfg.App.Name = "Skyline Realty"
	cfg.App.Installed = true
	cfg.Users = []UserConfig{{ID: 1, Email: "admin@example.com", Role: "admin", PasswordHash: "$2a$10$x"}}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Skyline Realty", loaded.App.Name)
	require.Len(t, loaded.Users, 1)
	assert.Equal(t, "admin@example.com", loaded.Users[0].Email)
}

func TestLoad_RejectsUnknownTimezone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("filter:\n  timezone: Asia/Nowhere\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `filter.timezone "Asia/Nowhere"`)

	require.NoError(t, os.WriteFile(path, []byte("filter:\n  timezone: Asia/Kolkata\n"), 0o600))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())
}

func TestLocation_FallsBackToLocal(t *testing.T) {
	cfg := &Config{}
	cfg.Filter.Timezone = "Not/AZone"
	assert.Equal(t, time.Local, cfg.Location())

	cfg.Filter.Timezone = "Asia/Kolkata"
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())
}
