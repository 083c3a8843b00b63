package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Game.DefaultRounds)
	assert.Equal(t, 30, cfg.Game.DefaultSeconds)
	assert.Equal(t, 3, cfg.Game.AFKStrikeLimit)
	assert.Equal(t, 5*time.Second, cfg.Game.SweepDuration())
	assert.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
}

func TestLoad_OverridesAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 8080
game:
  default_rounds: 3
  permanent_rooms: ["0001", "0002"]
security:
  rate_limit:
    max_per_second: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// overridden
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Game.DefaultRounds)
	assert.Equal(t, []string{"0001", "0002"}, cfg.Game.PermanentRooms)
	assert.Equal(t, 10, cfg.Security.RateLimit.MaxPerSecond)

	// defaulted
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 30, cfg.Game.DefaultSeconds)
	assert.Equal(t, 5*time.Minute, cfg.Security.RateLimit.BanDuration())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}
