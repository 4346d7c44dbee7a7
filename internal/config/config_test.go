package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_PATH", "DATABASE_URL", "ORS_API_KEY", "REDIS_URL",
		"OPTIMIZE_MAX_ITERATIONS", "OPTIMIZE_TIME_BUDGET", "OPTIMIZE_WORKERS"} {
		t.Setenv(k, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "data/app.db", cfg.DBPath)
	assert.False(t, cfg.UsePostgres())
	assert.False(t, cfg.RoadDistances())
	assert.Equal(t, 0, cfg.OptimizeMaxIterations)
	assert.Equal(t, 4, cfg.OptimizeWorkers)
	assert.Equal(t, 2*time.Second, cfg.OptimizeTimeBudget)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/itinerary")
	t.Setenv("ORS_API_KEY", "key")
	t.Setenv("OPTIMIZE_MAX_ITERATIONS", "500")
	t.Setenv("OPTIMIZE_TIME_BUDGET", "750ms")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.UsePostgres())
	assert.True(t, cfg.RoadDistances())
	assert.Equal(t, 500, cfg.OptimizeMaxIterations)
	assert.Equal(t, 750*time.Millisecond, cfg.OptimizeTimeBudget)
}

func TestFromEnvRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("OPTIMIZE_MAX_ITERATIONS", "lots")
	_, err := FromEnv()
	assert.Error(t, err)

	t.Setenv("OPTIMIZE_MAX_ITERATIONS", "")
	t.Setenv("OPTIMIZE_TIME_BUDGET", "-1s")
	_, err = FromEnv()
	assert.Error(t, err)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("OPTIMIZE_WORKERS=7\n"), 0o600))
	t.Chdir(dir)
	require.NoError(t, os.Unsetenv("OPTIMIZE_WORKERS"))
	t.Cleanup(func() { _ = os.Unsetenv("OPTIMIZE_WORKERS") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.DotEnvLoaded)
	assert.Equal(t, 7, cfg.OptimizeWorkers)
}

func TestLoadWithoutDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.DotEnvLoaded)
}
