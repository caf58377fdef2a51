package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.False(t, cfg.DBEnabled)
	assert.Equal(t, "PalataQabul", cfg.Import.SheetName)
	assert.False(t, cfg.Import.FallbackToFirst)
	assert.Equal(t, int64(32<<20), cfg.Import.MaxUploadBytes)
	assert.Equal(t, time.Minute, cfg.Snapshot.CacheTTL)
	assert.Equal(t, "Asia/Tashkent", cfg.Location.String())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("DB_ENABLED", "true")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("IMPORT_FALLBACK_TO_FIRST", "true")
	t.Setenv("SNAPSHOT_INCLUSIVE_DISCHARGE", "true")
	t.Setenv("SNAPSHOT_CACHE_TTL_SECONDS", "0")
	t.Setenv("WARD_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.DBEnabled)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.True(t, cfg.Import.FallbackToFirst)
	assert.True(t, cfg.Snapshot.InclusiveDischarge)
	assert.Zero(t, cfg.Snapshot.CacheTTL)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t,
		"host=localhost port=6543 user=postgres password=postgres dbname=ward_census sslmode=disable",
		cfg.Database.GetDSN())
}

func TestLoad_BadTimezone(t *testing.T) {
	t.Setenv("WARD_TIMEZONE", "Mars/Olympus")
	_, err := Load()
	assert.Error(t, err)
}
