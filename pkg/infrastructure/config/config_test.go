package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.Equal(t, 5, cfg.DBMaxIdleConns)
	assert.True(t, cfg.DBAutoMigrate)
	assert.Equal(t, 20, cfg.UploadBatchSize)
	assert.Equal(t, "utf-8", cfg.CSVEncoding)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("APP_ENV", "Production")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://planner@localhost/bomplan")
	t.Setenv("UPLOAD_BATCH_SIZE", "50")
	t.Setenv("DB_LOG_SQL", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "postgres://planner@localhost/bomplan", cfg.DatabaseURL)
	assert.Equal(t, 50, cfg.UploadBatchSize)
	assert.True(t, cfg.DBLogSQL)
}

func TestLoad_RejectsBatchSize(t *testing.T) {
	t.Setenv("UPLOAD_BATCH_SIZE", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UPLOAD_BATCH_SIZE")
}
