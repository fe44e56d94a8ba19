package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables
type Config struct {
	Env      string `mapstructure:"APP_ENV"` // development | production
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Database
	DBDriver       string `mapstructure:"DB_DRIVER"` // sqlite | postgres | mysql | sqlserver
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	DBMaxOpenConns int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBLogSQL       bool   `mapstructure:"DB_LOG_SQL"`
	DBAutoMigrate  bool   `mapstructure:"DB_AUTO_MIGRATE"`

	// Ingestion
	UploadBatchSize int    `mapstructure:"UPLOAD_BATCH_SIZE"`
	CSVEncoding     string `mapstructure:"CSV_ENCODING"`
}

// IsProduction reports whether the app runs with production settings
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "file:bomplan.db?_foreign_keys=on")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_LOG_SQL", false)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("UPLOAD_BATCH_SIZE", 20)
	v.SetDefault("CSV_ENCODING", "utf-8")

	// a missing .env file is fine
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.UploadBatchSize <= 0 {
		return nil, fmt.Errorf("UPLOAD_BATCH_SIZE must be positive, got %d", cfg.UploadBatchSize)
	}
	return cfg, nil
}
