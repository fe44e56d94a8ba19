package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vsinha/bomplan/pkg/infrastructure/config"
	"github.com/vsinha/bomplan/pkg/infrastructure/repositories/gormrepo"
)

// Dialector picks the gorm driver for a DB_DRIVER value
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite", "sqlite3":
		return sqlite.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlserver", "mssql":
		return sqlserver.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", driver)
	}
}

// Open connects to the configured database, sizes the pool and migrates the
// schema when DB_AUTO_MIGRATE is set.
func Open(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if cfg.DBLogSQL {
		level = logger.Info
	}
	gormLogger := logger.New(printer{log: log}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.DBDriver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if db.Dialector.Name() == "sqlite" {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if cfg.DBAutoMigrate {
		if err := gormrepo.Migrate(db); err != nil {
			return nil, err
		}
	}

	log.Info().Str("driver", db.Dialector.Name()).Bool("migrated", cfg.DBAutoMigrate).Msg("database connected")
	return db, nil
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// printer routes gorm's logger output into zerolog
type printer struct {
	log zerolog.Logger
}

func (p printer) Printf(format string, args ...any) {
	p.log.Info().Str("component", "gorm").Msgf(format, args...)
}

// SQLX exposes the gorm pool to sqlx with the bind style of its dialect
func SQLX(db *gorm.DB) (*sqlx.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	driver := map[string]string{
		"sqlite":    "sqlite3",
		"postgres":  "postgres",
		"mysql":     "mysql",
		"sqlserver": "sqlserver",
	}[db.Dialector.Name()]
	if driver == "" {
		return nil, fmt.Errorf("no sqlx driver for dialect %s", db.Dialector.Name())
	}
	return sqlx.NewDb(sqlDB, driver), nil
}
