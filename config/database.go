package config

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens the postgres pool and stores it in DB.
func Connect(cfg *Config) error {
	gormLevel := logger.Warn
	if cfg.LogLevel == "debug" {
		gormLevel = logger.Info
	}

	gormLog, err := newGormLogger(Log, gormLevel)
	if err != nil {
		return fmt.Errorf("build gorm logger: %w", err)
	}
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	DB = db
	return nil
}

// newGormLogger sends gorm's SQL traces and warnings through zap under the "gorm" name.
func newGormLogger(log *zap.Logger, level logger.LogLevel) (logger.Interface, error) {
	zapLevel := zapcore.WarnLevel
	if level >= logger.Info {
		zapLevel = zapcore.DebugLevel
	}
	std, err := zap.NewStdLogAt(log.Named("gorm"), zapLevel)
	if err != nil {
		return nil, err
	}
	return logger.New(std, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	}), nil
}
