package config

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process logger. It is a no-op until InitLogger runs so packages
// and tests can log without setup.
var Log = zap.NewNop()

// NewLogger builds a json (production) or console (development) logger at the configured level.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	if cfg.LogFormat == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.TimeKey = "time"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zc.Build()
}

// InitLogger builds the logger and installs it as Log.
func InitLogger(cfg *Config) error {
	l, err := NewLogger(cfg)
	if err != nil {
		return err
	}
	Log = l
	return nil
}
