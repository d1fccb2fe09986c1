// Package logger owns the process-wide zap logger.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a global logger instance
var Logger *zap.Logger

// New builds a logger for env. Production writes JSON at info; anything else
// writes coloured console output at debug. A non-empty level overrides the
// environment default.
func New(env, level string) (*zap.Logger, error) {
	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		config.Level = lvl
	}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	built, err := config.Build()
	if err != nil {
		return nil, err
	}
	return built.With(zap.String("service", "lakemap")), nil
}

// Init replaces the global logger
func Init(env, level string) error {
	built, err := New(env, level)
	if err != nil {
		return err
	}
	Logger = built
	return nil
}

// Sync flushes any buffered log entries
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// Get returns the global logger, or a development logger before Init.
func Get() *zap.Logger {
	if Logger == nil {
		fallback, _ := zap.NewDevelopment()
		return fallback
	}
	return Logger
}

// Named returns the global logger scoped to one component.
func Named(component string) *zap.Logger {
	return Get().Named(component)
}
