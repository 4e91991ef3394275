package infra

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger собирает zap логгер по LoggerConfig.
func NewLogger(cfg LoggerConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid logger level %q: %w", cfg.Level, err)
	}

	var zc zap.Config
	switch cfg.Format {
	case "console":
		zc = zap.NewDevelopmentConfig()
	case "", "json":
		zc = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid logger format %q", cfg.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}
