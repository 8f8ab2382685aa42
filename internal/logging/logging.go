// Package logging builds the zap logger used by the binaries.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrick/logrotate/rotator"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	rotateThresholdKB = 100 * 1000
	maxRolls          = 8
)

// Config selects the log level and an optional rotated log file.
type Config struct {
	Level string `long:"log-level" env:"LOG_LEVEL" description:"log level (debug, info, warn, error)" default:"info"`
	File  string `long:"log-file" env:"LOG_FILE" description:"also write JSON logs to this file, rotated by size"`
}

// New returns a development logger, tee'd into a rotating JSON file when cfg.File is set.
// The returned close function syncs the logger and closes the file.
func New(cfg Config) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level: %w", err)
	}

	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := zcfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	if cfg.File == "" {
		return logger, func() { _ = logger.Sync() }, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	r, err := rotator.New(cfg.File, rotateThresholdKB, false, maxRolls)
	if err != nil {
		return nil, nil, fmt.Errorf("create file rotator: %w", err)
	}
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(r),
		level,
	)
	logger = logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	}))
	return logger, func() {
		_ = logger.Sync()
		_ = r.Close()
	}, nil
}
