// Package logging builds the ectologger used across the application.
package logging

import (
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"go.uber.org/zap"
)

// Logger pairs the ectologger handed to packages with the zap logger behind
// it so the caller can flush on exit.
type Logger struct {
	ectologger.Logger
	zap *zap.Logger
}

// New builds a zap-backed logger writing to stderr, leaving stdout for
// report output. pretty selects the human readable console encoder.
func New(level string, pretty bool) (*Logger, error) {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	if pretty {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = atomicLevel
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = !pretty

	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{
		Logger: zapadapter.NewZapEctoLogger(zapLogger, nil),
		zap:    zapLogger,
	}, nil
}

// Sync flushes buffered entries.
func (l *Logger) Sync() {
	if l == nil || l.zap == nil {
		return
	}
	_ = l.zap.Sync()
}

// Discard returns a logger that drops everything.
func Discard() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}
