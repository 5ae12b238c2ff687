// Package logging builds the diagnostic logger. Output goes to a rotating
// file and never to the console, which belongs to the user-facing report.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation settings for the debug log.
const (
	MaxSizeMB  = 15
	MaxBackups = 3
	MaxAgeDays = 28
)

// New returns a JSON logger writing to path. An empty path yields a no-op
// logger. The returned close func flushes and releases the file.
func New(path string, verbose bool) (*zap.Logger, func() error) {
	if path == "" {
		return zap.NewNop(), func() error { return nil }
	}

	sink := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    MaxSizeMB,
		MaxBackups: MaxBackups,
		MaxAge:     MaxAgeDays,
		Compress:   true,
	}

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(sink), level)
	logger := zap.New(core).Named("patchrun")

	return logger, func() error {
		_ = logger.Sync()
		return sink.Close()
	}
}
