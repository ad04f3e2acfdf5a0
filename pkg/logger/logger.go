// Package logger provides opinionated logging capabilities for geminiweb
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures NewLogger.
type Options struct {
	// Debug lowers the console level to debug.
	Debug bool

	// FilePath, when set, additionally writes JSON logs to a rotated file.
	FilePath string
}

func NewLogger(opts Options) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	// Set log level
	level := zap.InfoLevel
	if opts.Debug {
		level = zap.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)

	if opts.FilePath != "" {
		core = zapcore.NewTee(core, fileCore(opts.FilePath, level))
	}

	return zap.New(core, zap.AddCaller())
}

func fileCore(path string, level zapcore.Level) zapcore.Core {
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // Megabytes
		MaxBackups: 5,
		MaxAge:     30, // Days
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	return zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(rotator),
		level,
	)
}

// Truncate shortens s for log previews, flattening newlines.
func Truncate(s string, maxLen int) string {
	out := make([]rune, 0, maxLen)
	for _, r := range s {
		if len(out) == maxLen {
			return string(out) + "..."
		}
		if r == '\n' {
			r = ' '
		}
		out = append(out, r)
	}
	return string(out)
}
