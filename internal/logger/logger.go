// Package logger is a printf-style front for zap shared by every package
// that logs.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	base        = zap.NewNop()
	serviceName = "metalboard"
)

// Init builds the process logger. level is one of debug, info, warn, error.
func Init(level string, json bool) error {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return fmt.Errorf("log level %q: %w", level, err)
		}
	}

	cfg := zap.NewDevelopmentConfig()
	if json {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	base = l
	return nil
}

// SetLogger replaces the process logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	base = l
}

func SetServiceName(newName string) string {
	oldName := serviceName
	serviceName = newName
	return oldName
}

func entry() *zap.Logger {
	return base.With(zap.String("service", serviceName))
}

func Debug(format string, args ...interface{}) {
	entry().Debug(fmt.Sprintf(format, args...))
}

func Info(format string, args ...interface{}) {
	entry().Info(fmt.Sprintf(format, args...))
}

func Warn(format string, args ...interface{}) {
	entry().Warn(fmt.Sprintf(format, args...))
}

func Error(format string, args ...interface{}) {
	entry().Error(fmt.Sprintf(format, args...))
}

func Fatal(format string, args ...interface{}) {
	entry().Fatal(fmt.Sprintf(format, args...))
}

// Sync flushes buffered entries.
func Sync() {
	_ = base.Sync()
}
