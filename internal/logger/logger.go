package logger

import (
	"os"
	"strings"

	"github.com/aleksaelezovic/factstore/internal/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global logger instance
	Logger *zap.SugaredLogger
	// JSONOutput records whether Initialize chose JSON output
	JSONOutput bool
)

func init() {
	// Safe no-op until Initialize is called
	Logger = zap.NewNop().Sugar()
}

// Initialize sets up the global logger. jsonOutput selects production JSON
// encoding; otherwise a console encoder writes to stderr. level is a zap
// level name such as "debug" or "info"; empty means info.
func Initialize(jsonOutput bool, level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	var zapLogger *zap.Logger
	if jsonOutput {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(lvl)
		zapLogger, err = config.Build()
		if err != nil {
			return errors.Wrap(err, "build json logger")
		}
	} else {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapLogger = zap.New(
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(encoderConfig),
				zapcore.AddSync(os.Stderr),
				lvl,
			),
		)
	}

	JSONOutput = jsonOutput
	Logger = zapLogger.Sugar()
	return nil
}

// ParseLevel parses a level name, accepting an empty string as info
func ParseLevel(level string) (zapcore.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return lvl, errors.WithHint(
			errors.Wrapf(err, "invalid log level %q", level),
			"use one of debug, info, warn, error")
	}
	return lvl, nil
}

// Named returns a structured child of the global logger
func Named(name string) *zap.Logger {
	return Logger.Desugar().Named(name)
}

// Sync flushes buffered log entries
func Sync() {
	_ = Logger.Sync()
}
