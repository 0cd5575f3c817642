package configslog

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the structured logger, SLog its sugared twin. Both are ready after InitLogger.
var (
	Log  *zap.Logger
	SLog *zap.SugaredLogger
)

// InitLogger configures the process-wide loggers. Level comes from LOG_LEVEL
// (debug|info|warn|error, default info); APP_ENV=production switches to JSON output.
func InitLogger() {
	level := zapcore.InfoLevel
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var cfg zap.Config
	if os.Getenv("APP_ENV") == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := cfg.Build(zap.AddCallerSkip(0))
	if err != nil {
		// Logging must not take the process down before it even starts.
		logger = zap.NewNop()
	}
	Log = logger
	SLog = logger.Sugar()
}

// SyncLogger flushes buffered log entries. Call via defer from main.
func SyncLogger() {
	if Log != nil {
		_ = Log.Sync()
	}
}

func init() {
	// Packages log during tests without calling InitLogger first.
	if Log == nil {
		Log = zap.NewNop()
		SLog = Log.Sugar()
	}
}
