package logging

import (
	"log"
	"strings"

	"remittance/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init builds the process logger, installs it as the zap global and returns a flush func.
func Init(cfg config.LogConfig) (*zap.Logger, func()) {
	var zcfg zap.Config
	if strings.EqualFold(cfg.Format, "console") {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	logger, err := zcfg.Build()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	zap.ReplaceGlobals(logger)

	return logger, func() {
		if err := logger.Sync(); err != nil && !isIgnorableSyncError(err) {
			log.Printf("failed to sync logger: %v", err)
		}
	}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "inappropriate ioctl for device") ||
		strings.Contains(msg, "invalid argument")
}
