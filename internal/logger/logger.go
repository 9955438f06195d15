package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide logger. It is a no-op until Initialize runs so
// packages can log safely from init paths and tests.
var Logger = zap.NewNop().Sugar()

// Initialize builds the global logger: JSON for production, console otherwise.
func Initialize(env string) error {
	var (
		zl  *zap.Logger
		err error
	)
	if env == "production" {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		zl, err = cfg.Build()
	} else {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zl, err = cfg.Build()
	}
	if err != nil {
		return err
	}
	Logger = zl.Sugar()
	return nil
}

// Named returns a child of the global logger.
func Named(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// Sync flushes buffered entries; call on shutdown.
func Sync() {
	_ = Logger.Sync()
}
