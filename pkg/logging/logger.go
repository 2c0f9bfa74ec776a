package logging

import (
	"go.uber.org/zap"
)

var logger *zap.SugaredLogger

func init() {
	// Quiet default so library consumers get sane behavior before InitLogger.
	l, _ := zap.NewProduction()
	logger = l.Sugar()
}

// InitLogger configures the process-wide logger. Debug mode switches to the
// development config with full output; otherwise only warnings and above are
// printed so scan output stays readable.
func InitLogger(debug bool) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.Encoding = "console"
	l, err := cfg.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	logger = l.Sugar()
}

// L returns the process-wide sugared logger.
func L() *zap.SugaredLogger {
	return logger
}

// Sync flushes buffered log entries. Best effort, safe to defer from main.
func Sync() {
	_ = logger.Sync()
}
