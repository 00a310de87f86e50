package app

import (
	"fmt"
	"os"

	"github.com/rook-computer/cardkit/internal/config"
	"github.com/rook-computer/cardkit/internal/logging"
)

// OpenLogger returns a file logger when debug logging is on and a no-op
// logger otherwise. It also applies the trace setting.
func OpenLogger(cfg config.Config) logging.Logger {
	logging.SetTraceEnabled(cfg.Logging.Trace)
	if !cfg.Logging.Debug || cfg.Logging.FilePath == "" {
		return logging.NoopLogger{}
	}
	f, err := os.OpenFile(cfg.Logging.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintln(os.Stderr, "debug log open error:", err)
		return logging.NoopLogger{}
	}
	logger := logging.NewFileLogger(f)
	logger.Infof("main", "debug logging enabled")
	return logger
}
