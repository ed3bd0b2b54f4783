// Package logging writes plain-text, timestamped log files under a Logs
// directory beside the executable, so hook invocations leave a trail even
// when their stdout/stderr is swallowed by git.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Dir returns the log directory: Logs/ beside the executable, falling back
// to the working directory when the executable path cannot be resolved.
func Dir() string {
	exe, err := os.Executable()
	if err != nil {
		return "Logs"
	}
	return filepath.Join(filepath.Dir(exe), "Logs")
}

// New opens a daily log file under dir and returns a logger writing to it.
// Fatal-path callers log message, error, and stack trace before exiting.
// The returned close func flushes buffered entries.
func New(dir string) (*zap.Logger, func(), error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	name := fmt.Sprintf("recommit-%s.log", time.Now().Format("2006-01-02"))
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(f), zap.InfoLevel)
	logger := zap.New(core, zap.AddStacktrace(zap.ErrorLevel))

	closeFn := func() {
		_ = logger.Sync()
		_ = f.Close()
	}
	return logger, closeFn, nil
}
