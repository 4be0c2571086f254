package mudlog

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig controls the optional rotating file sink. A zero Path keeps
// logging on stderr only.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Level      slog.Level
}

var (
	loggerLock sync.RWMutex
	logger     = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
)

// Init reconfigures the package logger. Safe to call more than once.
func Init(cfg FileConfig) {
	var out io.Writer = os.Stderr

	if cfg.Path != "" {
		if cfg.MaxSizeMB == 0 {
			cfg.MaxSizeMB = 10
		}
		if cfg.MaxBackups == 0 {
			cfg.MaxBackups = 5
		}
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		})
	}

	loggerLock.Lock()
	logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.Level}))
	loggerLock.Unlock()
}

func get() *slog.Logger {
	loggerLock.RLock()
	defer loggerLock.RUnlock()
	return logger
}

// Category first, then alternating key/value pairs.
func Debug(category string, args ...any) {
	get().Debug(category, args...)
}

func Info(category string, args ...any) {
	get().Info(category, args...)
}

func Warn(category string, args ...any) {
	get().Warn(category, args...)
}

func Error(category string, args ...any) {
	get().Error(category, args...)
}
