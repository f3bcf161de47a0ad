// Package logging builds the process-wide slog logger, optionally teeing
// records into a size-rotated file.
package logging

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/natefinch/lumberjack"

	"github.com/pjecz/portal-notarias/pkg/lifecycle"
)

// System owns the root logger and any file sink behind it.
type System interface {
	Logger() *slog.Logger
	// Start registers a shutdown hook that closes the file sink.
	Start(lc *lifecycle.Coordinator) error
}

type logging struct {
	logger *slog.Logger
	file   *lumberjack.Logger
}

// New creates a logging System writing to console and, when configured, to
// a rotating file.
func New(cfg *Config, console io.Writer) (System, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	out := console
	var file *lumberjack.Logger
	if cfg.File.Path != "" {
		file = &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
			LocalTime:  true,
		}
		out = io.MultiWriter(console, file)
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	default:
		handler = slog.NewTextHandler(out, opts)
	}

	return &logging{
		logger: slog.New(handler),
		file:   file,
	}, nil
}

func (l *logging) Logger() *slog.Logger {
	return l.logger
}

func (l *logging) Start(lc *lifecycle.Coordinator) error {
	if l.file == nil {
		return nil
	}

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		l.file.Close()
	})
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level %q", s)
}
