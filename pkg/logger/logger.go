package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const logDir = "logs"

// New builds the application logger: human-readable text on stdout, JSON in
// logs/app.log for ingestion, and errors duplicated into logs/error.log.
func New(level string) (*slog.Logger, error) {
	minLevel, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	appFile, err := openLogFile("app.log")
	if err != nil {
		return nil, err
	}
	errorFile, err := openLogFile("error.log")
	if err != nil {
		return nil, err
	}

	handler := newTeeHandler(
		slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: minLevel}),
		slog.NewJSONHandler(appFile, &slog.HandlerOptions{Level: minLevel}),
		slog.NewJSONHandler(errorFile, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	return slog.New(handler), nil
}

func openLogFile(name string) (*os.File, error) {
	f, err := os.OpenFile(filepath.Join(logDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", name, err)
	}
	return f, nil
}

// teeHandler fans records out to several handlers. Each target applies its
// own level filter, so the error file only ever sees errors.
type teeHandler struct {
	targets []slog.Handler
}

func newTeeHandler(targets ...slog.Handler) *teeHandler {
	return &teeHandler{targets: targets}
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, target := range h.targets {
		if target.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, target := range h.targets {
		if !target.Enabled(ctx, r.Level) {
			continue
		}
		if err := target.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	targets := make([]slog.Handler, len(h.targets))
	for i, target := range h.targets {
		targets[i] = target.WithAttrs(attrs)
	}
	return &teeHandler{targets: targets}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	targets := make([]slog.Handler, len(h.targets))
	for i, target := range h.targets {
		targets[i] = target.WithGroup(name)
	}
	return &teeHandler{targets: targets}
}

func parseLevel(level string) (slog.Leveler, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return nil, errors.New("invalid log level: " + level)
	}
}
