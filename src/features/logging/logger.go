package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/contre95/downsort/src/features/config"
	"github.com/mattn/go-isatty"
)

// SetupLogger builds the process logger: a charmbracelet/log handler behind
// slog, writing one event per line to stdout.
func SetupLogger(cfg *config.Manager) *slog.Logger {
	logger := slog.New(NewHandler(cfg.Get().Logger, os.Stdout))
	logger.Debug("Logger initialized", "time", time.Now().Format(time.RFC3339))
	return logger
}

// NewHandler returns the charmbracelet handler for the given settings. When no
// format is configured, terminals get the text formatter and everything else
// gets logfmt.
func NewHandler(cfg config.Logger, w io.Writer) *log.Logger {
	var formatter log.Formatter
	switch cfg.Format {
	case "json":
		formatter = log.JSONFormatter
	case "text":
		formatter = log.TextFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	default:
		if isTerminal(w) {
			formatter = log.TextFormatter
		} else {
			formatter = log.LogfmtFormatter
		}
	}

	level := log.InfoLevel
	switch cfg.Level {
	case "debug":
		level = log.DebugLevel
	case "warn":
		level = log.WarnLevel
	case "error":
		level = log.ErrorLevel
	}

	return log.NewWithOptions(w, log.Options{
		ReportCaller:    level == log.DebugLevel,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "downsort",
		Formatter:       formatter,
		Level:           level,
	})
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ForJob returns a debug-level logger writing logfmt to w, used for per-job
// log files.
func ForJob(w io.Writer) *slog.Logger {
	return slog.New(NewHandler(config.Logger{Level: "debug", Format: "logfmt"}, w))
}
