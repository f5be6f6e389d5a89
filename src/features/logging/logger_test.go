package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/contre95/downsort/src/features/config"
)

func TestNewHandlerNonTerminalDefaultsToLogfmt(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(config.Logger{Level: "info"}, &buf))
	logger.Info("Moved", "src", "/a/b.pdf", "dst", "/a/Documents/b.pdf")

	line := buf.String()
	if strings.Count(line, "\n") != 1 {
		t.Fatalf("expected exactly one line, got %q", line)
	}
	if !strings.Contains(line, "msg=Moved") || !strings.Contains(line, "dst=/a/Documents/b.pdf") {
		t.Fatalf("expected logfmt output, got %q", line)
	}
}

func TestNewHandlerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(config.Logger{Level: "info", Format: "json"}, &buf))
	logger.Info("hello", "k", "v")

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if decoded["k"] != "v" {
		t.Fatalf("missing attribute in %v", decoded)
	}
}

func TestNewHandlerLevels(t *testing.T) {
	tests := []struct {
		level     string
		debugSeen bool
		warnSeen  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"", false, true},
		{"error", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewHandler(config.Logger{Level: tt.level, Format: "logfmt"}, &buf))
			logger.Debug("debug-line")
			logger.Warn("warn-line")
			if got := strings.Contains(buf.String(), "debug-line"); got != tt.debugSeen {
				t.Errorf("debug seen = %v, want %v", got, tt.debugSeen)
			}
			if got := strings.Contains(buf.String(), "warn-line"); got != tt.warnSeen {
				t.Errorf("warn seen = %v, want %v", got, tt.warnSeen)
			}
		})
	}
}

func TestForJobWritesDebugLogfmt(t *testing.T) {
	var buf bytes.Buffer
	ForJob(&buf).Debug("Progress", "percentage", 50)

	line := buf.String()
	if !strings.Contains(line, "msg=Progress") || !strings.Contains(line, "percentage=50") {
		t.Fatalf("expected a logfmt debug line, got %q", line)
	}
}
