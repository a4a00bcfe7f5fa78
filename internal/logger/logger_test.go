package logger

import (
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{" ERROR ", slog.LevelError},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitAndSetLevel(t *testing.T) {
	var buf strings.Builder
	Init(slog.LevelInfo, &buf)

	log := Get()
	if log == nil {
		t.Fatal("Get returned nil")
	}

	log.Debug("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("debug record emitted at info level")
	}

	SetLevel(slog.LevelDebug)
	log.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Error("debug record missing after SetLevel")
	}

	// The first Init wins; a second call must not replace the handler.
	Init(slog.LevelError, nil)
	log.Info("still here")
	if !strings.Contains(buf.String(), "still here") {
		t.Error("second Init replaced the configured output")
	}
}
