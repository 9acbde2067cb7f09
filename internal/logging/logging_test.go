package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kalambet/wellbuddy/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetupWritesConsoleAndFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "wellbuddy.log")
	closer := Setup(config.LogConfig{Level: "warn", File: path, MaxSizeMB: 1}, &console)

	slog.Info("dropped below level")
	slog.Warn("crisis alert failed", "recipient", "a@b.c")

	if err := closer.Close(); err != nil {
		t.Fatalf("closing log file: %v", err)
	}

	if strings.Contains(console.String(), "dropped below level") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(console.String(), "crisis alert failed") {
		t.Errorf("console output = %q, want warn record", console.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "recipient=a@b.c") {
		t.Errorf("log file = %q, want warn record with attrs", data)
	}
}
