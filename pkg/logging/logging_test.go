package logging

import (
	"context"
	"log/slog"
	"testing"
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
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLevels(t *testing.T) {
	ctx := context.Background()
	logger := New("warn")
	if logger.Enabled(ctx, slog.LevelInfo) {
		t.Fatal("expected info to be disabled at warn level")
	}
	if !logger.Enabled(ctx, slog.LevelWarn) {
		t.Fatal("expected warn to be enabled at warn level")
	}
}

func TestNamed(t *testing.T) {
	logger := Default().Named("wizard")
	// Must not panic and must stay usable.
	logger.Info("test message", "key", "value")
}
