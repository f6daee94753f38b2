package main

import (
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.expected {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRunFailsWithoutRequiredConfig(t *testing.T) {
	os.Unsetenv("BOOST_API_URL")
	os.Unsetenv("ADMIN_PASSWORD_HASH")
	os.Unsetenv("SESSION_SECRET")

	err := run()
	if err == nil {
		t.Fatal("expected error without required configuration")
	}
	if !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("expected config validation error, got %v", err)
	}
}
