package app

import (
	"bytes"
	"strings"
	"testing"
)

// TestDetermineLogLevel tests the log level precedence logic.
func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		settings *Settings
		env      string
		expected string
		warns    bool
	}{
		{
			name:     "default level when no flags set",
			settings: &Settings{},
			expected: "info",
		},
		{
			name:     "verbose flag sets debug",
			settings: &Settings{Verbose: true},
			expected: "debug",
		},
		{
			name:     "quiet flag sets warn",
			settings: &Settings{Quiet: true},
			expected: "warn",
		},
		{
			name:     "explicit log-level overrides verbose",
			settings: &Settings{LogLevel: "error", Verbose: true},
			expected: "error",
		},
		{
			name:     "explicit log-level overrides both flags",
			settings: &Settings{LogLevel: "info", Verbose: true, Quiet: true},
			expected: "info",
		},
		{
			name:     "both verbose and quiet prefers quiet",
			settings: &Settings{Verbose: true, Quiet: true},
			expected: "warn",
			warns:    true,
		},
		{
			name:     "LOG_LEVEL used without flags",
			settings: &Settings{},
			env:      "trace",
			expected: "trace",
		},
		{
			name:     "verbose beats LOG_LEVEL",
			settings: &Settings{Verbose: true},
			env:      "error",
			expected: "debug",
		},
		{
			name:     "invalid LOG_LEVEL falls back to info",
			settings: &Settings{},
			env:      "loud",
			expected: "info",
		},
		{
			name:     "invalid log level falls back to info",
			settings: &Settings{LogLevel: "invalid"},
			expected: "info",
			warns:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.env)
			var warnings bytes.Buffer

			result := determineLogLevel(tt.settings, &warnings)
			if result != tt.expected {
				t.Errorf("determineLogLevel() = %q, expected %q", result, tt.expected)
			}
			if got := warnings.Len() > 0; got != tt.warns {
				t.Errorf("warning written = %v, expected %v (%q)", got, tt.warns, warnings.String())
			}
		})
	}
}

// TestValidateLogLevel tests log level validation.
func TestValidateLogLevel(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "error"} {
		if got := validateLogLevel(level); got != level {
			t.Errorf("validateLogLevel(%q) = %q", level, got)
		}
	}
	for _, level := range []string{"", "WARN", "fatal", "verbose"} {
		if got := validateLogLevel(level); got != "info" {
			t.Errorf("validateLogLevel(%q) = %q, expected info", level, got)
		}
	}
}

// TestNewLoggerLevel verifies the built logger honors the resolved level.
func TestNewLoggerLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	var warnings bytes.Buffer
	logger := newLogger(&Settings{Quiet: true, LogFormat: "json", LogOutput: "stderr"}, &warnings)

	if got := logger.GetLevel().String(); got != "warn" {
		t.Errorf("logger level = %q, expected warn", got)
	}
	if strings.TrimSpace(warnings.String()) != "" {
		t.Errorf("unexpected warning %q", warnings.String())
	}
}
