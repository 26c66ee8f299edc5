package app

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/agentstation/messcurator/pkg/logging"
)

// NewLogger creates a configured logger from the settings.
// Log level precedence (highest to lowest):
//  1. --log-level flag (explicit always wins)
//  2. -v/--verbose flag (shortcut for debug)
//  3. -q/--quiet flag (shortcut for warn)
//  4. LOG_LEVEL environment variable
//  5. Default (info)
func NewLogger(s *Settings) zerolog.Logger {
	return newLogger(s, os.Stderr)
}

func newLogger(s *Settings, warnings io.Writer) zerolog.Logger {
	level := determineLogLevel(s, warnings)
	return logging.NewLoggerFromConfig(&logging.Config{
		Level:      level,
		Format:     s.LogFormat,
		Output:     s.LogOutput,
		TimeFormat: "kitchen",
		NoColor:    s.NoColor,
		AddCaller:  level == "debug" || level == "trace",
	})
}

// determineLogLevel determines the log level using the precedence rules.
func determineLogLevel(s *Settings, warnings io.Writer) string {
	if s.LogLevel != "" {
		validated := validateLogLevel(s.LogLevel)
		if validated != s.LogLevel {
			fmt.Fprintf(warnings, "Warning: invalid log level %q, using %q\n", s.LogLevel, validated)
		}
		return validated
	}

	if s.Verbose && s.Quiet {
		fmt.Fprintf(warnings, "Warning: both --verbose and --quiet specified, using --quiet\n")
		return "warn"
	}
	if s.Verbose {
		return "debug"
	}
	if s.Quiet {
		return "warn"
	}

	if env := os.Getenv("LOG_LEVEL"); env != "" {
		return validateLogLevel(env)
	}
	return "info"
}

// validateLogLevel returns level when valid and "info" otherwise.
func validateLogLevel(level string) string {
	switch level {
	case "trace", "debug", "info", "warn", "error":
		return level
	default:
		return "info"
	}
}
