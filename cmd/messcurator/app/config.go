package app

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/agentstation/messcurator"
	"github.com/agentstation/messcurator/internal/config"
)

// Event sinks selectable with --events.
const (
	EventsConsole = "console"
	EventsLog     = "log"
	EventsYAML    = "yaml"
	EventsNone    = "none"
)

// Settings holds the command-line state that is not part of the curator
// configuration: global flags and logging.
type Settings struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string
	Events  string

	// ConfigFile is the --config flag. Empty searches the default locations.
	ConfigFile string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadSettings loads .env files and returns settings seeded from the
// environment. Flags are applied later by UpdateFromFlags.
func LoadSettings() *Settings {
	loadEnvFiles()
	return &Settings{
		Events:    EventsConsole,
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}
}

// UpdateFromFlags updates settings from parsed command flags so that flag
// values take precedence over the environment.
func (s *Settings) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel, events string) {
	s.Verbose = verbose
	s.Quiet = quiet
	s.NoColor = noColor
	if format != "" {
		s.Format = format
	}
	if logLevel != "" {
		s.LogLevel = logLevel
	}
	if events != "" {
		s.Events = events
	}
}

// LoadConfig reads the curator configuration in order of precedence:
//  1. Environment variables (MESSCURATOR_*, including .env files)
//  2. Config file (--config, or ~/.messcurator.yaml, or ./.messcurator.yaml)
//  3. Defaults
//
// It returns the configuration and the file it was read from, if any.
func LoadConfig(file string) (messcurator.Config, string, error) {
	v := config.New()
	if err := config.Read(v, file); err != nil {
		return messcurator.Config{}, "", err
	}
	cfg, err := config.Decode(v)
	if err != nil {
		return messcurator.Config{}, "", err
	}
	return cfg, v.ConfigFileUsed(), nil
}

// loadEnvFiles loads environment variables from .env files.
// .env.local is loaded first so it wins over .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
