package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agentstation/messcurator/internal/cmd/output"
	"github.com/agentstation/messcurator/pkg/errors"
)

// Execute runs the messcurator CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "messcurator",
		Short:   "Curate emulated systems and software for a front-end",
		Version: a.version,
		Long: `messcurator builds the curated platform document a front-end reads:
which emulated machines, and which of their software list entries, are shown
to users. It selects machines from the emulator's machine list, extracts and
filters their compatible software, merges the result into the document and
reconciles a ROM archive tree against it.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	// Add global flags
	rootCmd.PersistentFlags().StringVar(&a.settings.ConfigFile, "config", "", "config file (default is $HOME/.messcurator.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringP("format", "o", "", "output format: table, json, yaml, csv")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	rootCmd.PersistentFlags().String("events", "", "progress events: console, log, yaml, none")

	rootCmd.SetVersionTemplate("messcurator {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	// These flags are defined as persistent flags in createRootCommand, so
	// errors indicate programming errors
	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	format := mustGetString(cmd, "format")
	logLevel := mustGetString(cmd, "log-level")
	eventSink := mustGetString(cmd, "events")

	a.settings.UpdateFromFlags(verbose, quiet, noColor, format, logLevel, eventSink)

	if _, err := output.ParseFormat(a.settings.Format); err != nil {
		return errors.NewValidationError("format", a.settings.Format, err.Error())
	}
	if !slices.Contains([]string{EventsConsole, EventsLog, EventsYAML, EventsNone}, a.settings.Events) {
		return errors.NewValidationError("events", a.settings.Events, "must be one of console, log, yaml, none")
	}
	if a.settings.NoColor {
		color.NoColor = true
	}

	if !a.customLogger {
		logger := NewLogger(a.settings)
		a.logger = &logger
	}

	if !a.configured {
		cfg, used, err := LoadConfig(a.settings.ConfigFile)
		if err != nil {
			return err
		}
		a.cfg, a.cfgFile = cfg, used
		a.configured = true
		if used != "" {
			a.logger.Debug().Str("file", used).Msg("Loaded configuration")
		}
	}

	return nil
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %s: %v", name, err))
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %s: %v", name, err))
	}
	return val
}
