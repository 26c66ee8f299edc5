package app

import (
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/agentstation/messcurator/cmd/messcurator/cmd/completion"
	"github.com/agentstation/messcurator/cmd/messcurator/cmd/copyroms"
	"github.com/agentstation/messcurator/cmd/messcurator/cmd/drivers"
	"github.com/agentstation/messcurator/cmd/messcurator/cmd/platforms"
	"github.com/agentstation/messcurator/cmd/messcurator/cmd/search"
	"github.com/agentstation/messcurator/cmd/messcurator/cmd/split"
	"github.com/agentstation/messcurator/internal/cmd/output"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(search.NewCommand(a))
	rootCmd.AddCommand(copyroms.NewCommand(a))
	rootCmd.AddCommand(drivers.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(platforms.NewCommand(a))
	rootCmd.AddCommand(split.NewCommand(a))
	rootCmd.AddCommand(a.NewConfigCommand())

	// Utility commands
	rootCmd.AddCommand(completion.NewCommand())
	rootCmd.AddCommand(a.NewVersionCommand())
	rootCmd.AddCommand(a.NewManCommand())
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Show version information for the messcurator CLI.`,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("messcurator version %s\n", a.version)
			cmd.Printf("commit: %s\n", a.commit)
			cmd.Printf("built: %s\n", a.date)
			cmd.Printf("built by: %s\n", a.builtBy)
			cmd.Printf("go version: %s\n", runtime.Version())
			cmd.Printf("platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// NewManCommand creates the hidden man command.
func (a *App) NewManCommand() *cobra.Command {
	return &cobra.Command{
		Use:    "man",
		Short:  "Generate man page",
		Long:   `Generate the man page for the messcurator CLI.`,
		Hidden: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			header := &doc.GenManHeader{
				Title:   "MESSCURATOR",
				Section: "1",
				Source:  "messcurator " + a.version,
				Manual:  "messcurator Manual",
			}
			return doc.GenMan(cmd.Root(), header, cmd.OutOrStdout())
		},
	}
}

// NewConfigCommand creates the config command.
func (a *App) NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		GroupID: "management",
		Short:   "Inspect the configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		Long: `Show the configuration after the config file, MESSCURATOR_* environment
variables and defaults are applied. Relative paths are shown resolved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format := output.Format(a.settings.Format)
			if format == "" {
				format = output.FormatYAML
			}
			if format == output.FormatCSV {
				format = output.FormatTable
			}
			if format == output.FormatTable {
				file := a.cfgFile
				if file == "" {
					file = "(none)"
				}
				cmd.Printf("Config file: %s\n", file)
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), a.cfg)
		},
	})
	return cmd
}
