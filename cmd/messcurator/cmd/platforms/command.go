// Package platforms provides the platforms command for inspecting and
// editing the curated platform document.
package platforms

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/messcurator/cmd/application"
)

// NewCommand creates the platforms command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:     "platforms",
		Aliases: []string{"platform"},
		GroupID: "management",
		Short:   "Inspect and edit curated platforms",
		Long: `Inspect and edit the curated platform document.

Platforms are written by "search --platform-key". These subcommands list
them, show their systems and software, patch their metadata and delete
them without rescanning.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&file, "file", "",
		"Platform document to use instead of the configured one")

	cmd.AddCommand(newListCommand(app, &file))
	cmd.AddCommand(newShowCommand(app, &file))
	cmd.AddCommand(newUpdateCommand(app, &file))
	cmd.AddCommand(newDeleteCommand(app, &file))

	return cmd
}
