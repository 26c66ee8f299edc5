package platforms

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/messcurator/cmd/application"
)

func newDeleteCommand(app application.Application, file *string) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <keys...>",
		Aliases: []string{"rm"},
		Short:   "Remove platforms from the document",
		Long: `Delete removes the given platforms. Known keys are removed even when
another key is unknown; the unknown key is then reported as an error.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mc, err := app.Curator()
			if err != nil {
				return err
			}
			removed, err := mc.DeletePlatforms(cmd.Context(), *file, args...)
			if !app.Quiet() {
				for _, k := range removed {
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted platform %s\n", k)
				}
			}
			return err
		},
	}
}
