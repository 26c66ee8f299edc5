package platforms

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/messcurator/cmd/application"
	"github.com/agentstation/messcurator/internal/cmd/cmdutil"
	"github.com/agentstation/messcurator/internal/cmd/output"
	"github.com/agentstation/messcurator/internal/cmd/table"
)

func newListCommand(app application.Application, file *string) *cobra.Command {
	return &cobra.Command{
		Use:     "list [keys...]",
		Aliases: []string{"ls"},
		Short:   "List curated platforms",
		Example: `  messcurator platforms list
  messcurator platforms list jakks nes -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mc, err := app.Curator()
			if err != nil {
				return err
			}
			doc, err := mc.Platforms(cmd.Context(), *file)
			if err != nil {
				return err
			}
			sums, err := doc.Summaries(args...)
			if err != nil {
				return err
			}

			format := cmdutil.Format(app)
			if format.IsTabular() {
				return output.NewFormatter(format).Format(cmd.OutOrStdout(), table.PlatformSummariesToTableData(sums))
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), sums)
		},
	}
}
