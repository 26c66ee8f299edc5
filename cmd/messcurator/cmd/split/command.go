// Package split provides the split command.
package split

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/messcurator"
	"github.com/agentstation/messcurator/cmd/application"
	"github.com/agentstation/messcurator/internal/cmd/cmdutil"
	"github.com/agentstation/messcurator/internal/cmd/output"
	"github.com/agentstation/messcurator/internal/cmd/table"
)

// NewCommand creates the split command.
func NewCommand(app application.Application) *cobra.Command {
	var req messcurator.SplitRequest
	cmd := &cobra.Command{
		Use:     "split",
		GroupID: "management",
		Short:   "Split the machine list by folder ini and software list support",
		Long: `Split keeps the machines named in the folder ini and writes them to three
documents: ` + messcurator.SplitAll + ` with all of them, ` + messcurator.SplitSoftlist + ` with
those declaring a software list and ` + messcurator.SplitNoSoftlist + ` with the rest.
The machine list is generated first when it does not exist.`,
		Example: `  messcurator split
  messcurator split --output-dir ./lists --input-xml mame0262.xml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mc, err := app.Curator()
			if err != nil {
				return err
			}
			report, err := mc.Split(cmd.Context(), req)
			if err != nil {
				return err
			}
			format := cmdutil.Format(app)
			if format.IsTabular() {
				return output.NewFormatter(format).Format(cmd.OutOrStdout(), table.SplitToTableData(report))
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVar(&req.OutputDir, "output-dir", "",
		"Directory for the split documents (default: next to the machine list)")
	cmd.Flags().StringVar(&req.InputXML, "input-xml", "",
		"Machine list to read instead of the configured one")

	return cmd
}
