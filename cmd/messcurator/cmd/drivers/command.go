// Package drivers provides the drivers command.
package drivers

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/messcurator"
	"github.com/agentstation/messcurator/cmd/application"
	"github.com/agentstation/messcurator/internal/cmd/cmdutil"
	"github.com/agentstation/messcurator/internal/cmd/output"
	"github.com/agentstation/messcurator/internal/cmd/table"
)

// NewCommand creates the drivers command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		req        messcurator.DriversRequest
		outputFile string
	)
	cmd := &cobra.Command{
		Use:     "drivers",
		GroupID: "core",
		Short:   "List machines by emulation status",
		Long: `Drivers lists the machines of the machine list, skipping BIOS and device
entries, optionally limited to one emulation status, to machines with
software lists or to machines named in the folder ini.`,
		Example: `  messcurator drivers --status good --softlist-only
  messcurator drivers --status preliminary --folder-ini-only -o csv --output-file preliminary.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.Status = strings.ToLower(strings.TrimSpace(req.Status))
			mc, err := app.Curator()
			if err != nil {
				return err
			}
			recs, err := mc.Drivers(cmd.Context(), req)
			if err != nil {
				return err
			}
			app.Logger().Debug().Int("machines", len(recs)).Str("status", req.Status).Msg("Drivers listed")

			data := table.DriversToTableData(recs)
			format := cmdutil.Format(app)
			if format.IsTabular() {
				return output.Write(app.Fs(), cmd.OutOrStdout(), outputFile, format, data)
			}
			return output.Write(app.Fs(), cmd.OutOrStdout(), outputFile, format, data.Records(table.DriverColumns))
		},
	}

	cmd.Flags().StringVar(&req.Status, "status", "",
		"Emulation status: good, imperfect or preliminary")
	cmd.Flags().BoolVar(&req.SoftlistOnly, "softlist-only", false,
		"Only machines that declare software lists")
	cmd.Flags().BoolVar(&req.FolderINIOnly, "folder-ini-only", false,
		"Only machines named in the configured folder ini")
	cmd.Flags().StringVar(&req.InputXML, "input-xml", "",
		"Machine list to read instead of the configured one")
	cmd.Flags().StringVar(&outputFile, "output-file", "",
		"Write the listing to a file")

	return cmd
}
