package platforms

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/messcurator/cmd/application"
	"github.com/agentstation/messcurator/internal/cmd/cmdutil"
	"github.com/agentstation/messcurator/internal/cmd/output"
	"github.com/agentstation/messcurator/internal/cmd/table"
	"github.com/agentstation/messcurator/pkg/machines"
	platformdoc "github.com/agentstation/messcurator/pkg/platforms"
)

func newShowCommand(app application.Application, file *string) *cobra.Command {
	var (
		layout   *cmdutil.TableFlags
		inputXML string
		noJoin   bool
	)
	cmd := &cobra.Command{
		Use:   "show [keys...]",
		Short: "Show the systems and software of curated platforms",
		Long: `Show lists every system and software id of the given platforms, or of
all platforms. Machine columns come from the machine list; --no-machines
skips loading it.`,
		Example: `  messcurator platforms show jakks
  messcurator platforms show --show-systems-only --sort-by year -o csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := layout.Options()
			if err != nil {
				return err
			}
			mc, err := app.Curator()
			if err != nil {
				return err
			}
			doc, err := mc.Platforms(cmd.Context(), *file)
			if err != nil {
				return err
			}
			keys := args
			if len(keys) == 0 {
				keys = doc.Keys()
			}
			entries := make([]*platformdoc.Entry, 0, len(keys))
			for _, k := range keys {
				e, err := doc.Entry(k)
				if err != nil {
					return err
				}
				entries = append(entries, e)
			}

			var cat *machines.Catalog
			if !noJoin {
				cat, err = mc.Catalog(cmd.Context(), inputXML)
				if err != nil {
					app.Logger().Warn().Err(err).Msg("Machine list unavailable, showing document only")
					cat = nil
				}
			}

			data, err := table.PlatformToTableData(entries, cat, opts)
			if err != nil {
				return err
			}
			format := cmdutil.Format(app)
			if format.IsTabular() {
				return output.NewFormatter(format).Format(cmd.OutOrStdout(), data)
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), data.Records(opts.Columns()))
		},
	}

	layout = cmdutil.AddTableFlags(cmd)
	cmd.Flags().StringVar(&inputXML, "input-xml", "",
		"Machine list to read instead of the configured one")
	cmd.Flags().BoolVar(&noJoin, "no-machines", false,
		"Do not load the machine list")

	return cmd
}
