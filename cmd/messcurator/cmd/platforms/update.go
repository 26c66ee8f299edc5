package platforms

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/messcurator/cmd/application"
	"github.com/agentstation/messcurator/internal/cmd/cmdutil"
	"github.com/agentstation/messcurator/pkg/errors"
)

func newUpdateCommand(app application.Application, file *string) *cobra.Command {
	var metadata *cmdutil.MetadataFlags
	cmd := &cobra.Command{
		Use:   "update <key>",
		Short: "Patch the metadata of a curated platform",
		Long: `Update changes only the metadata flags given on the command line. The
systems and software of the platform are kept as they are.`,
		Example: `  messcurator platforms update jakks --platform-category "TV Games,Plug and Play"
  messcurator platforms update nes --emu-name "MAME NES" --default-emu`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if !metadata.Changed(cmd.Flags()) {
				return errors.NewValidationError("metadata", nil, "no metadata flag given")
			}
			mc, err := app.Curator()
			if err != nil {
				return err
			}
			doc, err := mc.Platforms(cmd.Context(), *file)
			if err != nil {
				return err
			}
			entry, err := doc.Entry(key)
			if err != nil {
				return err
			}

			m := entry.Metadata
			metadata.Apply(cmd.Flags(), &m)
			if err := mc.UpdateMetadata(cmd.Context(), *file, key, m); err != nil {
				return err
			}
			if !app.Quiet() {
				fmt.Fprintf(cmd.OutOrStdout(), "Updated platform %s\n", key)
			}
			return nil
		},
	}

	metadata = cmdutil.AddMetadataFlags(cmd)
	return cmd
}
