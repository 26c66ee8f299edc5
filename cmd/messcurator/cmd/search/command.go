// Package search provides the search command: select machines, extract
// their software and either print it or curate it into a platform.
package search

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/messcurator"
	"github.com/agentstation/messcurator/cmd/application"
	"github.com/agentstation/messcurator/internal/cmd/cmdutil"
	"github.com/agentstation/messcurator/internal/cmd/output"
	"github.com/agentstation/messcurator/internal/cmd/table"
	"github.com/agentstation/messcurator/pkg/errors"
)

type options struct {
	machines  *cmdutil.MachineFlags
	software  *cmdutil.SoftwareFlags
	table     *cmdutil.TableFlags
	metadata  *cmdutil.MetadataFlags
	overrides *cmdutil.OverrideFlags

	platformKey string
	outputFile  string
	force       bool
	workers     int
	tui         bool
}

// NewCommand creates the search command.
func NewCommand(app application.Application) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:     "search [systems...]",
		GroupID: "core",
		Short:   "Find machines and their compatible software",
		Long: `Search selects machines from the emulator's machine list, asks the emulator
for each machine's software lists and filters the entries.

Machines given as arguments, with --fuzzy or with --include-systems are
explicit seeds: --description, --sourcefile and --softlist-capable are not
applied to them. Without seeds those predicates filter the whole list.

With --platform-key, or with --format yaml, the result is curated into the
platform document as one platform, fully replacing a previous entry for the
same key. Otherwise the result is printed as table, csv or json.`,
		Example: `  messcurator search jak_montr jak_totm --platform-key jakks --platform-name-full "JAKKS TV Games" --media-type cart
  messcurator search --description "plug and play" --driver-status good --show-extra-info
  messcurator search nes --include-softlist nes --term zelda -o csv --output-file nes.csv
  messcurator search nes --platform-key nes --platform-name-full NES --media-type cart \
      --softlist-command "nes=-cart %ROM%" --software-command "nes:smb=-cart smb -nvram"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, opts, args)
		},
	}

	opts.machines = cmdutil.AddMachineFlags(cmd)
	opts.software = cmdutil.AddSoftwareFlags(cmd)
	opts.table = cmdutil.AddTableFlags(cmd)
	opts.metadata = cmdutil.AddMetadataFlags(cmd)
	opts.overrides = cmdutil.AddOverrideFlags(cmd)

	cmd.Flags().StringVar(&opts.platformKey, "platform-key", "",
		"Curate the result into the platform document under this key")
	cmd.Flags().StringVar(&opts.outputFile, "output-file", "",
		"Write table/csv/json output to a file, or the curated document to this path")
	cmd.Flags().BoolVar(&opts.force, "force", false,
		"Allow a rescan to replace curated software with a bare entry")
	cmd.Flags().IntVar(&opts.workers, "workers", 0,
		"Concurrent emulator calls (default from config)")
	cmd.Flags().BoolVar(&opts.tui, "tui", false,
		"Show progress in a terminal UI")

	return cmd
}

func run(cmd *cobra.Command, app application.Application, opts *options, args []string) error {
	format := cmdutil.Format(app)
	curate := opts.platformKey != "" || format == output.FormatYAML

	// Validate everything before the emulator runs
	req := messcurator.SearchRequest{
		Query:    opts.machines.Query(args),
		Software: opts.software.Filter(),
		Status:   opts.software.Status(),
		InputXML: opts.machines.InputXML,
		Workers:  opts.workers,
	}
	if err := req.Validate(); err != nil {
		return err
	}
	tableOpts, err := opts.table.Options()
	if err != nil {
		return err
	}
	var curateReq messcurator.CurateRequest
	if curate {
		overrides, err := opts.overrides.Overrides()
		if err != nil {
			return err
		}
		curateReq = messcurator.CurateRequest{
			PlatformKey: opts.platformKey,
			Metadata:    opts.metadata.Metadata(),
			Overrides:   overrides,
			Force:       opts.force,
			Document:    opts.outputFile,
		}
		if err := curateReq.Validate(); err != nil {
			return err
		}
	}

	var (
		result *messcurator.SearchResult
		report *messcurator.CurateReport
	)
	err = cmdutil.Run(cmd.Context(), app, opts.tui, "Searching software lists",
		func(ctx context.Context, mc messcurator.Client) error {
			var err error
			result, err = mc.Search(ctx, req)
			if err != nil || !curate {
				return err
			}
			report, err = mc.Curate(ctx, result, curateReq)
			return err
		})
	if err != nil {
		return err
	}

	if curate {
		if err := writeReport(cmd, app, format, report); err != nil {
			return err
		}
	} else if err := writeResult(cmd, app, format, opts.outputFile, result, tableOpts); err != nil {
		return err
	}

	if failed := result.Failed(); len(failed) > 0 {
		return errors.NewPartialError("search", len(failed), len(result.Systems))
	}
	return nil
}

func writeResult(cmd *cobra.Command, app application.Application, format output.Format, path string,
	result *messcurator.SearchResult, opts table.SystemOptions) error {
	data, err := table.SearchToTableData(result, opts)
	if err != nil {
		return errors.NewValidationError("sort-by", opts.SortBy, err.Error())
	}
	if format.IsTabular() {
		return output.Write(app.Fs(), cmd.OutOrStdout(), path, format, data)
	}
	return output.Write(app.Fs(), cmd.OutOrStdout(), path, format, data.Records(opts.Columns()))
}

func writeReport(cmd *cobra.Command, app application.Application, format output.Format, report *messcurator.CurateReport) error {
	verb := "Updated"
	if report.Created {
		verb = "Created"
	}
	app.Logger().Info().
		Str("platform", report.PlatformKey).
		Str("document", report.Document).
		Int("systems", report.Systems).
		Int("software_ids", report.SoftwareIDs).
		Msgf("%s platform", verb)

	if format == output.FormatCSV {
		format = output.FormatTable
	}
	return output.NewFormatter(format).Format(cmd.OutOrStdout(), report)
}
