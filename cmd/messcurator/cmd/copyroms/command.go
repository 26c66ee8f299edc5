// Package copyroms provides the copy-roms command.
package copyroms

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/messcurator"
	"github.com/agentstation/messcurator/cmd/application"
	"github.com/agentstation/messcurator/internal/cmd/cmdutil"
	"github.com/agentstation/messcurator/internal/cmd/output"
	"github.com/agentstation/messcurator/internal/cmd/table"
	"github.com/agentstation/messcurator/pkg/constants"
	"github.com/agentstation/messcurator/pkg/errors"
	"github.com/agentstation/messcurator/pkg/roms"
)

type options struct {
	req        messcurator.CopyRequest
	report     bool
	reportFile string
	tui        bool
}

// NewCommand creates the copy-roms command.
func NewCommand(app application.Application) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:     "copy-roms",
		GroupID: "core",
		Short:   "Copy curated software archives into the ROM tree",
		Long: `Copy-roms walks the platform document and copies each curated software
archive from <roms.source>/<softlist>/<id>.zip to
<roms.output>/<platform>/<system>/<softlist>/<id>.zip.

A missing source gets an empty placeholder archive and is listed as missing;
a system without software gets an empty <system>.zip. The command exits
with status 2 when anything is missing.`,
		Example: `  messcurator copy-roms
  messcurator copy-roms --platform-key jakks --dry-run
  messcurator copy-roms --report                 # writes missing-roms-<timestamp>.md
  messcurator copy-roms --report-file missing.md --workers 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app, opts)
		},
	}

	cmd.Flags().StringVar(&opts.req.PlatformKey, "platform-key", "",
		"Only reconcile this platform")
	cmd.Flags().StringVar(&opts.req.InputFile, "input-file", "",
		"Platform document to read instead of the configured one")
	cmd.Flags().BoolVar(&opts.req.DryRun, "dry-run", false,
		"Report what would be copied without writing")
	cmd.Flags().BoolVar(&opts.req.ForcePlaceholders, "force-placeholders", false,
		"Write empty archives even where a source exists")
	cmd.Flags().IntVar(&opts.req.Workers, "workers", 0,
		"Concurrent copies (default from config)")
	cmd.Flags().BoolVar(&opts.report, "report", false,
		"Write a Markdown report of missing ROMs to missing-roms-<timestamp>.md")
	cmd.Flags().StringVar(&opts.reportFile, "report-file", "",
		"Write the Markdown report of missing ROMs to this file (implies --report)")
	cmd.Flags().BoolVar(&opts.tui, "tui", false,
		"Show progress in a terminal UI")

	return cmd
}

func run(cmd *cobra.Command, app application.Application, opts *options) error {
	var summary *roms.Summary
	runErr := cmdutil.Run(cmd.Context(), app, opts.tui, "Copying ROMs",
		func(ctx context.Context, mc messcurator.Client) error {
			var err error
			summary, err = mc.CopyROMs(ctx, opts.req)
			return err
		})
	// A partial run still has a summary to show
	if summary == nil {
		return runErr
	}

	if err := render(cmd, app, summary); err != nil {
		return err
	}
	if opts.report || opts.reportFile != "" {
		path := opts.reportFile
		if path == "" {
			path = fmt.Sprintf("missing-roms-%s.md", time.Now().Format(constants.TimeFormatFilename))
		}
		if err := writeReport(app, path, summary); err != nil {
			return err
		}
		app.Logger().Info().Str("file", path).Int("missing", len(summary.Missing)).Msg("Wrote missing ROM report")
	}
	return runErr
}

func render(cmd *cobra.Command, app application.Application, summary *roms.Summary) error {
	w := cmd.OutOrStdout()
	format := cmdutil.Format(app)
	if !format.IsTabular() {
		return output.NewFormatter(format).Format(w, summary)
	}

	f := output.NewFormatter(format)
	if err := f.Format(w, table.SummaryToTableData(summary)); err != nil {
		return err
	}
	if len(summary.Missing) == 0 {
		return nil
	}
	if format == output.FormatTable {
		fmt.Fprintf(w, "\nMissing ROMs (%d):\n", len(summary.Missing))
	}
	return f.Format(w, table.MissingToTableData(summary.Missing))
}

func writeReport(app application.Application, path string, summary *roms.Summary) error {
	f, err := app.Fs().OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	if err := roms.WriteMissingReport(f, summary); err != nil {
		_ = f.Close()
		return errors.WrapIO("write", path, err)
	}
	return f.Close()
}
