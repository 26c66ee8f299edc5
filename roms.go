package messcurator

import (
	"context"

	"github.com/agentstation/messcurator/pkg/errors"
	"github.com/agentstation/messcurator/pkg/platforms"
	"github.com/agentstation/messcurator/pkg/roms"
)

// CopyRequest scopes a ROM reconciliation run.
type CopyRequest struct {
	// PlatformKey limits the run to one platform. Empty means every platform.
	PlatformKey string
	// InputFile overrides the configured curated document.
	InputFile         string
	DryRun            bool
	ForcePlaceholders bool
	Workers           int
}

// CopyROMs copies every curated software archive from the ROM source tree
// into the output tree, writing empty placeholder archives where a source is
// missing. A run that left missing or failed items returns the summary
// together with a PartialError.
func (c *client) CopyROMs(ctx context.Context, req CopyRequest) (*roms.Summary, error) {
	if req.Workers < 0 {
		return nil, errors.NewValidationError("workers", req.Workers, "must not be negative")
	}
	if err := c.cfg.ValidateFs(c.options.romSrc, NeedsROMSource); err != nil {
		return nil, err
	}
	if err := c.needs(NeedsROMOutput); err != nil {
		return nil, err
	}
	path, err := c.documentPath(req.InputFile)
	if err != nil {
		return nil, err
	}

	ctx, logger := c.begin(ctx, "copy-roms")

	c.docMu.Lock()
	doc, err := platforms.Load(c.fs(), path)
	c.docMu.Unlock()
	if err != nil {
		return nil, err
	}
	if doc.Len() == 0 {
		return nil, errors.NewValidationError("document", path, "has no platforms")
	}

	rec := roms.New(c.options.romSrc, c.options.romDst,
		roms.WithEmitter(c.options.emitter),
		roms.WithLogger(logger),
	)
	summary, err := rec.Run(ctx, doc, roms.Request{
		PlatformKey:       req.PlatformKey,
		SourceDir:         c.cfg.ROMSource,
		DestDir:           c.cfg.ROMOutput,
		DryRun:            req.DryRun,
		ForcePlaceholders: req.ForcePlaceholders,
		Workers:           c.workers(req.Workers),
	})
	if err != nil {
		return summary, err
	}
	if summary.Partial() {
		items := summary.Copied + summary.Placeholders + summary.SystemPlaceholders + summary.Failed
		return summary, errors.NewPartialError("copy-roms", len(summary.Missing)+summary.Failed, items)
	}
	return summary, nil
}
