package messcurator

import (
	"context"

	"github.com/agentstation/messcurator/pkg/errors"
	"github.com/agentstation/messcurator/pkg/events"
	"github.com/agentstation/messcurator/pkg/logging"
	"github.com/agentstation/messcurator/pkg/platforms"
)

// CurateRequest describes how a search result becomes a platform entry.
type CurateRequest struct {
	PlatformKey string
	Metadata    platforms.Metadata
	Overrides   *platforms.Overrides
	// Force lets the rescan replace previously curated software with a
	// bare entry when the new scan found nothing for a system.
	Force bool
	// Document overrides the configured document path.
	Document string
}

// Validate checks the request before any emulator call.
func (r *CurateRequest) Validate() error {
	if r.PlatformKey == "" {
		return errors.NewValidationError("platform-key", r.PlatformKey, "is required")
	}
	return r.Metadata.Validate()
}

// CurateReport describes a completed merge.
type CurateReport struct {
	PlatformKey string `json:"platform_key" yaml:"platform_key"`
	Document    string `json:"document" yaml:"document"`
	Created     bool   `json:"created" yaml:"created"`
	Systems     int    `json:"systems" yaml:"systems"`
	SoftwareIDs int    `json:"software_ids" yaml:"software_ids"`
	// Protected lists systems whose prior software was kept because the
	// rescan found none and Force was not set.
	Protected []string `json:"protected,omitempty" yaml:"protected,omitempty"`
	// Failed lists systems curated as bare entries because their software
	// list failed.
	Failed []string `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// Curate assembles result into a platform entry and fully replaces the entry
// for the platform key. Other platforms are written back unchanged.
func (c *client) Curate(ctx context.Context, result *SearchResult, req CurateRequest) (*CurateReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if result == nil || len(result.Systems) == 0 {
		return nil, errors.NewValidationError("systems", nil, "no systems to curate")
	}
	path, err := c.documentPath(req.Document)
	if err != nil {
		return nil, err
	}
	ctx = logging.WithPlatform(ctx, req.PlatformKey)
	_, logger := c.begin(ctx, "curate")

	entry := &platforms.Entry{
		Metadata: req.Metadata,
		Systems:  platforms.Assemble(result.SystemNames(), result.Entries(), req.Overrides),
	}

	report := &CurateReport{PlatformKey: req.PlatformKey, Document: path, Systems: len(entry.Systems)}
	for i := range entry.Systems {
		report.SoftwareIDs += entry.Systems[i].SoftwareCount()
	}
	for _, f := range result.Failed() {
		report.Failed = append(report.Failed, f.Name())
	}

	c.docMu.Lock()
	defer c.docMu.Unlock()

	doc, err := platforms.Load(c.fs(), path)
	if err != nil {
		return nil, err
	}
	rescan, err := doc.FullRescan(req.PlatformKey, entry, platforms.MergeOptions{AllowDowngrade: req.Force})
	if err != nil {
		return nil, errors.WrapMerge(req.PlatformKey, "full rescan", err)
	}
	if err := platforms.Save(c.fs(), path, doc); err != nil {
		return nil, err
	}

	report.Created = rescan.Created
	report.Protected = rescan.Protected
	for _, name := range rescan.Protected {
		c.emit(events.Warnf("kept previously curated software; rescan found none (use force to replace)").ForSystem(name))
	}
	logger.Info().
		Str("document", path).
		Bool("created", report.Created).
		Int("systems", report.Systems).
		Int("software_ids", report.SoftwareIDs).
		Int("protected", len(report.Protected)).
		Msg("Platform written")
	c.emit(events.Successf("platform %s written to %s (%d systems, %d software ids)",
		req.PlatformKey, path, report.Systems, report.SoftwareIDs))
	return report, nil
}

// Platforms loads the curated document at path or the configured one.
func (c *client) Platforms(_ context.Context, path string) (*platforms.Document, error) {
	path, err := c.documentPath(path)
	if err != nil {
		return nil, err
	}
	c.docMu.Lock()
	defer c.docMu.Unlock()
	return platforms.Load(c.fs(), path)
}

// UpdateMetadata patches the metadata of an existing platform. The document
// is not written when the key is unknown.
func (c *client) UpdateMetadata(ctx context.Context, path, key string, m platforms.Metadata) error {
	path, err := c.documentPath(path)
	if err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}
	_, logger := c.begin(logging.WithPlatform(ctx, key), "update")

	c.docMu.Lock()
	defer c.docMu.Unlock()

	doc, err := platforms.Load(c.fs(), path)
	if err != nil {
		return err
	}
	if err := doc.UpdateMetadata(key, m); err != nil {
		return err
	}
	if err := platforms.Save(c.fs(), path, doc); err != nil {
		return err
	}
	logger.Info().Str("document", path).Msg("Platform metadata updated")
	c.emit(events.Successf("metadata of %s updated", key))
	return nil
}

// DeletePlatforms removes platforms from the document. Unknown keys are
// reported as NotFoundError after the known ones are removed.
func (c *client) DeletePlatforms(ctx context.Context, path string, keys ...string) ([]string, error) {
	path, err := c.documentPath(path)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, errors.NewValidationError("platform-key", nil, "at least one key is required")
	}
	_, logger := c.begin(ctx, "delete")

	c.docMu.Lock()
	defer c.docMu.Unlock()

	doc, err := platforms.Load(c.fs(), path)
	if err != nil {
		return nil, err
	}
	removed := doc.Delete(keys...)
	if len(removed) > 0 {
		if err := platforms.Save(c.fs(), path, doc); err != nil {
			return nil, err
		}
		logger.Info().Strs("platforms", removed).Msg("Platforms deleted")
	}
	for _, k := range removed {
		c.emit(events.Successf("platform %s deleted", k))
	}
	if len(removed) < len(keys) {
		for _, k := range keys {
			if !contains(removed, k) {
				return removed, errors.NewNotFoundError("platform", k)
			}
		}
	}
	return removed, nil
}

func (c *client) documentPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	if err := c.needs(NeedsDocument); err != nil {
		return "", err
	}
	return c.cfg.Document, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
