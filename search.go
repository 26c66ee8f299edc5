package messcurator

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"

	"github.com/agentstation/messcurator/pkg/constants"
	"github.com/agentstation/messcurator/pkg/curation"
	"github.com/agentstation/messcurator/pkg/errors"
	"github.com/agentstation/messcurator/pkg/events"
	"github.com/agentstation/messcurator/pkg/logging"
	"github.com/agentstation/messcurator/pkg/machines"
	"github.com/agentstation/messcurator/pkg/softlists"
)

// SearchRequest configures one curation pipeline run.
type SearchRequest struct {
	Query    curation.MachineQuery
	Software curation.SoftwareFilter
	Status   curation.StatusFilter

	// InputXML overrides the configured machine list.
	InputXML string
	// Workers overrides the configured number of concurrent emulator calls.
	Workers int
}

// Validate checks the request without touching the emulator.
func (r *SearchRequest) Validate() error {
	if err := r.Status.Validate(); err != nil {
		return err
	}
	if r.Query.Limit < 0 {
		return errors.NewValidationError("limit", r.Query.Limit, "must not be negative")
	}
	if r.Workers < 0 {
		return errors.NewValidationError("workers", r.Workers, "must not be negative")
	}
	return nil
}

// SystemResult is the outcome for one admitted machine.
type SystemResult struct {
	Record  *machines.Record
	Entries []softlists.Entry
	// Err is set when the software catalog could not be obtained or
	// parsed. The system is still curated, as a bare entry.
	Err error
}

// Name returns the machine name.
func (s *SystemResult) Name() string { return s.Record.Name }

// SkippedSystem is a machine the status filters rejected.
type SkippedSystem struct {
	Name   string
	Reason string
}

// SearchResult is the outcome of a pipeline run.
type SearchResult struct {
	RunID string
	// Systems holds the admitted machines sorted by name.
	Systems []SystemResult
	Skipped []SkippedSystem
	// Unknown lists selected names absent from the machine list.
	Unknown []string
	// IgnoredPredicates is set when seeds made description and source-file
	// predicates inapplicable.
	IgnoredPredicates bool
}

// SystemNames returns the admitted machine names in order.
func (r *SearchResult) SystemNames() []string {
	names := make([]string, len(r.Systems))
	for i := range r.Systems {
		names[i] = r.Systems[i].Name()
	}
	return names
}

// Entries returns every software entry in system order.
func (r *SearchResult) Entries() []softlists.Entry {
	var out []softlists.Entry
	for i := range r.Systems {
		out = append(out, r.Systems[i].Entries...)
	}
	return out
}

// Failed returns the systems whose software catalog failed.
func (r *SearchResult) Failed() []SystemResult {
	var out []SystemResult
	for _, s := range r.Systems {
		if s.Err != nil {
			out = append(out, s)
		}
	}
	return out
}

// Catalog loads and memoizes the machine list at path.
func (c *client) Catalog(ctx context.Context, path string) (*machines.Catalog, error) {
	ctx, logger := c.begin(ctx, "catalog")
	return c.catalog(ctx, logger, path)
}

func (c *client) catalog(ctx context.Context, logger *zerolog.Logger, path string) (*machines.Catalog, error) {
	if path == "" {
		if err := c.needs(NeedsMachineXML); err != nil {
			return nil, err
		}
		path = c.cfg.MachineXML
	}

	c.catMu.Lock()
	defer c.catMu.Unlock()
	if cat, ok := c.catalogs[path]; ok {
		return cat, nil
	}

	var gen machines.Generator
	if exists, _ := afero.Exists(c.fs(), path); !exists {
		if err := c.needs(NeedsEmulator); err != nil {
			return nil, err
		}
		gen = c.runnerFor(logger)
		c.emit(events.Infof("machine list %s not found, generating it", path))
	}
	cat, err := machines.Load(ctx, c.fs(), path, gen)
	if err != nil {
		return nil, err
	}
	c.catalogs[path] = cat
	return cat, nil
}

// Search runs stage A over the machine list, then fetches, extracts and
// filters the software of every admitted machine. Configuration and request
// errors are returned before any emulator call. Per-system failures are
// recorded in the result and the run continues.
func (c *client) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.InputXML == "" {
		if err := c.needs(NeedsMachineXML); err != nil {
			return nil, err
		}
	}
	if err := c.needs(NeedsEmulator); err != nil {
		return nil, err
	}

	ctx, logger := c.begin(ctx, "search")
	cat, err := c.catalog(ctx, logger, req.InputXML)
	if err != nil {
		return nil, err
	}

	sel := curation.SelectMachines(cat, req.Query)
	result := &SearchResult{
		Unknown:           sel.Unknown,
		IgnoredPredicates: sel.IgnoredPredicates,
	}
	if sel.IgnoredPredicates {
		c.emit(events.Warnf("explicit systems given; description and source-file filters are not applied"))
	}
	for _, name := range sel.Unknown {
		c.emit(events.Warnf("system %s is not in the machine list", name).ForSystem(name))
	}
	if len(sel.Names) == 0 {
		return nil, errors.NewValidationError("systems", nil, "no systems matched the selection")
	}

	var admitted []*machines.Record
	for _, name := range sel.Names {
		rec, ok := cat.Lookup(name)
		if !ok {
			rec = unknownRecord(name)
		}
		if ok, reason := req.Status.Admit(lookupOrNil(cat, name)); !ok {
			result.Skipped = append(result.Skipped, SkippedSystem{Name: name, Reason: reason})
			c.emit(events.Infof("skipping: %s", reason).ForSystem(name))
			continue
		}
		admitted = append(admitted, rec)
	}

	workers := c.workers(req.Workers)
	logger.Info().
		Int("selected", len(sel.Names)).
		Int("admitted", len(admitted)).
		Int("workers", workers).
		Msg("Fetching software lists")

	runner := c.runnerFor(logger)
	if workers > 1 {
		result.Systems, err = c.searchParallel(ctx, runner, admitted, req.Software, workers)
	} else {
		result.Systems, err = c.searchSerial(ctx, runner, admitted, req.Software)
	}
	if err != nil {
		return nil, err
	}

	result.RunID = logging.RunID(ctx)
	failed := len(result.Failed())
	c.emit(events.Successf("processed %d systems, %d software entries, %d failed",
		len(result.Systems), len(result.Entries()), failed))
	return result, nil
}

// searchSerial processes systems strictly in order so progress reads i/total.
func (c *client) searchSerial(ctx context.Context, runner softwareLister, recs []*machines.Record, filter curation.SoftwareFilter) ([]SystemResult, error) {
	out := make([]SystemResult, 0, len(recs))
	for i, rec := range recs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", errors.ErrCanceled, err)
		}
		c.emit(events.Infof("processing %s", rec.Name).ForSystem(rec.Name).Progress(i+1, len(recs)))
		out = append(out, c.processSystem(ctx, runner, rec, filter))
	}
	return out, nil
}

// searchParallel runs emulator calls on a bounded pool and restores name
// order before returning.
func (c *client) searchParallel(ctx context.Context, runner softwareLister, recs []*machines.Record, filter curation.SoftwareFilter, workers int) ([]SystemResult, error) {
	p := pool.NewWithResults[SystemResult]().WithMaxGoroutines(workers)
	for i, rec := range recs {
		p.Go(func() SystemResult {
			if ctx.Err() != nil {
				return SystemResult{Record: rec, Err: ctx.Err()}
			}
			c.emit(events.Infof("processing %s", rec.Name).ForSystem(rec.Name).Progress(i+1, len(recs)))
			return c.processSystem(ctx, runner, rec, filter)
		})
	}
	out := p.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrCanceled, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Record.Name < out[j].Record.Name })
	return out, nil
}

type softwareLister interface {
	ListSoftware(ctx context.Context, system string) ([]byte, error)
}

// processSystem fetches, extracts and filters one system's software.
func (c *client) processSystem(ctx context.Context, runner softwareLister, rec *machines.Record, filter curation.SoftwareFilter) SystemResult {
	res := SystemResult{Record: rec}

	data, err := runner.ListSoftware(ctx, rec.Name)
	if err != nil {
		res.Err = err
		c.emit(events.Errorf("software list unavailable, keeping %s as a bare system", rec.Name).ForSystem(rec.Name).WithError(err))
		return res
	}
	doc, err := softlists.ParseBytes(data)
	if err != nil {
		res.Err = err
		c.emit(events.Errorf("software list of %s is malformed", rec.Name).ForSystem(rec.Name).WithError(err))
		return res
	}

	res.Entries = filter.Apply(softlists.Extract(rec.Name, doc, rec.Tags()))
	if len(res.Entries) == 0 {
		c.emit(events.Infof("no software matched").ForSystem(rec.Name))
	} else {
		c.emit(events.Successf("%d software entries", len(res.Entries)).ForSystem(rec.Name))
	}
	return res
}

// unknownRecord stands in for a selected machine the list does not know.
func unknownRecord(name string) *machines.Record {
	return &machines.Record{
		Name:            name,
		Description:     constants.Unknown,
		Manufacturer:    constants.Unknown,
		Year:            constants.Unknown,
		SourceFile:      constants.Unknown,
		DriverStatus:    constants.Unknown,
		EmulationStatus: constants.Unknown,
	}
}

func lookupOrNil(cat *machines.Catalog, name string) *machines.Record {
	if rec, ok := cat.Lookup(name); ok {
		return rec
	}
	return nil
}

// DriversRequest selects machines by emulation status.
type DriversRequest struct {
	// Status is the required emulation status. Empty means any.
	Status string
	// SoftlistOnly keeps machines declaring at least one software list.
	SoftlistOnly bool
	// FolderINIOnly keeps machines listed in the configured folder ini.
	FolderINIOnly bool
	InputXML      string
}

// Drivers lists machines by emulation status, sorted by name.
func (c *client) Drivers(ctx context.Context, req DriversRequest) ([]*machines.Record, error) {
	status := curation.StatusFilter{Emulation: req.Status}
	if err := status.Validate(); err != nil {
		return nil, err
	}
	var allowed map[string]struct{}
	if req.FolderINIOnly {
		names, err := c.folderNames()
		if err != nil {
			return nil, err
		}
		allowed = make(map[string]struct{}, len(names))
		for _, n := range names {
			allowed[n] = struct{}{}
		}
	}

	ctx, logger := c.begin(ctx, "drivers")
	cat, err := c.catalog(ctx, logger, req.InputXML)
	if err != nil {
		return nil, err
	}
	return cat.Filter(func(r *machines.Record) bool {
		if r.IsBIOS || r.IsDevice {
			return false
		}
		if ok, _ := status.Admit(r); !ok {
			return false
		}
		if req.SoftlistOnly && !r.HasSoftlists() {
			return false
		}
		if allowed != nil {
			if _, ok := allowed[r.Name]; !ok {
				return false
			}
		}
		return true
	}), nil
}

// folderNames reads the machine names of the configured folder ini.
func (c *client) folderNames() ([]string, error) {
	if err := c.needs(NeedsFolderINI); err != nil {
		return nil, err
	}
	f, err := c.fs().Open(c.cfg.FolderINI)
	if err != nil {
		return nil, errors.WrapIO("open", c.cfg.FolderINI, err)
	}
	defer f.Close()
	names, err := machines.ParseFolderINI(f)
	if err != nil {
		return nil, errors.WrapParse("ini", c.cfg.FolderINI, err)
	}
	return names, nil
}
