// Package messcurator curates, for a multi-system emulator front-end, which
// emulated machines and which pieces of compatible software are exposed to
// end users, and reconciles a ROM archive tree against that curation.
//
// A Client wires the building blocks together:
//
//   - pkg/machines loads the emulator's machine list
//   - pkg/curation selects machines and filters their software
//   - pkg/softlists extracts compatible software per machine
//   - pkg/platforms merges the result into the curated document
//   - pkg/roms copies or synthesizes ROM archives for the document
//
// Example usage:
//
//	cfg := messcurator.DefaultConfig()
//	cfg.EmulatorPath = "/opt/mame/mame"
//
//	mc, err := messcurator.New(cfg, messcurator.WithEmitter(events.Console(os.Stderr)))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := mc.Search(ctx, messcurator.SearchRequest{
//	    Query: curation.MachineQuery{Systems: []string{"jak_montr", "jak_totm"}},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := mc.Curate(ctx, result, messcurator.CurateRequest{
//	    PlatformKey: "jakks-tv",
//	    Metadata:    platforms.Metadata{Name: "JAKKS Pacific TV Games", MediaType: "cart"},
//	})
package messcurator

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/messcurator/internal/emulator"
	"github.com/agentstation/messcurator/pkg/constants"
	"github.com/agentstation/messcurator/pkg/events"
	"github.com/agentstation/messcurator/pkg/logging"
	"github.com/agentstation/messcurator/pkg/machines"
	"github.com/agentstation/messcurator/pkg/platforms"
	"github.com/agentstation/messcurator/pkg/roms"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Searcher runs the curation pipeline.
type Searcher interface {
	// Catalog loads the machine list at path, or the configured one when
	// path is empty. The list is generated with the emulator when absent.
	Catalog(ctx context.Context, path string) (*machines.Catalog, error)

	// Search selects machines and extracts their software.
	Search(ctx context.Context, req SearchRequest) (*SearchResult, error)

	// Drivers lists machines by emulation status.
	Drivers(ctx context.Context, req DriversRequest) ([]*machines.Record, error)

	// Split writes filtered machine-list documents for the folder ini.
	Split(ctx context.Context, req SplitRequest) (*SplitReport, error)
}

// DocumentStore reads and writes the curated platform document. Writes are
// serialized.
type DocumentStore interface {
	// Platforms loads the curated document.
	Platforms(ctx context.Context, path string) (*platforms.Document, error)

	// Curate merges a search result into the document as one platform.
	Curate(ctx context.Context, result *SearchResult, req CurateRequest) (*CurateReport, error)

	// UpdateMetadata rewrites a platform's metadata, leaving its systems.
	UpdateMetadata(ctx context.Context, path, key string, m platforms.Metadata) error

	// DeletePlatforms removes platforms and returns the keys removed.
	DeletePlatforms(ctx context.Context, path string, keys ...string) ([]string, error)
}

// ROMReconciler reconciles the ROM tree against the curated document.
type ROMReconciler interface {
	CopyROMs(ctx context.Context, req CopyRequest) (*roms.Summary, error)
}

// Client is the curator.
type Client interface {
	Searcher
	DocumentStore
	ROMReconciler

	// Config returns the configuration the client was built with.
	Config() Config
}

// client is the internal implementation of the Client interface.
type client struct {
	cfg     Config
	options *options

	// runner is built from the configuration on first use unless injected
	runnerOnce sync.Once
	runner     emulator.Runner

	catMu    sync.Mutex
	catalogs map[string]*machines.Catalog

	// docMu serializes load-modify-save cycles of the curated document
	docMu sync.Mutex
}

// New creates a Client. The configuration is validated by each operation
// for the values it needs.
func New(cfg Config, opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}
	if o.logger == nil {
		o.logger = logging.Default()
	}
	return &client{
		cfg:      cfg,
		options:  o,
		runner:   o.runner,
		catalogs: make(map[string]*machines.Catalog),
	}, nil
}

// Config returns a copy of the configuration.
func (c *client) Config() Config {
	return c.cfg
}

func (c *client) fs() afero.Fs { return c.options.fs }

func (c *client) emit(e events.Event) { c.options.emitter.Emit(e) }

// begin tags ctx with a run id and returns the logger carrying it. A logger
// already in ctx is kept.
func (c *client) begin(ctx context.Context, operation string) (context.Context, *zerolog.Logger) {
	if logging.FromContext(ctx) == logging.Default() {
		ctx = logging.WithLogger(ctx, c.options.logger)
	}
	if logging.RunID(ctx) == "" {
		ctx = logging.WithRunID(ctx, uuid.NewString())
	}
	ctx = logging.WithField(ctx, "operation", operation)
	return ctx, logging.FromContext(ctx)
}

// needs validates the configuration, skipping the emulator binary when a
// runner was injected.
func (c *client) needs(reqs ...Requirement) error {
	if c.options.runner != nil {
		filtered := reqs[:0:0]
		for _, r := range reqs {
			if r != NeedsEmulator {
				filtered = append(filtered, r)
			}
		}
		reqs = filtered
	}
	return c.cfg.ValidateFs(c.fs(), reqs...)
}

// runnerFor returns the runner, building a cached Exec runner on first use.
func (c *client) runnerFor(logger *zerolog.Logger) emulator.Runner {
	c.runnerOnce.Do(func() {
		if c.runner != nil {
			return
		}
		exec := emulator.NewExec(c.cfg.EmulatorPath, c.cfg.EmulatorTimeout, logger)
		c.runner = emulator.NewCached(exec, constants.CacheTTL, constants.CacheCleanupInterval)
	})
	return c.runner
}

// workers resolves a per-request worker count against the configuration.
func (c *client) workers(requested int) int {
	n := requested
	if n <= 0 {
		n = c.cfg.Workers
	}
	if n <= 0 {
		n = constants.DefaultWorkers
	}
	if n > constants.MaxWorkers {
		n = constants.MaxWorkers
	}
	return n
}
