// Package roms reconciles a ROM archive tree against the curated platform
// document. Every curated software id is copied from a source tree laid out
// as <source>/<softlist>/<id>.zip into <dest>/<platform>/<system>/<softlist>/,
// and anything that cannot be copied is replaced by an empty archive so the
// front-end still lists it.
package roms

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/messcurator/pkg/constants"
	"github.com/agentstation/messcurator/pkg/errors"
	"github.com/agentstation/messcurator/pkg/events"
	"github.com/agentstation/messcurator/pkg/logging"
	"github.com/agentstation/messcurator/pkg/platforms"
)

// Request scopes one reconciliation run.
type Request struct {
	// PlatformKey limits the run to one platform. Empty means all.
	PlatformKey string
	SourceDir   string
	DestDir     string
	// DryRun computes the summary without touching the destination.
	DryRun bool
	// ForcePlaceholders writes empty archives even when a source exists.
	ForcePlaceholders bool
	Workers           int
}

// MissingItem is a software id that received a placeholder archive.
type MissingItem struct {
	SoftwareID string `json:"software_id" yaml:"software_id"`
	Softlist   string `json:"softlist" yaml:"softlist"`
	System     string `json:"system" yaml:"system"`
	Platform   string `json:"platform" yaml:"platform"`
}

// Summary totals a reconciliation run.
type Summary struct {
	Platforms int `json:"platforms" yaml:"platforms"`
	Systems   int `json:"systems" yaml:"systems"`
	Copied    int `json:"copied" yaml:"copied"`
	// Placeholders counts empty archives written for software ids.
	Placeholders int `json:"placeholders" yaml:"placeholders"`
	// SystemPlaceholders counts empty archives written for bare systems.
	SystemPlaceholders int `json:"system_placeholders" yaml:"system_placeholders"`
	// Failed counts archives that could be neither copied nor synthesized.
	Failed  int           `json:"failed" yaml:"failed"`
	Missing []MissingItem `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// Partial reports whether the run left anything unresolved.
func (s *Summary) Partial() bool {
	return len(s.Missing) > 0 || s.Failed > 0
}

// Reconciler copies and synthesizes ROM archives.
type Reconciler struct {
	src     afero.Fs
	dst     afero.Fs
	emitter events.Emitter
	logger  *zerolog.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithEmitter sets the progress event sink.
func WithEmitter(e events.Emitter) Option {
	return func(r *Reconciler) { r.emitter = events.Or(e) }
}

// WithLogger sets the logger.
func WithLogger(l *zerolog.Logger) Option {
	return func(r *Reconciler) { r.logger = l }
}

// New creates a Reconciler reading from src and writing to dst. Both are
// usually afero.NewOsFs.
func New(src, dst afero.Fs, opts ...Option) *Reconciler {
	r := &Reconciler{src: src, dst: dst, emitter: events.Nop, logger: logging.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type itemKind int

const (
	systemItem itemKind = iota
	softwareItem
)

type item struct {
	kind     itemKind
	platform string
	system   string
	softlist string
	id       string
}

// plan flattens the scoped platforms into items and counts platforms and
// systems.
func (r *Reconciler) plan(doc *platforms.Document, req Request, sum *Summary) ([]item, error) {
	keys := doc.Keys()
	if req.PlatformKey != "" {
		if !doc.Has(req.PlatformKey) {
			return nil, errors.NewNotFoundError("platform", req.PlatformKey)
		}
		keys = []string{req.PlatformKey}
	}

	var items []item
	for _, key := range keys {
		entry, err := doc.Entry(key)
		if err != nil {
			return nil, err
		}
		sum.Platforms++
		r.emitter.Emit(events.Infof("platform %s (%s, %d systems)", key, entry.Name, len(entry.Systems)))
		if !pathSafe(key) {
			sum.Failed++
			r.emitter.Emit(events.Errorf("platform key %q is not a valid directory name, skipped", key))
			continue
		}

		for _, sys := range entry.Systems {
			sum.Systems++
			if !pathSafe(sys.Name) {
				sum.Failed++
				r.emitter.Emit(events.Errorf("system name %q is not a valid directory name, skipped", sys.Name))
				continue
			}
			if sys.Bare() {
				items = append(items, item{kind: systemItem, platform: key, system: sys.Name})
				continue
			}
			for _, block := range sys.Details.SoftwareLists {
				if block.Softlist == "" {
					r.emitter.Emit(events.Errorf("software list entry without softlist_name, skipped").ForSystem(sys.Name))
					continue
				}
				if len(block.SoftwareIDs) == 0 {
					r.emitter.Emit(events.Infof("no software ids for softlist %s", block.Softlist).ForSystem(sys.Name))
					continue
				}
				if !pathSafe(block.Softlist) {
					sum.Failed += len(block.SoftwareIDs)
					r.emitter.Emit(events.Errorf("softlist name %q is not a valid directory name, skipped", block.Softlist).ForSystem(sys.Name))
					continue
				}
				for _, id := range block.SoftwareIDs {
					if !pathSafe(id) {
						sum.Failed++
						r.emitter.Emit(events.Errorf("software id %q is not a valid file name, skipped", id).ForSystem(sys.Name))
						continue
					}
					items = append(items, item{
						kind:     softwareItem,
						platform: key,
						system:   sys.Name,
						softlist: block.Softlist,
						id:       id,
					})
				}
			}
		}
	}
	return items, nil
}

// pathSafe reports whether name can be used as a single path element below
// the source or destination root.
func pathSafe(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}

// tally is the concurrent accumulator behind a Summary.
type tally struct {
	copied, placeholders, systemPlaceholders, failed atomic.Int64

	mu      sync.Mutex
	missing []MissingItem
}

func (t *tally) addMissing(it item) {
	t.mu.Lock()
	t.missing = append(t.missing, MissingItem{
		SoftwareID: it.id,
		Softlist:   it.softlist,
		System:     it.system,
		Platform:   it.platform,
	})
	t.mu.Unlock()
}

// Run reconciles the destination tree against doc. Per-item filesystem
// failures are downgraded to placeholders and never abort the run; only an
// unknown platform scope, an undecodable entry or cancellation return an
// error.
func (r *Reconciler) Run(ctx context.Context, doc *platforms.Document, req Request) (*Summary, error) {
	sum := &Summary{}
	items, err := r.plan(doc, req, sum)
	if err != nil {
		return nil, err
	}

	workers := req.Workers
	if workers < 1 {
		workers = constants.DefaultWorkers
	}
	if workers > constants.MaxWorkers {
		workers = constants.MaxWorkers
	}

	r.logger.Info().
		Int("items", len(items)).
		Int("workers", workers).
		Bool("dry_run", req.DryRun).
		Bool("force_placeholders", req.ForcePlaceholders).
		Msg("reconciling ROM archives")

	var (
		t    tally
		done atomic.Int64
	)
	total := len(items)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, it := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			r.reconcile(it, req, &t, int(done.Add(1)), total)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrCanceled, err)
	}

	sum.Copied = int(t.copied.Load())
	sum.Placeholders = int(t.placeholders.Load())
	sum.SystemPlaceholders = int(t.systemPlaceholders.Load())
	sum.Failed += int(t.failed.Load())
	sum.Missing = t.missing
	SortMissing(sum.Missing)
	return sum, nil
}

func (r *Reconciler) reconcile(it item, req Request, t *tally, current, total int) {
	if it.kind == systemItem {
		dst := filepath.Join(req.DestDir, it.platform, it.system, it.system+".zip")
		if err := r.placeholder(dst, req.DryRun); err != nil {
			t.failed.Add(1)
			r.emitter.Emit(events.Errorf("empty system archive %s", dst).ForSystem(it.system).Progress(current, total).WithError(err))
			return
		}
		t.systemPlaceholders.Add(1)
		r.emitter.Emit(events.Infof("empty system archive %s", dst).ForSystem(it.system).Progress(current, total))
		return
	}

	name := it.id + ".zip"
	src := filepath.Join(req.SourceDir, it.softlist, name)
	dst := filepath.Join(req.DestDir, it.platform, it.system, it.softlist, name)

	if !req.ForcePlaceholders {
		found, _ := afero.Exists(r.src, src)
		if !found {
			r.emitter.Emit(events.Warnf("missing %s from %s", name, it.softlist).ForSystem(it.system).Progress(current, total))
		} else if err := r.copy(src, dst, req.DryRun); err != nil {
			r.emitter.Emit(events.Errorf("copy %s", src).ForSystem(it.system).Progress(current, total).WithError(err))
		} else {
			t.copied.Add(1)
			r.emitter.Emit(events.Successf("copied %s", name).ForSystem(it.system).Progress(current, total))
			return
		}
	}

	t.addMissing(it)
	if err := r.placeholder(dst, req.DryRun); err != nil {
		t.failed.Add(1)
		r.emitter.Emit(events.Errorf("placeholder %s", dst).ForSystem(it.system).WithError(err))
		return
	}
	t.placeholders.Add(1)
}

// copy copies src to dst and carries the source modification time over.
func (r *Reconciler) copy(src, dst string, dryRun bool) error {
	if dryRun {
		return nil
	}
	if err := r.dst.MkdirAll(filepath.Dir(dst), constants.DirPermissions); err != nil {
		return errors.WrapIO("mkdir", filepath.Dir(dst), err)
	}

	in, err := r.src.Open(src)
	if err != nil {
		return errors.WrapIO("open", src, err)
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return errors.WrapIO("stat", src, err)
	}

	out, err := r.dst.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.WrapIO("copy", dst, err)
	}
	if err := out.Close(); err != nil {
		return errors.WrapIO("write", dst, err)
	}
	mtime := info.ModTime()
	if err := r.dst.Chtimes(dst, mtime, mtime); err != nil {
		return errors.WrapIO("chtimes", dst, err)
	}
	return nil
}

// placeholder writes an empty zip archive at dst.
func (r *Reconciler) placeholder(dst string, dryRun bool) error {
	if dryRun {
		return nil
	}
	if err := r.dst.MkdirAll(filepath.Dir(dst), constants.DirPermissions); err != nil {
		return errors.WrapIO("mkdir", filepath.Dir(dst), err)
	}
	return errors.WrapIO("write", dst, afero.WriteFile(r.dst, dst, emptyZip, constants.FilePermissions))
}

// emptyZip is a valid zip archive with no entries.
var emptyZip = func() []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}()

// SortMissing orders items by software id, softlist, system, then platform.
func SortMissing(items []MissingItem) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.SoftwareID != b.SoftwareID {
			return a.SoftwareID < b.SoftwareID
		}
		if a.Softlist != b.Softlist {
			return a.Softlist < b.Softlist
		}
		if a.System != b.System {
			return a.System < b.System
		}
		return a.Platform < b.Platform
	})
}
