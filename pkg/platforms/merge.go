package platforms

import (
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/messcurator/pkg/errors"
)

// MergeOptions tunes a full rescan.
type MergeOptions struct {
	// AllowDowngrade lets a rescan replace a system that previously had
	// software with a bare entry. When false the prior detailed entry is
	// kept and reported as protected.
	AllowDowngrade bool
}

// RescanReport describes the outcome of a full rescan.
type RescanReport struct {
	Created   bool
	Protected []string
}

// FullRescan replaces the entry for key wholesale. Other platforms are not
// touched.
func (d *Document) FullRescan(key string, entry *Entry, opts MergeOptions) (RescanReport, error) {
	var report RescanReport
	if strings.TrimSpace(key) == "" {
		return report, errors.NewValidationError("platform-key", key, "is required")
	}
	if err := entry.Metadata.Validate(); err != nil {
		return report, err
	}

	next := &Entry{Metadata: entry.Metadata, Systems: slices.Clone(entry.Systems)}
	if d.Has(key) && !opts.AllowDowngrade {
		prior, err := d.Entry(key)
		if err != nil {
			return report, errors.WrapMerge(key, "decode existing entry", err)
		}
		detailed := make(map[string]SystemEntry, len(prior.Systems))
		for _, s := range prior.Systems {
			if !s.Bare() {
				detailed[s.Name] = s
			}
		}
		for i, s := range next.Systems {
			if old, ok := detailed[s.Name]; ok && s.Bare() {
				next.Systems[i] = old
				report.Protected = append(report.Protected, s.Name)
			}
		}
	}

	if !d.Has(key) {
		d.keys = append(d.keys, key)
		report.Created = true
	}
	d.entries[key] = next.ordered()
	return report, nil
}

// UpdateMetadata rewrites the metadata of an existing platform and leaves
// its system list, and any other keys of the entry, exactly as they are.
func (d *Document) UpdateMetadata(key string, m Metadata) error {
	raw, ok := d.entries[key]
	if !ok {
		return errors.NewMergeError(key, "metadata update", errors.NewNotFoundError("platform", key))
	}
	if err := m.Validate(); err != nil {
		return err
	}
	current, ok := raw.(yaml.MapSlice)
	if !ok {
		return errors.NewMergeError(key, "metadata update", errors.New("entry is not a mapping"))
	}

	updated := m.metadataItems()
	for _, item := range current {
		if k, _ := item.Key.(string); !slices.Contains(metadataKeys, k) {
			updated = append(updated, item)
		}
	}
	d.entries[key] = updated
	return nil
}

// Delete removes the given platforms and returns the keys that existed.
func (d *Document) Delete(keys ...string) []string {
	var removed []string
	for _, k := range keys {
		if _, ok := d.entries[k]; !ok {
			continue
		}
		delete(d.entries, k)
		d.keys = slices.DeleteFunc(d.keys, func(s string) bool { return s == k })
		removed = append(removed, k)
	}
	return removed
}

// Summary is the per-platform overview shown by platform listings.
type Summary struct {
	Key                      string   `json:"key" yaml:"key"`
	Name                     string   `json:"name" yaml:"name"`
	Categories               []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	MediaType                string   `json:"media_type" yaml:"media_type"`
	CustomCommandPerSoftware bool     `json:"custom_command_per_software" yaml:"custom_command_per_software"`
	Emulator                 Emulator `json:"emulator" yaml:"emulator"`
	Systems                  int      `json:"systems" yaml:"systems"`
	Softlists                int      `json:"softlists" yaml:"softlists"`
	SoftwareIDs              int      `json:"software_ids" yaml:"software_ids"`
}

// Summaries returns one summary per platform in document order, limited to
// keys when any are given.
func (d *Document) Summaries(keys ...string) ([]Summary, error) {
	if len(keys) == 0 {
		keys = d.keys
	}
	out := make([]Summary, 0, len(keys))
	for _, k := range keys {
		e, err := d.Entry(k)
		if err != nil {
			return nil, err
		}
		s := Summary{
			Key:                      k,
			Name:                     e.Name,
			Categories:               e.Categories,
			MediaType:                e.MediaType,
			CustomCommandPerSoftware: e.CustomCommandPerSoftware,
			Systems:                  len(e.Systems),
		}
		if e.Emulator != nil {
			s.Emulator = *e.Emulator
		}
		for i := range e.Systems {
			if e.Systems[i].Details != nil {
				s.Softlists += len(e.Systems[i].Details.SoftwareLists)
			}
			s.SoftwareIDs += e.Systems[i].SoftwareCount()
		}
		out = append(out, s)
	}
	return out, nil
}
