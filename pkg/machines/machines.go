// Package machines loads the emulator's machine-list document into an
// immutable, name-indexed catalog and answers the lookups the curation
// engine needs: exact name, name prefix, description terms, source file
// and software list capability.
package machines

import (
	"sort"
	"strings"
)

// Record describes one emulated machine as reported by the emulator.
type Record struct {
	Name            string
	Description     string
	Manufacturer    string
	Year            string
	SourceFile      string
	DriverStatus    string
	EmulationStatus string
	IsBIOS          bool
	IsDevice        bool

	// Softlists maps every software list the machine declares to its
	// upper-cased compatibility tag; an empty tag means the list is
	// accepted without compatibility filtering.
	Softlists map[string]string

	// SoftlistOrder keeps the declaration order of Softlists.
	SoftlistOrder []string
}

// HasSoftlists reports whether the machine declares any software list.
func (r *Record) HasSoftlists() bool {
	return len(r.SoftlistOrder) > 0
}

// Tags returns a copy of the softlist-to-tag map.
func (r *Record) Tags() map[string]string {
	tags := make(map[string]string, len(r.Softlists))
	for k, v := range r.Softlists {
		tags[k] = v
	}
	return tags
}

// Catalog is the immutable set of machine records, keyed by name.
type Catalog struct {
	records []*Record
	byName  map[string]*Record
}

// NewCatalog builds a catalog from records. Later duplicates win.
func NewCatalog(records []*Record) *Catalog {
	c := &Catalog{byName: make(map[string]*Record, len(records))}
	for _, r := range records {
		c.byName[r.Name] = r
	}
	c.records = make([]*Record, 0, len(c.byName))
	for _, r := range c.byName {
		c.records = append(c.records, r)
	}
	sort.Slice(c.records, func(i, j int) bool { return c.records[i].Name < c.records[j].Name })
	return c
}

// Len returns the number of machines.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Lookup returns the record with the exact name.
func (c *Catalog) Lookup(name string) (*Record, bool) {
	r, ok := c.byName[name]
	return r, ok
}

// Records returns all records sorted by name.
func (c *Catalog) Records() []*Record {
	out := make([]*Record, len(c.records))
	copy(out, c.records)
	return out
}

// Names returns all machine names, sorted.
func (c *Catalog) Names() []string {
	return c.collect(func(*Record) bool { return true })
}

// WithPrefix returns the names that start with prefix.
func (c *Catalog) WithPrefix(prefix string) []string {
	return c.collect(func(r *Record) bool { return strings.HasPrefix(r.Name, prefix) })
}

// DescriptionContainsAll returns the names whose description contains every
// term, case-insensitively.
func (c *Catalog) DescriptionContainsAll(terms ...string) []string {
	lowered := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			lowered = append(lowered, strings.ToLower(t))
		}
	}
	return c.collect(func(r *Record) bool {
		desc := strings.ToLower(r.Description)
		for _, t := range lowered {
			if !strings.Contains(desc, t) {
				return false
			}
		}
		return true
	})
}

// SourceFileContains returns the names whose driver source file contains
// term, case-insensitively.
func (c *Catalog) SourceFileContains(term string) []string {
	term = strings.ToLower(term)
	return c.collect(func(r *Record) bool {
		return strings.Contains(strings.ToLower(r.SourceFile), term)
	})
}

// SoftlistCapable returns the names of machines that declare at least one
// software list.
func (c *Catalog) SoftlistCapable() []string {
	return c.collect((*Record).HasSoftlists)
}

// Filter returns the records matching keep, sorted by name.
func (c *Catalog) Filter(keep func(*Record) bool) []*Record {
	var out []*Record
	for _, r := range c.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (c *Catalog) collect(keep func(*Record) bool) []string {
	var names []string
	for _, r := range c.records {
		if keep(r) {
			names = append(names, r.Name)
		}
	}
	return names
}
