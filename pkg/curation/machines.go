// Package curation narrows the machine catalog to the set of systems a
// platform exposes (stage A), narrows each system's software to the entries
// the user asked for (stage B), and gates systems on driver and emulation
// status.
package curation

import (
	"sort"
	"strings"

	"github.com/agentstation/messcurator/pkg/machines"
)

// MachineQuery describes the stage A selection.
type MachineQuery struct {
	// Seeds. When any is set the predicates below are not applied.
	Systems []string
	Fuzzy   string
	Include []string

	// Predicates applied to the whole catalog when no seed is given.
	DescriptionTerms []string
	SourceFile       string
	SoftlistCapable  bool

	Exclude []string
	Limit   int
}

// Seeded reports whether the query starts from explicit seeds.
func (q *MachineQuery) Seeded() bool {
	return len(q.Systems) > 0 || q.Fuzzy != "" || len(q.Include) > 0
}

// HasPredicates reports whether any catalog predicate is set.
func (q *MachineQuery) HasPredicates() bool {
	return len(nonEmpty(q.DescriptionTerms)) > 0 || q.SourceFile != "" || q.SoftlistCapable
}

// Selection is the finalized stage A working set.
type Selection struct {
	// Names is sorted and truncated to the query limit.
	Names []string

	// Unknown lists selected names absent from the catalog.
	Unknown []string

	// IgnoredPredicates is set when the query was seeded and predicates
	// were given anyway.
	IgnoredPredicates bool
}

// SelectMachines resolves q against cat.
func SelectMachines(cat *machines.Catalog, q MachineQuery) Selection {
	set := make(map[string]struct{})
	var sel Selection

	if q.Seeded() {
		addAll(set, nonEmpty(q.Systems))
		if q.Fuzzy != "" {
			addAll(set, cat.WithPrefix(q.Fuzzy))
		}
		sel.IgnoredPredicates = q.HasPredicates()
	} else {
		addAll(set, ApplyPredicates(cat, cat.Names(), q))
	}

	addAll(set, nonEmpty(q.Include))
	for _, name := range q.Exclude {
		delete(set, strings.TrimSpace(name))
	}

	sel.Names = sortedKeys(set)
	if q.Limit > 0 && len(sel.Names) > q.Limit {
		sel.Names = sel.Names[:q.Limit]
	}
	for _, name := range sel.Names {
		if _, ok := cat.Lookup(name); !ok {
			sel.Unknown = append(sel.Unknown, name)
		}
	}
	return sel
}

// ApplyPredicates keeps the names that satisfy every predicate of q.
// Applying it to its own output returns the same set.
func ApplyPredicates(cat *machines.Catalog, names []string, q MachineQuery) []string {
	current := make(map[string]struct{}, len(names))
	addAll(current, names)

	if terms := nonEmpty(q.DescriptionTerms); len(terms) > 0 {
		current = intersect(current, cat.DescriptionContainsAll(terms...))
	}
	if q.SourceFile != "" {
		current = intersect(current, cat.SourceFileContains(q.SourceFile))
	}
	if q.SoftlistCapable {
		current = intersect(current, cat.SoftlistCapable())
	}
	return sortedKeys(current)
}

// SplitList splits comma or whitespace separated values.
func SplitList(values ...string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		})...)
	}
	return out
}

func intersect(set map[string]struct{}, names []string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, n := range names {
		if _, ok := set[n]; ok {
			out[n] = struct{}{}
		}
	}
	return out
}

func addAll(set map[string]struct{}, names []string) {
	for _, n := range names {
		set[n] = struct{}{}
	}
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
