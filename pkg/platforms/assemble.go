package platforms

import (
	"sort"

	"github.com/agentstation/messcurator/pkg/softlists"
)

// Assemble builds the system list of a platform from the selected systems
// and their software. Systems keep the given order; a system without
// entries is bare. Softlists are sorted by name and ids are sorted and
// de-duplicated. Overrides are attached only for softlists and ids present
// in the system.
func Assemble(systems []string, entries []softlists.Entry, overrides *Overrides) []SystemEntry {
	bySystem := make(map[string]map[string]map[string]struct{})
	for _, e := range entries {
		lists, ok := bySystem[e.Machine]
		if !ok {
			lists = make(map[string]map[string]struct{})
			bySystem[e.Machine] = lists
		}
		if lists[e.Softlist] == nil {
			lists[e.Softlist] = make(map[string]struct{})
		}
		lists[e.Softlist][e.ID] = struct{}{}
	}

	out := make([]SystemEntry, 0, len(systems))
	for _, name := range systems {
		lists := bySystem[name]
		if len(lists) == 0 {
			out = append(out, SystemEntry{Name: name})
			continue
		}

		details := &SystemDetails{}
		for _, softlist := range sortedKeys(lists) {
			ids := sortedKeys(lists[softlist])
			details.SoftwareLists = append(details.SoftwareLists, SoftwareListBlock{Softlist: softlist, SoftwareIDs: ids})
			attachOverrides(details, softlist, ids, overrides)
		}
		out = append(out, SystemEntry{Name: name, Details: details})
	}
	return out
}

func attachOverrides(details *SystemDetails, softlist string, ids []string, o *Overrides) {
	if o.Empty() {
		return
	}
	cmds := make(map[string]string)
	if cmd, ok := o.SoftlistDefaults[softlist]; ok {
		cmds[DefaultConfigKey] = cmd
	}
	for _, id := range ids {
		if cmd, ok := o.Software[softlist][id]; ok {
			cmds[id] = cmd
		}
	}
	if len(cmds) == 0 {
		return
	}
	if details.SoftwareConfigs == nil {
		details.SoftwareConfigs = make(ConfigBlock)
	}
	details.SoftwareConfigs[softlist] = cmds
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
