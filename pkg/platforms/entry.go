package platforms

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/messcurator/pkg/errors"
)

// Document keys.
const (
	keyPlatform        = "platform"
	keyPlatformName    = "name"
	keyCategory        = "platform_category"
	keyMediaType       = "media_type"
	keyCustomPerID     = "enable_custom_command_line_param_per_software_id"
	keyEmulator        = "emulator"
	keySystem          = "system"
	keySoftwareLists   = "software_lists"
	keySoftlistName    = "softlist_name"
	keySoftwareID      = "software_id"
	keySoftwareConfigs = "software_configs"

	// DefaultConfigKey marks the per-softlist default command in a
	// software_configs block.
	DefaultConfigKey = "_default_config"
)

// metadataKeys are the entry keys owned by Metadata, in document order.
var metadataKeys = []string{keyPlatform, keyCategory, keyMediaType, keyCustomPerID, keyEmulator}

// Emulator binds a platform to a front-end emulator definition.
type Emulator struct {
	Name       string `yaml:"name" json:"name"`
	Default    bool   `yaml:"default_emulator" json:"default_emulator"`
	Parameters string `yaml:"default_command_line_parameters,omitempty" json:"default_command_line_parameters,omitempty"`
}

// Metadata is everything in a platform entry except its system list.
type Metadata struct {
	Name                     string
	Categories               []string
	MediaType                string
	CustomCommandPerSoftware bool
	Emulator                 *Emulator
}

// Validate checks the fields a platform entry cannot be written without.
func (m *Metadata) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return errors.NewValidationError("platform-name-full", m.Name, "is required")
	}
	if strings.TrimSpace(m.MediaType) == "" {
		return errors.NewValidationError("media-type", m.MediaType, "is required")
	}
	if m.Emulator != nil && m.Emulator.Name == "" {
		if m.Emulator.Default {
			return errors.NewValidationError("default-emu", true, "requires emu-name")
		}
		if m.Emulator.Parameters != "" {
			return errors.NewValidationError("default-emu-cmd-params", m.Emulator.Parameters, "requires emu-name")
		}
	}
	return nil
}

// Entry is one platform of the curated document.
type Entry struct {
	Metadata
	Systems []SystemEntry
}

// SystemEntry is a bare machine name, or a machine with its software.
type SystemEntry struct {
	Name    string
	Details *SystemDetails
}

// Bare reports whether the system carries no software list.
func (s *SystemEntry) Bare() bool {
	return s.Details == nil || len(s.Details.SoftwareLists) == 0
}

// SoftwareCount returns the number of software ids across all lists.
func (s *SystemEntry) SoftwareCount() int {
	if s.Details == nil {
		return 0
	}
	n := 0
	for _, b := range s.Details.SoftwareLists {
		n += len(b.SoftwareIDs)
	}
	return n
}

// UnmarshalYAML accepts either a scalar name or a single-key mapping.
func (s *SystemEntry) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err == nil {
		s.Name = name
		return nil
	}
	var m map[string]*SystemDetails
	if err := unmarshal(&m); err != nil {
		return err
	}
	if len(m) != 1 {
		return fmt.Errorf("system entry must have exactly one key, got %d", len(m))
	}
	for k, v := range m {
		s.Name, s.Details = k, v
	}
	return nil
}

// SystemDetails lists the software of a system and its command overrides.
type SystemDetails struct {
	SoftwareLists   []SoftwareListBlock `yaml:"software_lists"`
	SoftwareConfigs ConfigBlock         `yaml:"software_configs"`
}

// SoftwareListBlock is the software of one list, ids sorted and unique.
type SoftwareListBlock struct {
	Softlist    string   `yaml:"softlist_name"`
	SoftwareIDs []string `yaml:"software_id"`
}

// ConfigBlock maps softlist to command overrides keyed by software id or
// DefaultConfigKey.
type ConfigBlock map[string]map[string]string

// ordered renders the block with softlists sorted, the default first and
// ids sorted.
func (c ConfigBlock) ordered() yaml.MapSlice {
	lists := make([]string, 0, len(c))
	for l := range c {
		lists = append(lists, l)
	}
	sort.Strings(lists)

	out := make(yaml.MapSlice, 0, len(lists))
	for _, l := range lists {
		cmds := c[l]
		ids := make([]string, 0, len(cmds))
		for id := range cmds {
			if id != DefaultConfigKey {
				ids = append(ids, id)
			}
		}
		sort.Strings(ids)

		inner := make(yaml.MapSlice, 0, len(cmds))
		if cmd, ok := cmds[DefaultConfigKey]; ok {
			inner = append(inner, yaml.MapItem{Key: DefaultConfigKey, Value: cmd})
		}
		for _, id := range ids {
			inner = append(inner, yaml.MapItem{Key: id, Value: cmds[id]})
		}
		out = append(out, yaml.MapItem{Key: l, Value: inner})
	}
	return out
}

// metadataItems renders the metadata keys present for m.
func (m *Metadata) metadataItems() yaml.MapSlice {
	items := yaml.MapSlice{
		{Key: keyPlatform, Value: yaml.MapSlice{{Key: keyPlatformName, Value: m.Name}}},
	}
	if len(m.Categories) > 0 {
		items = append(items, yaml.MapItem{Key: keyCategory, Value: append([]string(nil), m.Categories...)})
	}
	items = append(items,
		yaml.MapItem{Key: keyMediaType, Value: m.MediaType},
		yaml.MapItem{Key: keyCustomPerID, Value: m.CustomCommandPerSoftware},
	)
	if m.Emulator != nil && m.Emulator.Name != "" {
		emu := yaml.MapSlice{
			{Key: "name", Value: m.Emulator.Name},
			{Key: "default_emulator", Value: m.Emulator.Default},
		}
		if m.Emulator.Parameters != "" {
			emu = append(emu, yaml.MapItem{Key: "default_command_line_parameters", Value: m.Emulator.Parameters})
		}
		items = append(items, yaml.MapItem{Key: keyEmulator, Value: emu})
	}
	return items
}

func (s *SystemEntry) ordered() interface{} {
	if s.Details == nil {
		return s.Name
	}
	lists := make([]interface{}, 0, len(s.Details.SoftwareLists))
	for _, b := range s.Details.SoftwareLists {
		lists = append(lists, yaml.MapSlice{
			{Key: keySoftlistName, Value: b.Softlist},
			{Key: keySoftwareID, Value: append([]string(nil), b.SoftwareIDs...)},
		})
	}
	details := yaml.MapSlice{{Key: keySoftwareLists, Value: lists}}
	if len(s.Details.SoftwareConfigs) > 0 {
		details = append(details, yaml.MapItem{Key: keySoftwareConfigs, Value: s.Details.SoftwareConfigs.ordered()})
	}
	return yaml.MapSlice{{Key: s.Name, Value: details}}
}

// ordered renders the whole entry in document key order.
func (e *Entry) ordered() yaml.MapSlice {
	items := e.Metadata.metadataItems()
	systems := make([]interface{}, 0, len(e.Systems))
	for i := range e.Systems {
		systems = append(systems, e.Systems[i].ordered())
	}
	return append(items, yaml.MapItem{Key: keySystem, Value: systems})
}

type entryYAML struct {
	Platform struct {
		Name string `yaml:"name"`
	} `yaml:"platform"`
	Categories []string      `yaml:"platform_category"`
	MediaType  string        `yaml:"media_type"`
	Custom     bool          `yaml:"enable_custom_command_line_param_per_software_id"`
	Emulator   *Emulator     `yaml:"emulator"`
	Systems    []SystemEntry `yaml:"system"`
}

func decodeEntry(raw interface{}) (*Entry, error) {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var y entryYAML
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, err
	}
	return &Entry{
		Metadata: Metadata{
			Name:                     y.Platform.Name,
			Categories:               y.Categories,
			MediaType:                y.MediaType,
			CustomCommandPerSoftware: y.Custom,
			Emulator:                 y.Emulator,
		},
		Systems: y.Systems,
	}, nil
}
