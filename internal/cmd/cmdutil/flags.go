// Package cmdutil provides shared flag groups and run helpers for
// messcurator commands.
package cmdutil

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/agentstation/messcurator/internal/cmd/table"
	"github.com/agentstation/messcurator/pkg/curation"
	"github.com/agentstation/messcurator/pkg/errors"
	"github.com/agentstation/messcurator/pkg/platforms"
)

// MachineFlags selects machines from the machine list.
type MachineFlags struct {
	Fuzzy           string
	Include         []string
	Exclude         []string
	Description     []string
	SourceFile      string
	SoftlistCapable bool
	InputXML        string
	Limit           int
}

// AddMachineFlags adds machine selection flags to a command.
func AddMachineFlags(cmd *cobra.Command) *MachineFlags {
	flags := &MachineFlags{}

	cmd.Flags().StringVar(&flags.Fuzzy, "fuzzy", "",
		"Select machines whose name starts with this prefix")
	cmd.Flags().StringSliceVar(&flags.Include, "include-systems", nil,
		"Add machines by name (comma-separated)")
	cmd.Flags().StringSliceVar(&flags.Exclude, "exclude-systems", nil,
		"Remove machines by name (comma-separated)")
	cmd.Flags().StringSliceVar(&flags.Description, "description", nil,
		"Keep machines whose description contains every word, case-insensitively (comma-separated or repeated; ignored with explicit systems)")
	cmd.Flags().StringVar(&flags.SourceFile, "sourcefile", "",
		"Keep machines whose source file matches (ignored with explicit systems)")
	cmd.Flags().BoolVar(&flags.SoftlistCapable, "softlist-capable", false,
		"Keep machines that declare software lists (ignored with explicit systems)")
	cmd.Flags().StringVar(&flags.InputXML, "input-xml", "",
		"Machine list to read instead of the configured one")
	cmd.Flags().IntVar(&flags.Limit, "limit", 0,
		"Keep at most this many machines after sorting")

	return flags
}

// Query builds the machine query with systems as explicit seeds.
func (f *MachineFlags) Query(systems []string) curation.MachineQuery {
	return curation.MachineQuery{
		Systems:          curation.SplitList(systems...),
		Fuzzy:            strings.TrimSpace(f.Fuzzy),
		Include:          curation.SplitList(f.Include...),
		DescriptionTerms: descriptionTerms(f.Description),
		SourceFile:       strings.TrimSpace(f.SourceFile),
		SoftlistCapable:  f.SoftlistCapable,
		Exclude:          curation.SplitList(f.Exclude...),
		Limit:            f.Limit,
	}
}

// descriptionTerms splits each --description value into words, so
// "plug and play" requires all three.
func descriptionTerms(values []string) []string {
	var terms []string
	for _, v := range values {
		terms = append(terms, strings.Fields(v)...)
	}
	return terms
}

// SoftwareFlags filters software entries and gates machines on status.
type SoftwareFlags struct {
	Term             string
	IncludeSoftlists []string
	ExcludeSoftlists []string
	DriverStatus     string
	EmulationStatus  string
}

// AddSoftwareFlags adds software and status filter flags to a command.
func AddSoftwareFlags(cmd *cobra.Command) *SoftwareFlags {
	flags := &SoftwareFlags{}

	cmd.Flags().StringVar(&flags.Term, "term", "",
		"Keep software whose id or title contains this term")
	cmd.Flags().StringSliceVar(&flags.IncludeSoftlists, "include-softlist", nil,
		"Keep only these software lists (comma-separated)")
	cmd.Flags().StringSliceVar(&flags.ExcludeSoftlists, "exclude-softlist", nil,
		"Drop these software lists (comma-separated)")
	cmd.Flags().StringVar(&flags.DriverStatus, "driver-status", "",
		"Required driver status: good, imperfect, preliminary, unsupported")
	cmd.Flags().StringVar(&flags.EmulationStatus, "emulation-status", "",
		"Required emulation status: good, imperfect, preliminary, unsupported")

	return flags
}

// Filter returns the software filter.
func (f *SoftwareFlags) Filter() curation.SoftwareFilter {
	return curation.SoftwareFilter{
		IncludeSoftlists: curation.SplitList(f.IncludeSoftlists...),
		ExcludeSoftlists: curation.SplitList(f.ExcludeSoftlists...),
		Term:             f.Term,
	}
}

// Status returns the status filter.
func (f *SoftwareFlags) Status() curation.StatusFilter {
	return curation.StatusFilter{
		Driver:    strings.ToLower(strings.TrimSpace(f.DriverStatus)),
		Emulation: strings.ToLower(strings.TrimSpace(f.EmulationStatus)),
	}
}

// TableFlags controls the layout of software tables.
type TableFlags struct {
	SystemsOnly bool
	ExtraInfo   bool
	SourceFile  bool
	SortBy      string
}

// AddTableFlags adds table layout flags to a command.
func AddTableFlags(cmd *cobra.Command) *TableFlags {
	flags := &TableFlags{}

	cmd.Flags().BoolVar(&flags.SystemsOnly, "show-systems-only", false,
		"Show one row per system")
	cmd.Flags().BoolVar(&flags.ExtraInfo, "show-extra-info", false,
		"Add description, manufacturer, year, publisher and source file columns")
	cmd.Flags().BoolVar(&flags.SourceFile, "show-sourcefile", false,
		"Add the source file column")
	cmd.Flags().StringVar(&flags.SortBy, "sort-by", "",
		"Sort rows by: "+strings.Join(sortKeys(), ", "))

	return flags
}

// Options validates the sort key and returns the table options.
func (f *TableFlags) Options() (table.SystemOptions, error) {
	opts := table.SystemOptions{
		SystemsOnly: f.SystemsOnly,
		ExtraInfo:   f.ExtraInfo,
		SourceFile:  f.SourceFile,
		SortBy:      strings.ToLower(strings.TrimSpace(f.SortBy)),
	}
	if opts.SortBy == "" {
		return opts, nil
	}
	key, ok := table.SortKeys[opts.SortBy]
	if !ok {
		return opts, errors.NewValidationError("sort-by", f.SortBy, "must be one of "+strings.Join(sortKeys(), ", "))
	}
	for _, c := range opts.Columns() {
		if c == key {
			return opts, nil
		}
	}
	return opts, errors.NewValidationError("sort-by", f.SortBy, "column is not shown; add --show-extra-info")
}

func sortKeys() []string {
	return []string{"system_name", "system_desc", "manufacturer", "year", "softlist", "software_id",
		"title", "publisher", "driver_status", "emulation_status", "sourcefile"}
}

// MetadataFlags describes a platform entry.
type MetadataFlags struct {
	Name              string
	Categories        []string
	MediaType         string
	CustomPerSoftware bool
	EmuName           string
	DefaultEmu        bool
	EmuParams         string
}

// AddMetadataFlags adds platform metadata flags to a command.
func AddMetadataFlags(cmd *cobra.Command) *MetadataFlags {
	flags := &MetadataFlags{}

	cmd.Flags().StringVar(&flags.Name, "platform-name-full", "",
		"Display name of the platform")
	cmd.Flags().StringSliceVar(&flags.Categories, "platform-category", nil,
		"Platform categories (comma-separated)")
	cmd.Flags().StringVar(&flags.MediaType, "media-type", "",
		"Media type of the platform, for example cart or disk")
	cmd.Flags().BoolVar(&flags.CustomPerSoftware, "enable-custom-cmd-per-title", false,
		"Allow a custom command line per software title")
	cmd.Flags().StringVar(&flags.EmuName, "emu-name", "",
		"Front-end emulator definition to bind")
	cmd.Flags().BoolVar(&flags.DefaultEmu, "default-emu", false,
		"Make the bound emulator the platform default")
	cmd.Flags().StringVar(&flags.EmuParams, "default-emu-cmd-params", "",
		"Default command-line parameters of the bound emulator")

	return flags
}

// Metadata builds platform metadata from every flag.
func (f *MetadataFlags) Metadata() platforms.Metadata {
	m := platforms.Metadata{
		Name:                     strings.TrimSpace(f.Name),
		Categories:               trimmed(f.Categories),
		MediaType:                strings.TrimSpace(f.MediaType),
		CustomCommandPerSoftware: f.CustomPerSoftware,
	}
	if f.EmuName != "" || f.DefaultEmu || f.EmuParams != "" {
		m.Emulator = &platforms.Emulator{
			Name:       strings.TrimSpace(f.EmuName),
			Default:    f.DefaultEmu,
			Parameters: f.EmuParams,
		}
	}
	return m
}

// Changed reports whether any metadata flag was set on the command line.
func (f *MetadataFlags) Changed(set *pflag.FlagSet) bool {
	for _, name := range []string{"platform-name-full", "platform-category", "media-type",
		"enable-custom-cmd-per-title", "emu-name", "default-emu", "default-emu-cmd-params"} {
		if set.Changed(name) {
			return true
		}
	}
	return false
}

// Apply copies only the flags set on the command line onto m, leaving the
// other fields as stored.
func (f *MetadataFlags) Apply(set *pflag.FlagSet, m *platforms.Metadata) {
	emu := func() *platforms.Emulator {
		if m.Emulator == nil {
			m.Emulator = &platforms.Emulator{}
		}
		return m.Emulator
	}
	set.Visit(func(flag *pflag.Flag) {
		switch flag.Name {
		case "platform-name-full":
			m.Name = strings.TrimSpace(f.Name)
		case "platform-category":
			m.Categories = trimmed(f.Categories)
		case "media-type":
			m.MediaType = strings.TrimSpace(f.MediaType)
		case "enable-custom-cmd-per-title":
			m.CustomCommandPerSoftware = f.CustomPerSoftware
		case "emu-name":
			emu().Name = strings.TrimSpace(f.EmuName)
		case "default-emu":
			emu().Default = f.DefaultEmu
		case "default-emu-cmd-params":
			emu().Parameters = f.EmuParams
		}
	})
}

// OverrideFlags collects command-line overrides. Values are kept verbatim,
// commas included.
type OverrideFlags struct {
	Softlist []string
	Software []string
}

// AddOverrideFlags adds the repeatable override flags to a command.
func AddOverrideFlags(cmd *cobra.Command) *OverrideFlags {
	flags := &OverrideFlags{}

	cmd.Flags().StringArrayVar(&flags.Softlist, "softlist-command", nil,
		`Default command for a software list, as "softlist=command" (repeatable)`)
	cmd.Flags().StringArrayVar(&flags.Software, "software-command", nil,
		`Command for one software id, as "softlist:id=command" (repeatable)`)

	return flags
}

// Overrides parses the flags. It returns nil when none was given.
func (f *OverrideFlags) Overrides() (*platforms.Overrides, error) {
	o := &platforms.Overrides{}
	for _, s := range f.Softlist {
		softlist, cmd, err := platforms.ParseSoftlistOverride(s)
		if err != nil {
			return nil, err
		}
		o.SetDefault(softlist, cmd)
	}
	for _, s := range f.Software {
		softlist, id, cmd, err := platforms.ParseSoftwareOverride(s)
		if err != nil {
			return nil, err
		}
		o.SetSoftware(softlist, id, cmd)
	}
	if o.Empty() {
		return nil, nil
	}
	return o, nil
}

// trimmed drops blank values and surrounding space. Inner spaces are kept.
func trimmed(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
