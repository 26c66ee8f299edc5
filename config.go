package messcurator

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/agentstation/messcurator/pkg/constants"
	"github.com/agentstation/messcurator/pkg/errors"
)

// Config is the explicit configuration every operation runs with. It is
// built once by the caller and never mutated by the client.
type Config struct {
	// EmulatorPath is the emulator binary.
	EmulatorPath string `yaml:"emulator_path" json:"emulator_path"`
	// EmulatorTimeout bounds each emulator call. Zero means no limit.
	EmulatorTimeout time.Duration `yaml:"emulator_timeout" json:"emulator_timeout"`
	// MachineXML caches the full machine list. Generated when absent.
	MachineXML string `yaml:"machine_xml" json:"machine_xml"`
	// FolderINI lists the machines of interest under [ROOT_FOLDER].
	FolderINI string `yaml:"folder_ini" json:"folder_ini"`
	// Document is the curated platform document.
	Document string `yaml:"document" json:"document"`
	// ROMSource is the softlist ROM tree, one directory per softlist.
	ROMSource string `yaml:"rom_source" json:"rom_source"`
	// ROMOutput is the root of the curated ROM tree.
	ROMOutput string `yaml:"rom_output" json:"rom_output"`
	Workers   int    `yaml:"workers" json:"workers"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		MachineXML: constants.DefaultMachineXML,
		Document:   constants.DefaultDocument,
		ROMOutput:  constants.DefaultROMOutput,
		Workers:    constants.DefaultWorkers,
	}
}

// Requirement names a configuration value an operation cannot run without.
type Requirement int

const (
	// NeedsEmulator requires an existing emulator binary.
	NeedsEmulator Requirement = iota
	// NeedsMachineXML requires a machine list path.
	NeedsMachineXML
	// NeedsFolderINI requires an existing folder ini.
	NeedsFolderINI
	// NeedsDocument requires a curated document path.
	NeedsDocument
	// NeedsROMSource requires an existing ROM source directory.
	NeedsROMSource
	// NeedsROMOutput requires a ROM output directory path.
	NeedsROMOutput
)

// Validate checks the values the listed requirements depend on against the
// OS filesystem. It never starts a process, so operations call it before
// any emulator call.
func (c *Config) Validate(needs ...Requirement) error {
	return c.ValidateFs(afero.NewOsFs(), needs...)
}

// ValidateFs is Validate against fs.
func (c *Config) ValidateFs(fs afero.Fs, needs ...Requirement) error {
	if c.Workers < 0 || c.Workers > constants.MaxWorkers {
		return errors.NewConfigError("workers", fmt.Sprintf("must be between 0 and %d", constants.MaxWorkers), nil)
	}
	if c.EmulatorTimeout < 0 {
		return errors.NewConfigError("emulator.timeout", "must not be negative", nil)
	}
	for _, need := range needs {
		var err error
		switch need {
		case NeedsEmulator:
			err = requireFile(fs, "emulator.path", c.EmulatorPath)
		case NeedsMachineXML:
			err = requirePath("machine_xml", c.MachineXML)
		case NeedsFolderINI:
			err = requireFile(fs, "folder_ini", c.FolderINI)
		case NeedsDocument:
			err = requirePath("document", c.Document)
		case NeedsROMSource:
			err = requireDir(fs, "roms.source", c.ROMSource)
		case NeedsROMOutput:
			err = requirePath("roms.output", c.ROMOutput)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func requirePath(key, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewConfigError(key, "is not set", nil)
	}
	return nil
}

func requireFile(fs afero.Fs, key, value string) error {
	if err := requirePath(key, value); err != nil {
		return err
	}
	info, err := fs.Stat(value)
	if err != nil {
		return errors.NewConfigError(key, fmt.Sprintf("%s does not exist", value), err)
	}
	if info.IsDir() {
		return errors.NewConfigError(key, fmt.Sprintf("%s is a directory", value), nil)
	}
	return nil
}

func requireDir(fs afero.Fs, key, value string) error {
	if err := requirePath(key, value); err != nil {
		return err
	}
	info, err := fs.Stat(value)
	if err != nil {
		return errors.NewConfigError(key, fmt.Sprintf("%s does not exist", value), err)
	}
	if !info.IsDir() {
		return errors.NewConfigError(key, fmt.Sprintf("%s is not a directory", value), nil)
	}
	return nil
}
