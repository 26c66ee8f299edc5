// Package config reads the curator configuration with Viper and resolves
// relative paths against the directory of the configuration file.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/agentstation/messcurator"
	"github.com/agentstation/messcurator/pkg/constants"
	"github.com/agentstation/messcurator/pkg/errors"
)

// Keys read from the configuration file and the environment.
const (
	KeyEmulatorPath    = "emulator.path"
	KeyEmulatorTimeout = "emulator.timeout"
	KeyMachineXML      = "machine_xml"
	KeyFolderINI       = "folder_ini"
	KeyDocument        = "document"
	KeyROMSource       = "roms.source"
	KeyROMOutput       = "roms.output"
	KeyWorkers         = "workers"
)

// New returns a Viper instance with the curator defaults and environment
// binding (MESSCURATOR_EMULATOR_PATH and so on).
func New() *viper.Viper {
	v := viper.New()
	def := messcurator.DefaultConfig()
	v.SetDefault(KeyEmulatorTimeout, def.EmulatorTimeout)
	v.SetDefault(KeyMachineXML, def.MachineXML)
	v.SetDefault(KeyDocument, def.Document)
	v.SetDefault(KeyROMOutput, def.ROMOutput)
	v.SetDefault(KeyWorkers, def.Workers)

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, k := range []string{KeyEmulatorPath, KeyFolderINI, KeyROMSource} {
		_ = v.BindEnv(k)
	}
	return v
}

// Read loads file, or searches $HOME and the working directory for the
// default configuration name when file is empty. A missing default file is
// not an error.
func Read(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(constants.DefaultConfigName)
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && file == "" {
			return nil
		}
		return errors.NewConfigError("config", "cannot read "+orDefault(file), err)
	}
	return nil
}

// Decode builds the curator configuration. Relative paths resolve against
// the configuration file directory, or the working directory without one.
func Decode(v *viper.Viper) (messcurator.Config, error) {
	base := "."
	if used := v.ConfigFileUsed(); used != "" {
		base = filepath.Dir(used)
	}
	cfg := messcurator.Config{
		EmulatorPath:    ResolvePath(base, v.GetString(KeyEmulatorPath)),
		EmulatorTimeout: v.GetDuration(KeyEmulatorTimeout),
		MachineXML:      ResolvePath(base, v.GetString(KeyMachineXML)),
		FolderINI:       ResolvePath(base, v.GetString(KeyFolderINI)),
		Document:        ResolvePath(base, v.GetString(KeyDocument)),
		ROMSource:       ResolvePath(base, v.GetString(KeyROMSource)),
		ROMOutput:       ResolvePath(base, v.GetString(KeyROMOutput)),
		Workers:         v.GetInt(KeyWorkers),
	}
	if err := cfg.ValidateFs(nil); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ResolvePath expands a leading ~ and joins relative paths onto base.
// Empty paths stay empty.
func ResolvePath(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

func orDefault(file string) string {
	if file == "" {
		return constants.DefaultConfigName + ".yaml"
	}
	return file
}
