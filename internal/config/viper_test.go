package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/messcurator/pkg/errors"
)

func TestResolvePath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		base, in, want string
	}{
		{"/etc/mess", "", ""},
		{"/etc/mess", "mame.xml", "/etc/mess/mame.xml"},
		{"/etc/mess", "../roms", "/etc/roms"},
		{"/etc/mess", "/opt/mame/mame", "/opt/mame/mame"},
		{"/etc/mess", "~/roms", filepath.Join(home, "roms")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolvePath(tt.base, tt.in), tt.in)
	}
}

func TestReadAndDecode(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "curator.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`emulator:
  path: bin/mame
  timeout: 90s
folder_ini: folders/mess.ini
document: /srv/platforms.yaml
roms:
  source: softlist
workers: 4
`), 0o644))

	v := New()
	require.NoError(t, Read(v, file))
	cfg, err := Decode(v)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "bin/mame"), cfg.EmulatorPath)
	assert.Equal(t, 90*time.Second, cfg.EmulatorTimeout)
	assert.Equal(t, filepath.Join(dir, "folders/mess.ini"), cfg.FolderINI)
	assert.Equal(t, "/srv/platforms.yaml", cfg.Document)
	assert.Equal(t, filepath.Join(dir, "softlist"), cfg.ROMSource)
	assert.Equal(t, filepath.Join(dir, "roms"), cfg.ROMOutput, "default resolved against the config dir")
	assert.Equal(t, filepath.Join(dir, "mame.xml"), cfg.MachineXML)
	assert.Equal(t, 4, cfg.Workers)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("MESSCURATOR_EMULATOR_PATH", "/usr/games/mame")
	t.Setenv("MESSCURATOR_WORKERS", "2")

	v := New()
	cfg, err := Decode(v)
	require.NoError(t, err)
	assert.Equal(t, "/usr/games/mame", cfg.EmulatorPath)
	assert.Equal(t, 2, cfg.Workers)
}

func TestDecodeRejectsBadWorkers(t *testing.T) {
	v := New()
	v.Set(KeyWorkers, 500)
	_, err := Decode(v)
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

func TestReadMissingExplicitFile(t *testing.T) {
	err := Read(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}
