package copyroms

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/messcurator/internal/cmd/cmdtest"
	"github.com/agentstation/messcurator/pkg/errors"
	"github.com/agentstation/messcurator/pkg/roms"
)

const document = `nes:
  platform:
    name: Nintendo Entertainment System
  media_type: cart
  enable_custom_command_line_param_per_software_id: false
  system:
  - nes:
      software_lists:
      - softlist_name: nes
        software_id:
        - smb
        - zelda
  - pacman
`

func newEnv(t *testing.T) *cmdtest.Env {
	t.Helper()
	env := cmdtest.New(t)
	env.WriteFile(t, "/data/platforms.yaml", document)
	require.NoError(t, afero.WriteFile(env.ROMSrc, "/src/nes/smb.zip", []byte("PK smb"), 0o644))
	return env
}

func TestCopyROMsPartial(t *testing.T) {
	env := newEnv(t)
	env.Format = "csv"

	out, err := env.Execute(t, NewCommand(env.App))
	require.Error(t, err)
	assert.True(t, errors.IsPartial(err))

	assert.Contains(t, out, "ROMs copied,1")
	assert.Contains(t, out, "Software ID,From Softlist,For System,In Platform")
	assert.Contains(t, out, "zelda,nes,nes,nes")

	data, err := afero.ReadFile(env.ROMDst, "/out/nes/nes/nes/smb.zip")
	require.NoError(t, err)
	assert.Equal(t, "PK smb", string(data))
	exists, err := afero.Exists(env.ROMDst, "/out/nes/pacman/pacman.zip")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCopyROMsDryRunJSON(t *testing.T) {
	env := newEnv(t)
	env.Format = "json"

	out, err := env.Execute(t, NewCommand(env.App), "--dry-run")
	require.Error(t, err)
	assert.True(t, errors.IsPartial(err))

	var summary roms.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 1, summary.Copied)
	assert.Equal(t, 1, summary.Placeholders)
	require.Len(t, summary.Missing, 1)
	assert.Equal(t, "zelda", summary.Missing[0].SoftwareID)

	exists, err := afero.DirExists(env.ROMDst, "/out")
	require.NoError(t, err)
	assert.False(t, exists, "dry run writes nothing")
}

func TestCopyROMsReport(t *testing.T) {
	env := newEnv(t)

	_, err := env.Execute(t, NewCommand(env.App), "--report-file", "/reports/missing.md", "--workers", "2")
	require.Error(t, err)
	assert.True(t, errors.IsPartial(err), "got %v", err)

	report := env.ReadFile(t, "/reports/missing.md")
	assert.Contains(t, report, "# ROM reconciliation report")
	assert.Contains(t, report, "`zelda`")
}

func TestCopyROMsDefaultReportName(t *testing.T) {
	env := newEnv(t)

	_, err := env.Execute(t, NewCommand(env.App), "--report")
	require.Error(t, err)
	assert.True(t, errors.IsPartial(err), "got %v", err)

	matches, err := afero.Glob(env.Fs, "missing-roms-*.md")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestCopyROMsComplete(t *testing.T) {
	env := newEnv(t)
	require.NoError(t, afero.WriteFile(env.ROMSrc, "/src/nes/zelda.zip", []byte("PK zelda"), 0o644))
	env.Format = "csv"

	out, err := env.Execute(t, NewCommand(env.App), "--platform-key", "nes")
	require.NoError(t, err)
	assert.Contains(t, out, "ROMs copied,2")
	assert.False(t, strings.Contains(out, "From Softlist"), "no missing table")
}

func TestCopyROMsNeedsSource(t *testing.T) {
	env := newEnv(t)
	env.Config.ROMSource = "/absent"

	_, err := env.Execute(t, NewCommand(env.App))
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

func TestCopyROMsReportFlagTakesNoValue(t *testing.T) {
	env := newEnv(t)

	_, err := env.Execute(t, NewCommand(env.App), "--report", "missing.md")
	require.Error(t, err)
	assert.False(t, errors.IsPartial(err), "a stray argument is rejected before copying")
}
