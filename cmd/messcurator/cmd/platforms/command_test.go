package platforms

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/messcurator/internal/cmd/cmdtest"
	"github.com/agentstation/messcurator/pkg/errors"
	platformdoc "github.com/agentstation/messcurator/pkg/platforms"
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
jakks:
  platform:
    name: JAKKS Pacific TV Games
  media_type: cart
  enable_custom_command_line_param_per_software_id: false
  system:
  - jak_totm
`

func newEnv(t *testing.T) *cmdtest.Env {
	t.Helper()
	env := cmdtest.New(t)
	env.WriteFile(t, "/data/platforms.yaml", document)
	return env
}

func load(t *testing.T, env *cmdtest.Env) *platformdoc.Document {
	t.Helper()
	doc, err := platformdoc.Load(env.Fs, "/data/platforms.yaml")
	require.NoError(t, err)
	return doc
}

func TestListCSV(t *testing.T) {
	env := newEnv(t)
	env.Format = "csv"

	out, err := env.Execute(t, NewCommand(env.App), "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{
		"Key,Name,Categories,Media Type,Emulator,Systems,Softlists,Software IDs",
		"nes,Nintendo Entertainment System,-,cart,-,2,1,2",
		"jakks,JAKKS Pacific TV Games,-,cart,-,1,0,0",
	}, lines)
}

func TestListJSONSelectedKey(t *testing.T) {
	env := newEnv(t)
	env.Format = "json"

	out, err := env.Execute(t, NewCommand(env.App), "list", "jakks")
	require.NoError(t, err)
	var sums []platformdoc.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &sums))
	require.Len(t, sums, 1)
	assert.Equal(t, "jakks", sums[0].Key)
}

func TestListOtherFile(t *testing.T) {
	env := newEnv(t)
	env.Format = "csv"

	out, err := env.Execute(t, NewCommand(env.App), "list", "--file", "/data/absent.yaml")
	require.NoError(t, err)
	assert.Equal(t, "Key,Name,Categories,Media Type,Emulator,Systems,Softlists,Software IDs",
		strings.TrimSpace(out), "a missing document is empty")
}

func TestShowJoinsMachines(t *testing.T) {
	env := newEnv(t)
	env.Format = "csv"

	out, err := env.Execute(t, NewCommand(env.App), "show", "nes")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{
		"System,Softlist,Software ID,Title,Driver Status,Emulation Status",
		"nes,nes,smb,N/A,imperfect,good",
		"nes,nes,zelda,N/A,imperfect,good",
		"pacman,N/A,N/A,Pac-Man (Midway),good,good",
	}, lines)
}

func TestShowWithoutMachines(t *testing.T) {
	env := newEnv(t)
	env.Format = "csv"

	out, err := env.Execute(t, NewCommand(env.App), "show", "jakks", "--no-machines")
	require.NoError(t, err)
	assert.Contains(t, out, "jak_totm,N/A,N/A,N/A,N/A,N/A")
	assert.Empty(t, env.Runner.Calls())
}

func TestShowUnknownKey(t *testing.T) {
	env := newEnv(t)

	_, err := env.Execute(t, NewCommand(env.App), "show", "snes")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestUpdatePatchesOnlyGivenFlags(t *testing.T) {
	env := newEnv(t)

	out, err := env.Execute(t, NewCommand(env.App), "update", "nes",
		"--platform-category", "Consoles, Nintendo", "--emu-name", "MAME NES")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated platform nes")

	entry, err := load(t, env).Entry("nes")
	require.NoError(t, err)
	assert.Equal(t, "Nintendo Entertainment System", entry.Name)
	assert.Equal(t, "cart", entry.MediaType)
	assert.Equal(t, []string{"Consoles", "Nintendo"}, entry.Categories)
	require.NotNil(t, entry.Emulator)
	assert.Equal(t, "MAME NES", entry.Emulator.Name)
	require.Len(t, entry.Systems, 2)
	assert.Equal(t, 2, entry.Systems[0].SoftwareCount())
}

func TestUpdateErrors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(error) bool
	}{
		{"no flags", []string{"update", "nes"}, errors.IsValidationError},
		{"unknown key", []string{"update", "snes", "--media-type", "cart"}, errors.IsNotFound},
		{"invalid metadata", []string{"update", "nes", "--default-emu"}, errors.IsValidationError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t)
			before := env.ReadFile(t, "/data/platforms.yaml")

			_, err := env.Execute(t, NewCommand(env.App), tt.args...)
			require.Error(t, err)
			assert.True(t, tt.check(err), err.Error())
			assert.Equal(t, before, env.ReadFile(t, "/data/platforms.yaml"), "document untouched")
		})
	}
}

func TestDelete(t *testing.T) {
	env := newEnv(t)

	out, err := env.Execute(t, NewCommand(env.App), "delete", "nes", "snes")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, "Deleted platform nes\n", out)

	doc := load(t, env)
	assert.False(t, doc.Has("nes"))
	assert.True(t, doc.Has("jakks"))
}
