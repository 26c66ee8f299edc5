// Package cmdtest runs commands against an in-memory curator for tests.
package cmdtest

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/messcurator"
	"github.com/agentstation/messcurator/internal/cmd/application"
	"github.com/agentstation/messcurator/internal/emulator"
	"github.com/agentstation/messcurator/pkg/events"
	"github.com/agentstation/messcurator/pkg/logging"
)

// MachineList declares a game-key TV game, a preliminary TV game without
// software lists, a console with two lists and an arcade machine.
const MachineList = `<?xml version="1.0"?>
<mame build="0.262 (mame0262)" debug="no" mameconfig="10">
	<machine name="jak_montr" sourcefile="tvgames/spg2xx_jakks_gamekey.cpp">
		<description>Monster Truck (JAKKS Pacific TV Game, Game-Key Ready)</description>
		<year>2004</year>
		<manufacturer>JAKKS Pacific Inc</manufacturer>
		<driver status="good" emulation="good"/>
		<softwarelist tag="cart" name="jakks_gamekey_cart" status="original" filter="MONTR"/>
	</machine>
	<machine name="jak_totm" sourcefile="tvgames/spg2xx_jakks_gamekey.cpp">
		<description>Toy Story (JAKKS Pacific TV Game)</description>
		<driver status="preliminary" emulation="preliminary"/>
	</machine>
	<machine name="nes" sourcefile="nes.cpp">
		<description>Nintendo Entertainment System</description>
		<year>1985</year>
		<manufacturer>Nintendo</manufacturer>
		<driver status="imperfect" emulation="good"/>
		<softwarelist tag="cart_list" name="nes" status="original"/>
	</machine>
	<machine name="pacman" sourcefile="pacman/pacman.cpp">
		<description>Pac-Man (Midway)</description>
		<driver status="good" emulation="good"/>
	</machine>
</mame>
`

// JakksSoftware holds one compatible and one incompatible game key.
const JakksSoftware = `<?xml version="1.0"?>
<softwarelists>
	<softwarelist name="jakks_gamekey_cart" description="JAKKS Pacific Game-Key cartridges">
		<software name="montrgk1">
			<description>Monster Truck Key 1</description>
			<publisher>JAKKS</publisher>
			<sharedfeat name="compatibility" value="MONTR"/>
		</software>
		<software name="xyzgk">
			<description>Other Key</description>
			<publisher>JAKKS</publisher>
			<sharedfeat name="compatibility" value="XYZ"/>
		</software>
	</softwarelist>
</softwarelists>
`

// NESSoftware holds two cartridges.
const NESSoftware = `<?xml version="1.0"?>
<softwarelists>
	<softwarelist name="nes" description="NES cartridges">
		<software name="smb"><description>Super Mario Bros.</description><publisher>Nintendo</publisher></software>
		<software name="zelda"><description>The Legend of Zelda</description><publisher>Nintendo</publisher></software>
	</softwarelist>
</softwarelists>
`

// FolderINI lists jak_montr and nes.
const FolderINI = `[ROOT_FOLDER]
jak_montr
nes
`

// Env is an in-memory curator behind an application.Mock.
type Env struct {
	Fs       afero.Fs
	ROMSrc   afero.Fs
	ROMDst   afero.Fs
	Runner   *emulator.Static
	Recorder *events.Recorder
	Config   messcurator.Config
	Format   string
	App      *application.Mock
}

// New creates an environment with the machine list at /data/mame.xml, the
// folder ini at /data/mess.ini, the document at /data/platforms.yaml and
// ROM trees at /src and /out.
func New(t *testing.T) *Env {
	t.Helper()
	env := &Env{
		Fs:     afero.NewMemMapFs(),
		ROMSrc: afero.NewMemMapFs(),
		ROMDst: afero.NewMemMapFs(),
		Runner: &emulator.Static{
			MachineList: []byte(MachineList),
			Software: map[string][]byte{
				"jak_montr": []byte(JakksSoftware),
				"nes":       []byte(NESSoftware),
			},
		},
		Recorder: &events.Recorder{},
		Config: messcurator.Config{
			MachineXML: "/data/mame.xml",
			FolderINI:  "/data/mess.ini",
			Document:   "/data/platforms.yaml",
			ROMSource:  "/src",
			ROMOutput:  "/out",
		},
		Format: "table",
	}
	require.NoError(t, afero.WriteFile(env.Fs, "/data/mame.xml", []byte(MachineList), 0o644))
	require.NoError(t, afero.WriteFile(env.Fs, "/data/mess.ini", []byte(FolderINI), 0o644))
	require.NoError(t, env.ROMSrc.MkdirAll("/src", 0o755))

	env.App = &application.Mock{
		CuratorFunc: func(opts ...messcurator.Option) (messcurator.Client, error) {
			base := []messcurator.Option{
				messcurator.WithFs(env.Fs),
				messcurator.WithROMFs(env.ROMSrc, env.ROMDst),
				messcurator.WithRunner(env.Runner),
				messcurator.WithEmitter(env.Recorder),
				messcurator.WithLogger(logging.NewNopLogger()),
			}
			return messcurator.New(env.Config, append(base, opts...)...)
		},
		ConfigFunc:       func() messcurator.Config { return env.Config },
		FsFunc:           func() afero.Fs { return env.Fs },
		OutputFormatFunc: func() string { return env.Format },
	}
	return env
}

// Execute runs cmd with args and returns what it wrote to stdout.
func (env *Env) Execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// WriteFile writes a file to the main filesystem.
func (env *Env) WriteFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(env.Fs, path, []byte(data), 0o644))
}

// ReadFile reads a file from the main filesystem.
func (env *Env) ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := afero.ReadFile(env.Fs, path)
	require.NoError(t, err)
	return string(data)
}
