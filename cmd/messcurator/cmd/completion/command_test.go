package completion

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "messcurator"}
	root.AddCommand(&cobra.Command{Use: "search", Run: func(*cobra.Command, []string) {}})
	root.AddCommand(NewCommand())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"completion"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCompletionScripts(t *testing.T) {
	for _, shell := range []string{ShellBash, ShellZsh, ShellFish, ShellPowerShell} {
		t.Run(shell, func(t *testing.T) {
			out, err := run(t, shell)
			require.NoError(t, err)
			assert.Contains(t, out, "messcurator")
		})
	}
}

func TestCompletionRejectsShell(t *testing.T) {
	_, err := run(t, "tcsh")
	assert.Error(t, err)
}
