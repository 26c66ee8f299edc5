package cmdutil

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachineFlagsDescriptionWords(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"phrase", []string{"--description", "plug and play"}, []string{"plug", "and", "play"}},
		{"comma", []string{"--description", "jakks,toy"}, []string{"jakks", "toy"}},
		{"repeated", []string{"--description", "JAKKS", "--description", " tv  game "}, []string{"JAKKS", "tv", "game"}},
		{"none", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "search"}
			flags := AddMachineFlags(cmd)
			require.NoError(t, cmd.ParseFlags(tt.args))

			assert.Equal(t, tt.want, flags.Query(nil).DescriptionTerms)
		})
	}
}
