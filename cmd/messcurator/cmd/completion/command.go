// Package completion provides the completion command.
package completion

import (
	"github.com/spf13/cobra"
)

// Supported shells.
const (
	ShellBash       = "bash"
	ShellZsh        = "zsh"
	ShellFish       = "fish"
	ShellPowerShell = "powershell"
)

// NewCommand creates the completion command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate completion script",
		Long: `To load completions:

Bash:

  $ source <(messcurator completion bash)

  # To load completions for each session, execute once:
  $ messcurator completion bash > /etc/bash_completion.d/messcurator

Zsh:

  # If shell completion is not already enabled in your environment,
  # you will need to enable it.  You can execute the following once:

  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ messcurator completion zsh > "${fpath[1]}/_messcurator"

Fish:

  $ messcurator completion fish | source
  $ messcurator completion fish > ~/.config/fish/completions/messcurator.fish

PowerShell:

  PS> messcurator completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{ShellBash, ShellZsh, ShellFish, ShellPowerShell},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case ShellBash:
				return cmd.Root().GenBashCompletionV2(w, true)
			case ShellZsh:
				return cmd.Root().GenZshCompletion(w)
			case ShellFish:
				return cmd.Root().GenFishCompletion(w, true)
			case ShellPowerShell:
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return nil
		},
	}
}
