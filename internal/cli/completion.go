package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/symlump/pkg/netio"
)

// completionCommand creates the completion command for generating shell completions.
//
// Besides subcommands and flags, the generated scripts complete generator
// files (.gen, .gaut, .gap, .txt) for analyze and verify, statistics logs for
// --stats, and directories for run, --stats-dir and --output.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for symlump.

Bash:
  $ source <(symlump completion bash)

Zsh:
  $ symlump completion zsh > "${fpath[1]}/_symlump"

Fish:
  $ symlump completion fish > ~/.config/fish/completions/symlump.fish

PowerShell:
  PS> symlump completion powershell | Out-String | Invoke-Expression

Completion offers generator files for analyze and verify, statistics logs
for --stats, and directories for run.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// completeGenerators completes the single generator-file argument of
// analyze and verify.
func completeGenerators(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return generatorExtensions(), cobra.ShellCompDirectiveFilterFileExt
}

// completeInputDir completes the optional input directory of run.
func completeInputDir(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveFilterDirs
}

func completeStats(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{strings.TrimPrefix(netio.StatsExt, ".")}, cobra.ShellCompDirectiveFilterFileExt
}

func completeDirs(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return nil, cobra.ShellCompDirectiveFilterDirs
}

func generatorExtensions() []string {
	exts := netio.GeneratorExtensions()
	out := make([]string, len(exts))
	for i, e := range exts {
		out[i] = strings.TrimPrefix(e, ".")
	}
	return out
}

// registerNetworkCompletion wires completion for a command that takes one
// generator file and a --stats flag.
func registerNetworkCompletion(cmd *cobra.Command) {
	cmd.ValidArgsFunction = completeGenerators
	_ = cmd.RegisterFlagCompletionFunc("stats", completeStats)
	if cmd.Flags().Lookup("output") != nil {
		_ = cmd.RegisterFlagCompletionFunc("output", completeDirs)
	}
}
