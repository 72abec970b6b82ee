package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/brewdeps/pkg/inventory"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for brewdeps.

Package names complete from the cached inventory, so completion stays fast
once brewdeps has run.

Bash:
  $ source <(brewdeps completion bash)
  $ brewdeps completion bash > $(brew --prefix)/etc/bash_completion.d/brewdeps

Zsh:
  $ brewdeps completion zsh > "${fpath[1]}/_brewdeps"

Fish:
  $ brewdeps completion fish > ~/.config/fish/completions/brewdeps.fish

PowerShell:
  PS> brewdeps completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(stdout, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(stdout)
			}
			return nil
		},
	}
}

// completePackages completes the package argument with installed formula
// names and cask tokens. It honors --input and --no-cache but never prints
// progress, since its output is read by the shell.
func (c *CLI) completePackages(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var opts sourceOptions
	opts.input, _ = cmd.Flags().GetString("input")
	opts.noCache, _ = cmd.Flags().GetBool("no-cache")

	store := c.newCache(cmd.Context(), !opts.useCache())
	defer store.Close()

	res, err := inventory.NewLoader(c.newSource(opts), store, c.Logger).
		FetchOrLoad(cmd.Context(), c.Config.Cache.TTL.Duration, false)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError | cobra.ShellCompDirectiveNoFileComp
	}

	var names []string
	for _, name := range res.Snapshot.Names() {
		if strings.HasPrefix(name, toComplete) {
			names = append(names, name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
