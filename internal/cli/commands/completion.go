package commands

import (
	"github.com/spf13/cobra"

	"github.com/conduit-lang/netdocs/internal/scrape"
	"github.com/conduit-lang/netdocs/internal/source"
)

// NewCompletionCommand creates the completion command for shell completions
func NewCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for netdocs.

  $ source <(netdocs completion bash)
  $ netdocs completion zsh > "${fpath[1]}/_netdocs"
  $ netdocs completion fish | source
  PS> netdocs completion powershell | Out-String | Invoke-Expression

Completion of --framework lists the index files of the configured corpus.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			root := cmd.Root()

			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// completeFramework offers the framework ids of the configured corpus, falling
// back to the known variants when no corpus is configured
func completeFramework(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var ids []string
	if cfg, err := loadConfig(); err == nil {
		reader := source.NewReader(corpusFs, source.Options{
			Root:       cfg.Corpus.Root,
			APIDocsDir: cfg.Corpus.APIDocsDir,
			SamplesDir: cfg.Corpus.SamplesDir,
		}, nil)
		ids = availableFrameworks(corpusFs, reader)
	}
	if len(ids) == 0 {
		for _, v := range scrape.Variants() {
			ids = append(ids, v.ID)
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}
