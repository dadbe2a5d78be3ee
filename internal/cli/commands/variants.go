package commands

import (
	"github.com/spf13/cobra"

	"github.com/conduit-lang/netdocs/internal/cli/ui"
	"github.com/conduit-lang/netdocs/internal/scrape"
	"github.com/conduit-lang/netdocs/internal/source"
)

// NewVariantsCommand creates the variants command
func NewVariantsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "List framework variants",
		Long: `List the known framework variants and the framework index files found in
the configured corpus. Any id found in the corpus can be passed to 'netdocs scrape --framework'.`,
		RunE: runVariants,
	}
}

func runVariants(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reader := source.NewReader(corpusFs, source.Options{
		Root:       cfg.Corpus.Root,
		APIDocsDir: cfg.Corpus.APIDocsDir,
		SamplesDir: cfg.Corpus.SamplesDir,
	}, nil)

	available := availableFrameworks(corpusFs, reader)
	inCorpus := make(map[string]bool)
	for _, id := range available {
		inCorpus[id] = true
	}

	table := ui.NewTable(cmd.OutOrStdout(), noColor, "ID", "NAME", "IN CORPUS", "HOME")
	seen := make(map[string]bool)
	for _, v := range scrape.Variants() {
		seen[v.ID] = true
		table.AddRow(v.ID, v.Title(), yesNo(inCorpus[v.ID]), v.Links.Home)
	}
	for _, id := range available {
		if seen[id] {
			continue
		}
		v, _ := scrape.LookupVariant(id)
		table.AddRow(v.ID, v.Title(), yesNo(true))
	}
	table.Render()
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
