package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/netdocs/internal/cli/config"
	"github.com/conduit-lang/netdocs/internal/cli/ui"
	"github.com/conduit-lang/netdocs/internal/docs"
	"github.com/conduit-lang/netdocs/internal/scrape"
	"github.com/conduit-lang/netdocs/internal/source"
	"github.com/conduit-lang/netdocs/internal/store"
)

var (
	scrapeFramework    string
	scrapeCorpus       string
	scrapeExternalBase string
	scrapeWorkers      int
	scrapeInteractive  bool
	scrapeNoProgress   bool
	outputDriver       string
	outputDir          string
	outputDSN          string
)

// corpusFs is the filesystem the corpus and file output live on
var corpusFs = afero.NewOsFs()

// NewScrapeCommand creates the scrape command
func NewScrapeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Build the documentation of one framework",
		Long: `Parse the framework index, every namespace file and every type file of
a dotnet-api-docs clone and write one page per namespace and type.

The corpus root must contain the dotnet/dotnet-api-docs and dotnet/samples
repositories. Files that cannot be read or parsed are skipped with a warning;
a corpus that contradicts its own framework index aborts the run.

Examples:
  netdocs scrape
  netdocs scrape --framework netframework-4.8 --corpus ~/src/dotnet
  netdocs scrape --driver sqlite --dsn file:docs.db
  netdocs scrape --interactive`,
		RunE: runScrape,
	}

	cmd.Flags().StringVarP(&scrapeFramework, "framework", "f", "", "Framework id, a file name in xml/FrameworksIndex without extension")
	cmd.Flags().StringVar(&scrapeCorpus, "corpus", "", "Directory holding the dotnet-api-docs and samples clones")
	cmd.Flags().StringVar(&scrapeExternalBase, "external-base", "", "Base URL for links to pages outside the corpus")
	cmd.Flags().IntVarP(&scrapeWorkers, "workers", "w", 0, "Concurrent file reads")
	cmd.Flags().BoolVarP(&scrapeInteractive, "interactive", "i", false, "Choose the framework from the corpus interactively")
	cmd.Flags().BoolVar(&scrapeNoProgress, "no-progress", false, "Hide the progress bar")
	addOutputFlags(cmd)
	_ = cmd.RegisterFlagCompletionFunc("framework", completeFramework)

	return cmd
}

// addOutputFlags registers the store selection flags shared by scrape and serve
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&outputDriver, "driver", "", "Output driver: "+strings.Join(store.Drivers, ", "))
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory for the fs driver")
	cmd.Flags().StringVar(&outputDSN, "dsn", "", "Database connection string for the sqlite and postgres drivers")
}

// applyOutputFlags copies explicitly set output flags over the configuration
func applyOutputFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("driver") {
		cfg.Output.Driver = outputDriver
	}
	if cmd.Flags().Changed("output") {
		cfg.Output.Dir = outputDir
	}
	if cmd.Flags().Changed("dsn") {
		cfg.Output.DSN = outputDSN
	}
}

func applyScrapeFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("framework") {
		cfg.Framework = scrapeFramework
	}
	if cmd.Flags().Changed("corpus") {
		cfg.Corpus.Root = scrapeCorpus
	}
	if cmd.Flags().Changed("external-base") {
		cfg.Links.ExternalBase = scrapeExternalBase
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = scrapeWorkers
	}
	applyOutputFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return configError{err}
	}
	return nil
}

func runScrape(cmd *cobra.Command, args []string) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()
	infoColor := color.New(color.FgCyan)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyScrapeFlags(cmd, cfg); err != nil {
		return err
	}

	logger, err := newLogger(verbose, logFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	reader := source.NewReader(corpusFs, source.Options{
		Root:       cfg.Corpus.Root,
		APIDocsDir: cfg.Corpus.APIDocsDir,
		SamplesDir: cfg.Corpus.SamplesDir,
	}, logger)
	if err := reader.AssertDirectoriesExist(); err != nil {
		return err
	}

	available := availableFrameworks(corpusFs, reader)
	if scrapeInteractive {
		if cfg.Framework, err = selectFramework(available); err != nil {
			return err
		}
	}
	if err := checkFramework(cfg.Framework, available); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	st, err := store.Open(ctx, cfg.StoreConfig(), corpusFs)
	if err != nil {
		return err
	}

	progress, finishProgress := progressReporter(cmd.ErrOrStderr())
	scraper, err := scrape.New(reader, scrape.Options{
		Framework:    cfg.Framework,
		ExternalBase: cfg.Links.ExternalBase,
		Workers:      cfg.Workers,
		Progress:     progress,
	}, logger)
	if err != nil {
		st.Close()
		return err
	}

	infoColor.Fprintf(out, "Scraping %s from %s\n", scraper.Variant().Title(), reader.APIDocsDirectory())

	stats, err := scraper.Run(ctx, func(page store.Page) error {
		return st.Put(ctx, page)
	})
	finishProgress()
	if closeErr := st.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close %s output: %w", cfg.Output.Driver, closeErr)
	}
	if err != nil {
		logger.Error("scrape failed", zap.String("run_id", stats.RunID), zap.Error(err))
		return err
	}

	ui.WriteSuccess(out, fmt.Sprintf("Documentation built in %v", time.Since(startTime).Round(time.Millisecond)), noColor)
	ui.KeyValues(out, noColor,
		[2]string{"Run", stats.RunID},
		[2]string{"Namespaces", fmt.Sprint(stats.Namespaces)},
		[2]string{"Types", fmt.Sprint(stats.Types)},
		[2]string{"Pages", fmt.Sprint(stats.Pages)},
		[2]string{"Output", describeOutput(cfg)},
	)
	if stats.Skipped > 0 {
		fmt.Fprint(out, ui.Warning(fmt.Sprintf("%d files were skipped; rerun with --verbose for details", stats.Skipped), noColor))
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// progressReporter returns the scrape progress callback and a func ending the bar
func progressReporter(w io.Writer) (scrape.ProgressFunc, func()) {
	if scrapeNoProgress || verbose {
		return nil, func() {}
	}
	bar := ui.NewProgressBar(w, ui.ProgressBarOptions{NoColor: noColor})
	return bar.Update, func() { bar.Finish("") }
}

// availableFrameworks lists the framework index files of the corpus
func availableFrameworks(fs afero.Fs, reader *source.Reader) []string {
	dir := filepath.Dir(reader.AbsolutePath(docs.IndexFilePath(".")))
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil
	}

	var ids []string
	for _, info := range infos {
		if !info.IsDir() && strings.HasSuffix(info.Name(), ".xml") {
			ids = append(ids, strings.TrimSuffix(info.Name(), ".xml"))
		}
	}
	sort.Strings(ids)
	return ids
}

func checkFramework(framework string, available []string) error {
	for _, id := range available {
		if id == framework {
			return nil
		}
	}
	return unknownFrameworkError{
		framework:   framework,
		suggestions: ui.Suggest(framework, available, 3),
	}
}

func selectFramework(available []string) (string, error) {
	if len(available) == 0 {
		return "", fmt.Errorf("the corpus has no framework index files")
	}

	options := make([]string, len(available))
	for i, id := range available {
		variant, _ := scrape.LookupVariant(id)
		options[i] = fmt.Sprintf("%s - %s", id, variant.Title())
	}

	var selectedIdx int
	prompt := &survey.Select{
		Message: "Select a framework:",
		Options: options,
	}
	if err := survey.AskOne(prompt, &selectedIdx); err != nil {
		return "", err
	}
	return available[selectedIdx], nil
}

func describeOutput(cfg *config.Config) string {
	switch cfg.Output.Driver {
	case store.DriverFS:
		return cfg.Output.Dir
	case store.DriverRedis:
		return fmt.Sprintf("redis://%s/%d %s*", cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.Prefix)
	default:
		return cfg.Output.Driver
	}
}
