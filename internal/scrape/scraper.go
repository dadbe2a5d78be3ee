// Package scrape drives a documentation build: it feeds the corpus to the parser
// in index, namespace, type order and emits one rendered page per entity.
package scrape

import (
	"context"
	"fmt"

	"github.com/antchfx/xmlquery"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/iter"
	"go.uber.org/zap"

	"github.com/conduit-lang/netdocs/internal/docs"
	"github.com/conduit-lang/netdocs/internal/source"
	"github.com/conduit-lang/netdocs/internal/store"
)

// Phases reported to Options.Progress
const (
	PhaseNamespaces = "namespaces"
	PhaseTypes      = "types"
	PhasePages      = "pages"
)

// EmitFunc receives every rendered page
type EmitFunc func(page store.Page) error

// ProgressFunc is called after each file or page of a phase
type ProgressFunc func(phase string, done, total int)

// Options configures a Scraper
type Options struct {
	Framework    string
	ExternalBase string
	// Workers bounds concurrent file reads. Parsing is always sequential.
	Workers  int
	Progress ProgressFunc
}

// Stats summarises a run
type Stats struct {
	RunID      string
	Namespaces int
	Types      int
	Skipped    int
	Pages      int
}

// Scraper builds the documentation of one framework variant
type Scraper struct {
	reader  *source.Reader
	parser  *docs.Parser
	variant Variant
	options Options
	logger  *zap.Logger
}

// New creates a scraper reading from reader
func New(reader *source.Reader, opts Options, logger *zap.Logger) (*Scraper, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	parser, err := docs.NewParser(opts.Framework, logger)
	if err != nil {
		return nil, err
	}

	variant, _ := LookupVariant(opts.Framework)
	return &Scraper{
		reader:  reader,
		parser:  parser,
		variant: variant,
		options: opts,
		logger:  logger,
	}, nil
}

// Variant returns the variant being built
func (s *Scraper) Variant() Variant {
	return s.variant
}

// fetched is the outcome of one prefetched read
type fetched struct {
	path string
	doc  *xmlquery.Node
	err  error
}

type parseFunc func(table *docs.Table, doc *xmlquery.Node) error

// Run parses the corpus and emits the index page, then every namespace page
// followed by the pages of its types.
func (s *Scraper) Run(ctx context.Context, emit EmitFunc) (Stats, error) {
	stats := Stats{RunID: uuid.NewString()}
	logger := s.logger.With(zap.String("run_id", stats.RunID), zap.String("framework", s.variant.ID))

	if err := s.reader.AssertDirectoriesExist(); err != nil {
		return stats, err
	}

	table := docs.NewTable()
	indexPath := docs.IndexFilePath(s.variant.ID)
	logger.Info("running scraper", zap.String("path", indexPath))

	index, err := s.reader.ReadXML(indexPath)
	if err != nil {
		return stats, fmt.Errorf("failed to read framework index: %w", err)
	}
	if err := s.parser.ParseIndex(table, index); err != nil {
		return stats, fmt.Errorf("failed to parse framework index: %w", err)
	}

	namespaceFiles := table.NamespaceFiles()
	typeFiles := table.TypeFiles()
	stats.Namespaces = len(namespaceFiles)
	stats.Types = len(typeFiles)
	logger.Info("queued files",
		zap.Int("namespaces", len(namespaceFiles)),
		zap.Int("types", len(typeFiles)))

	skipped, err := s.ingest(ctx, logger, table, PhaseNamespaces, namespaceFiles, s.parser.ParseNamespace)
	stats.Skipped += skipped
	if err != nil {
		return stats, err
	}

	skipped, err = s.ingest(ctx, logger, table, PhaseTypes, typeFiles, s.parser.ParseType)
	stats.Skipped += skipped
	if err != nil {
		return stats, err
	}

	pages, err := s.emitPages(ctx, logger, table, emit)
	stats.Pages = pages
	if err != nil {
		return stats, err
	}

	logger.Info("scrape finished",
		zap.Int("pages", stats.Pages),
		zap.Int("skipped", stats.Skipped))
	return stats, nil
}

// ingest reads paths in bounded concurrent batches and parses them one at a time
// in order. Unreadable or malformed files are skipped; contract violations abort.
func (s *Scraper) ingest(ctx context.Context, logger *zap.Logger, table *docs.Table, phase string, paths []string, parse parseFunc) (int, error) {
	mapper := iter.Mapper[string, fetched]{MaxGoroutines: s.options.Workers}
	batchSize := s.options.Workers * 4
	skipped, done := 0, 0

	for start := 0; start < len(paths); start += batchSize {
		if err := ctx.Err(); err != nil {
			return skipped, err
		}

		end := start + batchSize
		if end > len(paths) {
			end = len(paths)
		}

		results := mapper.Map(paths[start:end], func(path *string) fetched {
			doc, err := s.reader.ReadXML(*path)
			return fetched{path: *path, doc: doc, err: err}
		})

		for _, res := range results {
			if err := ctx.Err(); err != nil {
				return skipped, err
			}
			done++
			s.progress(phase, done, len(paths))

			if res.err != nil {
				logger.Warn("failed to open file", zap.String("path", res.path), zap.Error(res.err))
				skipped++
				continue
			}

			if err := parse(table, res.doc); err != nil {
				if docs.IsContractViolation(err) {
					return skipped, fmt.Errorf("%s: %w", res.path, err)
				}
				logger.Warn("skipping file", zap.String("path", res.path), zap.Error(err))
				skipped++
				continue
			}
			logger.Debug("parsed file", zap.String("path", res.path))
		}
	}

	return skipped, nil
}

func (s *Scraper) emitPages(ctx context.Context, logger *zap.Logger, table *docs.Table, emit EmitFunc) (int, error) {
	resolver := docs.NewResolver(table, s.variant.ID, s.options.ExternalBase)
	renderer, err := docs.NewHTMLRenderer(table, resolver, s.variant.Title())
	if err != nil {
		return 0, err
	}

	total := 1 + len(table.Namespaces()) + len(table.Types())
	pages := 0
	put := func(page store.Page) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(page); err != nil {
			return fmt.Errorf("failed to emit page %s: %w", page.Path, err)
		}
		pages++
		s.progress(PhasePages, pages, total)
		return nil
	}

	output, err := renderer.RenderIndex()
	if err != nil {
		return pages, err
	}
	if err := put(store.Page{
		Path:      "index",
		StorePath: "index.html",
		Output:    output,
		Entries:   []store.Entry{{Path: "index"}},
	}); err != nil {
		return pages, err
	}

	for _, name := range table.Namespaces() {
		ns, ok := table.Namespace(name)
		if !ok || ns.Path == "" {
			logger.Warn("skipping namespace without page", zap.String("id", name))
			continue
		}

		output, err := renderer.RenderNamespace(ns)
		if err != nil {
			return pages, err
		}
		if err := put(store.Page{
			Path:      ns.Path,
			StorePath: store.DefaultStorePath(ns.Path),
			Output:    output,
			Entries:   []store.Entry{{Name: ns.Name, Path: ns.Path, Type: "# Namespaces"}},
		}); err != nil {
			return pages, err
		}

		for _, id := range ns.Types {
			typ, ok := table.Type(id)
			if !ok || typ.Path == "" {
				logger.Debug("skipping type without page", zap.String("id", id))
				continue
			}

			output, err := renderer.RenderType(typ)
			if err != nil {
				return pages, err
			}
			if err := put(store.Page{
				Path:      typ.Path,
				StorePath: store.DefaultStorePath(typ.Path),
				Output:    output,
				Entries:   []store.Entry{{Name: typ.Name, Path: typ.Path, Type: ns.Name}},
			}); err != nil {
				return pages, err
			}
		}
	}

	return pages, nil
}

func (s *Scraper) progress(phase string, done, total int) {
	if s.options.Progress != nil {
		s.options.Progress(phase, done, total)
	}
}
