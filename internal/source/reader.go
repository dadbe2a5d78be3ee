// Package source reads the documentation corpus: the dotnet-api-docs XML tree and
// the dotnet samples tree, both living under a common root.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ErrSetup is returned when the corpus repositories are not where they are expected
var ErrSetup = errors.New("corpus setup error")

const (
	samplesMarker = "~/samples/"
	apiDocsMarker = "~/"
)

// Options locates the two corpus subtrees
type Options struct {
	Root       string
	APIDocsDir string
	SamplesDir string
}

// Reader reads corpus files relative to the API reference tree. Paths starting
// with "~/samples/" are read from the samples tree instead.
type Reader struct {
	fs      afero.Fs
	apiDocs string
	samples string
	logger  *zap.Logger
}

// NewReader creates a reader over fs
func NewReader(fs afero.Fs, opts Options, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.APIDocsDir == "" {
		opts.APIDocsDir = "dotnet-api-docs"
	}
	if opts.SamplesDir == "" {
		opts.SamplesDir = "samples"
	}

	return &Reader{
		fs:      fs,
		apiDocs: filepath.Join(opts.Root, opts.APIDocsDir),
		samples: filepath.Join(opts.Root, opts.SamplesDir),
		logger:  logger,
	}
}

// APIDocsDirectory returns the API reference tree
func (r *Reader) APIDocsDirectory() string {
	return r.apiDocs
}

// SamplesDirectory returns the samples tree
func (r *Reader) SamplesDirectory() string {
	return r.samples
}

// AbsolutePath maps a corpus path onto its subtree. Absolute paths are kept.
func (r *Reader) AbsolutePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/"):
		return path
	case strings.HasPrefix(path, samplesMarker):
		return filepath.Join(r.samples, strings.TrimPrefix(path, samplesMarker))
	case strings.HasPrefix(path, apiDocsMarker):
		return filepath.Join(r.apiDocs, strings.TrimPrefix(path, apiDocsMarker))
	default:
		return filepath.Join(r.apiDocs, path)
	}
}

// AssertDirectoriesExist fails with ErrSetup unless both subtrees are directories
func (r *Reader) AssertDirectoriesExist() error {
	var missing []string
	for _, dir := range []string{r.apiDocs, r.samples} {
		ok, err := afero.DirExists(r.fs, dir)
		if err != nil || !ok {
			missing = append(missing, dir)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	return fmt.Errorf(`%w: missing %s
The .NET scraper requires the following GitHub repositories to be cloned into specific locations:
- https://github.com/dotnet/dotnet-api-docs into %s
- https://github.com/dotnet/samples into %s`,
		ErrSetup, strings.Join(missing, ", "), r.apiDocs, r.samples)
}

// Read returns the raw content of a corpus file
func (r *Reader) Read(path string) ([]byte, error) {
	abs := r.AbsolutePath(path)
	r.logger.Debug("reading file", zap.String("path", abs))

	content, err := afero.ReadFile(r.fs, abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", abs, err)
	}
	return content, nil
}

// ReadXML reads and parses a corpus XML file
func (r *Reader) ReadXML(path string) (*xmlquery.Node, error) {
	content, err := r.Read(path)
	if err != nil {
		return nil, err
	}

	doc, err := xmlquery.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", r.AbsolutePath(path), err)
	}
	return doc, nil
}
