package scrape

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/netdocs/internal/docs"
	"github.com/conduit-lang/netdocs/internal/source"
	"github.com/conduit-lang/netdocs/internal/store"
)

const apiDocs = "/corpus/dotnet-api-docs/"

var corpusFiles = map[string]string{
	"xml/FrameworksIndex/netcore-2.2.xml": `<Framework Name="netcore-2.2">
  <Namespace Name="Demo">
    <Type Name="Demo.Base" Id="T:Demo.Base" />
    <Type Name="Demo.Derived" Id="T:Demo.Derived">
      <Member Id="M:Demo.Derived.Run" />
    </Type>
    <Type Name="Demo.Missing" Id="T:Demo.Missing" />
  </Namespace>
  <Namespace Name="Demo.IO" />
</Framework>`,
	"xml/ns-Demo.xml": `<Namespace Name="Demo">
  <Docs><summary>Demo types.</summary></Docs>
</Namespace>`,
	"xml/Demo/Base.xml": `<Type Name="Base" FullName="Demo.Base">
  <TypeSignature Language="C#" Value="public class Base" />
  <TypeSignature Language="DocId" Value="T:Demo.Base" />
  <Base><BaseTypeName>System.Object</BaseTypeName></Base>
  <Docs><summary>Base type.</summary></Docs>
</Type>`,
	"xml/Demo/Derived.xml": `<Type Name="Derived" FullName="Demo.Derived">
  <TypeSignature Language="C#" Value="public sealed class Derived : Demo.Base" />
  <TypeSignature Language="DocId" Value="T:Demo.Derived" />
  <Base><BaseTypeName>Demo.Base</BaseTypeName></Base>
  <Docs><summary>Extends <see cref="T:Demo.Base"/>.</summary></Docs>
  <Members>
    <Member MemberName="Run">
      <MemberSignature Language="DocId" Value="M:Demo.Derived.Run" />
      <Docs><summary>Runs.</summary></Docs>
    </Member>
  </Members>
</Type>`,
}

func newCorpus(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/corpus/samples", 0o755))
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, apiDocs+path, []byte(content), 0o644))
	}
	return fs
}

func newTestScraper(t *testing.T, fs afero.Fs, opts Options) *Scraper {
	t.Helper()
	if opts.Framework == "" {
		opts.Framework = "netcore-2.2"
	}
	reader := source.NewReader(fs, source.Options{Root: "/corpus"}, nil)
	s, err := New(reader, opts, nil)
	require.NoError(t, err)
	return s
}

func collect(pages *[]store.Page) EmitFunc {
	return func(page store.Page) error {
		*pages = append(*pages, page)
		return nil
	}
}

func TestScraper_Run(t *testing.T) {
	s := newTestScraper(t, newCorpus(t, corpusFiles), Options{Workers: 2})

	var pages []store.Page
	stats, err := s.Run(context.Background(), collect(&pages))
	require.NoError(t, err)

	paths := make([]string, 0, len(pages))
	for _, page := range pages {
		paths = append(paths, page.Path)
	}
	assert.Equal(t, []string{"index", "demo", "demo.base", "demo.derived"}, paths)

	assert.NotEmpty(t, stats.RunID)
	assert.Equal(t, 2, stats.Namespaces)
	assert.Equal(t, 3, stats.Types)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 4, stats.Pages)

	assert.Equal(t, "index.html", pages[0].StorePath)
	assert.Equal(t, []store.Entry{{Path: "index"}}, pages[0].Entries)
	assert.Equal(t, []store.Entry{{Name: "Demo", Path: "demo", Type: "# Namespaces"}}, pages[1].Entries)
	assert.Equal(t, "demo.derived.html", pages[3].StorePath)
	assert.Equal(t, []store.Entry{{Name: "Derived", Path: "demo.derived", Type: "Demo"}}, pages[3].Entries)

	assert.Contains(t, string(pages[0].Output), "<h1>.NET Core 2.2</h1>")
	assert.Contains(t, string(pages[3].Output), `Extends <a href="demo.base">Base</a>.`)
	assert.Contains(t, string(pages[2].Output), `<a href="demo.derived">Derived</a>`)
}

func TestScraper_RunSkipsMalformedFiles(t *testing.T) {
	files := map[string]string{}
	for path, content := range corpusFiles {
		files[path] = content
	}
	files["xml/Demo/Base.xml"] = `<Type><Docs></Type>`
	files["xml/Demo/Missing.xml"] = `<Type Name="Missing" FullName="Demo.Missing" />`

	s := newTestScraper(t, newCorpus(t, files), Options{Workers: 1})

	var pages []store.Page
	stats, err := s.Run(context.Background(), collect(&pages))
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Skipped)
	assert.Len(t, pages, 3)
	assert.Contains(t, string(pages[2].Output), "Extends")
}

func TestScraper_RunAbortsOnContractViolation(t *testing.T) {
	files := map[string]string{}
	for path, content := range corpusFiles {
		files[path] = content
	}
	files["xml/ns-Demo.xml"] = `<Namespace Name="Elsewhere" />`

	s := newTestScraper(t, newCorpus(t, files), Options{})

	_, err := s.Run(context.Background(), collect(new([]store.Page)))
	require.Error(t, err)
	assert.ErrorIs(t, err, docs.ErrUnknownEntity)
	assert.Contains(t, err.Error(), "xml/ns-Demo.xml")
}

func TestScraper_RunSetupError(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/corpus/dotnet-api-docs", 0o755))
	s := newTestScraper(t, fs, Options{})

	_, err := s.Run(context.Background(), collect(new([]store.Page)))
	assert.ErrorIs(t, err, source.ErrSetup)
}

func TestScraper_RunMissingIndex(t *testing.T) {
	s := newTestScraper(t, newCorpus(t, nil), Options{Framework: "netframework-4.8"})

	_, err := s.Run(context.Background(), collect(new([]store.Page)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "framework index")
}

func TestScraper_RunCancelled(t *testing.T) {
	s := newTestScraper(t, newCorpus(t, corpusFiles), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Run(ctx, collect(new([]store.Page)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScraper_RunEmitError(t *testing.T) {
	s := newTestScraper(t, newCorpus(t, corpusFiles), Options{})

	boom := errors.New("disk full")
	stats, err := s.Run(context.Background(), func(page store.Page) error {
		if page.Path == "demo" {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, stats.Pages)
}

func TestScraper_RunReportsProgress(t *testing.T) {
	last := map[string][2]int{}
	s := newTestScraper(t, newCorpus(t, corpusFiles), Options{
		Workers: 3,
		Progress: func(phase string, done, total int) {
			last[phase] = [2]int{done, total}
		},
	})

	_, err := s.Run(context.Background(), collect(new([]store.Page)))
	require.NoError(t, err)

	assert.Equal(t, [2]int{2, 2}, last[PhaseNamespaces])
	assert.Equal(t, [2]int{3, 3}, last[PhaseTypes])
	assert.Equal(t, 4, last[PhasePages][0])
}

func TestNew_RejectsUnsafeFramework(t *testing.T) {
	reader := source.NewReader(afero.NewMemMapFs(), source.Options{Root: "/corpus"}, nil)
	_, err := New(reader, Options{Framework: "x' or '1"}, nil)
	assert.Error(t, err)
}
