package source

import (
	"errors"
	"testing"

	"github.com/antchfx/xmlquery"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReader(t *testing.T) (*Reader, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/corpus/dotnet-api-docs/xml", 0o755))
	require.NoError(t, fs.MkdirAll("/corpus/samples/snippets", 0o755))
	return NewReader(fs, Options{Root: "/corpus"}, nil), fs
}

func TestReader_AbsolutePath(t *testing.T) {
	r, _ := newTestReader(t)

	tests := map[string]string{
		"xml/ns-System.xml":             "/corpus/dotnet-api-docs/xml/ns-System.xml",
		"~/xml/System/String.xml":       "/corpus/dotnet-api-docs/xml/System/String.xml",
		"~/samples/snippets/csharp/a.cs": "/corpus/samples/snippets/csharp/a.cs",
		"/elsewhere/file.xml":           "/elsewhere/file.xml",
	}

	for path, want := range tests {
		assert.Equal(t, want, r.AbsolutePath(path), path)
	}
}

func TestReader_CustomDirectories(t *testing.T) {
	r := NewReader(afero.NewMemMapFs(), Options{Root: "/docs", APIDocsDir: "api", SamplesDir: "code"}, nil)

	assert.Equal(t, "/docs/api", r.APIDocsDirectory())
	assert.Equal(t, "/docs/code", r.SamplesDirectory())
	assert.Equal(t, "/docs/code/x.cs", r.AbsolutePath("~/samples/x.cs"))
}

func TestReader_AssertDirectoriesExist(t *testing.T) {
	r, _ := newTestReader(t)
	assert.NoError(t, r.AssertDirectoriesExist())
}

func TestReader_AssertDirectoriesExist_Missing(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/corpus/dotnet-api-docs", 0o755))
	r := NewReader(fs, Options{Root: "/corpus"}, nil)

	err := r.AssertDirectoriesExist()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSetup))
	assert.Contains(t, err.Error(), "/corpus/samples")
	assert.Contains(t, err.Error(), "https://github.com/dotnet/dotnet-api-docs")
}

func TestReader_AssertDirectoriesExist_FileInsteadOfDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/corpus/dotnet-api-docs", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/corpus/samples", []byte("not a dir"), 0o644))

	err := NewReader(fs, Options{Root: "/corpus"}, nil).AssertDirectoriesExist()
	assert.ErrorIs(t, err, ErrSetup)
}

func TestReader_Read(t *testing.T) {
	r, fs := newTestReader(t)
	require.NoError(t, afero.WriteFile(fs, "/corpus/samples/snippets/hello.cs", []byte("Console.WriteLine();"), 0o644))

	content, err := r.Read("~/samples/snippets/hello.cs")
	require.NoError(t, err)
	assert.Equal(t, "Console.WriteLine();", string(content))

	_, err = r.Read("xml/missing.xml")
	assert.Error(t, err)
}

func TestReader_ReadXML(t *testing.T) {
	r, fs := newTestReader(t)
	require.NoError(t, afero.WriteFile(fs, "/corpus/dotnet-api-docs/xml/ns-Demo.xml",
		[]byte(`<Namespace Name="Demo"><Docs><summary>Demo.</summary></Docs></Namespace>`), 0o644))

	doc, err := r.ReadXML("xml/ns-Demo.xml")
	require.NoError(t, err)

	root := xmlquery.FindOne(doc, "/Namespace")
	require.NotNil(t, root)
	assert.Equal(t, "Demo", root.SelectAttr("Name"))
}

func TestReader_ReadXML_Malformed(t *testing.T) {
	r, fs := newTestReader(t)
	require.NoError(t, afero.WriteFile(fs, "/corpus/dotnet-api-docs/xml/broken.xml", []byte(`<Type><Docs></Type>`), 0o644))

	_, err := r.ReadXML("xml/broken.xml")
	assert.Error(t, err)
}
