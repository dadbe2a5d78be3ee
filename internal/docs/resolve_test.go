package docs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stringTable holds System.String with a page
func stringTable(t *testing.T) *Table {
	t.Helper()
	table := NewTable()
	_, err := table.insert(&Type{ID: "System.String", Name: "String", Path: "system.string"})
	require.NoError(t, err)
	_, err = table.insert(&Member{ID: "System.String.Empty", Kind: MemberField, TypeID: "System.String"})
	require.NoError(t, err)
	return table
}

func TestResolver_Format(t *testing.T) {
	r := NewResolver(stringTable(t), testFramework, "")

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "self-closing reference to known type",
			text: `Returns a <see cref="T:System.String"/>.`,
			want: `Returns a <a href="system.string">String</a>.`,
		},
		{
			name: "expanded reference",
			text: `A <see cref="T:System.String"></see> value.`,
			want: `A <a href="system.string">String</a> value.`,
		},
		{
			name: "unknown identifier falls back to external link",
			text: "See <see cref=\"T:System.Span`1\" />",
			want: "See <a href=\"https://docs.microsoft.com/en-us/dotnet/api/system.span`1?view=netcore-2.2\">System.Span`1</a>",
		},
		{
			name: "members fall back to external link",
			text: `<see cref="F:System.String.Empty"/>`,
			want: `<a href="https://docs.microsoft.com/en-us/dotnet/api/system.string.empty?view=netcore-2.2">System.String.Empty</a>`,
		},
		{
			name: "text without references is unchanged",
			text: "Plain <b>text</b>.",
			want: "Plain <b>text</b>.",
		},
		{
			name: "empty",
			text: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Format(tt.text))
		})
	}
}

func TestResolver_FormatIsIdempotent(t *testing.T) {
	table := stringTable(t)
	r := NewResolver(table, testFramework, "")
	before := table.Len()

	text := `<see cref="T:System.String"/> and <see cref="T:Missing.Type"/>`
	once := r.Format(text)
	assert.Equal(t, once, r.Format(once))
	assert.Equal(t, before, table.Len())
	_, ok := table.Lookup("Missing.Type")
	assert.False(t, ok)
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(stringTable(t), testFramework, "https://example.test/api/")

	link := r.Resolve("System.String")
	assert.Equal(t, Link{Href: "system.string", Text: "String"}, link)

	link = r.Resolve("System.Collections.Generic.List`1")
	assert.True(t, link.External)
	assert.Equal(t, "https://example.test/api/system.collections.generic.list`1?view=netcore-2.2", link.Href)
	assert.Equal(t, "System.Collections.Generic.List`1", link.Text)
}

func TestResolver_EscapesDisplayNames(t *testing.T) {
	table := NewTable()
	_, err := table.insert(&Type{ID: "Demo.Box`1", Name: "Box<T>", Path: "demo.box-1"})
	require.NoError(t, err)

	r := NewResolver(table, testFramework, "")
	assert.Equal(t, `<a href="demo.box-1">Box&lt;T&gt;</a>`, r.Format(`<see cref="T:Demo.Box`+"`"+`1"/>`))
}

func TestResolver_ExternalURL(t *testing.T) {
	r := NewResolver(NewTable(), "netframework-4.8", "")
	assert.Equal(t, "https://docs.microsoft.com/en-us/dotnet/api/?view=netframework-4.8", r.ExternalURL(""))
}
