package docs

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// DefaultExternalBase is where identifiers missing from the table are linked to
const DefaultExternalBase = "https://docs.microsoft.com/en-us/dotnet/api"

// seeReferencePattern matches <see cref="X:Id"/> in both its self-closing and its
// expanded <see cref="X:Id"></see> serialization
var seeReferencePattern = regexp.MustCompile(`<see cref="([^"]+)"\s*(?:/>|></see>)`)

// Link is the resolved target of a cross-reference
type Link struct {
	Href     string
	Text     string
	External bool
}

// HTML renders the link as an anchor. Text is already escaped.
func (l Link) HTML() string {
	return fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(l.Href), l.Text)
}

// Resolver rewrites cross-references into links. It only reads the table.
type Resolver struct {
	table        *Table
	framework    string
	externalBase string
}

// NewResolver creates a resolver over table. An empty externalBase selects
// DefaultExternalBase.
func NewResolver(table *Table, framework, externalBase string) *Resolver {
	if externalBase == "" {
		externalBase = DefaultExternalBase
	}
	return &Resolver{
		table:        table,
		framework:    framework,
		externalBase: strings.TrimSuffix(externalBase, "/"),
	}
}

// Format replaces every <see cref="..."/> marker in text with a link
func (r *Resolver) Format(text string) string {
	if text == "" {
		return ""
	}
	return seeReferencePattern.ReplaceAllStringFunc(text, func(marker string) string {
		cref := seeReferencePattern.FindStringSubmatch(marker)[1]
		return r.Resolve(StripDocIDPrefix(html.UnescapeString(cref))).HTML()
	})
}

// Resolve links an identifier to its page when the table knows it, and to the
// external documentation host otherwise (identifiers filtered out of the current
// framework, members, types from other libraries).
func (r *Resolver) Resolve(id string) Link {
	if e, ok := r.table.Lookup(id); ok && e.OutputPath() != "" {
		return Link{
			Href: e.OutputPath(),
			Text: html.EscapeString(e.DisplayName()),
		}
	}
	return Link{
		Href:     r.ExternalURL(strings.ToLower(id)),
		Text:     html.EscapeString(id),
		External: true,
	}
}

// ExternalURL returns the external documentation URL of a page path
func (r *Resolver) ExternalURL(path string) string {
	return fmt.Sprintf("%s/%s?view=%s", r.externalBase, path, r.framework)
}
