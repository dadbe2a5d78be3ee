package docs

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// HTMLRenderer renders index, namespace and type pages from a parsed table
type HTMLRenderer struct {
	table     *Table
	resolver  *Resolver
	title     string
	templates *template.Template
}

// row is one line of a summary table
type row struct {
	Href    string
	Name    string
	Summary string
}

// summaryTable is a captioned table of rows; empty tables are not rendered
type summaryTable struct {
	Caption string
	Rows    []row
}

// NewHTMLRenderer creates a renderer. title heads the index page, e.g. ".NET Core 2.2".
func NewHTMLRenderer(table *Table, resolver *Resolver, title string) (*HTMLRenderer, error) {
	r := &HTMLRenderer{
		table:    table,
		resolver: resolver,
		title:    title,
	}
	if err := r.loadTemplates(); err != nil {
		return nil, err
	}
	return r, nil
}

// loadTemplates parses the embedded templates
func (r *HTMLRenderer) loadTemplates() error {
	funcMap := template.FuncMap{
		"format": r.format,
		"link":   r.link,
		"plural": pluralize,
	}

	tmpl := template.New("").Funcs(funcMap)
	for name, text := range map[string]string{
		"index":       indexTemplate,
		"namespace":   namespaceTemplate,
		"type":        typeTemplate,
		"table":       tableTemplate,
		"attribution": attributionTemplate,
	} {
		var err error
		if tmpl, err = tmpl.Parse(text); err != nil {
			return fmt.Errorf("failed to parse %s template: %w", name, err)
		}
	}

	r.templates = tmpl
	return nil
}

// RenderIndex renders the framework landing page listing every namespace
func (r *HTMLRenderer) RenderIndex() ([]byte, error) {
	rows := make([]row, 0, len(r.table.namespaces))
	for _, name := range r.table.namespaces {
		if ns, ok := r.table.Namespace(name); ok {
			rows = append(rows, row{Href: ns.Path, Name: ns.Name, Summary: ns.Summary})
		}
	}

	return r.execute("index", map[string]interface{}{
		"Title":       r.title,
		"Namespaces":  summaryTable{Caption: "Namespace", Rows: rows},
		"Attribution": r.resolver.ExternalURL(""),
	})
}

// RenderNamespace renders a namespace page with one table per type kind
func (r *HTMLRenderer) RenderNamespace(ns *Namespace) ([]byte, error) {
	tables := make([]summaryTable, 0, len(TypeKinds))
	for _, kind := range TypeKinds {
		tables = append(tables, summaryTable{Caption: string(kind), Rows: r.typeRows(ns.TypesOfKind(kind))})
	}

	return r.execute("namespace", map[string]interface{}{
		"Namespace":   ns,
		"Tables":      tables,
		"Attribution": r.resolver.ExternalURL(ns.Path),
	})
}

// RenderType renders a type page: signatures, inheritance, members and remarks
func (r *HTMLRenderer) RenderType(typ *Type) ([]byte, error) {
	tables := make([]summaryTable, 0, len(MemberKinds))
	for _, kind := range MemberKinds {
		tables = append(tables, summaryTable{Caption: string(kind), Rows: r.memberRows(typ.MembersOfKind(kind))})
	}

	return r.execute("type", map[string]interface{}{
		"Type":        typ,
		"Tables":      tables,
		"Attribution": r.resolver.ExternalURL(typ.Path),
	})
}

func (r *HTMLRenderer) execute(name string, data map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to execute %s template: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (r *HTMLRenderer) typeRows(ids []string) []row {
	rows := make([]row, 0, len(ids))
	for _, id := range ids {
		if typ, ok := r.table.Type(id); ok {
			rows = append(rows, row{Href: typ.Path, Name: typ.Name, Summary: typ.Summary})
		}
	}
	return rows
}

func (r *HTMLRenderer) memberRows(ids []string) []row {
	rows := make([]row, 0, len(ids))
	for _, id := range ids {
		if member, ok := r.table.Member(id); ok {
			rows = append(rows, row{Name: member.DisplayName(), Summary: member.Summary})
		}
	}
	return rows
}

// format resolves cross-references in corpus markup
func (r *HTMLRenderer) format(text string) template.HTML {
	return template.HTML(r.resolver.Format(text))
}

// link renders an anchor for an identifier
func (r *HTMLRenderer) link(id string) template.HTML {
	return template.HTML(r.resolver.Resolve(id).HTML())
}

// pluralize turns a kind name into a table caption
func pluralize(singular string) string {
	switch {
	case strings.HasSuffix(singular, "s"):
		return singular + "es"
	case strings.HasSuffix(singular, "y"):
		return strings.TrimSuffix(singular, "y") + "ies"
	}
	return singular + "s"
}

// Template definitions

const indexTemplate = `{{define "index"}}<h1>{{.Title}}</h1>

{{template "table" .Namespaces}}

{{template "attribution" .Attribution}}
{{end}}`

const namespaceTemplate = `{{define "namespace"}}<h1>{{.Namespace.Name}}</h1>
{{with .Namespace.Summary}}
<p>{{format .}}</p>
{{end}}
{{range .Tables}}{{template "table" .}}{{end}}
{{with .Namespace.Remarks}}
<h2>Remarks</h2>
<div class="remarks">{{format .}}</div>
{{end}}
{{template "attribution" .Attribution}}
{{end}}`

const typeTemplate = `{{define "type"}}<h1>{{.Type.Name}}{{with .Type.Kind}} {{.}}{{end}}</h1>
<p class="_namespace">Namespace: {{link .Type.Namespace}}</p>
{{range $lang := .Type.SignatureLanguages}}
<pre data-language="{{$lang}}">{{index $.Type.Signatures $lang}}</pre>
{{end}}
{{with .Type.Summary}}
<p>{{format .}}</p>
{{end}}
{{if .Type.BaseName}}
<h2>Inheritance</h2>
<p>{{if .Type.Base}}{{link .Type.Base}}{{else}}{{.Type.BaseName}}{{end}}</p>
{{end}}
{{if .Type.Derived}}
<h2>Derived</h2>
<ul>
  {{range .Type.Derived}}<li>{{link .}}</li>
  {{end}}
</ul>
{{end}}
{{if .Type.Interfaces}}
<h2>Implements</h2>
<ul>
  {{range .Type.Interfaces}}<li><code>{{.}}</code></li>
  {{end}}
</ul>
{{end}}
{{if .Type.Attributes}}
<h2>Attributes</h2>
<ul>
  {{range .Type.Attributes}}<li><code>{{.}}</code></li>
  {{end}}
</ul>
{{end}}
{{range .Tables}}{{template "table" .}}{{end}}
{{with .Type.Remarks}}
<h2>Remarks</h2>
<div class="remarks">{{format .}}</div>
{{end}}
{{with .Type.ThreadSafety}}
<h2>Thread Safety</h2>
<p>{{format .}}</p>
{{end}}
{{if .Type.Assemblies}}
<h2>Assemblies</h2>
<ul>
  {{range $name, $versions := .Type.Assemblies}}<li>{{$name}} {{range $versions}}<span class="_version">{{.}}</span> {{end}}</li>
  {{end}}
</ul>
{{end}}
{{template "attribution" .Attribution}}
{{end}}`

const tableTemplate = `{{define "table"}}{{if .Rows}}
<table>
  <caption>{{plural .Caption}}</caption>
  <thead>
    <tr>
      <th>{{.Caption}}</th>
      <th>Summary</th>
    </tr>
  </thead>
  <tbody>
    {{range .Rows}}
    <tr>
      <td>{{if .Href}}<a href="{{.Href}}">{{.Name}}</a>{{else}}<code>{{.Name}}</code>{{end}}</td>
      <td>{{format .Summary}}</td>
    </tr>
    {{end}}
  </tbody>
</table>
{{end}}{{end}}`

const attributionTemplate = `{{define "attribution"}}<div class="_attribution">
  <p class="_attribution-p">
    &copy; .NET Foundation and contributors<br>
    Documentation is licensed under the Creative Commons Attribution 4.0 International License.<br>
    Code snippets are licensed under the MIT license.<br>
    <a href="{{.}}" class="_attribution-link">{{.}}</a>
  </p>
</div>{{end}}`
