package scrape

import "sort"

// Variant is a framework flavour of the corpus, named after a file in
// xml/FrameworksIndex without its extension
type Variant struct {
	ID      string
	Name    string
	Version string
	Release string
	Links   Links
}

// Links point at the upstream documentation and source code
type Links struct {
	Home string
	Code string
}

var knownVariants = map[string]Variant{
	"netcore-2.2": {
		ID:      "netcore-2.2",
		Name:    ".NET",
		Version: "Core",
		Release: "2.2",
		Links: Links{
			Home: "https://docs.microsoft.com/en-us/dotnet/api/?view=netcore-2.2",
			Code: "https://github.com/dotnet/corefx",
		},
	},
	"netframework-4.8": {
		ID:      "netframework-4.8",
		Name:    ".NET",
		Version: "Framework",
		Release: "4.8",
		Links: Links{
			Home: "https://docs.microsoft.com/en-us/dotnet/api/?view=netframework-4.8",
			Code: "https://github.com/microsoft/referencesource",
		},
	},
}

// Title is the display name, e.g. ".NET Core 2.2"
func (v Variant) Title() string {
	if v.Version == "" && v.Release == "" {
		return v.Name
	}
	return v.Name + " " + v.Version + " " + v.Release
}

// LookupVariant returns the known variant for id. Unknown ids get a variant named after the id.
func LookupVariant(id string) (Variant, bool) {
	if v, ok := knownVariants[id]; ok {
		return v, true
	}
	return Variant{ID: id, Name: ".NET " + id}, false
}

// Variants returns the known variants sorted by id
func Variants() []Variant {
	variants := make([]Variant, 0, len(knownVariants))
	for _, v := range knownVariants {
		variants = append(variants, v)
	}
	sort.Slice(variants, func(i, j int) bool {
		return variants[i].ID < variants[j].ID
	})
	return variants
}
