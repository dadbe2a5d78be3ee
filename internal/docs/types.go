// Package docs turns the three tiers of a .NET API documentation corpus (framework
// index, namespace files, type files) into a cross-linked entity table, resolves the
// textual cross-references embedded in it and renders namespace and type pages.
package docs

import (
	"fmt"
	"sort"
)

// Kind is the structural category of a type
type Kind string

const (
	KindUnknown   Kind = ""
	KindClass     Kind = "Class"
	KindStruct    Kind = "Struct"
	KindInterface Kind = "Interface"
	KindEnum      Kind = "Enum"
	KindDelegate  Kind = "Delegate"
)

// TypeKinds lists the kind buckets of a namespace in display order
var TypeKinds = []Kind{KindClass, KindStruct, KindInterface, KindEnum, KindDelegate}

// MemberKind is the bucket a member is filed under on its declaring type
type MemberKind string

const (
	MemberUnknown  MemberKind = ""
	MemberField    MemberKind = "Field"
	MemberProperty MemberKind = "Property"
	MemberMethod   MemberKind = "Method"
	MemberOperator MemberKind = "Operator"
	MemberEvent    MemberKind = "Event"
)

// MemberKinds lists the member buckets of a type in display order
var MemberKinds = []MemberKind{MemberField, MemberProperty, MemberMethod, MemberOperator, MemberEvent}

// Docs holds the narrative text of an entity. An empty string means the corpus
// did not provide the text (or only provided the "To be added." placeholder).
type Docs struct {
	Summary      string
	Remarks      string
	ThreadSafety string
}

// Entity is a record stored in the Table
type Entity interface {
	// EntityID returns the table key of the record
	EntityID() string

	// DisplayName returns the human-readable name used as link text
	DisplayName() string

	// OutputPath returns the page path of the record, empty if it has no page
	OutputPath() string
}

// Namespace is a namespace record
type Namespace struct {
	// Name is the dotted namespace name, also its identifier
	Name string

	// Path is the page path (the lower-cased name), set when the namespace file is parsed
	Path string

	// Types lists every type declared under the namespace in the index, in index order
	Types []string

	// Kind buckets, filled while type files are parsed
	Classes    []string
	Structs    []string
	Interfaces []string
	Enums      []string
	Delegates  []string

	Docs
}

func (n *Namespace) EntityID() string    { return n.Name }
func (n *Namespace) DisplayName() string { return n.Name }
func (n *Namespace) OutputPath() string  { return n.Path }

// TypesOfKind returns the identifiers of the namespace's types of the given kind
func (n *Namespace) TypesOfKind(kind Kind) []string {
	if bucket := n.bucket(kind); bucket != nil {
		return *bucket
	}
	return nil
}

func (n *Namespace) bucket(kind Kind) *[]string {
	switch kind {
	case KindClass:
		return &n.Classes
	case KindStruct:
		return &n.Structs
	case KindInterface:
		return &n.Interfaces
	case KindEnum:
		return &n.Enums
	case KindDelegate:
		return &n.Delegates
	}
	return nil
}

// Type is a type record
type Type struct {
	// ID is the DocId without its "T:" prefix, e.g. System.Collections.Generic.List`1
	ID string

	// Name is the display name, nested type separators normalized to dots
	Name string

	// Namespace is the identifier of the declaring namespace
	Namespace string

	// Path is the page path
	Path string

	// FilePath is the relative location of the type file, recorded at index time
	FilePath string

	// Kind is inferred from the C# signature and may be KindUnknown
	Kind Kind

	// Signatures maps a language name to the declaration in that language
	Signatures map[string]string

	// Interfaces lists implemented interface names
	Interfaces []string

	// Attributes lists attribute declarations applying to the current framework
	Attributes []string

	// Assemblies maps an assembly name to the versions shipping the type
	Assemblies map[string][]string

	// BaseName is the base type as written in the corpus, e.g. System.Lazy<T>
	BaseName string

	// Base is the identifier of the base type, empty for root types
	Base string

	// Derived lists the identifiers of types directly deriving from this one
	Derived []string

	// Member buckets
	Fields     []string
	Properties []string
	Methods    []string
	Operators  []string
	Events     []string

	Docs
}

func (t *Type) EntityID() string    { return t.ID }
func (t *Type) DisplayName() string { return t.Name }
func (t *Type) OutputPath() string  { return t.Path }

// MembersOfKind returns the identifiers of the type's members of the given kind
func (t *Type) MembersOfKind(kind MemberKind) []string {
	if bucket := t.bucket(kind); bucket != nil {
		return *bucket
	}
	return nil
}

// SignatureLanguages returns the languages with a signature, sorted
func (t *Type) SignatureLanguages() []string {
	languages := make([]string, 0, len(t.Signatures))
	for lang := range t.Signatures {
		languages = append(languages, lang)
	}
	sort.Strings(languages)
	return languages
}

func (t *Type) bucket(kind MemberKind) *[]string {
	switch kind {
	case MemberField:
		return &t.Fields
	case MemberProperty:
		return &t.Properties
	case MemberMethod:
		return &t.Methods
	case MemberOperator:
		return &t.Operators
	case MemberEvent:
		return &t.Events
	}
	return nil
}

// Member is a member record. It is created as a placeholder during index parsing
// and augmented when the declaring type file is parsed.
type Member struct {
	// ID is the DocId without its prefix
	ID string

	// Kind is the bucket the member is filed under
	Kind MemberKind

	// TypeID is the identifier of the declaring type
	TypeID string

	// Name is the member name from the type file, empty until then
	Name string

	// Signatures maps a language name to the declaration in that language
	Signatures map[string]string

	// ReturnType is the declared return type, if any
	ReturnType string

	Docs
}

func (m *Member) EntityID() string { return m.ID }

func (m *Member) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.ID
}

// OutputPath is always empty; members are rendered on their type's page
func (m *Member) OutputPath() string { return "" }

// phase tracks how far ingestion has progressed
type phase int

const (
	phaseEmpty phase = iota
	phaseIndex
	phaseNamespaces
	phaseTypes
)

func (p phase) String() string {
	switch p {
	case phaseIndex:
		return "index"
	case phaseNamespaces:
		return "namespaces"
	case phaseTypes:
		return "types"
	}
	return "empty"
}

// Table is the entity table: every namespace, type and member of one framework
// variant keyed by identifier. It has a single writer, the Parser; readers must
// not use it concurrently with parsing.
type Table struct {
	entities   map[string]Entity
	namespaces []string
	types      []string
	phase      phase
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{entities: make(map[string]Entity)}
}

// reset discards all records
func (t *Table) reset() {
	t.entities = make(map[string]Entity)
	t.namespaces = nil
	t.types = nil
	t.phase = phaseEmpty
}

// advance moves the table to the given ingestion phase. Going back to an earlier
// phase, or skipping the index, is a contract violation.
func (t *Table) advance(to phase) error {
	if t.phase == phaseEmpty || to < t.phase {
		return fmt.Errorf("%w: cannot parse %s after %s", ErrOutOfOrder, to, t.phase)
	}
	t.phase = to
	return nil
}

// insert registers a new record. Registering the same identifier twice with a
// record of the same kind returns the existing record; a different kind is a
// collision.
func (t *Table) insert(e Entity) (Entity, error) {
	id := e.EntityID()
	existing, ok := t.entities[id]
	if !ok {
		t.entities[id] = e
		return e, nil
	}
	if kindOf(existing) != kindOf(e) {
		return nil, fmt.Errorf("%w: %q registered as %s and %s", ErrIdentifierCollision, id, kindOf(existing), kindOf(e))
	}
	return existing, nil
}

// kindOf names the record kind of an entity
func kindOf(e Entity) string {
	switch e.(type) {
	case *Namespace:
		return "namespace"
	case *Type:
		return "type"
	case *Member:
		return "member"
	}
	return "unknown"
}

// Len returns the number of records
func (t *Table) Len() int {
	return len(t.entities)
}

// Lookup returns the record with the given identifier
func (t *Table) Lookup(id string) (Entity, bool) {
	e, ok := t.entities[id]
	return e, ok
}

// Namespace returns the namespace with the given name
func (t *Table) Namespace(name string) (*Namespace, bool) {
	ns, ok := t.entities[name].(*Namespace)
	return ns, ok
}

// Type returns the type with the given identifier
func (t *Table) Type(id string) (*Type, bool) {
	typ, ok := t.entities[id].(*Type)
	return typ, ok
}

// Member returns the member with the given identifier
func (t *Table) Member(id string) (*Member, bool) {
	m, ok := t.entities[id].(*Member)
	return m, ok
}

// Namespaces returns the namespace names in index order
func (t *Table) Namespaces() []string {
	return append([]string(nil), t.namespaces...)
}

// Types returns the type identifiers in index order
func (t *Table) Types() []string {
	return append([]string(nil), t.types...)
}

// NamespaceFiles returns the relative paths of the namespace files to ingest, in index order
func (t *Table) NamespaceFiles() []string {
	paths := make([]string, 0, len(t.namespaces))
	for _, name := range t.namespaces {
		paths = append(paths, namespaceFilePath(name))
	}
	return paths
}

// TypeFiles returns the relative paths of the type files to ingest, in index order
func (t *Table) TypeFiles() []string {
	paths := make([]string, 0, len(t.types))
	for _, id := range t.types {
		if typ, ok := t.Type(id); ok {
			paths = append(paths, typ.FilePath)
		}
	}
	return paths
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
