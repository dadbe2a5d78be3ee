package docs

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"go.uber.org/zap"
)

// frameworkIDPattern restricts framework ids to characters that are safe inside an
// XPath string literal
var frameworkIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateFramework checks that a framework id can be used to filter the corpus
func ValidateFramework(framework string) error {
	if !frameworkIDPattern.MatchString(framework) {
		return fmt.Errorf("invalid framework id %q: must match %s", framework, frameworkIDPattern)
	}
	return nil
}

// variantClause selects nodes without a FrameworkAlternate restriction, or whose
// restriction names the framework
func variantClause(framework string) string {
	return fmt.Sprintf("not(@FrameworkAlternate) or contains(@FrameworkAlternate, '%s')", framework)
}

// Parser ingests the corpus tiers into a Table. Calls must follow the order
// ParseIndex, ParseNamespace for every namespace file, ParseType for every type
// file; the Table enforces it.
type Parser struct {
	framework string
	logger    *zap.Logger

	typeSignatures   *xpath.Expr
	memberSignatures *xpath.Expr
	attributeNames   *xpath.Expr
}

// NewParser creates a parser filtering signatures and attributes for framework
func NewParser(framework string, logger *zap.Logger) (*Parser, error) {
	if err := ValidateFramework(framework); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clause := variantClause(framework)
	p := &Parser{framework: framework, logger: logger}

	var err error
	if p.typeSignatures, err = xpath.Compile("./TypeSignature[" + clause + "]"); err != nil {
		return nil, fmt.Errorf("failed to compile type signature query: %w", err)
	}
	if p.memberSignatures, err = xpath.Compile("./MemberSignature[" + clause + "]"); err != nil {
		return nil, fmt.Errorf("failed to compile member signature query: %w", err)
	}
	if p.attributeNames, err = xpath.Compile("./Attributes/Attribute[" + clause + "]/AttributeName"); err != nil {
		return nil, fmt.Errorf("failed to compile attribute query: %w", err)
	}

	return p, nil
}

// Framework returns the framework id the parser filters for
func (p *Parser) Framework() string {
	return p.framework
}

// ParseIndex resets table and registers every namespace, type and member listed in
// a framework index document (xml/FrameworksIndex/<framework>.xml). Afterwards the
// table lists the namespace and type files to ingest next.
func (p *Parser) ParseIndex(table *Table, doc *xmlquery.Node) error {
	table.reset()
	if doc == nil {
		return fmt.Errorf("%w: empty index document", ErrMalformedDocument)
	}

	for _, nsNode := range xmlquery.Find(doc, "//Namespace") {
		name := nsNode.SelectAttr("Name")
		if name == "" {
			p.logger.Warn("skipping namespace without name")
			continue
		}

		e, err := table.insert(&Namespace{Name: name})
		if err != nil {
			return err
		}
		ns := e.(*Namespace)
		table.namespaces = appendUnique(table.namespaces, name)

		for _, typeNode := range xmlquery.Find(nsNode, "./Type") {
			if err := p.indexType(table, ns, typeNode); err != nil {
				return err
			}
		}
	}

	table.phase = phaseIndex
	p.logger.Debug("parsed index",
		zap.Int("namespaces", len(table.namespaces)),
		zap.Int("types", len(table.types)),
		zap.Int("entities", table.Len()),
	)
	return nil
}

// indexType registers one <Type> of the index and its members
func (p *Parser) indexType(table *Table, ns *Namespace, typeNode *xmlquery.Node) error {
	id := StripDocIDPrefix(typeNode.SelectAttr("Id"))
	name := typeNode.SelectAttr("Name")
	if id == "" || name == "" {
		p.logger.Warn("skipping type without id or name",
			zap.String("namespace", ns.Name),
			zap.String("id", id),
		)
		return nil
	}

	e, err := table.insert(&Type{
		ID:         id,
		FilePath:   "xml/" + TypeFilePath(name) + ".xml",
		Signatures: make(map[string]string),
		Assemblies: make(map[string][]string),
	})
	if err != nil {
		return err
	}
	typ := e.(*Type)
	ns.Types = appendUnique(ns.Types, id)
	table.types = appendUnique(table.types, id)

	for _, memberNode := range xmlquery.Find(typeNode, "./Member") {
		docID := memberNode.SelectAttr("Id")
		memberID, kind, err := MemberIdentifier(docID)
		if errors.Is(err, ErrMalformedDocument) {
			p.logger.Warn("skipping member with malformed id", zap.String("type", id), zap.String("id", docID))
			continue
		}
		if err != nil {
			p.logger.Warn("member not filed under any bucket", zap.Error(err))
		}

		e, err := table.insert(&Member{ID: memberID, Kind: kind, TypeID: id})
		if err != nil {
			return err
		}
		if bucket := typ.bucket(e.(*Member).Kind); bucket != nil {
			*bucket = appendUnique(*bucket, memberID)
		}
	}

	return nil
}

// ParseNamespace augments the namespace named by a namespace document (xml/ns-<name>.xml)
// with its page path and documentation.
func (p *Parser) ParseNamespace(table *Table, doc *xmlquery.Node) error {
	if err := table.advance(phaseNamespaces); err != nil {
		return err
	}

	root := findRoot(doc, "Namespace")
	if root == nil {
		return fmt.Errorf("%w: missing <Namespace> root", ErrMalformedDocument)
	}

	name := root.SelectAttr("Name")
	ns, ok := table.Namespace(name)
	if !ok {
		return fmt.Errorf("%w: namespace %q", ErrUnknownEntity, name)
	}

	ns.Path = strings.ToLower(name)
	extractDocs(xmlquery.FindOne(root, "./Docs"), &ns.Docs)
	return nil
}

// ParseType fills in the type described by a type document (xml/<Namespace>/<Type>.xml)
// and links it to its namespace and base type.
func (p *Parser) ParseType(table *Table, doc *xmlquery.Node) error {
	if err := table.advance(phaseTypes); err != nil {
		return err
	}

	root := findRoot(doc, "Type")
	if root == nil {
		return fmt.Errorf("%w: missing <Type> root", ErrMalformedDocument)
	}

	docIDNode := xmlquery.FindOne(root, "./TypeSignature[@Language='DocId']")
	if docIDNode == nil {
		return fmt.Errorf("%w: type %q has no DocId signature", ErrMalformedDocument, root.SelectAttr("FullName"))
	}

	id := StripDocIDPrefix(docIDNode.SelectAttr("Value"))
	typ, ok := table.Type(id)
	if !ok {
		return fmt.Errorf("%w: type %q", ErrUnknownEntity, id)
	}

	extractDocs(xmlquery.FindOne(root, "./Docs"), &typ.Docs)

	name := root.SelectAttr("Name")
	fullName := root.SelectAttr("FullName")
	typ.Name = strings.Replace(name, "+", ".", 1)
	typ.Path = outputPath(fullName)
	typ.Namespace = strings.Replace(fullName, "."+name, "", 1)
	typ.Signatures = p.signatures(root, p.typeSignatures)

	p.classify(table, typ)

	typ.Assemblies = make(map[string][]string)
	for _, node := range xmlquery.Find(root, "./AssemblyInfo") {
		assembly := innerText(xmlquery.FindOne(node, "./AssemblyName"))
		typ.Assemblies[assembly] = texts(xmlquery.Find(node, "./AssemblyVersion"))
	}

	p.linkBase(table, typ, innerText(xmlquery.FindOne(root, ".//BaseTypeName")))

	typ.Interfaces = texts(xmlquery.Find(root, ".//InterfaceName"))
	typ.Attributes = texts(xmlquery.QuerySelectorAll(root, p.attributeNames))

	for _, memberNode := range xmlquery.Find(root, "./Members/Member") {
		p.augmentMember(table, typ, memberNode)
	}

	return nil
}

// classify infers the type's kind and files it under its namespace
func (p *Parser) classify(table *Table, typ *Type) {
	typ.Kind = KindUnknown
	if signature, ok := typ.Signatures["C#"]; ok {
		typ.Kind = TypeKindFromSignature(signature)
	}

	ns, ok := table.Namespace(typ.Namespace)
	if !ok {
		p.logger.Warn("type declares a namespace missing from the index",
			zap.String("id", typ.ID),
			zap.String("namespace", typ.Namespace),
		)
		return
	}

	bucket := ns.bucket(typ.Kind)
	if bucket == nil {
		p.logger.Warn("could not infer type kind", zap.String("id", typ.ID), zap.String("kind", string(typ.Kind)))
		return
	}
	*bucket = appendUnique(*bucket, typ.ID)
}

// linkBase records the base type and registers typ as derived from it. Bases
// missing from the table (other frameworks, other libraries) are not linked.
func (p *Parser) linkBase(table *Table, typ *Type, baseName string) {
	typ.BaseName = baseName
	typ.Base = ""
	if baseName == "" || baseName == rootTypeName {
		return
	}

	typ.Base = BaseIdentifierFromDisplayName(baseName)
	base, ok := table.Type(typ.Base)
	if !ok {
		p.logger.Debug("base type not in table", zap.String("id", typ.ID), zap.String("base", typ.Base))
		return
	}
	base.Derived = appendUnique(base.Derived, typ.ID)
}

// augmentMember copies name, signatures and documentation from a <Member> of a
// type document onto the placeholder created at index time
func (p *Parser) augmentMember(table *Table, typ *Type, memberNode *xmlquery.Node) {
	docIDNode := xmlquery.FindOne(memberNode, "./MemberSignature[@Language='DocId']")
	if docIDNode == nil {
		return
	}

	id := StripDocIDPrefix(docIDNode.SelectAttr("Value"))
	member, ok := table.Member(id)
	if !ok {
		p.logger.Debug("member not in framework", zap.String("type", typ.ID), zap.String("id", id))
		return
	}

	member.Name = memberNode.SelectAttr("MemberName")
	member.Signatures = p.signatures(memberNode, p.memberSignatures)
	member.ReturnType = innerText(xmlquery.FindOne(memberNode, "./ReturnValue/ReturnType"))
	extractDocs(xmlquery.FindOne(memberNode, "./Docs"), &member.Docs)
}

// signatures collects language -> signature pairs applying to the framework
func (p *Parser) signatures(node *xmlquery.Node, query *xpath.Expr) map[string]string {
	result := make(map[string]string)
	for _, sig := range xmlquery.QuerySelectorAll(node, query) {
		lang := sig.SelectAttr("Language")
		if lang == "DocId" {
			continue
		}
		result[lang] = sig.SelectAttr("Value")
	}
	return result
}

func findRoot(doc *xmlquery.Node, name string) *xmlquery.Node {
	if doc == nil {
		return nil
	}
	return xmlquery.FindOne(doc, "/"+name)
}

func innerText(node *xmlquery.Node) string {
	if node == nil {
		return ""
	}
	return strings.TrimSpace(node.InnerText())
}

func texts(nodes []*xmlquery.Node) []string {
	result := make([]string, 0, len(nodes))
	for _, node := range nodes {
		result = append(result, innerText(node))
	}
	return result
}
