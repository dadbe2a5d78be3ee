package docs

import (
	"fmt"
	"regexp"
	"strings"
)

// rootTypeName is the universal base type; inheriting from it is not recorded as a link
const rootTypeName = "System.Object"

// operatorMarker identifies operator overloads among method DocIds (op_Addition, op_Implicit, ...)
const operatorMarker = ".op_"

// pseudoPrimitiveKinds are keyword tokens that show up first in delegate signatures
// ("public delegate void Action()") and therefore mean Delegate.
var pseudoPrimitiveKinds = map[string]bool{
	"Void":   true,
	"Int":    true,
	"Bool":   true,
	"Object": true,
	"String": true,
}

var (
	kindKeywordPattern  = regexp.MustCompile(`([a-z]+) [^a-z]`)
	genericParamPattern = regexp.MustCompile(`[^<,]+(,|>)`)
)

// StripDocIDPrefix removes the one-letter kind marker and colon from a DocId.
// Strings without the "X:" shape are returned unchanged.
func StripDocIDPrefix(docID string) string {
	if len(docID) >= 2 && docID[1] == ':' {
		return docID[2:]
	}
	return docID
}

// MemberIdentifier converts a raw member DocId ("M:System.String.Trim") into the
// table identifier and the member bucket it belongs to. Methods whose identifier
// contains the operator marker are reclassified as operators. An unrecognized
// prefix yields MemberUnknown and an error describing it.
func MemberIdentifier(docID string) (string, MemberKind, error) {
	if len(docID) < 3 || docID[1] != ':' {
		return docID, MemberUnknown, fmt.Errorf("%w: malformed member id %q", ErrMalformedDocument, docID)
	}

	id := docID[2:]

	var kind MemberKind
	switch docID[0] {
	case 'F':
		kind = MemberField
	case 'P':
		kind = MemberProperty
	case 'M':
		kind = MemberMethod
	case 'E':
		kind = MemberEvent
	default:
		return id, MemberUnknown, fmt.Errorf("unknown member kind %q on member with id %q", docID[0], docID)
	}

	if kind == MemberMethod && strings.Contains(id, operatorMarker) {
		kind = MemberOperator
	}

	return id, kind, nil
}

// TypeFilePath maps an index type name to the relative location of its type file,
// without extension. Nested-type separators become '+' (the corpus file naming) and
// the last remaining dot, the one between namespace and type, becomes a directory
// separator: "System.Environment/SpecialFolder" -> "System/Environment+SpecialFolder".
func TypeFilePath(typeName string) string {
	name := strings.ReplaceAll(typeName, "/", "+")

	i := strings.LastIndex(name, ".")
	if i < 0 {
		return name
	}
	return name[:i] + "/" + name[i+1:]
}

// TypeKindFromSignature infers the structural kind of a type from its C# signature.
// The first lower-case keyword followed by a space and a non lower-case character
// wins ("public sealed class String" -> Class). Keywords that name primitive return
// types ("public delegate void Action()") resolve to Delegate. KindUnknown is
// returned when no keyword is found.
func TypeKindFromSignature(signature string) Kind {
	match := kindKeywordPattern.FindStringSubmatch(signature)
	if match == nil {
		return KindUnknown
	}

	keyword := strings.ToUpper(match[1][:1]) + match[1][1:]
	if pseudoPrimitiveKinds[keyword] {
		return KindDelegate
	}
	return Kind(keyword)
}

// BaseIdentifierFromDisplayName converts a base type display name into the corpus
// identifier syntax: "System.Lazy<T>" -> "System.Lazy`1", "Map<K,V>" -> "Map`2".
// Names without generic arguments are returned unchanged.
func BaseIdentifierFromDisplayName(name string) string {
	open := strings.Index(name, "<")
	if open < 0 {
		return name
	}

	arity := len(genericParamPattern.FindAllStringIndex(name, -1))
	return fmt.Sprintf("%s`%d", name[:open], arity)
}

// namespaceFilePath is the relative location of a namespace file
func namespaceFilePath(namespace string) string {
	return "xml/ns-" + namespace + ".xml"
}

// IndexFilePath is the relative location of the per-framework index file
func IndexFilePath(framework string) string {
	return "xml/FrameworksIndex/" + framework + ".xml"
}

// outputPath normalizes a fully-qualified name into a page path
func outputPath(name string) string {
	return strings.ToLower(strings.Replace(name, "+", ".", 1))
}
