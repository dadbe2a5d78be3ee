package docs

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/antchfx/xmlquery"
)

// placeholderText is what the corpus uses for documentation nobody has written yet
const placeholderText = "To be added."

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// percentEscapes matches runs of well-formed %XX escapes
var percentEscapes = regexp.MustCompile(`(?:%[0-9A-Fa-f]{2})+`)

// extractDocs copies the summary, remarks and thread safety notes found under a
// <Docs> node into target. A nil node leaves target untouched.
func extractDocs(node *xmlquery.Node, target *Docs) {
	if node == nil {
		return
	}

	if text, ok := docText(xmlquery.FindOne(node, ".//summary")); ok {
		target.Summary = text
	}
	if text, ok := docText(xmlquery.FindOne(node, ".//remarks")); ok {
		target.Remarks = text
	}
	if text, ok := docText(xmlquery.FindOne(node, ".//threadsafe")); ok {
		target.ThreadSafety = text
	}
}

// docText returns the markup of a documentation slot, preferring a nested <format>
// block, trimmed and percent-decoded. The placeholder text counts as absent.
func docText(node *xmlquery.Node) (string, bool) {
	if node == nil {
		return "", false
	}

	if format := xmlquery.FindOne(node, ".//format"); format != nil {
		node = format
	}

	content := unescapePercent(strings.TrimSpace(innerMarkup(node)))

	if content == placeholderText {
		return "", false
	}
	return content, true
}

// unescapePercent decodes the well-formed escapes in s and leaves stray '%' and
// '+' characters alone
func unescapePercent(s string) string {
	return percentEscapes.ReplaceAllStringFunc(s, func(run string) string {
		decoded, err := url.PathUnescape(run)
		if err != nil {
			return run
		}
		return decoded
	})
}

// innerMarkup serializes the children of node. Text is escaped, CDATA sections are
// emitted raw (they carry markdown), elements keep their markup so cross-references
// survive for the resolver.
func innerMarkup(node *xmlquery.Node) string {
	var b strings.Builder
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case xmlquery.TextNode:
			textEscaper.WriteString(&b, child.Data)
		case xmlquery.CharDataNode:
			b.WriteString(child.Data)
		case xmlquery.ElementNode:
			b.WriteString(child.OutputXML(true))
		}
	}
	return b.String()
}
