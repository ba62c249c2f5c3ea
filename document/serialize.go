package document

import "strings"

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// Serialize renders n and its descendants as XML text, per §6: an open
// tag takes the self-closing form when it has no children, otherwise
// it is followed by its serialized children and a matching close tag.
// Attribute values and text content are XML-entity encoded.
func Serialize(n Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

// SerializeChildren renders each of nodes in order, the form used to
// flatten a _replace wrapper or a stream's drained root children.
func SerializeChildren(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		writeNode(&b, n)
	}
	return b.String()
}

func writeNode(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case *Text:
		b.WriteString(textEscaper.Replace(v.Data))
	case *Element:
		writeElement(b, v)
	}
}

func writeElement(b *strings.Builder, e *Element) {
	b.WriteByte('<')
	b.WriteString(e.FullName())
	for _, a := range e.Attributes {
		b.WriteByte(' ')
		if a.Prefix != "" {
			b.WriteString(a.Prefix)
			b.WriteByte(':')
		}
		b.WriteString(a.Local)
		b.WriteString(`="`)
		b.WriteString(attrEscaper.Replace(a.Value))
		b.WriteByte('"')
	}

	if len(e.Children) == 0 {
		b.WriteString(" />")
		return
	}

	b.WriteByte('>')
	for _, c := range e.Children {
		writeNode(b, c)
	}
	b.WriteString("</")
	b.WriteString(e.FullName())
	b.WriteByte('>')
}
