package document

// Reserved local names used by the transform builder (see package
// transform). They never appear in parsed input; the recognizer's tag
// name grammar (leading letter) cannot produce them.
const (
	RootName    = "_root"
	ReplaceName = "_replace"
)

// Node is either an *Element or a *Text.
type Node interface {
	node()
}

// Text is a run of character data between tags.
type Text struct {
	Data string
}

func (*Text) node() {}

// NewText returns a *Text node, useful for transform replacements.
func NewText(data string) *Text { return &Text{Data: data} }

// Attribute is a single attribute of an Element. Namespace is populated by
// ResolveNamespaces and is empty for unprefixed attributes, which are
// never subject to default-namespace inheritance per XML Namespaces.
type Attribute struct {
	Prefix    string
	Namespace string
	Local     string
	Value     string
}

// Element is a node in the tree: a tag with attributes, children and a
// back-reference to its parent. Parent is not an ownership edge; children
// are owned top-down via Children.
type Element struct {
	LocalName     string
	LocalPrefix   string
	Namespace     string
	Attributes    []*Attribute
	NamespaceDefs map[string]string
	Children      []Node
	Parent        *Element
	Document      *Document
}

func (*Element) node() {}

// NewElement creates a detached element bound to doc. Namespace is left
// unresolved until ResolveNamespaces runs.
func NewElement(doc *Document, prefix, local string) *Element {
	return &Element{
		LocalName:   local,
		LocalPrefix: prefix,
		Document:    doc,
	}
}

// FullName renders "prefix:local", or just "local" when unprefixed.
func (e *Element) FullName() string {
	if e.LocalPrefix == "" {
		return e.LocalName
	}
	return e.LocalPrefix + ":" + e.LocalName
}

// AppendChild appends n to e's children and, if n is an *Element, sets its
// Parent back-reference.
func (e *Element) AppendChild(n Node) {
	if child, ok := n.(*Element); ok {
		child.Parent = e
	}
	e.Children = append(e.Children, n)
}

// AppendText appends data to the last child if it is a *Text, merging
// adjacent text runs instead of creating a new node.
func (e *Element) AppendText(data string) {
	if data == "" {
		return
	}
	if n := len(e.Children); n > 0 {
		if t, ok := e.Children[n-1].(*Text); ok {
			t.Data += data
			return
		}
	}
	e.AppendChild(NewText(data))
}

// SetAttribute records an attribute in declaration order. A later call
// with the same prefix/local overwrites the value in place.
func (e *Element) SetAttribute(prefix, local, value string) {
	for _, a := range e.Attributes {
		if a.Prefix == prefix && a.Local == local {
			a.Value = value
			return
		}
	}
	e.Attributes = append(e.Attributes, &Attribute{Prefix: prefix, Local: local, Value: value})
}

// Attribute returns the attribute matching the resolved namespace and
// local name, after ResolveNamespaces has run.
func (e *Element) Attribute(namespace, local string) (*Attribute, bool) {
	for _, a := range e.Attributes {
		if a.Namespace == namespace && a.Local == local {
			return a, true
		}
	}
	return nil, false
}

// AttributeByPrefix returns the attribute matching the unresolved prefix
// and local name, usable before ResolveNamespaces runs.
func (e *Element) AttributeByPrefix(prefix, local string) (*Attribute, bool) {
	for _, a := range e.Attributes {
		if a.Prefix == prefix && a.Local == local {
			return a, true
		}
	}
	return nil, false
}
