// Package document provides the in-memory element tree built while
// streaming HTML/ESI content: a Document carries the namespace prefix
// table, and Elements carry resolved namespaces, attributes and children
// suitable for transform passes.
package document

// Document is a namespace prefix table shared by every Element parsed
// under it. It is immutable after construction.
type Document struct {
	namespaces           map[string]string
	allowUnknownPrefixes bool
}

// New creates a Document with the given prefix->URI declarations. An empty
// string key declares the default (unprefixed) namespace. When
// allowUnknownPrefixes is false, resolving an undeclared prefix fails with
// esierrors.NamespaceError.
func New(namespaces map[string]string, allowUnknownPrefixes bool) *Document {
	ns := make(map[string]string, len(namespaces))
	for k, v := range namespaces {
		ns[k] = v
	}

	return &Document{
		namespaces:           ns,
		allowUnknownPrefixes: allowUnknownPrefixes,
	}
}

// Namespace returns the URI declared for prefix at the document level.
func (d *Document) Namespace(prefix string) (string, bool) {
	if d == nil {
		return "", false
	}

	uri, ok := d.namespaces[prefix]
	return uri, ok
}

// AllowUnknownPrefixes reports whether unresolved prefixes resolve to the
// empty namespace instead of failing.
func (d *Document) AllowUnknownPrefixes() bool {
	return d != nil && d.allowUnknownPrefixes
}
