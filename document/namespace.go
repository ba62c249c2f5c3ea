package document

import "github.com/esi-edge/esi/esierrors"

// ResolveNamespaces resolves the namespace of e and every descendant,
// using e's own xmlns declarations, then its ancestors', then the owning
// Document's. It must run after an element's attributes are fully parsed
// and before any transform reads Element.Namespace.
func ResolveNamespaces(e *Element) error {
	declareNamespaces(e)

	uri, ok := lookupNamespace(e, e.LocalPrefix)
	if !ok {
		if e.LocalPrefix != "" && !e.Document.AllowUnknownPrefixes() {
			return &esierrors.NamespaceError{Prefix: e.LocalPrefix}
		}
		uri = ""
	}
	e.Namespace = uri

	for _, a := range e.Attributes {
		if a.Prefix == "" {
			// Unprefixed attributes never inherit the default namespace.
			continue
		}

		auri, ok := lookupNamespace(e, a.Prefix)
		if !ok {
			if !e.Document.AllowUnknownPrefixes() {
				return &esierrors.NamespaceError{Prefix: a.Prefix}
			}
			auri = ""
		}
		a.Namespace = auri
	}

	for _, child := range e.Children {
		if celem, ok := child.(*Element); ok {
			if err := ResolveNamespaces(celem); err != nil {
				return err
			}
		}
	}

	return nil
}

// declareNamespaces extracts the xmlns / xmlns:prefix attributes of e into
// e.NamespaceDefs without removing them from Attributes, so serialization
// round-trips the declarations verbatim.
func declareNamespaces(e *Element) {
	if e.NamespaceDefs == nil {
		e.NamespaceDefs = map[string]string{}
	}

	for _, a := range e.Attributes {
		switch {
		case a.Prefix == "" && a.Local == "xmlns":
			e.NamespaceDefs[""] = a.Value
		case a.Prefix == "xmlns":
			e.NamespaceDefs[a.Local] = a.Value
		}
	}
}

func lookupNamespace(e *Element, prefix string) (string, bool) {
	for cur := e; cur != nil; cur = cur.Parent {
		if cur.NamespaceDefs != nil {
			if uri, ok := cur.NamespaceDefs[prefix]; ok {
				return uri, true
			}
		}
	}

	return e.Document.Namespace(prefix)
}
