// Package esi implements the ESI directive engine and the stream
// façade: it configures a streaming.Context with the ESI namespace and
// the <!--esi ... --> comment pre-processor, applies esi:include,
// esi:comment, esi:remove, esi:try/attempt/except, esi:choose/when/
// otherwise and esi:vars semantics to each completed top-level subtree,
// and recursively processes included fragments through a fresh Stream.
package esi

// Namespace is the ESI 1.0 namespace URI matched against resolved
// element namespaces, independent of whichever prefix a document maps
// to it.
const Namespace = "http://www.edge-delivery.org/esi/1.0"

// PrefixMode selects how the stream façade maps a namespace prefix
// onto Namespace (§4.8).
type PrefixMode int

const (
	// PrefixDefault declares the "esi" prefix mapped to Namespace.
	PrefixDefault PrefixMode = iota
	// PrefixCustom declares Options.EsiPrefix mapped to Namespace.
	PrefixCustom
	// PrefixDisabled declares no namespaces at all; the transformer
	// then matches no tags in the document.
	PrefixDisabled
)
