package document_test

import (
	"testing"

	"github.com/esi-edge/esi/document"
)

func newResolved(t *testing.T, ns map[string]string, build func(doc *document.Document) *document.Element) *document.Element {
	t.Helper()
	doc := document.New(ns, false)
	el := build(doc)
	if err := document.ResolveNamespaces(el); err != nil {
		t.Fatalf("ResolveNamespaces: %v", err)
	}
	return el
}

func TestSerializeEmptyChildrenIsSelfClosing(t *testing.T) {
	el := newResolved(t, nil, func(doc *document.Document) *document.Element {
		e := document.NewElement(doc, "", "br")
		e.SetAttribute("", "class", "x")
		return e
	})

	got := document.Serialize(el)
	want := `<br class="x" />`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSerializeWithChildrenUsesOpenAndCloseTags(t *testing.T) {
	el := newResolved(t, nil, func(doc *document.Document) *document.Element {
		e := document.NewElement(doc, "", "p")
		e.AppendText("hello")
		return e
	})

	got := document.Serialize(el)
	want := `<p>hello</p>`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSerializeEscapesTextAndAttributes(t *testing.T) {
	el := newResolved(t, nil, func(doc *document.Document) *document.Element {
		e := document.NewElement(doc, "", "a")
		e.SetAttribute("", "title", `a "quote" & 'apos' <tag>`)
		e.AppendText("<b> & </b>")
		return e
	})

	got := document.Serialize(el)
	want := `<a title="a &quot;quote&quot; &amp; &apos;apos&apos; &lt;tag&gt;">&lt;b&gt; &amp; &lt;/b&gt;</a>`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSerializeChildrenConcatenatesSiblings(t *testing.T) {
	doc := document.New(nil, false)
	a := document.NewElement(doc, "", "a")
	b := document.NewText(" and ")
	c := document.NewElement(doc, "", "c")
	for _, e := range []*document.Element{a, c} {
		if err := document.ResolveNamespaces(e); err != nil {
			t.Fatalf("ResolveNamespaces: %v", err)
		}
	}

	got := document.SerializeChildren([]document.Node{a, b, c})
	want := `<a /> and <c />`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSerializePrefixedElementRoundTripsName(t *testing.T) {
	el := newResolved(t, map[string]string{"esi": "http://www.edge-delivery.org/esi/1.0"},
		func(doc *document.Document) *document.Element {
			return document.NewElement(doc, "esi", "remove")
		})

	got := document.Serialize(el)
	want := `<esi:remove />`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
