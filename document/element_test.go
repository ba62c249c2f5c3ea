package document_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/esi-edge/esi/document"
)

// elementDiffOpts ignores Element's back-reference fields: Parent and
// Document form cycles that cmp otherwise refuses to walk.
var elementDiffOpts = cmpopts.IgnoreFields(document.Element{}, "Parent", "Document")

func TestElementAppendTextMergesAdjacentRuns(t *testing.T) {
	doc := document.New(nil, false)
	e := document.NewElement(doc, "", "p")
	e.AppendText("hello ")
	e.AppendText("world")

	want := &document.Element{
		LocalName: "p",
		Children:  []document.Node{document.NewText("hello world")},
	}
	if diff := cmp.Diff(want, e, elementDiffOpts); diff != "" {
		t.Fatalf("unexpected tree (-want +got):\n%s", diff)
	}
}

func TestElementAppendChildDoesNotMergeAcrossElement(t *testing.T) {
	doc := document.New(nil, false)
	e := document.NewElement(doc, "", "p")
	e.AppendText("a")
	e.AppendChild(document.NewElement(doc, "", "br"))
	e.AppendText("b")

	want := &document.Element{
		LocalName: "p",
		Children: []document.Node{
			document.NewText("a"),
			&document.Element{LocalName: "br"},
			document.NewText("b"),
		},
	}
	if diff := cmp.Diff(want, e, elementDiffOpts); diff != "" {
		t.Fatalf("unexpected tree (-want +got):\n%s", diff)
	}
}

func TestElementSetAttributeOverwritesInPlace(t *testing.T) {
	doc := document.New(nil, false)
	e := document.NewElement(doc, "", "a")
	e.SetAttribute("", "href", "/first")
	e.SetAttribute("", "class", "x")
	e.SetAttribute("", "href", "/second")

	want := &document.Element{
		LocalName: "a",
		Attributes: []*document.Attribute{
			{Local: "href", Value: "/second"},
			{Local: "class", Value: "x"},
		},
	}
	if diff := cmp.Diff(want, e, elementDiffOpts); diff != "" {
		t.Fatalf("unexpected attribute order/values (-want +got):\n%s", diff)
	}
}
