package transform_test

import (
	"testing"

	"github.com/esi-edge/esi/document"
	"github.com/esi-edge/esi/transform"
)

func el(doc *document.Document, local string, children ...document.Node) *document.Element {
	e := document.NewElement(doc, "", local)
	for _, c := range children {
		e.AppendChild(c)
	}
	return e
}

func TestBuildUnchangedDescends(t *testing.T) {
	doc := document.New(nil, true)
	var seen []string
	apply := transform.Build(doc, func(e, _ *document.Element) (transform.Result, error) {
		seen = append(seen, e.LocalName)
		return transform.Unchanged(), nil
	})

	root := el(doc, "a", el(doc, "b"), el(doc, "c"))
	out, err := apply(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 visits, got %v", seen)
	}
	if len(out.Children) != 1 {
		t.Fatalf("expected single wrapped child, got %d", len(out.Children))
	}
}

func TestBuildRemove(t *testing.T) {
	doc := document.New(nil, true)
	apply := transform.Build(doc, func(e, _ *document.Element) (transform.Result, error) {
		if e.LocalName == "drop" {
			return transform.Removed(), nil
		}
		return transform.Unchanged(), nil
	})

	root := el(doc, "a", el(doc, "drop"), el(doc, "keep"))
	out, err := apply(root)
	if err != nil {
		t.Fatal(err)
	}
	a := out.Children[0].(*document.Element)
	if len(a.Children) != 1 {
		t.Fatalf("expected 1 remaining child, got %d", len(a.Children))
	}
	if a.Children[0].(*document.Element).LocalName != "keep" {
		t.Fatalf("expected 'keep' to survive, got %+v", a.Children[0])
	}
}

func TestBuildSpliceFlattensIntoParent(t *testing.T) {
	doc := document.New(nil, true)
	apply := transform.Build(doc, func(e, _ *document.Element) (transform.Result, error) {
		if e.LocalName == "choose" {
			return transform.SpliceWith([]document.Node{
				document.NewText("x"), document.NewText("y"),
			}), nil
		}
		return transform.Unchanged(), nil
	})

	root := el(doc, "a", el(doc, "choose"))
	out, err := apply(root)
	if err != nil {
		t.Fatal(err)
	}
	a := out.Children[0].(*document.Element)
	if len(a.Children) != 2 {
		t.Fatalf("expected 2 spliced children, got %d: %+v", len(a.Children), a.Children)
	}
	if a.Children[0].(*document.Text).Data != "x" || a.Children[1].(*document.Text).Data != "y" {
		t.Fatalf("unexpected spliced content: %+v", a.Children)
	}
}

func TestBuildReplaceDoesNotDescend(t *testing.T) {
	doc := document.New(nil, true)
	var visited []string
	apply := transform.Build(doc, func(e, _ *document.Element) (transform.Result, error) {
		visited = append(visited, e.LocalName)
		if e.LocalName == "swap" {
			return transform.ReplaceWith(document.NewText("swapped")), nil
		}
		return transform.Unchanged(), nil
	})

	root := el(doc, "a", el(doc, "swap", el(doc, "never-visited")))
	out, err := apply(root)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range visited {
		if v == "never-visited" {
			t.Fatalf("descended into replaced subtree: %v", visited)
		}
	}
	a := out.Children[0].(*document.Element)
	if a.Children[0].(*document.Text).Data != "swapped" {
		t.Fatalf("expected swapped text, got %+v", a.Children[0])
	}
}
