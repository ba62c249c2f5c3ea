package transform

import "github.com/esi-edge/esi/document"

// ResultKind tags which replacement a Func chose for an element.
type ResultKind int

const (
	// ResultUnchanged leaves the element in place and lets the walk
	// descend into its children.
	ResultUnchanged ResultKind = iota
	// ResultRemove drops the element entirely.
	ResultRemove
	// ResultReplace substitutes the element with a single node.
	ResultReplace
	// ResultSplice substitutes the element with a list of nodes, spliced
	// into the parent's children at its former position.
	ResultSplice
)

// Result is what a Func returns for one encountered element.
type Result struct {
	Kind  ResultKind
	Node  document.Node
	Nodes []document.Node
}

// Unchanged leaves el in place; the walk descends into its children.
func Unchanged() Result { return Result{Kind: ResultUnchanged} }

// Removed drops el from the tree.
func Removed() Result { return Result{Kind: ResultRemove} }

// ReplaceWith substitutes el with a single node and does not descend into it.
func ReplaceWith(n document.Node) Result { return Result{Kind: ResultReplace, Node: n} }

// SpliceWith substitutes el with a list of nodes spliced at its position,
// and does not descend into any of them.
func SpliceWith(nodes []document.Node) Result { return Result{Kind: ResultSplice, Nodes: nodes} }

// Func is invoked for every non-root element encountered by a transform
// built with Build. It may read and mutate el freely; its Result decides
// whether the walk descends into el's original children.
type Func func(el, parent *document.Element) (Result, error)

// Build returns a function that applies fn to every element of a tree,
// pre-order, starting from a synthetic _root wrapping the argument. Any
// Result other than Unchanged prevents descent into that element's
// (original) children. After the walk, _replace wrappers introduced by
// SpliceWith/Removed are flattened into their parent's children list, the
// same splice the serializer performs, so callers never observe the
// sentinel.
func Build(doc *document.Document, fn Func) func(*document.Element) (*document.Element, error) {
	return func(el *document.Element) (*document.Element, error) {
		root := document.NewElement(doc, "", document.RootName)
		root.AppendChild(el)

		var applyErr error
		before := func(e *document.Element) Signal {
			if e == root {
				return Continue
			}

			parent := e.Parent
			res, err := fn(e, parent)
			if err != nil {
				applyErr = err
				return Stop
			}

			if res.Kind == ResultUnchanged {
				return Continue
			}

			replaceChild(parent, e, resultToReplacement(doc, res))
			return StopRecursion
		}

		if _, err := Walk(root, before, nil); err != nil && !IsStop(err) {
			return nil, err
		}
		if applyErr != nil {
			return nil, applyErr
		}

		flattenReplace(root)
		return root, nil
	}
}

// resultToReplacement renders a non-Unchanged Result as the single node
// that should sit at e's former position: an empty _replace wrapper
// for Removed, the node itself for Replace, or a _replace wrapper
// holding the nodes for Splice.
func resultToReplacement(doc *document.Document, res Result) document.Node {
	switch res.Kind {
	case ResultRemove:
		return newReplace(doc, nil)
	case ResultReplace:
		return res.Node
	case ResultSplice:
		return newReplace(doc, res.Nodes)
	default:
		return nil
	}
}

func newReplace(doc *document.Document, nodes []document.Node) *document.Element {
	wrapper := document.NewElement(doc, "", document.ReplaceName)
	for _, n := range nodes {
		wrapper.AppendChild(n)
	}
	return wrapper
}

func replaceChild(parent *document.Element, old *document.Element, replacement document.Node) {
	if parent == nil {
		return
	}
	for i, c := range parent.Children {
		if c == document.Node(old) {
			if replacement == nil {
				parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			} else {
				if celem, ok := replacement.(*document.Element); ok {
					celem.Parent = parent
				}
				parent.Children[i] = replacement
			}
			return
		}
	}
}

// flattenReplace splices every _replace element's children into its
// parent's children at its own position, recursively, so no _replace
// sentinel survives in the returned tree.
func flattenReplace(e *document.Element) {
	var out []document.Node
	changed := false

	for _, c := range e.Children {
		celem, ok := c.(*document.Element)
		if !ok {
			out = append(out, c)
			continue
		}

		flattenReplace(celem)

		if celem.LocalName == document.ReplaceName && celem.LocalPrefix == "" {
			changed = true
			for _, gc := range celem.Children {
				if gcElem, ok := gc.(*document.Element); ok {
					gcElem.Parent = e
				}
				out = append(out, gc)
			}
			continue
		}

		out = append(out, c)
	}

	if changed {
		e.Children = out
	}
}
