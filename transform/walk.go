// Package transform provides the generic pre-order/post-order tree walk
// and the transform-builder primitive that lets a callback replace an
// element with nothing, one node, or many, used by the ESI transformer.
package transform

import "github.com/esi-edge/esi/document"

// Signal is returned by a Before callback to control descent.
type Signal int

const (
	// Continue descends into the node's children as usual.
	Continue Signal = iota
	// Stop halts the whole traversal immediately.
	Stop
	// StopRecursion skips this node's subtree but continues with siblings.
	StopRecursion
)

// Before runs pre-order. The returned Signal controls whether/how the
// walk continues.
type Before func(e *document.Element) Signal

// After runs post-order, receiving the values returned by the After
// calls of this node's element children, and may produce this node's
// own result.
type After func(e *document.Element, childResults []any) any

// cycleGuard detects revisits of the same element within one root-to-leaf
// path, since Parent/Children form a graph that must stay acyclic.
type cycleGuard map[*document.Element]bool

// Walk performs a depth-first traversal of root. before runs pre-order;
// after runs post-order and its return value is threaded to the parent's
// After call as part of childResults. Walk fails if it detects a cycle in
// the children/parent graph.
func Walk(root *document.Element, before Before, after After) (any, error) {
	return walk(root, before, after, cycleGuard{})
}

func walk(e *document.Element, before Before, after After, seen cycleGuard) (any, error) {
	if seen[e] {
		return nil, errCycle{e}
	}
	seen[e] = true
	defer delete(seen, e)

	sig := Continue
	if before != nil {
		sig = before(e)
	}

	if sig == Stop {
		return nil, errStop{}
	}

	var childResults []any
	if sig != StopRecursion {
		for _, child := range e.Children {
			celem, ok := child.(*document.Element)
			if !ok {
				continue
			}

			r, err := walk(celem, before, after, seen)
			if err != nil {
				if _, ok := err.(errStop); ok {
					return nil, err
				}
				return nil, err
			}
			childResults = append(childResults, r)
		}
	}

	if after != nil {
		return after(e, childResults), nil
	}
	return nil, nil
}

type errCycle struct{ e *document.Element }

func (errCycle) Error() string { return "cycle detected in element tree" }

type errStop struct{}

func (errStop) Error() string { return "walk stopped" }

// IsStop reports whether err was produced by a Before callback returning
// Stop, as opposed to a genuine traversal failure.
func IsStop(err error) bool {
	_, ok := err.(errStop)
	return ok
}
