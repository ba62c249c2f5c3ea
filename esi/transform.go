package esi

import (
	"errors"

	"github.com/esi-edge/esi/document"
	"github.com/esi-edge/esi/esierrors"
	"github.com/esi-edge/esi/exprlang"
	"github.com/esi-edge/esi/variables"
)

// transformNodes implements §4.7's build_transform over a slice of
// sibling nodes, with applyVars carrying whether the enclosing scope has
// variable substitution enabled. transform.Build/Walk only ever visit
// *document.Element children, never *document.Text (see transform/walk.go),
// so apply_vars scoping — which must reach into Text nodes — is driven
// here directly rather than through that generic walker: recursion
// through transformNodes/transformElement threads applyVars down the
// call stack and restores the caller's value on return for free, one
// frame per ESI scope boundary.
func (s *Stream) transformNodes(nodes []document.Node, applyVars bool) ([]document.Node, error) {
	var out []document.Node
	for _, n := range nodes {
		switch v := n.(type) {
		case *document.Text:
			if applyVars {
				out = append(out, document.NewText(variables.Substitute(v.Data, s.vars)))
			} else {
				out = append(out, v)
			}
		case *document.Element:
			replaced, err := s.transformElement(v, applyVars)
			if err != nil {
				return nil, err
			}
			out = append(out, replaced...)
		}
	}
	return out, nil
}

func (s *Stream) transformElement(el *document.Element, applyVars bool) ([]document.Node, error) {
	if el.Namespace != Namespace {
		children, err := s.transformNodes(el.Children, applyVars)
		if err != nil {
			return nil, err
		}
		el.Children = children
		return []document.Node{el}, nil
	}

	s.logger.WithField("tag", "esi:"+el.LocalName).Debug("dispatching esi directive")

	switch el.LocalName {
	case "comment", "remove":
		return nil, nil

	case "include":
		return s.transformInclude(el)

	case "try":
		return s.transformTry(el)

	case "attempt", "except":
		return nil, &esierrors.StructureError{
			Message: "esi:" + el.LocalName + " outside esi:try", LocalName: el.LocalName,
		}

	case "vars":
		return s.transformNodes(el.Children, true)

	case "choose":
		return s.transformChoose(el)

	case "when", "otherwise":
		return nil, &esierrors.StructureError{
			Message: "esi:" + el.LocalName + " outside esi:choose", LocalName: el.LocalName,
		}

	default:
		return nil, &esierrors.StructureError{
			Message: "unknown esi tag esi:" + el.LocalName, LocalName: el.LocalName,
		}
	}
}

func (s *Stream) transformTry(el *document.Element) ([]document.Node, error) {
	var attempt, except *document.Element
	for _, c := range el.Children {
		ce, ok := c.(*document.Element)
		if !ok || ce.Namespace != Namespace {
			continue
		}
		switch ce.LocalName {
		case "attempt":
			if attempt != nil {
				return nil, &esierrors.StructureError{Message: "esi:try has more than one esi:attempt", LocalName: "try"}
			}
			attempt = ce
		case "except":
			if except != nil {
				return nil, &esierrors.StructureError{Message: "esi:try has more than one esi:except", LocalName: "try"}
			}
			except = ce
		}
	}
	if attempt == nil || except == nil {
		return nil, &esierrors.StructureError{
			Message: "esi:try requires exactly one esi:attempt and one esi:except", LocalName: "try",
		}
	}

	result, err := s.transformNodes(attempt.Children, true)
	if err != nil {
		var incErr *esierrors.IncludeError
		if errors.As(err, &incErr) {
			s.logger.WithField("cause", incErr.Error()).Warn("esi:try recovered an include failure")
			return s.transformNodes(except.Children, true)
		}
		return nil, err
	}
	return result, nil
}

func (s *Stream) transformChoose(el *document.Element) ([]document.Node, error) {
	var whens []*document.Element
	var otherwise *document.Element
	for _, c := range el.Children {
		ce, ok := c.(*document.Element)
		if !ok || ce.Namespace != Namespace {
			continue
		}
		switch ce.LocalName {
		case "when":
			whens = append(whens, ce)
		case "otherwise":
			if otherwise != nil {
				return nil, &esierrors.StructureError{Message: "esi:choose has more than one esi:otherwise", LocalName: "choose"}
			}
			otherwise = ce
		}
	}
	if len(whens) == 0 {
		return nil, &esierrors.StructureError{Message: "esi:choose requires at least one esi:when", LocalName: "choose"}
	}

	for _, w := range whens {
		test, ok := w.Attribute("", "test")
		if !ok {
			return nil, &esierrors.StructureError{Message: "esi:when requires a test attribute", LocalName: "when"}
		}

		ok, err := exprlang.Evaluate(test.Value, s.vars)
		if err != nil {
			s.metrics.ExpressionError()
			s.logger.WithField("expr", test.Value).WithField("error", err.Error()).Warn("malformed esi:when test")
			continue
		}
		if ok {
			return s.transformNodes(w.Children, true)
		}
	}

	if otherwise != nil {
		return s.transformNodes(otherwise.Children, true)
	}
	return nil, nil
}
