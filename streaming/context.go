// Package streaming implements the chunk-by-chunk document builder: it
// owns the pending character buffer and open-element stack, drives the
// recognizer over each appended chunk, and exposes completed top-level
// nodes to the caller as they close. It has no notion of ESI; the ESI
// stream façade (package esi) configures it with an ignore-default-tags
// flag and a pre-processing hook for <!--esi ... --> stripping.
package streaming

import (
	"github.com/esi-edge/esi/document"
	"github.com/esi-edge/esi/esierrors"
	"github.com/esi-edge/esi/recognizer"
)

// Buffer is the mutable pre-processing view handed to a PreProcessFunc:
// it may rewrite Text in place and carve a trailing partial marker off
// into Postponed, to be re-prepended ahead of the next appended chunk.
type Buffer struct {
	Text      string
	Postponed string
}

// PreProcessFunc runs once per Append, before the recognizer sees the
// buffer. The ESI-comment pre-processor (§4.4) is the motivating case.
type PreProcessFunc func(*Buffer)

// Context is the streaming document builder described in §4.3.
type Context struct {
	Doc               *document.Document
	IgnoreDefaultTags bool
	PreProcess        PreProcessFunc

	bufferedText  string
	postponedText string
	openElements  []*document.Element
	rootChildren  []document.Node
}

// New creates an empty Context over doc.
func New(doc *document.Document, ignoreDefaultTags bool, preProcess PreProcessFunc) *Context {
	return &Context{Doc: doc, IgnoreDefaultTags: ignoreDefaultTags, PreProcess: preProcess}
}

// Append feeds text into the context: it is prepended with any
// postponed text from a prior call, then the recognizer runs
// repeatedly over the head of the buffer until it reports Unknown
// (await more bytes) or the buffer is exhausted.
func (c *Context) Append(text string) error {
	c.bufferedText = c.bufferedText + c.postponedText + text
	c.postponedText = ""

	if c.PreProcess != nil {
		buf := &Buffer{Text: c.bufferedText}
		c.PreProcess(buf)
		c.bufferedText = buf.Text
		c.postponedText = buf.Postponed
	}

	if err := c.drive(); err != nil {
		return err
	}
	return c.resolveOpen()
}

// drive runs the recognizer over c.bufferedText until it can make no
// further progress without more input.
func (c *Context) drive() error {
	for c.bufferedText != "" {
		ev, rest := recognizer.Recognize(c.bufferedText, c.IgnoreDefaultTags)

		switch e := ev.(type) {
		case recognizer.Unknown:
			return nil

		case recognizer.Text:
			c.bufferedText = rest
			c.appendText(e.Content)

		case recognizer.Open:
			c.bufferedText = rest
			c.openTag(e.Prefix, e.Local, e.Attrs, false)

		case recognizer.SelfClose:
			c.bufferedText = rest
			c.openTag(e.Prefix, e.Local, e.Attrs, true)

		case recognizer.Close:
			c.bufferedText = rest
			if err := c.closeTag(e.Prefix, e.Local); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Context) current() *document.Element {
	if n := len(c.openElements); n > 0 {
		return c.openElements[n-1]
	}
	return nil
}

func (c *Context) appendText(content string) {
	if top := c.current(); top != nil {
		top.AppendText(content)
		return
	}
	c.appendRoot(document.NewText(content))
}

// appendRoot appends n to the root children, merging into a preceding
// *Text node the same way Element.AppendText does, since the root
// itself isn't an *Element.
func (c *Context) appendRoot(n document.Node) {
	if t, ok := n.(*document.Text); ok {
		if l := len(c.rootChildren); l > 0 {
			if prev, ok := c.rootChildren[l-1].(*document.Text); ok {
				prev.Data += t.Data
				return
			}
		}
	}
	c.rootChildren = append(c.rootChildren, n)
}

func (c *Context) openTag(prefix, local string, attrs []recognizer.Attr, selfClosing bool) {
	el := document.NewElement(c.Doc, prefix, local)
	for _, a := range attrs {
		el.SetAttribute(a.Prefix, a.Local, a.Value)
	}

	if top := c.current(); top != nil {
		top.AppendChild(el)
	} else {
		c.appendRoot(el)
	}

	if !selfClosing {
		c.openElements = append(c.openElements, el)
	}
}

func (c *Context) closeTag(prefix, local string) error {
	if len(c.openElements) == 0 {
		return &esierrors.RecognizerError{Kind: "closing-empty-stack", Name: fullName(prefix, local)}
	}

	top := c.openElements[len(c.openElements)-1]
	if top.LocalPrefix != prefix || top.LocalName != local {
		return &esierrors.RecognizerError{Kind: "closing-unmatched", Name: fullName(prefix, local)}
	}

	c.openElements = c.openElements[:len(c.openElements)-1]
	return nil
}

func fullName(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}

// resolveOpen resolves namespaces on every root child, including one
// still open at the top level; ResolveNamespaces is idempotent, so
// repeating it on a subtree that keeps growing across Append calls is
// harmless and keeps resolved namespaces available to any caller that
// inspects the tree mid-stream.
func (c *Context) resolveOpen() error {
	for _, n := range c.rootChildren {
		el, ok := n.(*document.Element)
		if !ok {
			continue
		}
		if err := document.ResolveNamespaces(el); err != nil {
			return err
		}
	}
	return nil
}

// Flush finalizes any remaining buffered text as a trailing text node.
// If force is set, the open-element stack is cleared unconditionally,
// so every partially built subtree becomes drainable as-is; otherwise
// an element left open is a caller error the next Append will likely
// surface as the stream simply never completing.
func (c *Context) Flush(force bool) error {
	if c.bufferedText != "" {
		c.appendText(c.bufferedText)
		c.bufferedText = ""
	}
	if force {
		c.openElements = nil
	}
	return c.resolveOpen()
}

// Drain returns and removes every fully completed top-level node: all
// of rootChildren, except a still-open element left dangling at the
// end (the bottom of the open-element stack, when non-empty — the
// only root child that can still be growing, since new root content
// cannot begin while the stack is non-empty).
func (c *Context) Drain() []document.Node {
	n := len(c.rootChildren)
	if len(c.openElements) > 0 {
		n--
	}
	if n <= 0 {
		return nil
	}

	done := c.rootChildren[:n]
	c.rootChildren = c.rootChildren[n:]
	return done
}
