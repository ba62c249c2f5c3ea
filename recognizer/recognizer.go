// Package recognizer implements the incremental, chunk-safe tag scanner:
// given the head of a growing character buffer, it classifies the next
// run as literal text, an open tag, a self-closing tag, a close tag, or
// "incomplete, await more bytes". It tolerates HTML-in-XML hybrids by
// never requiring the whole buffer to be valid XML, only the run it
// currently classifies.
package recognizer

import (
	"regexp"
	"strings"
)

// Attr is one parsed and entity-decoded tag attribute.
type Attr struct {
	Prefix string
	Local  string
	Value  string
}

// Event is the result of one Recognize call.
type Event interface{ event() }

// Text is a run of literal character data.
type Text struct{ Content string }

// Open is an opening tag; a matching Close is expected later.
type Open struct {
	Prefix string
	Local  string
	Attrs  []Attr
}

// SelfClose is a tag that opens and closes itself, e.g. <esi:include .../>.
type SelfClose struct {
	Prefix string
	Local  string
	Attrs  []Attr
}

// Close is a closing tag.
type Close struct {
	Prefix string
	Local  string
}

// Unknown means the head of the buffer might still become a tag but isn't
// complete yet; the caller must keep the bytes and wait for more input.
type Unknown struct{}

func (Text) event()      {}
func (Open) event()      {}
func (SelfClose) event() {}
func (Close) event()     {}
func (Unknown) event()   {}

const namePattern = `[A-Za-z][-A-Za-z0-9]*`

var (
	reFullName  = regexp.MustCompile(`^` + namePattern + `(?::` + namePattern + `)?`)
	reCloseTag  = regexp.MustCompile(`^</(` + namePattern + `)(?::(` + namePattern + `))?\s*>`)
	reAttr      = regexp.MustCompile(`^\s+(` + namePattern + `)(?::(` + namePattern + `))?\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	reOpenTail  = regexp.MustCompile(`^\s*(/)?>`)
	entityTable = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&quot;", "\"", "&apos;", "'", "&amp;", "&")
)

// Recognize classifies the head of buf. It returns the recognized event
// and the bytes remaining after it (to be fed back into the next call).
// When ignoreDefaultTags is set, an otherwise-valid unprefixed tag is
// emitted as Text covering its whole source span instead of Open/Close/
// SelfClose, so default-namespace HTML passes through untouched.
func Recognize(buf string, ignoreDefaultTags bool) (Event, string) {
	if buf == "" {
		return Unknown{}, buf
	}

	idx := strings.IndexByte(buf, '<')
	if idx < 0 {
		return Text{Content: buf}, ""
	}
	if idx > 0 {
		return Text{Content: buf[:idx]}, buf[idx:]
	}

	// buf[0] == '<'
	if len(buf) < 2 {
		return Unknown{}, buf
	}

	if buf[1] == '/' {
		return recognizeClose(buf, ignoreDefaultTags)
	}

	if isNameStart(buf[1]) {
		return recognizeOpenOrSelfClose(buf, ignoreDefaultTags)
	}

	// Not a recognizable tag start (comment, bogus markup, stray '<').
	// Advance by one so scanning can resynchronize.
	return Text{Content: buf[:1]}, buf[1:]
}

func isNameStart(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z'
}

func recognizeClose(buf string, ignoreDefaultTags bool) (Event, string) {
	if m := reCloseTag.FindStringSubmatchIndex(buf); m != nil {
		prefix, local := prefixLocal(buf, m)
		if ignoreDefaultTags && prefix == "" {
			return Text{Content: buf[:m[1]]}, buf[m[1]:]
		}
		return Close{Prefix: prefix, Local: local}, buf[m[1]:]
	}

	if hasUnquotedGT(buf) {
		return Text{Content: buf[:1]}, buf[1:]
	}
	return Unknown{}, buf
}

func recognizeOpenOrSelfClose(buf string, ignoreDefaultTags bool) (Event, string) {
	nameEnd := reFullName.FindStringIndex(buf[1:])
	if nameEnd == nil {
		return Text{Content: buf[:1]}, buf[1:]
	}

	prefix, local := splitFullName(buf[1 : 1+nameEnd[1]])
	rest := buf[1+nameEnd[1]:]

	var attrs []Attr
	consumed := 1 + nameEnd[1]
	for {
		m := reAttr.FindStringSubmatchIndex(rest)
		if m == nil {
			break
		}

		aPrefix, aLocal := "", rest[m[2]:m[3]]
		if m[4] >= 0 {
			aPrefix, aLocal = rest[m[2]:m[3]], rest[m[4]:m[5]]
		}

		var raw string
		if m[6] >= 0 {
			raw = rest[m[6]:m[7]]
		} else {
			raw = rest[m[8]:m[9]]
		}

		attrs = append(attrs, Attr{Prefix: aPrefix, Local: aLocal, Value: decodeEntities(raw)})
		rest = rest[m[1]:]
		consumed += m[1]
	}

	tail := reOpenTail.FindStringSubmatchIndex(rest)
	if tail == nil {
		if hasUnquotedGT(buf[consumed:]) {
			return Text{Content: buf[:1]}, buf[1:]
		}
		return Unknown{}, buf
	}

	selfClosing := tail[2] >= 0
	total := consumed + tail[1]

	if ignoreDefaultTags && prefix == "" {
		return Text{Content: buf[:total]}, buf[total:]
	}

	if selfClosing {
		return SelfClose{Prefix: prefix, Local: local, Attrs: attrs}, buf[total:]
	}
	return Open{Prefix: prefix, Local: local, Attrs: attrs}, buf[total:]
}

func prefixLocal(buf string, m []int) (string, string) {
	if m[4] >= 0 {
		return buf[m[2]:m[3]], buf[m[4]:m[5]]
	}
	return "", buf[m[2]:m[3]]
}

func splitFullName(name string) (prefix, local string) {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// hasUnquotedGT reports whether buf contains a '>' outside of a quoted
// attribute value. It is used to decide whether a tag-like run that
// doesn't yet match the grammar could still become valid with more bytes
// (no unquoted '>' seen) or is definitively not a recognized tag.
func hasUnquotedGT(buf string) bool {
	var inSingle, inDouble bool
	for i := 0; i < len(buf); i++ {
		switch c := buf[i]; {
		case c == '"' && !inSingle:
			inDouble = !inDouble
		case c == '\'' && !inDouble:
			inSingle = !inSingle
		case c == '>' && !inSingle && !inDouble:
			return true
		}
	}
	return false
}

func decodeEntities(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	return entityTable.Replace(s)
}
