package variables

import "regexp"

// tokenPattern matches $(NAME{SUB}|default); SUB and default are both
// optional and independent of each other.
var tokenPattern = regexp.MustCompile(`\$\(([A-Za-z_][A-Za-z0-9_]*)(?:\{([^}]*)\})?(?:\|([^)]*))?\)`)

// Token is one parsed $(...) reference: its variable name, optional
// sub-key and optional default text.
type Token struct {
	Name    string
	Sub     string
	Default string
	HasSub  bool
	HasDef  bool
}

// ParseToken parses a single $(...) reference. ok is false if text is not
// a well-formed token.
func ParseToken(text string) (Token, bool) {
	m := tokenPattern.FindStringSubmatch(text)
	if m == nil || m[0] != text {
		return Token{}, false
	}
	return Token{Name: m[1], Sub: m[2], Default: m[3], HasSub: m[2] != "", HasDef: m[3] != ""}, true
}

// Representation resolves a variable (and optional sub-key) to its raw
// representation string: a quoted string, or the bare literal true/false.
// ok is false when the variable or sub-key is absent.
func Representation(vars Variables, name, sub string) (string, bool) {
	v, ok := vars.Get(name)
	if !ok {
		return "", false
	}
	if sub != "" {
		return v.SubValue(sub)
	}
	return v.Value()
}

// Resolve implements the full $(NAME{SUB}|default) rule: resolve the
// variable; if it is absent, empty, or the literal "false", fall back to
// the quoted default when present, else the empty representation.
func Resolve(vars Variables, tok Token) string {
	repr, ok := Representation(vars, tok.Name, tok.Sub)
	if !ok || repr == "" || repr == "''" || repr == "false" {
		if tok.HasDef {
			return tok.Default
		}
		return ""
	}
	return repr
}

// Substitute replaces every $(...) token in text with its resolved,
// unquoted value, per the text-substitution rules of section 4.5.
func Substitute(text string, vars Variables) string {
	if vars == nil {
		return text
	}
	return tokenPattern.ReplaceAllStringFunc(text, func(raw string) string {
		tok, ok := ParseToken(raw)
		if !ok {
			return raw
		}
		return stripQuotes(Resolve(vars, tok))
	})
}
