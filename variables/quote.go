package variables

import "strings"

// quote renders s as a single-quoted string literal, backslash-escaping
// embedded quotes. This is the representation returned by Variable.Value
// and Variable.SubValue for non-boolean results.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('\'')
	return b.String()
}

// stripQuotes implements the "unquote" step applied when a variable
// representation is substituted into text or an attribute value: the
// literals true/false become empty strings, and a single-quoted
// representation has its quotes removed and its escapes undone. Anything
// else passes through unchanged.
func stripQuotes(s string) string {
	if s == "true" || s == "false" {
		return ""
	}
	return UnquoteLiteral(s)
}

// UnquoteLiteral strips the surrounding single quotes and undoes
// backslash-escaping from a Variable.Value/SubValue representation.
// Representations that are not quoted (including the bare literals
// true/false) pass through unchanged; callers that need the
// substitution-specific true/false-to-empty-string rule use
// stripQuotes instead.
func UnquoteLiteral(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return unescapeQuotes(s[1 : len(s)-1])
	}
	return s
}

func unescapeQuotes(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == '\'' {
			b.WriteByte('\'')
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
