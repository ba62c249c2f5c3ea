package exprlang

import (
	"errors"
	"regexp"
	"strings"

	"github.com/esi-edge/esi/esierrors"
)

type tokenID int

const (
	tEOF tokenID = iota
	tNumber
	tString
	tBool
	tVariable
	tAnd
	tOr
	tNot
	tEq
	tNe
	tLt
	tLe
	tGt
	tGe
	tLParen
	tRParen
)

type token struct {
	id  tokenID
	val string
}

type charPredicate func(byte) bool

func isWhitespace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool      { return c >= '0' && c <= '9' }

func scanWhile(code string, p charPredicate) (string, string) {
	i := 0
	for i < len(code) && p(code[i]) {
		i++
	}
	return code[:i], code[i:]
}

func scanWhitespace(code string) string {
	_, rest := scanWhile(code, isWhitespace)
	return rest
}

// scanNumber accepts a run of digits with at most one decimal point,
// mirroring the parse_as_number quirk: the lexer admits fractional
// literals, even though the evaluator only ever uses their integer
// prefix in arithmetic comparisons.
func scanNumber(code string) (t token, rest string, err error) {
	decimal := false
	i := 0
	for i < len(code) {
		c := code[i]
		if c == '.' {
			if decimal {
				break
			}
			decimal = true
			i++
			continue
		}
		if !isDigit(c) {
			break
		}
		i++
	}

	if i == 0 || code[i-1] == '.' {
		return token{}, code, errors.New("incomplete number literal")
	}

	t.id = tNumber
	t.val = code[:i]
	rest = code[i:]
	return
}

// stringLiteral matches a single-quoted string that requires at least
// one character before the closing quote — by design an empty pair of
// quotes '' does not lex as a string literal, per the preserved quirk.
var stringLiteral = regexp.MustCompile(`^'((?:\\.|[^'\\])+)'`)

func scanString(code string) (t token, rest string, err error) {
	m := stringLiteral.FindStringSubmatch(code)
	if m == nil {
		return token{}, code, errors.New("unterminated or empty string literal")
	}
	t.id = tString
	t.val = unescapeQuote(m[1])
	rest = code[len(m[0]):]
	return
}

func unescapeQuote(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			b.WriteByte(s[i])
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// scanVariable scans a $(...) reference, balancing the outer parens so
// that a {sub} or |default segment containing ')' cannot truncate it
// early. Nested $(...) inside a default is not supported.
func scanVariable(code string) (t token, rest string, err error) {
	depth := 0
	i := 0
	for i < len(code) {
		switch code[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				i++
				t.id = tVariable
				t.val = code[:i]
				rest = code[i:]
				return
			}
		}
		i++
	}
	return token{}, code, errors.New("unterminated variable reference")
}

func scanSymbol(code string) (t token, rest string) {
	i := 0
	for i < len(code) && (isAlphaSym(code[i])) {
		i++
	}
	return token{val: code[:i]}, code[i:]
}

func isAlphaSym(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// lex tokenizes the whole expression up front; expressions are short
// and never streamed.
func lex(expr string) ([]token, error) {
	var out []token
	code := expr

	for {
		code = scanWhitespace(code)
		if code == "" {
			out = append(out, token{id: tEOF})
			return out, nil
		}

		var (
			t    token
			rest string
			err  error
		)

		switch {
		case strings.HasPrefix(code, "=="):
			t, rest = token{id: tEq, val: "=="}, code[2:]
		case strings.HasPrefix(code, "!="):
			t, rest = token{id: tNe, val: "!="}, code[2:]
		case strings.HasPrefix(code, "<="):
			t, rest = token{id: tLe, val: "<="}, code[2:]
		case strings.HasPrefix(code, ">="):
			t, rest = token{id: tGe, val: ">="}, code[2:]
		case code[0] == '<':
			t, rest = token{id: tLt, val: "<"}, code[1:]
		case code[0] == '>':
			t, rest = token{id: tGt, val: ">"}, code[1:]
		case code[0] == '&':
			t, rest = token{id: tAnd, val: "&"}, code[1:]
		case code[0] == '|':
			t, rest = token{id: tOr, val: "|"}, code[1:]
		case code[0] == '!':
			t, rest = token{id: tNot, val: "!"}, code[1:]
		case code[0] == '(':
			t, rest = token{id: tLParen, val: "("}, code[1:]
		case code[0] == ')':
			t, rest = token{id: tRParen, val: ")"}, code[1:]
		case code[0] == '\'':
			t, rest, err = scanString(code)
		case code[0] == '$' && len(code) > 1 && code[1] == '(':
			t, rest, err = scanVariable(code)
		case isDigit(code[0]) || (code[0] == '.' && len(code) > 1 && isDigit(code[1])):
			t, rest, err = scanNumber(code)
		case isAlphaSym(code[0]):
			sym, r := scanSymbol(code)
			rest = r
			switch sym.val {
			case "true", "false":
				t = token{id: tBool, val: sym.val}
			default:
				err = errors.New("unexpected identifier " + sym.val)
			}
		default:
			err = errors.New("unexpected character")
		}

		if err != nil {
			return nil, &esierrors.ExpressionError{Expr: expr, Cause: err}
		}

		out = append(out, t)
		code = rest
	}
}
