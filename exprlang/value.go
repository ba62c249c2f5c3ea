package exprlang

import "strconv"

// Kind classifies an expression value for comparison purposes.
type Kind int

const (
	Undefined Kind = iota
	Number
	String
	Boolean
)

// Value is a typed intermediate result produced while evaluating an
// expression: exactly one of Num, Str or Bool is meaningful, selected
// by Kind.
type Value struct {
	Kind Kind
	Num  int64
	Str  string
	Bool bool
}

func numberValue(n int64) Value  { return Value{Kind: Number, Num: n} }
func stringValue(s string) Value { return Value{Kind: String, Str: s} }
func boolValue(b bool) Value     { return Value{Kind: Boolean, Bool: b} }

func numberText(n int64) string { return strconv.FormatInt(n, 10) }

var undefinedValue = Value{Kind: Undefined}

// truthy reports whether v is the Boolean true. Evaluate applies it to
// the single top-level result only, so a final Number, String or
// Undefined value makes the test false.
func (v Value) truthy() bool {
	return v.Kind == Boolean && v.Bool
}

// parseAsNumber implements the quirk described in the design notes:
// a value "looks numeric" when the whole string is an optional sign,
// digits and an optional "." fraction, and its value is the integer
// part alone — the fractional digits are dropped, so two such values
// compare as their truncated integers.
func parseAsNumber(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}

	i := 0
	sign := ""
	if s[0] == '-' || s[0] == '+' {
		sign = s[:1]
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	intPart := s[:i]
	if i == start {
		if i < len(s) && s[i] == '.' {
			intPart = sign + "0"
		} else {
			return 0, false
		}
	}

	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j == len(s) {
			n, err := strconv.ParseInt(intPart, 10, 64)
			return n, err == nil
		}
		return 0, false
	}

	if i != len(s) {
		return 0, false
	}

	n, err := strconv.ParseInt(intPart, 10, 64)
	return n, err == nil
}
