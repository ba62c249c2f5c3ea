package exprlang

import (
	"github.com/esi-edge/esi/esierrors"
	"github.com/esi-edge/esi/variables"
)

// Evaluate parses and evaluates a when test="..." expression against
// vars, returning whether the top-level result is boolean true. A
// malformed expression (mismatched parentheses, a bad literal) is
// reported as an *esierrors.ExpressionError and treated by callers as
// a false test, matching ESI's lenient when/otherwise fallthrough.
func Evaluate(expr string, vars variables.Variables) (bool, error) {
	postfix, err := parse(expr)
	if err != nil {
		return false, err
	}

	result, err := evalPostfix(expr, postfix, vars)
	if err != nil {
		return false, err
	}
	return result.truthy(), nil
}

func evalPostfix(expr string, postfix []token, vars variables.Variables) (Value, error) {
	var stack []Value

	pop := func() (Value, error) {
		if len(stack) == 0 {
			return Value{}, &esierrors.ExpressionError{Expr: expr, Cause: errStackUnderflow}
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}

	for _, t := range postfix {
		switch t.id {
		case tNumber:
			n, _ := parseAsNumber(t.val)
			stack = append(stack, numberValue(n))

		case tString:
			stack = append(stack, stringValue(t.val))

		case tBool:
			stack = append(stack, boolValue(t.val == "true"))

		case tVariable:
			stack = append(stack, resolveVariable(t.val, vars))

		case tNot:
			v, err := pop()
			if err != nil {
				return Value{}, err
			}
			if v.Kind != Boolean {
				stack = append(stack, undefinedValue)
			} else {
				stack = append(stack, boolValue(!v.Bool))
			}

		case tAnd, tOr:
			rhs, err := pop()
			if err != nil {
				return Value{}, err
			}
			lhs, err := pop()
			if err != nil {
				return Value{}, err
			}
			switch {
			case lhs.Kind != Boolean || rhs.Kind != Boolean:
				stack = append(stack, undefinedValue)
			case t.id == tAnd:
				stack = append(stack, boolValue(lhs.Bool && rhs.Bool))
			default:
				stack = append(stack, boolValue(lhs.Bool || rhs.Bool))
			}

		case tEq, tNe, tLt, tLe, tGt, tGe:
			rhs, err := pop()
			if err != nil {
				return Value{}, err
			}
			lhs, err := pop()
			if err != nil {
				return Value{}, err
			}
			stack = append(stack, boolValue(compare(lhs, rhs, t.id)))
		}
	}

	if len(stack) != 1 {
		return Value{}, &esierrors.ExpressionError{Expr: expr, Cause: errStackUnderflow}
	}
	return stack[0], nil
}

// resolveVariable classifies a raw $(...) token against vars: an absent
// value takes the token's default when it has one and is Undefined
// otherwise, the literals true/false become Boolean, a
// numeric-looking representation becomes Number, anything else stays
// String.
func resolveVariable(raw string, vars variables.Variables) Value {
	tok, ok := variables.ParseToken(raw)
	if !ok {
		return undefinedValue
	}

	repr, ok := variables.Representation(vars, tok.Name, tok.Sub)
	if !ok {
		if tok.HasDef {
			repr = tok.Default
		} else {
			return undefinedValue
		}
	}

	switch repr {
	case "true":
		return boolValue(true)
	case "false":
		return boolValue(false)
	}

	text := variables.UnquoteLiteral(repr)
	if n, ok := parseAsNumber(text); ok {
		return numberValue(n)
	}
	return stringValue(text)
}

// compare implements the comparison operators. An Undefined operand on
// either side makes every comparison false, per the design notes. Two
// Number operands compare numerically; otherwise both operands compare
// by their textual form. A Number's textual form is its integer value,
// so any fractional part parseAsNumber dropped does not take part.
func compare(lhs, rhs Value, op tokenID) bool {
	if lhs.Kind == Undefined || rhs.Kind == Undefined {
		return false
	}

	if lhs.Kind == Number && rhs.Kind == Number {
		return compareOrdered(lhs.Num < rhs.Num, lhs.Num == rhs.Num, op)
	}

	lt := lhs.textual()
	rt := rhs.textual()
	return compareOrdered(lt < rt, lt == rt, op)
}

func compareOrdered(less, equal bool, op tokenID) bool {
	switch op {
	case tEq:
		return equal
	case tNe:
		return !equal
	case tLt:
		return less
	case tLe:
		return less || equal
	case tGt:
		return !less && !equal
	case tGe:
		return !less
	default:
		return false
	}
}

func (v Value) textual() string {
	switch v.Kind {
	case Number:
		return numberText(v.Num)
	case Boolean:
		if v.Bool {
			return "true"
		}
		return "false"
	default:
		return v.Str
	}
}
