package exprlang

import "github.com/esi-edge/esi/esierrors"

// precedence implements the operator table from the design notes:
// comparisons bind tightest, then the unary negation !, then & (and),
// then | (or, loosest).
func precedence(id tokenID) int {
	switch id {
	case tEq, tNe, tLt, tLe, tGt, tGe:
		return 4
	case tNot:
		return 3
	case tAnd:
		return 2
	case tOr:
		return 1
	default:
		return 0
	}
}

func isBinary(id tokenID) bool {
	switch id {
	case tEq, tNe, tLt, tLe, tGt, tGe, tAnd, tOr:
		return true
	default:
		return false
	}
}

// parse runs Dijkstra's shunting-yard algorithm over the token stream,
// producing a postfix token sequence ready for stack evaluation.
// Mismatched parentheses surface as an esierrors.ExpressionError.
func parse(expr string) ([]token, error) {
	tokens, err := lex(expr)
	if err != nil {
		return nil, err
	}

	var output []token
	var ops []token

	popWhileHigher := func(id tokenID) {
		for len(ops) > 0 {
			top := ops[len(ops)-1]
			if top.id == tLParen {
				break
			}
			if isBinary(id) && precedence(top.id) >= precedence(id) {
				output = append(output, top)
				ops = ops[:len(ops)-1]
				continue
			}
			break
		}
	}

	for _, t := range tokens {
		switch t.id {
		case tEOF:
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				if top.id == tLParen {
					return nil, &esierrors.ExpressionError{Expr: expr, Cause: errUnclosedParen}
				}
				output = append(output, top)
				ops = ops[:len(ops)-1]
			}
			return output, nil

		case tNumber, tString, tBool, tVariable:
			output = append(output, t)

		case tNot:
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				if top.id == tNot && precedence(top.id) >= precedence(tNot) {
					output = append(output, top)
					ops = ops[:len(ops)-1]
					continue
				}
				break
			}
			ops = append(ops, t)

		case tAnd, tOr, tEq, tNe, tLt, tLe, tGt, tGe:
			popWhileHigher(t.id)
			ops = append(ops, t)

		case tLParen:
			ops = append(ops, t)

		case tRParen:
			closed := false
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				ops = ops[:len(ops)-1]
				if top.id == tLParen {
					closed = true
					break
				}
				output = append(output, top)
			}
			if !closed {
				return nil, &esierrors.ExpressionError{Expr: expr, Cause: errUnmatchedCloseParen}
			}
		}
	}

	return output, nil
}
