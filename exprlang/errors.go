package exprlang

import "errors"

var (
	errUnclosedParen      = errors.New("unclosed parenthesis")
	errUnmatchedCloseParen = errors.New("unmatched closing parenthesis")
	errStackUnderflow      = errors.New("operator applied with too few operands")
)
